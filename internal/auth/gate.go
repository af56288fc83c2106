// Package auth implements the admin gate: a single configured credential
// pair that exchanges for one static bearer token. There is no expiry, no
// revocation and no per-user identity; every mutating endpoint shares the
// same secret. This is placeholder access control for a single-admin
// deployment, not multi-tenant auth.
package auth

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid authentication token")
)

// Gate checks admin credentials and bearer tokens against values fixed at
// startup.
type Gate struct {
	username string
	password string
	token    string
}

func NewGate(username, password, token string) *Gate {
	return &Gate{
		username: username,
		password: password,
		token:    token,
	}
}

// Login returns the static bearer token when the pair matches the
// configured credentials, ErrInvalidCredentials otherwise. The same literal
// token is returned on every successful login.
func (g *Gate) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return g.token, nil
}

// Authorize succeeds iff the presented token equals the static token.
func (g *Gate) Authorize(presented string) error {
	if subtle.ConstantTimeCompare([]byte(presented), []byte(g.token)) != 1 {
		return ErrInvalidToken
	}
	return nil
}
