package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Category = "income"
	Expense Category = "expense"
)

type (
	// Category classifies a transaction as money in or money out.
	// Exactly two values are valid; anything else is rejected at insert time.
	Category string

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry. ID and CreatedAt are assigned by
	// the store on insert and never change afterwards.
	Transaction struct {
		ID          string
		OccurredOn  time.Time // calendar date of the transaction
		Description string
		Category    Category
		Amount      Money
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
)

func (c Category) Valid() bool {
	return c == Income || c == Expense
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.OccurredOn.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// DisplayDate formats the transaction date the way the list endpoint
// presents it: "02 January 2006".
func (t Transaction) DisplayDate() string {
	return t.OccurredOn.Format("02 January 2006")
}
