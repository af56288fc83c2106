package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kasklub/internal/core"
)

// maxBodyBytes caps request bodies; ledger payloads are tiny.
const maxBodyBytes = 1 << 16 // 64KB

var errMalformedBody = errors.New("malformed request body")

// decodeJSON reads and decodes the request body into dst. Unknown fields
// are tolerated; trailing garbage is not.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errMalformedBody
	}
	if dec.More() {
		return errMalformedBody
	}
	// Drain so keep-alive connections can be reused
	io.Copy(io.Discard, body)
	return nil
}

// parseAmount converts an amount field to cents. JSON numbers and decimal
// strings are both accepted; anything non-positive is rejected.
func parseAmount(v any) (int64, error) {
	switch val := v.(type) {
	case json.Number:
		return core.ParseDecimalToCents(val.String())
	case string:
		return core.ParseDecimalToCents(val)
	case float64:
		return core.CentsFromFloat(val)
	case nil:
		return 0, core.ErrInvalidAmount
	default:
		return 0, core.ErrInvalidAmount
	}
}

// dateLayouts are tried in order when parsing the transaction date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate parses the transaction date from the request body.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}
