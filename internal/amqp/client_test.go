package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{63, 30 * time.Second}, // shift overflow guarded
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"unrelated error", errors.New("access refused by policy"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestMirrorMessageRoundTrip(t *testing.T) {
	msg := NewMirrorMessage(KindUpsert, "3f1c9d2e")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := MirrorMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Kind != KindUpsert || got.ID != "3f1c9d2e" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMirrorMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     MirrorMessage
		wantErr bool
	}{
		{"valid upsert", MirrorMessage{Kind: KindUpsert, ID: "a"}, false},
		{"valid delete", MirrorMessage{Kind: KindDelete, ID: "a"}, false},
		{"unknown kind", MirrorMessage{Kind: "truncate", ID: "a"}, true},
		{"missing id", MirrorMessage{Kind: KindUpsert}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMirrorMessageFromJSONRejectsGarbage(t *testing.T) {
	for _, body := range []string{"", "{", `{"kind":"upsert"}`, `{"id":"a"}`} {
		if _, err := MirrorMessageFromJSON([]byte(body)); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}
