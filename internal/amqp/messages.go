package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	KindUpsert = "upsert"
	KindDelete = "delete"
)

// MirrorMessage tells the worker that a ledger transaction changed.
// It carries only the transaction id; for upserts the worker fetches the
// current record from storage, so a stale message can never overwrite
// fresher data.
type MirrorMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMirrorMessage creates a mirror message for the given change kind.
func NewMirrorMessage(kind, id string) *MirrorMessage {
	return &MirrorMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// Validate checks the message has a known kind and a transaction id.
func (m *MirrorMessage) Validate() error {
	if m.Kind != KindUpsert && m.Kind != KindDelete {
		return fmt.Errorf("unknown mirror message kind %q", m.Kind)
	}
	if m.ID == "" {
		return fmt.Errorf("mirror message missing transaction id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *MirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MirrorMessageFromJSON creates a message from JSON bytes
func MirrorMessageFromJSON(data []byte) (*MirrorMessage, error) {
	var msg MirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
