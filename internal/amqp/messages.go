package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind distinguishes the two ledgers in sync messages.
type RecordKind string

const (
	KindExpense RecordKind = "expense"
	KindIncome  RecordKind = "income"
)

func (k RecordKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Message operations.
const (
	OpSync   = "sync"
	OpDelete = "delete"
)

// RecordMessage carries one pending ledger operation through the queue. It
// holds only the record's identity; the worker fetches the full record from
// the database, so a stale message never overwrites newer data.
type RecordMessage struct {
	Op        string     `json:"op"`
	Kind      RecordKind `json:"kind"`
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewSyncMessage creates a message asking the worker to copy a record to
// the remote ledger.
func NewSyncMessage(kind RecordKind, id string) *RecordMessage {
	return &RecordMessage{
		Op:        OpSync,
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a message asking the worker to remove a record
// from the remote ledger.
func NewDeleteMessage(kind RecordKind, id string) *RecordMessage {
	return &RecordMessage{
		Op:        OpDelete,
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordMessageFromJSON creates a message from JSON bytes
func RecordMessageFromJSON(data []byte) (*RecordMessage, error) {
	var msg RecordMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op != OpSync && msg.Op != OpDelete {
		return nil, fmt.Errorf("unknown message op %q", msg.Op)
	}
	if !msg.Kind.Valid() {
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message missing record id")
	}
	return &msg, nil
}
