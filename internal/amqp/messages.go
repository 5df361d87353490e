package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Table change operations carried in a ChangeMessage.
const (
	OpAppend = "append"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeMessage notifies the mirror worker that the transaction table
// changed. It carries only the operation and the affected row index; the
// worker re-reads the table from the store, so the message never goes stale.
type ChangeMessage struct {
	Op        string    `json:"op"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time.
func NewChangeMessage(op string, index int) *ChangeMessage {
	return &ChangeMessage{
		Op:        op,
		Index:     index,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message from JSON bytes and rejects unknown
// operations.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case OpAppend, OpUpdate, OpDelete:
	default:
		return nil, fmt.Errorf("unknown change operation: %q", msg.Op)
	}
	return &msg, nil
}
