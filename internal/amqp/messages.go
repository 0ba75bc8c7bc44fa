package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEvent announces a successful create, update or delete made from
// this client. It carries only identifiers; consumers fetch the record from
// the REST API if they need it.
type TransactionEvent struct {
	Op        string    `json:"op"`
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(op, kind string, id int64) *TransactionEvent {
	return &TransactionEvent{
		Op:        op,
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
