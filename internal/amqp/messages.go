package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"kesef/internal/core"
)

type EventKind string

const (
	EventTransactionCreated EventKind = "transaction.created"
	EventTransactionDeleted EventKind = "transaction.deleted"
)

// TransactionEvent announces a change to a stored transaction. It carries
// only identifiers and the outlier verdict; consumers load the record itself
// from storage.
type TransactionEvent struct {
	Kind          EventKind `json:"kind"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	IsOutlier     bool      `json:"isOutlier"`
	Confidence    float64   `json:"confidence"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind EventKind, tx core.Transaction, confidence float64) *TransactionEvent {
	return &TransactionEvent{
		Kind:          kind,
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		IsOutlier:     tx.IsOutlier,
		Confidence:    confidence,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event and rejects unknown kinds.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Kind {
	case EventTransactionCreated, EventTransactionDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.TransactionID == "" {
		return nil, fmt.Errorf("event without transaction id")
	}
	return &e, nil
}
