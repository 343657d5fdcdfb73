// Package events publishes committed point transactions to a message broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/pointledger/internal/domain/model"
)

// PointEvent describes one committed transaction and the balance it produced.
type PointEvent struct {
	EventID    string                `json:"eventId"`
	RecordID   int64                 `json:"recordId"`
	UserID     int64                 `json:"userId"`
	Amount     int64                 `json:"amount"`
	Type       model.TransactionKind `json:"type"`
	Balance    int64                 `json:"balance"`
	OccurredAt time.Time             `json:"occurredAt"`
}

// NewPointEvent builds an event with a fresh identifier.
func NewPointEvent(record model.TransactionRecord, balance model.Balance) PointEvent {
	return PointEvent{
		EventID:    uuid.NewString(),
		RecordID:   record.ID,
		UserID:     record.UserID,
		Amount:     record.Amount,
		Type:       record.Kind,
		Balance:    balance.Point,
		OccurredAt: record.CreatedAt,
	}
}

// Publisher delivers point events.
type Publisher interface {
	Publish(ctx context.Context, event PointEvent) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PointEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
