package repository

import (
	"context"
	"time"

	"github.com/polkiloo/pointledger/internal/domain/model"
)

// HistoryRepository provides the append-only transaction log.
type HistoryRepository interface {
	Append(ctx context.Context, userID, amount int64, kind model.TransactionKind, at time.Time) (*model.TransactionRecord, error)
	// ListByUser returns records in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]model.TransactionRecord, error)
}
