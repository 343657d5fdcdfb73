package handlers

import (
	"context"

	"github.com/polkiloo/pointledger/internal/domain/model"
)

// PointFacade provides the point operations exposed via HTTP.
type PointFacade interface {
	Balance(ctx context.Context, userID int64) (*model.Balance, error)
	History(ctx context.Context, userID int64) ([]model.TransactionRecord, error)
	Charge(ctx context.Context, userID, amount int64) (*model.Balance, error)
	Use(ctx context.Context, userID, amount int64) (*model.Balance, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Health(ctx context.Context) error
}
