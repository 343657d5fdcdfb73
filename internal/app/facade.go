package app

import (
	"context"

	"github.com/polkiloo/pointledger/internal/domain/model"
	"github.com/polkiloo/pointledger/internal/domain/repository"
	"github.com/polkiloo/pointledger/internal/usecase"
)

type PointFacade struct {
	points *usecase.PointUseCase
	store  repository.Store
}

func NewPointFacade(points *usecase.PointUseCase, store repository.Store) *PointFacade {
	return &PointFacade{points: points, store: store}
}

func (f *PointFacade) Balance(ctx context.Context, userID int64) (*model.Balance, error) {
	return f.points.Balance(ctx, userID)
}

func (f *PointFacade) History(ctx context.Context, userID int64) ([]model.TransactionRecord, error) {
	return f.points.History(ctx, userID)
}

func (f *PointFacade) Charge(ctx context.Context, userID, amount int64) (*model.Balance, error) {
	return f.points.Charge(ctx, userID, amount)
}

func (f *PointFacade) Use(ctx context.Context, userID, amount int64) (*model.Balance, error) {
	return f.points.Use(ctx, userID, amount)
}

// Health reports whether the storage collaborator responds.
func (f *PointFacade) Health(ctx context.Context) error {
	return f.store.HealthCheck(ctx)
}
