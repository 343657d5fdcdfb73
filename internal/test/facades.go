package test

import (
	"context"
	"time"

	"github.com/polkiloo/pointledger/internal/domain/model"
)

// PointFacadeStub provides controllable behaviour for point endpoints.
type PointFacadeStub struct {
	BalanceFn func(context.Context, int64) (*model.Balance, error)
	HistoryFn func(context.Context, int64) ([]model.TransactionRecord, error)
	ChargeFn  func(context.Context, int64, int64) (*model.Balance, error)
	UseFn     func(context.Context, int64, int64) (*model.Balance, error)
	HealthFn  func(context.Context) error
}

// Balance returns configured balance or a fixed one.
func (s PointFacadeStub) Balance(ctx context.Context, userID int64) (*model.Balance, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, userID)
	}
	return &model.Balance{UserID: userID, Point: 100, UpdatedAt: time.UnixMilli(1000)}, nil
}

// History returns configured records or a single charge.
func (s PointFacadeStub) History(ctx context.Context, userID int64) ([]model.TransactionRecord, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, userID)
	}
	return []model.TransactionRecord{{ID: 1, UserID: userID, Amount: 100, Kind: model.TransactionCharge, CreatedAt: time.UnixMilli(1000)}}, nil
}

// Charge executes configured charge handler.
func (s PointFacadeStub) Charge(ctx context.Context, userID, amount int64) (*model.Balance, error) {
	if s.ChargeFn != nil {
		return s.ChargeFn(ctx, userID, amount)
	}
	return &model.Balance{UserID: userID, Point: amount, UpdatedAt: time.UnixMilli(2000)}, nil
}

// Use executes configured use handler.
func (s PointFacadeStub) Use(ctx context.Context, userID, amount int64) (*model.Balance, error) {
	if s.UseFn != nil {
		return s.UseFn(ctx, userID, amount)
	}
	return &model.Balance{UserID: userID, Point: 0, UpdatedAt: time.UnixMilli(2000)}, nil
}

// Health returns configured health result.
func (s PointFacadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
