package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/polkiloo/pointledger/internal/domain/model"
	"github.com/polkiloo/pointledger/internal/domain/repository"
)

var errClosed = errors.New("memory storage closed")

type balanceRepository struct {
	storage *Storage
}

type historyRepository struct {
	storage *Storage
}

func (r *balanceRepository) Get(ctx context.Context, userID int64) (*model.Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b, ok := r.storage.balance(userID); ok {
		return &b, nil
	}
	return model.EmptyBalance(userID), nil
}

func (r *balanceRepository) Upsert(ctx context.Context, userID, point int64, updatedAt time.Time) (*model.Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if point < 0 {
		return nil, fmt.Errorf("negative balance %d for user %d", point, userID)
	}
	b := model.Balance{UserID: userID, Point: point, UpdatedAt: updatedAt}
	r.storage.commit(&transaction{balances: map[int64]model.Balance{userID: b}})
	return &b, nil
}

func (r *historyRepository) Append(ctx context.Context, userID, amount int64, kind model.TransactionKind, at time.Time) (*model.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRecord(amount, kind); err != nil {
		return nil, err
	}
	rec := r.storage.newRecord(userID, amount, kind, at)
	r.storage.commit(&transaction{appended: map[int64][]model.TransactionRecord{userID: {rec}}})
	return &rec, nil
}

func (r *historyRepository) ListByUser(ctx context.Context, userID int64) ([]model.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.storage.records(userID), nil
}

// transaction stages writes until commit. Reads see staged values first.
type transaction struct {
	storage  *Storage
	balances map[int64]model.Balance
	appended map[int64][]model.TransactionRecord
}

func (tx *transaction) Balances() repository.BalanceRepository {
	return (*txBalances)(tx)
}

func (tx *transaction) Histories() repository.HistoryRepository {
	return (*txHistories)(tx)
}

type txBalances transaction

func (r *txBalances) Get(ctx context.Context, userID int64) (*model.Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b, ok := r.balances[userID]; ok {
		return &b, nil
	}
	if b, ok := r.storage.balance(userID); ok {
		return &b, nil
	}
	return model.EmptyBalance(userID), nil
}

func (r *txBalances) Upsert(ctx context.Context, userID, point int64, updatedAt time.Time) (*model.Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if point < 0 {
		return nil, fmt.Errorf("negative balance %d for user %d", point, userID)
	}
	b := model.Balance{UserID: userID, Point: point, UpdatedAt: updatedAt}
	r.balances[userID] = b
	return &b, nil
}

type txHistories transaction

func (r *txHistories) Append(ctx context.Context, userID, amount int64, kind model.TransactionKind, at time.Time) (*model.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRecord(amount, kind); err != nil {
		return nil, err
	}
	rec := r.storage.newRecord(userID, amount, kind, at)
	r.appended[userID] = append(r.appended[userID], rec)
	return &rec, nil
}

func (r *txHistories) ListByUser(ctx context.Context, userID int64) ([]model.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(r.storage.records(userID), r.appended[userID]...), nil
}

func validateRecord(amount int64, kind model.TransactionKind) error {
	if amount <= 0 {
		return fmt.Errorf("history amount must be positive, got %d", amount)
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown transaction kind %q", kind)
	}
	return nil
}
