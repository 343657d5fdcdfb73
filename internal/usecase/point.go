package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	domainErrors "github.com/polkiloo/pointledger/internal/domain/errors"
	"github.com/polkiloo/pointledger/internal/domain/model"
	"github.com/polkiloo/pointledger/internal/domain/repository"
	"github.com/polkiloo/pointledger/internal/lock"
)

// Notifier receives every committed transaction together with the resulting balance.
// Notify is called while the user's lock is held and must not block.
type Notifier interface {
	Notify(record model.TransactionRecord, balance model.Balance)
}

type noopNotifier struct{}

func (noopNotifier) Notify(model.TransactionRecord, model.Balance) {}

// PointUseCase owns user point balances: it validates charges and uses, serializes
// mutations per user and commits each balance change together with its history record.
type PointUseCase struct {
	store    repository.Store
	locks    *lock.KeyedMutex
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewPointUseCase constructs PointUseCase. A nil notifier disables notifications.
func NewPointUseCase(store repository.Store, notifier Notifier, logger *slog.Logger) *PointUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &PointUseCase{
		store:    store,
		locks:    lock.NewKeyedMutex(),
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Balance returns the current balance; unseen users have a zero balance.
func (u *PointUseCase) Balance(ctx context.Context, userID int64) (*model.Balance, error) {
	b, err := u.store.Balances().Get(ctx, userID)
	if err != nil {
		return nil, domainErrors.Storage("select balance", err)
	}
	return b, nil
}

// History returns the user's transactions in insertion order.
func (u *PointUseCase) History(ctx context.Context, userID int64) ([]model.TransactionRecord, error) {
	records, err := u.store.Histories().ListByUser(ctx, userID)
	if err != nil {
		return nil, domainErrors.Storage("select history", err)
	}
	if records == nil {
		records = []model.TransactionRecord{}
	}
	return records, nil
}

// Charge adds amount to the user's balance.
func (u *PointUseCase) Charge(ctx context.Context, userID, amount int64) (*model.Balance, error) {
	if amount <= 0 {
		err := &domainErrors.AmountError{Op: "charge"}
		u.logRejected(userID, amount, model.TransactionCharge, err)
		return nil, err
	}
	return u.apply(ctx, userID, amount, model.TransactionCharge)
}

// Use subtracts amount from the user's balance. The balance never goes below zero.
func (u *PointUseCase) Use(ctx context.Context, userID, amount int64) (*model.Balance, error) {
	if amount <= 0 {
		err := &domainErrors.AmountError{Op: "use"}
		u.logRejected(userID, amount, model.TransactionUse, err)
		return nil, err
	}
	return u.apply(ctx, userID, amount, model.TransactionUse)
}

func (u *PointUseCase) apply(ctx context.Context, userID, amount int64, kind model.TransactionKind) (*model.Balance, error) {
	unlock, err := u.locks.Lock(ctx, userID)
	if err != nil {
		u.logRejected(userID, amount, kind, err)
		return nil, err
	}
	defer unlock()

	var (
		updated *model.Balance
		record  *model.TransactionRecord
	)
	err = u.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		current, err := tx.Balances().Get(ctx, userID)
		if err != nil {
			return domainErrors.Storage("select balance", err)
		}

		next, err := nextPoint(current.Point, amount, kind)
		if err != nil {
			return err
		}

		now := u.now()
		if updated, err = tx.Balances().Upsert(ctx, userID, next, now); err != nil {
			return domainErrors.Storage("upsert balance", err)
		}
		if record, err = tx.Histories().Append(ctx, userID, amount, kind, now); err != nil {
			return domainErrors.Storage("append history", err)
		}
		return nil
	})
	if err != nil {
		err = domainErrors.Storage("commit", err)
		u.logRejected(userID, amount, kind, err)
		return nil, err
	}

	u.notifier.Notify(*record, *updated)
	u.logger.Info("points updated",
		slog.Int64("user_id", userID),
		slog.String("type", string(kind)),
		slog.Int64("amount", amount),
		slog.Int64("point", updated.Point),
		slog.Int64("record_id", record.ID),
	)
	return updated, nil
}

func (u *PointUseCase) logRejected(userID, amount int64, kind model.TransactionKind, err error) {
	attrs := []any{
		slog.Int64("user_id", userID),
		slog.String("type", string(kind)),
		slog.Int64("amount", amount),
		slog.String("error", err.Error()),
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		u.logger.Warn("points update cancelled", attrs...)
		return
	}
	if errors.Is(err, domainErrors.ErrStorage) {
		u.logger.Error("points update failed", attrs...)
		return
	}
	u.logger.Info("points update rejected", attrs...)
}

func nextPoint(current, amount int64, kind model.TransactionKind) (int64, error) {
	switch kind {
	case model.TransactionCharge:
		if current > math.MaxInt64-amount {
			return 0, domainErrors.ErrBalanceOverflow
		}
		return current + amount, nil
	case model.TransactionUse:
		if current < amount {
			return 0, domainErrors.ErrInsufficientBalance
		}
		return current - amount, nil
	default:
		return 0, fmt.Errorf("unknown transaction kind %q", kind)
	}
}
