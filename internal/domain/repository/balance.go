package repository

import (
	"context"
	"time"

	"github.com/polkiloo/pointledger/internal/domain/model"
)

// BalanceRepository reads and writes current user balances.
type BalanceRepository interface {
	// Get returns the stored balance or a zero balance for unseen users.
	Get(ctx context.Context, userID int64) (*model.Balance, error)
	// Upsert stores point as the user's balance stamped with updatedAt.
	Upsert(ctx context.Context, userID, point int64, updatedAt time.Time) (*model.Balance, error)
}
