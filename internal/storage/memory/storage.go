// Package memory implements the storage collaborator in process memory.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/pointledger/internal/domain/model"
	"github.com/polkiloo/pointledger/internal/domain/repository"
)

// Storage keeps balances and history in maps guarded by a single RWMutex.
// Transactions stage their writes and apply them under the write lock at commit,
// so readers never observe a balance without its history record.
type Storage struct {
	mu       sync.RWMutex
	balances map[int64]model.Balance
	history  map[int64][]model.TransactionRecord
	nextID   atomic.Int64
	closed   atomic.Bool
}

// New creates empty in-memory storage.
func New() *Storage {
	return &Storage{
		balances: make(map[int64]model.Balance),
		history:  make(map[int64][]model.TransactionRecord),
	}
}

func (s *Storage) Balances() repository.BalanceRepository {
	return &balanceRepository{storage: s}
}

func (s *Storage) Histories() repository.HistoryRepository {
	return &historyRepository{storage: s}
}

// WithinTransaction runs fn against staged repositories and commits on nil error.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &transaction{
		storage:  s,
		balances: make(map[int64]model.Balance),
		appended: make(map[int64][]model.TransactionRecord),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *Storage) commit(tx *transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range tx.balances {
		s.balances[id] = b
	}
	for id, records := range tx.appended {
		s.history[id] = append(s.history[id], records...)
	}
}

// HealthCheck always succeeds for open storage.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if s.closed.Load() {
		return errClosed
	}
	return ctx.Err()
}

// Close marks storage as closed for health reporting.
func (s *Storage) Close() {
	s.closed.Store(true)
}

func (s *Storage) balance(userID int64) (model.Balance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[userID]
	return b, ok
}

func (s *Storage) records(userID int64) []model.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.history[userID]
	out := make([]model.TransactionRecord, len(stored))
	copy(out, stored)
	return out
}

func (s *Storage) newRecord(userID, amount int64, kind model.TransactionKind, at time.Time) model.TransactionRecord {
	return model.TransactionRecord{
		ID:        s.nextID.Add(1),
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		CreatedAt: at,
	}
}
