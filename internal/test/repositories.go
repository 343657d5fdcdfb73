package test

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/pointledger/internal/domain/model"
	"github.com/polkiloo/pointledger/internal/domain/repository"
)

// BalanceRepositoryStub lets tests control balance data.
type BalanceRepositoryStub struct {
	GetFn    func(context.Context, int64) (*model.Balance, error)
	UpsertFn func(context.Context, int64, int64, time.Time) (*model.Balance, error)

	Balances map[int64]model.Balance
	Upserts  []model.Balance
	GetCalls int
}

// Get returns configured balance or an empty one.
func (s *BalanceRepositoryStub) Get(ctx context.Context, userID int64) (*model.Balance, error) {
	s.GetCalls++
	if s.GetFn != nil {
		return s.GetFn(ctx, userID)
	}
	if b, ok := s.Balances[userID]; ok {
		return &b, nil
	}
	return model.EmptyBalance(userID), nil
}

// Upsert records the write and stores it for later reads.
func (s *BalanceRepositoryStub) Upsert(ctx context.Context, userID, point int64, updatedAt time.Time) (*model.Balance, error) {
	if s.UpsertFn != nil {
		return s.UpsertFn(ctx, userID, point, updatedAt)
	}
	b := model.Balance{UserID: userID, Point: point, UpdatedAt: updatedAt}
	s.Upserts = append(s.Upserts, b)
	if s.Balances == nil {
		s.Balances = make(map[int64]model.Balance)
	}
	s.Balances[userID] = b
	return &b, nil
}

// HistoryRepositoryStub stores appended records in a slice.
type HistoryRepositoryStub struct {
	AppendFn func(context.Context, int64, int64, model.TransactionKind, time.Time) (*model.TransactionRecord, error)
	ListFn   func(context.Context, int64) ([]model.TransactionRecord, error)

	Records []model.TransactionRecord
}

// Append assigns sequential identifiers unless overridden.
func (s *HistoryRepositoryStub) Append(ctx context.Context, userID, amount int64, kind model.TransactionKind, at time.Time) (*model.TransactionRecord, error) {
	if s.AppendFn != nil {
		return s.AppendFn(ctx, userID, amount, kind, at)
	}
	rec := model.TransactionRecord{
		ID:        int64(len(s.Records) + 1),
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		CreatedAt: at,
	}
	s.Records = append(s.Records, rec)
	return &rec, nil
}

// ListByUser filters stored records by user.
func (s *HistoryRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.TransactionRecord, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID)
	}
	var out []model.TransactionRecord
	for _, rec := range s.Records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// StoreStub combines repository stubs behind repository.Store.
// Transactions run the callback directly against the same stubs.
type StoreStub struct {
	BalanceRepo *BalanceRepositoryStub
	HistoryRepo *HistoryRepositoryStub

	TxErr     error
	HealthErr error
	TxCalls   int
	Closed    bool
}

// NewStoreStub constructs stub store with empty repositories.
func NewStoreStub() *StoreStub {
	return &StoreStub{
		BalanceRepo: &BalanceRepositoryStub{},
		HistoryRepo: &HistoryRepositoryStub{},
	}
}

// Balances returns balance repository stub.
func (s *StoreStub) Balances() repository.BalanceRepository { return s.BalanceRepo }

// Histories returns history repository stub.
func (s *StoreStub) Histories() repository.HistoryRepository { return s.HistoryRepo }

// WithinTransaction returns TxErr without calling fn when set.
func (s *StoreStub) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	s.TxCalls++
	if s.TxErr != nil {
		return s.TxErr
	}
	return fn(s)
}

// HealthCheck returns HealthErr.
func (s *StoreStub) HealthCheck(context.Context) error { return s.HealthErr }

// Close marks the store closed.
func (s *StoreStub) Close() { s.Closed = true }

// NotifierStub records committed transactions handed to it.
type NotifierStub struct {
	mu       sync.Mutex
	Records  []model.TransactionRecord
	Balances []model.Balance
}

// Notify stores the record and resulting balance.
func (n *NotifierStub) Notify(record model.TransactionRecord, balance model.Balance) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Records = append(n.Records, record)
	n.Balances = append(n.Balances, balance)
}

// Snapshot returns a copy of the recorded transactions.
func (n *NotifierStub) Snapshot() []model.TransactionRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.TransactionRecord(nil), n.Records...)
}

var _ repository.Store = (*StoreStub)(nil)
