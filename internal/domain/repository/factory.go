package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Balances() BalanceRepository
	Histories() HistoryRepository
}

// Store is a Factory with a transaction boundary. Repositories handed to fn observe
// their own writes; other readers see none of them until fn returns nil.
type Store interface {
	Factory
	WithinTransaction(ctx context.Context, fn func(tx Factory) error) error
	HealthCheck(ctx context.Context) error
	Close()
}
