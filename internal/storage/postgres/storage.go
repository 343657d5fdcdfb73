package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/pointledger/internal/domain/model"
	"github.com/polkiloo/pointledger/internal/domain/repository"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type balanceRepository struct {
	q         querier
	forUpdate bool
}

type historyRepository struct {
	q querier
}

type txFactory struct {
	tx pgx.Tx
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Balances() repository.BalanceRepository {
	return &balanceRepository{q: s.pool}
}

func (s *Storage) Histories() repository.HistoryRepository {
	return &historyRepository{q: s.pool}
}

func (f *txFactory) Balances() repository.BalanceRepository {
	return &balanceRepository{q: f.tx, forUpdate: true}
}

func (f *txFactory) Histories() repository.HistoryRepository {
	return &historyRepository{q: f.tx}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_points (
            user_id BIGINT PRIMARY KEY,
            point BIGINT NOT NULL DEFAULT 0 CHECK (point >= 0),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS point_histories (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            amount BIGINT NOT NULL CHECK (amount > 0),
            kind TEXT NOT NULL CHECK (kind IN ('CHARGE', 'USE')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_point_histories_user ON point_histories(user_id, id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- BalanceRepository implementation ---

func (r *balanceRepository) Get(ctx context.Context, userID int64) (*model.Balance, error) {
	query := `SELECT user_id, point, updated_at FROM user_points WHERE user_id=$1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	var b model.Balance
	err := r.q.QueryRow(ctx, query, userID).Scan(&b.UserID, &b.Point, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EmptyBalance(userID), nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *balanceRepository) Upsert(ctx context.Context, userID, point int64, updatedAt time.Time) (*model.Balance, error) {
	const query = `INSERT INTO user_points (user_id, point, updated_at) VALUES ($1, $2, $3)
                   ON CONFLICT (user_id) DO UPDATE SET point = EXCLUDED.point, updated_at = EXCLUDED.updated_at
                   RETURNING user_id, point, updated_at`
	var b model.Balance
	if err := r.q.QueryRow(ctx, query, userID, point, updatedAt).Scan(&b.UserID, &b.Point, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// --- HistoryRepository implementation ---

func (r *historyRepository) Append(ctx context.Context, userID, amount int64, kind model.TransactionKind, at time.Time) (*model.TransactionRecord, error) {
	const query = `INSERT INTO point_histories (user_id, amount, kind, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	rec := model.TransactionRecord{UserID: userID, Amount: amount, Kind: kind, CreatedAt: at}
	if err := r.q.QueryRow(ctx, query, userID, amount, string(kind), at).Scan(&rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *historyRepository) ListByUser(ctx context.Context, userID int64) ([]model.TransactionRecord, error) {
	const query = `SELECT id, user_id, amount, kind, created_at
                   FROM point_histories WHERE user_id=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.TransactionRecord, 0)
	for rows.Next() {
		var rec model.TransactionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Amount, &rec.Kind, &rec.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(&txFactory{tx: tx})
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
