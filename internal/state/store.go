package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loomline-erp/loomline-erp/internal/platform/db"
)

// Store persists snapshots. The engine saves the whole state on every commit
// and loads the latest snapshot at startup.
type Store interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}

// PostgresStore keeps snapshots as JSONB rows in an append-only table,
// pruning old rows past a retention window so recent history stays
// inspectable.
type PostgresStore struct {
	pool *pgxpool.Pool
	keep int
}

// NewPostgresStore returns a store retaining the newest keep snapshots.
func NewPostgresStore(pool *pgxpool.Pool, keep int) *PostgresStore {
	if keep < 1 {
		keep = 1
	}
	return &PostgresStore{pool: pool, keep: keep}
}

// Load reads the most recent snapshot. The second return value is false when
// no snapshot has been saved yet.
func (s *PostgresStore) Load(ctx context.Context) (Snapshot, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("state: load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("state: decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Save appends the snapshot and prunes rows beyond the retention window in
// one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("state: encode snapshot: %w", err)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO snapshots (state) VALUES ($1)`, raw); err != nil {
			return fmt.Errorf("state: insert snapshot: %w", err)
		}
		_, err := tx.Exec(ctx, `DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT $1)`, s.keep)
		if err != nil {
			return fmt.Errorf("state: prune snapshots: %w", err)
		}
		return nil
	})
}
