package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/creditbook/internal/domain"
)

const (
	loadCollectionSQL = `SELECT records, version FROM ledger_collections WHERE key = $1`

	insertCollectionSQL = `INSERT INTO ledger_collections (key, records, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (key) DO NOTHING`

	updateCollectionSQL = `UPDATE ledger_collections
SET records = $2, version = version + 1, updated_at = now()
WHERE key = $1 AND version = $3`
)

type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CollectionRepository implements usecase.CollectionRepository on the
// ledger_collections table. The version column makes Save a single
// conditional statement, so no explicit transaction is needed.
type CollectionRepository struct {
	pool pgxPool
}

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(pool *pgxpool.Pool) *CollectionRepository {
	return newCollectionRepositoryWithPool(pool)
}

func newCollectionRepositoryWithPool(pool pgxPool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

// Load returns the collection stored under key, or an empty collection at
// version 0 when the row does not exist yet.
func (r *CollectionRepository) Load(ctx context.Context, key string) (domain.Collection, error) {
	var (
		payload []byte
		version int64
	)
	err := r.pool.QueryRow(ctx, loadCollectionSQL, key).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Collection{}, nil
		}
		return domain.Collection{}, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return domain.Collection{}, fmt.Errorf("collection %s has invalid records: %w", key, err)
	}

	return domain.Collection{Records: records, Version: version}, nil
}

// Save inserts the first version of a collection or updates it when the
// stored version equals expectedVersion.
func (r *CollectionRepository) Save(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return 0, err
	}

	var tag pgconn.CommandTag
	if expectedVersion == 0 {
		tag, err = r.pool.Exec(ctx, insertCollectionSQL, key, string(payload))
	} else {
		tag, err = r.pool.Exec(ctx, updateCollectionSQL, key, string(payload), expectedVersion)
	}
	if err != nil {
		return 0, err
	}

	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("%w: %s is no longer at version %d", domain.ErrVersionConflict, key, expectedVersion)
	}
	return expectedVersion + 1, nil
}
