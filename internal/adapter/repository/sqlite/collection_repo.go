package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/iho/creditbook/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS ledger_collections (
    key        TEXT PRIMARY KEY,
    records    TEXT    NOT NULL DEFAULT '[]',
    version    INTEGER NOT NULL,
    updated_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// Open opens (creating if needed) the database file at path and ensures the
// schema exists. SQLite allows one writer, so the pool holds one connection.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

type collectionRow struct {
	Records string `db:"records"`
	Version int64  `db:"version"`
}

// CollectionRepository implements usecase.CollectionRepository on a single
// SQLite file.
type CollectionRepository struct {
	db *sqlx.DB
}

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(db *sqlx.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Load returns the collection stored under key, or an empty collection at
// version 0.
func (r *CollectionRepository) Load(ctx context.Context, key string) (domain.Collection, error) {
	var row collectionRow
	err := r.db.GetContext(ctx, &row, `SELECT records, version FROM ledger_collections WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Collection{}, nil
	}
	if err != nil {
		return domain.Collection{}, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(row.Records), &records); err != nil {
		return domain.Collection{}, fmt.Errorf("collection %s has invalid records: %w", key, err)
	}
	return domain.Collection{Records: records, Version: row.Version}, nil
}

// Save writes the collection if the stored version equals expectedVersion.
func (r *CollectionRepository) Save(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return 0, err
	}

	var res sql.Result
	if expectedVersion == 0 {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO ledger_collections (key, records, version) VALUES (?, ?, 1) ON CONFLICT (key) DO NOTHING`,
			key, string(payload))
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE ledger_collections
			 SET records = ?, version = version + 1, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			 WHERE key = ? AND version = ?`,
			string(payload), key, expectedVersion)
	}
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, fmt.Errorf("%w: %s is no longer at version %d", domain.ErrVersionConflict, key, expectedVersion)
	}
	return expectedVersion + 1, nil
}
