package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/iho/creditbook/internal/domain"
)

const (
	fieldRecords = "records"
	fieldVersion = "version"
)

// CollectionRepository implements usecase.CollectionRepository with one hash
// per collection. Save uses WATCH/MULTI so the version check and the write
// are atomic.
type CollectionRepository struct {
	client *redis.Client
	prefix string
}

// NewCollectionRepository creates a new CollectionRepository. Keys are
// stored as prefix + "ledger:" + collection key.
func NewCollectionRepository(client *redis.Client, prefix string) *CollectionRepository {
	return &CollectionRepository{
		client: client,
		prefix: prefix + "ledger:",
	}
}

// Load returns the collection stored under key, or an empty collection at
// version 0.
func (r *CollectionRepository) Load(ctx context.Context, key string) (domain.Collection, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err != nil {
		return domain.Collection{}, err
	}
	if len(fields) == 0 {
		return domain.Collection{}, nil
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("collection %s has invalid version %q: %w", key, fields[fieldVersion], err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(fields[fieldRecords]), &records); err != nil {
		return domain.Collection{}, fmt.Errorf("collection %s has invalid records: %w", key, err)
	}

	return domain.Collection{Records: records, Version: version}, nil
}

// Save replaces the collection if its version still equals expectedVersion.
func (r *CollectionRepository) Save(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error) {
	payload, err := marshalRecords(records)
	if err != nil {
		return 0, err
	}

	fullKey := r.prefix + key
	next := expectedVersion + 1

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, fullKey, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}

		if current != expectedVersion {
			return fmt.Errorf("%w: %s at version %d, expected %d", domain.ErrVersionConflict, key, current, expectedVersion)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, fullKey, fieldRecords, payload, fieldVersion, next)
			return nil
		})
		return err
	}, fullKey)

	if errors.Is(err, redis.TxFailedErr) {
		return 0, fmt.Errorf("%w: %s changed during save", domain.ErrVersionConflict, key)
	}
	if err != nil {
		return 0, err
	}

	return next, nil
}

func marshalRecords(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	return json.Marshal(records)
}
