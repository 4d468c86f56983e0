package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/iho/creditbook/internal/domain"
)

// CollectionRepository implements usecase.CollectionRepository in process
// memory. It is the default backend and the one tests run against.
type CollectionRepository struct {
	mu          sync.Mutex
	collections map[string]domain.Collection
}

// NewCollectionRepository creates an empty CollectionRepository.
func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{
		collections: make(map[string]domain.Collection),
	}
}

// Load returns a copy of the collection stored under key.
func (r *CollectionRepository) Load(ctx context.Context, key string) (domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return domain.Collection{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.collections[key]
	return domain.Collection{Records: cloneRecords(col.Records), Version: col.Version}, nil
}

// Save replaces the collection if its version still equals expectedVersion.
func (r *CollectionRepository) Save(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.collections[key]
	if current.Version != expectedVersion {
		return 0, fmt.Errorf("%w: %s at version %d, expected %d",
			domain.ErrVersionConflict, key, current.Version, expectedVersion)
	}

	next := current.Version + 1
	r.collections[key] = domain.Collection{Records: cloneRecords(records), Version: next}
	return next, nil
}

func cloneRecords(records []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, rec := range records {
		out[i] = slices.Clone(rec)
	}
	return out
}
