package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iho/creditbook/internal/domain"
)

// CollectionRepository is the durable key/value surface the ledger persists
// through. Each key holds a whole collection of JSON records.
type CollectionRepository interface {
	// Load returns the records stored under key and their version.
	Load(ctx context.Context, key string) (domain.Collection, error)
	// Save replaces the records under key if the stored version still equals
	// expectedVersion, returning the new version. Otherwise it returns
	// domain.ErrVersionConflict and stores nothing.
	Save(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier reruns op while it fails with a retryable error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Notifier delivers transaction notices to clients.
type Notifier interface {
	Notify(ctx context.Context, notice domain.TransactionNotice) error
}

// MetricsRecorder receives ledger activity for monitoring.
type MetricsRecorder interface {
	ObserveMutation(operation string, err error, elapsed time.Duration)
	IncVersionConflict(collection string)
	IncSnapshotDrift()
	SetLedgerTotals(clients int, outstanding domain.Money)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release removes a key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// LedgerReader is the read-only view of the ledger used by reporting.
// Every returned value is a copy.
type LedgerReader interface {
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	ListClients(ctx context.Context) []*domain.Client
	ListEvents(ctx context.Context, clientID string) ([]domain.LedgerEvent, error)
	ClientLedger(ctx context.Context, clientID string) (domain.Client, []domain.LedgerEvent, error)
	AllEvents(ctx context.Context) []domain.LedgerEvent
	ListDailyPrices(ctx context.Context) []domain.DailyPrice
}
