package usecase

import "time"

// Collection keys.
const (
	CollectionClients     = "clients"
	CollectionSales       = "sales"
	CollectionPayments    = "payments"
	CollectionDailyPrices = "daily_prices"

	// CollectionSequence holds the last event sequence number handed out.
	// Sales and payments live in separate collections, so claiming a number
	// here is what keeps two writers from giving events the same one.
	CollectionSequence = "event_sequence"
)

const (
	// DefaultMutationTimeout bounds one mutation including its retries.
	DefaultMutationTimeout = 10 * time.Second

	// DefaultMaxAttempts is used when no Retrier is configured.
	DefaultMaxAttempts = 5

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// HighRiskListSize is how many clients the dashboard lists as high risk.
	HighRiskListSize = 5
)
