package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditbook/internal/domain"
)

// LedgerStore owns the clients, their sale and payment events and the daily
// price list.
//
// Mutations are serialized within the process and applied as
// compare-and-apply against the latest persisted collections, so several
// processes can share one repository without losing updates. Reads are
// served from the state installed by the last successful mutation or
// Refresh and always return copies.
type LedgerStore struct {
	mu    sync.RWMutex
	state *ledgerState

	// write serializes mutations; held across retries.
	write sync.Mutex

	repo     CollectionRepository
	idGen    IDGenerator
	retrier  Retrier
	notifier Notifier
	metrics  MetricsRecorder
	logger   zerolog.Logger
	clock    func() time.Time
	timeout  time.Duration
}

// LedgerStoreConfig configures a LedgerStore. Repo and IDGen are required.
type LedgerStoreConfig struct {
	Repo     CollectionRepository
	IDGen    IDGenerator
	Retrier  Retrier         // Retries version conflicts; defaults to DefaultMaxAttempts immediate retries
	Notifier Notifier        // Optional
	Metrics  MetricsRecorder // Optional
	Logger   *zerolog.Logger
	Clock    func() time.Time
	Timeout  time.Duration // Per mutation, including retries
}

// NewLedgerStore creates an empty store. Call Load to hydrate it.
func NewLedgerStore(cfg LedgerStoreConfig) *LedgerStore {
	if cfg.Retrier == nil {
		cfg.Retrier = attemptRetrier{attempts: DefaultMaxAttempts}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultMutationTimeout
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "ledger_store").Logger()
	}

	return &LedgerStore{
		state:    newLedgerState(),
		repo:     cfg.Repo,
		idGen:    cfg.IDGen,
		retrier:  cfg.Retrier,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   logger,
		clock:    cfg.Clock,
		timeout:  cfg.Timeout,
	}
}

// AddClientInput represents input for adding a client.
type AddClientInput struct {
	Name    string
	Contact string
	Address string
}

// RecordSaleInput represents input for recording a sale.
type RecordSaleInput struct {
	ClientID    string
	Quantity    domain.Weight
	UnitPrice   domain.Money
	Date        domain.Date // Zero means today
	Description string
}

// RecordPaymentInput represents input for recording a payment.
type RecordPaymentInput struct {
	ClientID    string
	Amount      domain.Money
	Date        domain.Date // Zero means today
	Description string
}

// AddDailyPriceInput represents input for adding a daily price.
type AddDailyPriceInput struct {
	Date       domain.Date // Zero means today
	PricePerKg domain.Money
	Supplier   string
}

// Load hydrates the store from the repository. It is Refresh with a summary
// log line, meant for startup.
func (s *LedgerStore) Load(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.logger.Info().
		Int("clients", len(s.state.clients)).
		Int("sales", len(s.state.sales)).
		Int("payments", len(s.state.payments)).
		Int("daily_prices", len(s.state.prices)).
		Msg("ledger loaded")
	return nil
}

// Refresh replaces the in-memory state with the latest persisted state. It
// holds the mutation lock so a state loaded before a local commit can never
// be installed over it.
func (s *LedgerStore) Refresh(ctx context.Context) error {
	s.write.Lock()
	defer s.write.Unlock()

	st, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	s.install(st)
	return nil
}

// AddClient creates a client with zero financial fields.
func (s *LedgerStore) AddClient(ctx context.Context, input AddClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(input.Name)
	contact := strings.TrimSpace(input.Contact)
	address := strings.TrimSpace(input.Address)

	if err := domain.ValidateClientName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateContact(contact); err != nil {
		return nil, err
	}
	if err := domain.ValidateAddress(address); err != nil {
		return nil, err
	}

	var created *domain.Client
	err := s.mutate(ctx, "add_client", func(ctx context.Context) error {
		st, err := s.loadState(ctx)
		if err != nil {
			return err
		}

		now := s.clock()
		client := &domain.Client{
			ID:        s.idGen.Generate(),
			Name:      name,
			Contact:   contact,
			Address:   address,
			CreatedAt: now,
			UpdatedAt: now,
		}
		st.addClient(client)

		if err := s.saveClients(ctx, st); err != nil {
			return err
		}

		s.install(st)
		created = client.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("client_id", created.ID).Msg("client added")
	return created, nil
}

// UpdateClientProfile changes name, contact or address. Financial fields are
// never touched.
func (s *LedgerStore) UpdateClientProfile(ctx context.Context, id string, profile domain.ClientProfile) (*domain.Client, error) {
	profile = trimProfile(profile)
	if err := domain.ValidateProfile(profile); err != nil {
		return nil, err
	}

	var updated *domain.Client
	err := s.mutate(ctx, "update_client_profile", func(ctx context.Context) error {
		st, err := s.loadState(ctx)
		if err != nil {
			return err
		}

		client, err := st.client(id)
		if err != nil {
			return err
		}
		client.ApplyProfile(profile)
		client.UpdatedAt = s.clock()

		if err := s.saveClients(ctx, st); err != nil {
			return err
		}

		s.install(st)
		updated = client.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RecordSale appends a sale and raises the client's credit and balance.
// The total is quantity times unit price rounded to the minor unit.
func (s *LedgerStore) RecordSale(ctx context.Context, input RecordSaleInput) (*domain.Sale, error) {
	description := strings.TrimSpace(input.Description)
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.today()
	}

	candidate := domain.Sale{Quantity: input.Quantity, UnitPrice: input.UnitPrice, Date: date}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	total, err := input.Quantity.Total(input.UnitPrice)
	if err != nil {
		return nil, err
	}
	if !total.IsPositive() {
		return nil, domain.ErrSaleTotalTooSmall
	}

	var (
		sale   *domain.Sale
		client *domain.Client
	)
	err = s.mutate(ctx, "record_sale", func(ctx context.Context) error {
		st, err := s.loadState(ctx)
		if err != nil {
			return err
		}

		c, err := st.client(input.ClientID)
		if err != nil {
			return err
		}

		seq, err := s.claimSeq(ctx, st)
		if err != nil {
			return err
		}

		now := s.clock()
		sale = &domain.Sale{
			ID:          s.idGen.Generate(),
			ClientID:    c.ID,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			TotalAmount: total,
			Date:        date,
			Description: description,
			Seq:         seq,
			CreatedAt:   now,
		}

		st.sales = append(st.sales, sale)
		records, err := encodeRecords(st.sales, saleToRecord)
		if err != nil {
			return err
		}
		if err := s.save(ctx, st, CollectionSales, records); err != nil {
			return err
		}

		c.ApplySale(total)
		c.UpdatedAt = now
		s.syncSnapshot(ctx, st)

		s.install(st)
		client = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("client_id", client.ID).
		Str("sale_id", sale.ID).
		Str("amount", sale.TotalAmount.String()).
		Str("balance", client.Balance.String()).
		Msg("sale recorded")

	s.notify(ctx, domain.SaleNotice(client, sale))

	out := *sale
	return &out, nil
}

// RecordPayment appends a payment and lowers the client's balance. A payment
// larger than the current balance is rejected with domain.ErrOverpayment.
func (s *LedgerStore) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	description := strings.TrimSpace(input.Description)
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.today()
	}

	candidate := domain.Payment{Amount: input.Amount, Date: date}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var (
		payment *domain.Payment
		client  *domain.Client
	)
	err := s.mutate(ctx, "record_payment", func(ctx context.Context) error {
		st, err := s.loadState(ctx)
		if err != nil {
			return err
		}

		c, err := st.client(input.ClientID)
		if err != nil {
			return err
		}
		if err := c.ValidatePayment(input.Amount); err != nil {
			return err
		}

		seq, err := s.claimSeq(ctx, st)
		if err != nil {
			return err
		}

		now := s.clock()
		payment = &domain.Payment{
			ID:          s.idGen.Generate(),
			ClientID:    c.ID,
			Amount:      input.Amount,
			Date:        date,
			Description: description,
			Seq:         seq,
			CreatedAt:   now,
		}

		st.payments = append(st.payments, payment)
		records, err := encodeRecords(st.payments, paymentToRecord)
		if err != nil {
			return err
		}
		if err := s.save(ctx, st, CollectionPayments, records); err != nil {
			return err
		}

		c.ApplyPayment(input.Amount)
		c.UpdatedAt = now
		s.syncSnapshot(ctx, st)

		s.install(st)
		client = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("client_id", client.ID).
		Str("payment_id", payment.ID).
		Str("amount", payment.Amount.String()).
		Str("balance", client.Balance.String()).
		Msg("payment recorded")

	s.notify(ctx, domain.PaymentNotice(client, payment))

	out := *payment
	return &out, nil
}

// AddDailyPrice records the price for a date. At most one price exists per
// date; a second one fails with domain.ErrDuplicateDate.
func (s *LedgerStore) AddDailyPrice(ctx context.Context, input AddDailyPriceInput) (*domain.DailyPrice, error) {
	date := input.Date
	if date.IsZero() {
		date = s.today()
	}

	price := &domain.DailyPrice{
		Date:       date,
		PricePerKg: input.PricePerKg,
		Supplier:   strings.TrimSpace(input.Supplier),
	}
	if err := price.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, "add_daily_price", func(ctx context.Context) error {
		st, err := s.loadState(ctx)
		if err != nil {
			return err
		}

		for _, p := range st.prices {
			if p.Date.Equal(date) {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateDate, date)
			}
		}

		price.ID = s.idGen.Generate()
		price.CreatedAt = s.clock()

		st.prices = append(st.prices, price)
		records, err := encodeRecords(st.prices, priceToRecord)
		if err != nil {
			return err
		}
		if err := s.save(ctx, st, CollectionDailyPrices, records); err != nil {
			return err
		}

		s.install(st)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := *price
	return &out, nil
}

// GetClient returns a copy of the client.
func (s *LedgerStore) GetClient(_ context.Context, id string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.state.client(id)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// ListClients returns copies of all clients in insertion order.
func (s *LedgerStore) ListClients(_ context.Context) []*domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Client, 0, len(s.state.clients))
	for _, c := range s.state.clients {
		out = append(out, c.Clone())
	}
	return out
}

// ListEvents returns the client's sales and payments in statement order.
func (s *LedgerStore) ListEvents(_ context.Context, clientID string) ([]domain.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.state.client(clientID); err != nil {
		return nil, err
	}
	return s.state.eventsFor(clientID), nil
}

// ClientLedger returns a client and its events read under one lock, so the
// events always account for the returned balance.
func (s *LedgerStore) ClientLedger(_ context.Context, clientID string) (domain.Client, []domain.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.state.client(clientID)
	if err != nil {
		return domain.Client{}, nil, err
	}
	return *c, s.state.eventsFor(clientID), nil
}

// AllEvents returns every sale and payment in statement order.
func (s *LedgerStore) AllEvents(_ context.Context) []domain.LedgerEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.eventsFor("")
}

// ListDailyPrices returns the daily prices in insertion order.
func (s *LedgerStore) ListDailyPrices(_ context.Context) []domain.DailyPrice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DailyPrice, 0, len(s.state.prices))
	for _, p := range s.state.prices {
		out = append(out, *p)
	}
	return out
}

func (s *LedgerStore) mutate(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.write.Lock()
	defer s.write.Unlock()

	start := time.Now()
	err := s.retrier.Retry(ctx, func() error { return fn(ctx) })
	s.metrics.ObserveMutation(operation, err, time.Since(start))

	if errors.Is(err, domain.ErrVersionConflict) {
		s.logger.Error().Err(err).Str("operation", operation).Msg("mutation abandoned after repeated version conflicts")
	}
	return err
}

func (s *LedgerStore) save(ctx context.Context, st *ledgerState, key string, records []json.RawMessage) error {
	expected := st.versions[key]
	version, err := s.repo.Save(ctx, key, records, expected)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.metrics.IncVersionConflict(key)
			s.logger.Warn().
				Str("collection", key).
				Int64("expected_version", expected).
				Msg("version conflict, retrying")
		}
		return err
	}
	st.versions[key] = version
	return nil
}

func (s *LedgerStore) saveClients(ctx context.Context, st *ledgerState) error {
	records, err := encodeRecords(st.clients, clientToRecord)
	if err != nil {
		return err
	}
	return s.save(ctx, st, CollectionClients, records)
}

// claimSeq reserves the next event sequence number through the shared
// counter. A number whose event is never saved is simply skipped.
func (s *LedgerStore) claimSeq(ctx context.Context, st *ledgerState) (int64, error) {
	seq := st.nextSeq()
	record, err := json.Marshal(sequenceRecord{Last: seq})
	if err != nil {
		return 0, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := s.save(ctx, st, CollectionSequence, []json.RawMessage{record}); err != nil {
		return 0, err
	}
	st.lastSeq = seq
	return seq, nil
}

// syncSnapshot writes the client snapshot after an event append. The event
// is already durable, so failures here are logged and left for the next
// reload, which re-derives every balance from the events anyway.
func (s *LedgerStore) syncSnapshot(ctx context.Context, st *ledgerState) {
	err := s.saveClients(ctx, st)
	for attempt := 1; err != nil && errors.Is(err, domain.ErrVersionConflict) && attempt < DefaultMaxAttempts; attempt++ {
		var fresh *ledgerState
		fresh, err = s.loadState(ctx)
		if err != nil {
			break
		}
		err = s.saveClients(ctx, fresh)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("client snapshot not written; it will be re-derived on reload")
	}
}

// loadState reads every collection and re-derives client totals from the
// event log, repairing any snapshot drift in the returned state.
func (s *LedgerStore) loadState(ctx context.Context) (*ledgerState, error) {
	st := newLedgerState()

	load := func(key string) (domain.Collection, error) {
		col, err := s.repo.Load(ctx, key)
		if err != nil {
			return domain.Collection{}, fmt.Errorf("failed to load %s: %w", key, err)
		}
		st.versions[key] = col.Version
		return col, nil
	}

	clients, err := load(CollectionClients)
	if err != nil {
		return nil, err
	}
	sales, err := load(CollectionSales)
	if err != nil {
		return nil, err
	}
	payments, err := load(CollectionPayments)
	if err != nil {
		return nil, err
	}
	prices, err := load(CollectionDailyPrices)
	if err != nil {
		return nil, err
	}
	sequence, err := load(CollectionSequence)
	if err != nil {
		return nil, err
	}

	decodedClients, err := decodeRecords(CollectionClients, clients.Records, clientRecord.toDomain)
	if err != nil {
		return nil, err
	}
	for _, c := range decodedClients {
		st.addClient(c)
	}
	if st.sales, err = decodeRecords(CollectionSales, sales.Records, saleRecord.toDomain); err != nil {
		return nil, err
	}
	if st.payments, err = decodeRecords(CollectionPayments, payments.Records, paymentRecord.toDomain); err != nil {
		return nil, err
	}
	if st.prices, err = decodeRecords(CollectionDailyPrices, prices.Records, priceRecord.toDomain); err != nil {
		return nil, err
	}
	if st.lastSeq, err = decodeSequence(sequence.Records); err != nil {
		return nil, err
	}

	s.rederive(st)
	return st, nil
}

func (s *LedgerStore) rederive(st *ledgerState) {
	events := make(map[string][]domain.LedgerEvent, len(st.clients))
	for _, e := range st.eventsFor("") {
		if _, ok := st.byID[e.ClientID]; !ok {
			s.logger.Warn().Str("event_id", e.ID).Str("client_id", e.ClientID).Msg("event references unknown client")
			continue
		}
		events[e.ClientID] = append(events[e.ClientID], e)
	}

	for _, c := range st.clients {
		totals := domain.DeriveTotals(events[c.ID])
		if c.Matches(totals) {
			continue
		}
		s.metrics.IncSnapshotDrift()
		s.logger.Warn().
			Str("client_id", c.ID).
			Str("stored_balance", c.Balance.String()).
			Str("derived_balance", totals.Balance().String()).
			Msg("client snapshot drifted from events; using derived totals")
		c.SetTotals(totals)
	}
}

func (s *LedgerStore) install(st *ledgerState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	var outstanding domain.Money
	for _, c := range st.clients {
		outstanding = outstanding.Add(c.Balance)
	}
	s.metrics.SetLedgerTotals(len(st.clients), outstanding)
}

func (s *LedgerStore) notify(ctx context.Context, notice domain.TransactionNotice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notice); err != nil {
		s.logger.Error().
			Err(err).
			Str("client_id", notice.ClientID).
			Str("kind", notice.Kind).
			Msg("failed to send transaction notice")
	}
}

func (s *LedgerStore) today() domain.Date {
	return domain.DateOf(s.clock())
}

func trimProfile(p domain.ClientProfile) domain.ClientProfile {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return domain.ClientProfile{
		Name:    trim(p.Name),
		Contact: trim(p.Contact),
		Address: trim(p.Address),
	}
}

type attemptRetrier struct {
	attempts int
}

func (r attemptRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = operation(); !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

type nopMetrics struct{}

func (nopMetrics) ObserveMutation(string, error, time.Duration) {}
func (nopMetrics) IncVersionConflict(string)                    {}
func (nopMetrics) IncSnapshotDrift()                            {}
func (nopMetrics) SetLedgerTotals(int, domain.Money)            {}
