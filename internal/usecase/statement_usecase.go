package usecase

import (
	"context"

	"github.com/iho/creditbook/internal/domain"
)

// StatementUseCase builds client statements from the ledger.
type StatementUseCase struct {
	ledger LedgerReader
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(ledger LedgerReader) *StatementUseCase {
	return &StatementUseCase{ledger: ledger}
}

// BuildStatement returns the client's statement. The statement's closing
// balance is checked against the client's stored balance and a mismatch
// fails with domain.ErrInconsistentLedger.
func (uc *StatementUseCase) BuildStatement(ctx context.Context, clientID string) (*domain.Statement, error) {
	client, events, err := uc.ledger.ClientLedger(ctx, clientID)
	if err != nil {
		return nil, err
	}

	statement := domain.NewStatement(client, events)
	if err := statement.Verify(); err != nil {
		return nil, err
	}

	return statement, nil
}
