package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers branch on these with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrOverpayment   = errors.New("payment exceeds outstanding balance")
	ErrDuplicateDate = errors.New("daily price already exists for date")

	// ErrVersionConflict is returned by a collection store when the stored
	// version moved past the one the caller loaded.
	ErrVersionConflict = errors.New("collection modified concurrently")

	// ErrInconsistentLedger is returned when a rebuilt statement does not
	// close at the client's stored balance.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: statement does not match client balance")
)

var (
	// Client errors
	ErrClientNotFound = fmt.Errorf("client %w", ErrNotFound)
	ErrEmptyName      = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrEmptyContact   = fmt.Errorf("%w: contact cannot be empty", ErrValidation)

	// Sale and payment errors
	ErrInvalidQuantity  = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrInvalidUnitPrice = fmt.Errorf("%w: unit price must be positive", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrMissingDate      = fmt.Errorf("%w: date is required", ErrValidation)

	// ErrSaleTotalTooSmall rejects a sale whose quantity and price are both
	// positive but whose total rounds to less than one minor currency unit.
	ErrSaleTotalTooSmall = fmt.Errorf("%w: sale total is less than the smallest currency unit", ErrValidation)

	// Daily price errors
	ErrInvalidPrice  = fmt.Errorf("%w: price must be positive", ErrValidation)
	ErrEmptySupplier = fmt.Errorf("%w: supplier cannot be empty", ErrValidation)
	ErrPriceNotFound = fmt.Errorf("daily price %w", ErrNotFound)
)
