package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxContactLength     = 64
	MaxAddressLength     = 1024
	MaxDescriptionLength = 1024
	MaxSupplierLength    = 255
)

// ValidateClientName validates a client name
func ValidateClientName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return ErrEmptyName
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLength)
	}

	return nil
}

// ValidateContact validates a client contact (phone number or similar)
func ValidateContact(contact string) error {
	contact = strings.TrimSpace(contact)

	if contact == "" {
		return ErrEmptyContact
	}

	if utf8.RuneCountInString(contact) > MaxContactLength {
		return fmt.Errorf("%w: contact exceeds %d characters", ErrValidation, MaxContactLength)
	}

	return nil
}

// ValidateAddress validates an optional address
func ValidateAddress(address string) error {
	if utf8.RuneCountInString(address) > MaxAddressLength {
		return fmt.Errorf("%w: address exceeds %d characters", ErrValidation, MaxAddressLength)
	}
	return nil
}

// ValidateDescription validates an optional free-text description
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}
	return nil
}

// ValidateProfile validates the fields set in a profile edit
func ValidateProfile(p ClientProfile) error {
	if p.Name != nil {
		if err := ValidateClientName(*p.Name); err != nil {
			return err
		}
	}
	if p.Contact != nil {
		if err := ValidateContact(*p.Contact); err != nil {
			return err
		}
	}
	if p.Address != nil {
		if err := ValidateAddress(*p.Address); err != nil {
			return err
		}
	}
	return nil
}
