package domain

import "fmt"

// RiskTier is a coarse reporting bucket for a client's balance.
type RiskTier string

const (
	RiskCleared RiskTier = "cleared"
	RiskActive  RiskTier = "active"
	RiskMedium  RiskTier = "medium_risk"
	RiskHigh    RiskTier = "high_risk"
)

// RiskThresholds are exclusive lower bounds for the medium and high tiers.
type RiskThresholds struct {
	Medium Money
	High   Money
}

// DefaultRiskThresholds returns 20,000 and 50,000 major units.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		Medium: NewMoney(20000),
		High:   NewMoney(50000),
	}
}

// Validate requires 0 < Medium < High.
func (t RiskThresholds) Validate() error {
	if !t.Medium.IsPositive() || !t.High.IsPositive() {
		return fmt.Errorf("%w: risk thresholds must be positive", ErrValidation)
	}
	if t.Medium >= t.High {
		return fmt.Errorf("%w: medium threshold %s must be below high threshold %s", ErrValidation, t.Medium, t.High)
	}
	return nil
}

// Classify maps a balance to its tier.
func (t RiskThresholds) Classify(balance Money) RiskTier {
	switch {
	case balance.IsZero():
		return RiskCleared
	case balance > t.High:
		return RiskHigh
	case balance > t.Medium:
		return RiskMedium
	default:
		return RiskActive
	}
}
