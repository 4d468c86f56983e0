package idgen

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator produces lexically sortable ids for clients, events and prices.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string. ulid.Make is safe for concurrent use.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
