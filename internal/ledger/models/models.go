package models

import (
	"github.com/holiman/uint256"

	"caplock/pkg/domain"
)

// DefaultCap is the fixed total-supply ceiling: one billion whole units at 18
// decimals. Minting may never push totalSupply above it. Deployments override
// it only through config, and only before initialization.
var DefaultCap = uint256.MustFromDecimal("1000000000000000000000000000")

// AllowanceKey identifies a delegated-spend grant.
type AllowanceKey struct {
	Owner   domain.Address
	Spender domain.Address
}

// Supply bundles the two supply-side quantities every query returns together.
// Invariants: Total ≤ Cap, and Total equals the sum of all balances. Total
// never decreases: no burn path exists in this design.
type Supply struct {
	Total *uint256.Int `json:"total"`
	Cap   *uint256.Int `json:"cap"`
}
