// Package denylist holds the set of accounts barred from every transfer and
// mint endpoint. The flag is consulted on the hot path of each ledger
// mutation, so implementations must keep lookups cheap.
package denylist

import (
	"context"

	"caplock/pkg/domain"
)

// Store abstracts the blocked-account set. The in-memory implementation backs
// unit tests and single-instance deployments; the Redis implementation shares
// the set across replicas.
type Store interface {
	// Set flips addr's blocked flag. Setting an already-set flag is a no-op.
	Set(ctx context.Context, addr domain.Address, blocked bool) error
	// IsBlocked reports whether addr is currently blocked. Unknown addresses
	// are not blocked.
	IsBlocked(ctx context.Context, addr domain.Address) (bool, error)
}
