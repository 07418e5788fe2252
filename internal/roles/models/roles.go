package models

import "caplock/pkg/domain"

// Role is a named capability held by exactly one address at a time.
type Role string

const (
	// RolePrimaryAdmin may manage the denylist and designate the
	// governance authority.
	RolePrimaryAdmin Role = "primary_admin"
	// RoleMintingAdmin is the only principal that may mint.
	RoleMintingAdmin Role = "minting_admin"
	// RoleGovernanceAuthority gates role reassignment and logic-pointer
	// replacement. In production it is the timelock's own address.
	RoleGovernanceAuthority Role = "governance_authority"
)

// Registry is the aggregate holding the three role addresses.
//
// Invariant: once initialized, none of the three is ever the null address.
// Mutations go through the store's Execute callback so validation and the
// write happen under one lock.
type Registry struct {
	PrimaryAdmin        domain.Address `json:"primary_admin"`
	MintingAdmin        domain.Address `json:"minting_admin"`
	GovernanceAuthority domain.Address `json:"governance_authority"`
}

// Holder returns the current address for a role, or the null address for an
// unknown role.
func (r Registry) Holder(role Role) domain.Address {
	switch role {
	case RolePrimaryAdmin:
		return r.PrimaryAdmin
	case RoleMintingAdmin:
		return r.MintingAdmin
	case RoleGovernanceAuthority:
		return r.GovernanceAuthority
	default:
		return domain.ZeroAddress
	}
}

// Valid reports whether every role holder is a real principal.
func (r Registry) Valid() bool {
	return !r.PrimaryAdmin.IsZero() && !r.MintingAdmin.IsZero() && !r.GovernanceAuthority.IsZero()
}
