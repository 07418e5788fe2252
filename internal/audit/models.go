package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is emitted from domain logic to capture privileged actions: role
// reassignment, denylist flips, mints, and governance scheduling. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Action names. One stable string per privileged mutation so downstream
// consumers can filter without parsing detail text.
const (
	ActionPrimaryAdminChanged        = "roles.primary_admin.changed"
	ActionMintingAdminChanged        = "roles.minting_admin.changed"
	ActionGovernanceAuthorityChanged = "roles.governance_authority.changed"
	ActionDenylistSet                = "denylist.set"
	ActionDenylistCleared            = "denylist.cleared"
	ActionMint                       = "ledger.mint"
	ActionGovernanceScheduled        = "governance.scheduled"
	ActionGovernanceExecuted         = "governance.executed"
	ActionGovernanceCancelled        = "governance.cancelled"
	ActionLogicPointerChanged        = "governance.logic_pointer.changed"
)
