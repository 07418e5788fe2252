// Package models defines governance actions and the delayed operations that
// carry them. Role reassignment and logic-pointer replacement are variants of
// one Action type so there is a single audited path for control changes.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"caplock/pkg/domain"
)

// Kind tags a governance action.
type Kind string

const (
	KindSetPrimaryAdmin Kind = "set_primary_admin"
	KindSetMintingAdmin Kind = "set_minting_admin"
	KindSetLogicPointer Kind = "set_logic_pointer"
)

// Action is one control change: repointing a role or the replaceable-logic
// pointer at Target.
type Action struct {
	Kind   Kind           `json:"kind"`
	Target domain.Address `json:"target"`
}

// Validate rejects malformed actions before they enter the queue.
func (a Action) Validate() error {
	switch a.Kind {
	case KindSetPrimaryAdmin, KindSetMintingAdmin, KindSetLogicPointer:
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if a.Target.IsZero() {
		return fmt.Errorf("action target must not be the null address")
	}
	return nil
}

// OperationID is the hash of an action's payload. Scheduling the same payload
// twice yields the same ID, which is what makes replays detectable.
type OperationID [32]byte

// ComputeOperationID derives the ID from the canonical payload encoding.
func ComputeOperationID(a Action) OperationID {
	h := sha256.New()
	h.Write([]byte(a.Kind))
	h.Write([]byte{0})
	h.Write(a.Target[:])
	var id OperationID
	copy(id[:], h.Sum(nil))
	return id
}

func (id OperationID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText makes OperationID render as hex in JSON payloads.
func (id OperationID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *OperationID) UnmarshalText(text []byte) error {
	parsed, err := ParseOperationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseOperationID decodes the hex form.
func ParseOperationID(s string) (OperationID, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(OperationID{}) {
		return OperationID{}, fmt.Errorf("invalid operation id %q", s)
	}
	var id OperationID
	copy(id[:], raw)
	return id, nil
}

// State is an operation's lifecycle position. Ready is not stored: it is
// derived from ReadyAt against the current time.
type State string

const (
	StateProposed  State = "proposed"
	StateExecuted  State = "executed"
	StateCancelled State = "cancelled"
)

// Operation is a scheduled governance action.
type Operation struct {
	ID          OperationID `json:"id"`
	Action      Action      `json:"action"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	ReadyAt     time.Time   `json:"ready_at"`
	State       State       `json:"state"`
}

// ReadyBy reports whether the delay has elapsed at the given time.
func (o Operation) ReadyBy(now time.Time) bool {
	return !now.Before(o.ReadyAt)
}
