package store

import "errors"

// Arithmetic preconditions are enforced inside the store, under the same lock
// or transaction as the mutation they guard, and surface as these errors.
// The service translates them into coded domain errors.
var (
	ErrCapExceeded           = errors.New("cap exceeded")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)
