// Package domain defines the identifier types shared across modules.
//
// Address is kept as a small value type so that services and stores can pass
// it around without allocation and compare it with ==. The string form is the
// canonical lowercase hex representation ("0x" prefix, 40 hex digits), which
// is also what the HTTP layer and the SQL stores use.
package domain

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the number of bytes in an account address.
const AddressLength = 20

// Address identifies an account, an admin, or the governance authority.
// The zero value is the null address and is never a valid principal.
type Address [AddressLength]byte

// ZeroAddress is the null address. No role holder and no transfer endpoint
// may ever be the null address once the system is initialized.
var ZeroAddress Address

// ParseAddress decodes the canonical hex form. The "0x" prefix is optional
// and hex digits are case-insensitive.
func ParseAddress(s string) (Address, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(raw) != AddressLength*2 {
		return Address{}, fmt.Errorf("address must be %d hex digits, got %q", AddressLength*2, s)
	}
	var a Address
	if _, err := hex.Decode(a[:], []byte(raw)); err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return a, nil
}

// MustParseAddress is ParseAddress for fixtures and seeds; it panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether a is the null address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the canonical lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler so Address works as a JSON
// value and as a map key in JSON payloads.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for the SQL stores.
func (a Address) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for the SQL stores.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", src)
	}
}
