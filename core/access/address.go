// This file contains the address-based identity used by the auction
// ledger. The platform authenticates callers, so an address is all the
// contract ever sees of an identity.

package access

// Address is an account address supplied by the platform as the
// authenticated caller identity.
//
// - implements access.Identity
type Address struct {
	value string
}

// NewAddress returns the address for the given text representation.
func NewAddress(value string) Address {
	return Address{value: value}
}

// Equal implements access.Identity. It returns true when the other
// identity is the same address.
func (a Address) Equal(other Identity) bool {
	addr, ok := other.(Address)

	return ok && addr.value == a.value
}

// MarshalText implements encoding.TextMarshaler. It returns the textual
// representation of the address.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.value), nil
}

// String implements fmt.Stringer. It returns the address as a string.
func (a Address) String() string {
	return a.value
}
