package fake

import "github.com/gavelchain/gavel/core/access"

// Identity is a fake implementation of an identity.
//
// - implements access.Identity
type Identity struct {
	name string
	err  error
}

// NewIdentity returns a fake identity with the given name.
func NewIdentity(name string) Identity {
	return Identity{name: name}
}

// NewBadIdentity returns a fake identity that fails to marshal.
func NewBadIdentity() Identity {
	return Identity{name: "bad", err: fakeErr}
}

// Equal implements access.Identity.
func (ident Identity) Equal(other access.Identity) bool {
	o, ok := other.(Identity)

	return ok && o.name == ident.name
}

// MarshalText implements encoding.TextMarshaler.
func (ident Identity) MarshalText() ([]byte, error) {
	return []byte(ident.name), ident.err
}

// String implements fmt.Stringer.
func (ident Identity) String() string {
	return ident.name
}
