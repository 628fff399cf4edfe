// Package access defines the interfaces for the access rights control.
//
// The execution environment guarantees a tamper-proof caller identity,
// so an identity here is an opaque account address rather than a
// cryptographic key. The service decides whether an identity matches a
// credential previously granted in the ledger state.
package access

import (
	"encoding"

	"github.com/gavelchain/gavel/core/store"
)

// Identity is an abstraction to uniquely identify a caller.
type Identity interface {
	encoding.TextMarshaler

	// Equal returns true when the other identity designates the same
	// caller.
	Equal(other Identity) bool

	// String returns a human readable representation of the identity.
	String() string
}

// Credential is an abstraction of an access control credential: who owns
// it may perform the associated rule.
type Credential interface {
	// GetID returns the identifier of the credential.
	GetID() []byte

	// GetRule returns the rule that is targeted by the credential.
	GetRule() string
}

// Service is an access control service. It manages the granted accesses
// inside the ledger state and matches identities against them.
type Service interface {
	// Match returns nil when the identity can be matched with the
	// credential inside the given store.
	Match(store store.Readable, creds Credential, idents ...Identity) error

	// Grant updates the store so that the identities will match the
	// credential.
	Grant(store store.Snapshot, creds Credential, idents ...Identity) error
}
