// Package txn defines the abstraction of transactions.
//
// A transaction is a contract input. It is uniquely identifiable and it
// carries the authenticated identity of its creator, which the contracts
// use for access control and for attributing bids and refunds.
package txn

import "github.com/gavelchain/gavel/core/access"

// Transaction is what triggers a contract execution by being passed as
// part of the input.
type Transaction interface {
	// GetID returns the unique identifier for the transaction.
	GetID() []byte

	// GetNonce returns the nonce of the transaction which corresponds to
	// the sequence number of a unique identity.
	GetNonce() uint64

	// GetIdentity returns the identity that created the transaction.
	GetIdentity() access.Identity

	// GetArg is a getter for the arguments of the transaction. It
	// returns nil if the key is not set.
	GetArg(key string) []byte
}

// Arg is a generic argument that can be stored in a transaction.
type Arg struct {
	Key   string
	Value []byte
}

// Manager is a helper to create transactions on behalf of a single
// identity, keeping track of the nonce.
type Manager interface {
	Make(args ...Arg) (Transaction, error)
}
