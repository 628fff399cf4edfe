// Package bank defines the value-transfer collaborator of the ledger.
//
// Balances are part of the ledger state itself, so a transfer is as
// atomic as the snapshot it is applied to. The platform environment this
// models guarantees deterministic arithmetic: any operation that would
// overflow or overdraw fails closed and leaves the state untouched.
package bank

import (
	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/core/store"
)

// Bank manages the token balances of the ledger accounts.
type Bank interface {
	// Balance returns the current balance of the account, with a zero
	// balance for an account never seen before.
	Balance(str store.Readable, account access.Identity) (uint64, error)

	// Deposit credits the account with the amount.
	Deposit(snap store.Snapshot, account access.Identity, amount uint64) error

	// Transfer moves the amount from one account to the other. It fails
	// without any effect when the source balance is insufficient or the
	// destination balance would overflow.
	Transfer(snap store.Snapshot, from, to access.Identity, amount uint64) error
}
