// Package plain implements a plain transaction. The platform
// authenticates the caller, so the transaction carries the identity
// without a signature and gets a unique identifier from a globally
// ordered id generator.
package plain

import (
	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/core/txn"
	"github.com/rs/xid"
	"golang.org/x/xerrors"
)

// Transaction is a plain transaction with an authenticated identity and
// a set of arguments.
//
// - implements txn.Transaction
type Transaction struct {
	id       []byte
	nonce    uint64
	identity access.Identity
	args     map[string][]byte
}

// TransactionOption is the type of options to create a transaction.
type TransactionOption func(*Transaction)

// WithArg is an option to set an argument with the key and the value.
func WithArg(key string, value []byte) TransactionOption {
	return func(tx *Transaction) {
		tx.args[key] = value
	}
}

// NewTransaction creates a new transaction with the provided nonce and
// identity.
func NewTransaction(nonce uint64, ident access.Identity, opts ...TransactionOption) (Transaction, error) {
	if ident == nil {
		return Transaction{}, xerrors.New("missing identity")
	}

	tx := Transaction{
		id:       xid.New().Bytes(),
		nonce:    nonce,
		identity: ident,
		args:     make(map[string][]byte),
	}

	for _, opt := range opts {
		opt(&tx)
	}

	return tx, nil
}

// GetID implements txn.Transaction. It returns the unique identifier of
// the transaction.
func (t Transaction) GetID() []byte {
	return append([]byte{}, t.id...)
}

// GetNonce implements txn.Transaction. It returns the nonce.
func (t Transaction) GetNonce() uint64 {
	return t.nonce
}

// GetIdentity implements txn.Transaction. It returns the identity of the
// caller.
func (t Transaction) GetIdentity() access.Identity {
	return t.identity
}

// GetArgs returns the list of argument keys available.
func (t Transaction) GetArgs() []string {
	args := make([]string, 0, len(t.args))
	for key := range t.args {
		args = append(args, key)
	}

	return args
}

// GetArg implements txn.Transaction. It returns the value of the
// argument if it is set, otherwise nil.
func (t Transaction) GetArg(key string) []byte {
	return t.args[key]
}

// Manager is a manager to create transactions for a fixed identity. It
// increments the nonce by itself.
//
// - implements txn.Manager
type Manager struct {
	identity access.Identity
	nonce    uint64
}

// NewManager creates a new transaction manager for the identity.
func NewManager(ident access.Identity) *Manager {
	return &Manager{identity: ident}
}

// Make implements txn.Manager. It creates a transaction populated with
// the arguments.
func (mgr *Manager) Make(args ...txn.Arg) (txn.Transaction, error) {
	opts := make([]TransactionOption, len(args))
	for i, arg := range args {
		opts[i] = WithArg(arg.Key, arg.Value)
	}

	tx, err := NewTransaction(mgr.nonce, mgr.identity, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create tx: %v", err)
	}

	mgr.nonce++

	return tx, nil
}
