// Package store defines the primitives of the ledger state storage.
//
// A snapshot is the view of the ledger state a contract execution is
// given. The platform, not the contract, decides when and how the
// snapshot is committed.
package store

// Readable is the interface for a readable store.
type Readable interface {
	Get(key []byte) ([]byte, error)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and written
// independently. A write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}

// Transaction is a generic interface that store implementations can use
// to provide atomicity.
type Transaction interface {
	// OnCommit adds a callback to be executed after the transaction
	// successfully commits.
	OnCommit(func())
}
