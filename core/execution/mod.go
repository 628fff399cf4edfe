// Package execution defines the primitives to execute a transaction
// against the ledger state.
//
// A step carries, besides the transaction itself, the call context the
// platform supplies on every execution: the ledger time of the call. The
// caller identity travels inside the transaction.
package execution

import (
	"time"

	"github.com/gavelchain/gavel/core/store"
	"github.com/gavelchain/gavel/core/txn"
)

// Step is the input of a contract execution.
type Step struct {
	// Current is the transaction being executed.
	Current txn.Transaction

	// Timestamp is the ledger time at which the transaction executes.
	// Every time-dependent decision of a contract must use this value
	// and never the wall clock, so that executions stay deterministic.
	Timestamp time.Time
}

// Result is the result of a transaction execution.
type Result struct {
	// Accepted is the success state of the transaction.
	Accepted bool

	// Message gives a chance to the execution to explain why a
	// transaction has failed.
	Message string
}

// Service is the execution service that defines the primitives to
// execute a transaction.
type Service interface {
	// Execute must apply the transaction to the snapshot and return the
	// result of it.
	Execute(snap store.Snapshot, step Step) (Result, error)
}
