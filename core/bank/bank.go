package bank

import (
	"encoding/binary"
	"math"

	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/core/store"
	"golang.org/x/xerrors"
)

// Prefix is the namespace of the account balances inside the ledger
// state.
const Prefix = "bank:"

// Service is a bank keeping the account balances inside the ledger
// state, one 8-byte big-endian amount per account key.
//
// - implements bank.Bank
type Service struct{}

// NewService creates a new bank service.
func NewService() Service {
	return Service{}
}

// Balance implements bank.Bank. It returns the balance of the account.
func (srvc Service) Balance(str store.Readable, account access.Identity) (uint64, error) {
	key, err := accountKey(account)
	if err != nil {
		return 0, err
	}

	return readBalance(str, key)
}

// Deposit implements bank.Bank. It credits the account with the amount.
func (srvc Service) Deposit(snap store.Snapshot, account access.Identity, amount uint64) error {
	key, err := accountKey(account)
	if err != nil {
		return err
	}

	balance, err := readBalance(snap, key)
	if err != nil {
		return err
	}

	total, err := checkedAdd(balance, amount)
	if err != nil {
		return xerrors.Errorf("deposit to %v: %v", account, err)
	}

	return writeBalance(snap, key, total)
}

// Transfer implements bank.Bank. It moves the amount between the two
// accounts, failing closed when the source is short or the destination
// would overflow.
func (srvc Service) Transfer(snap store.Snapshot, from, to access.Identity, amount uint64) error {
	fromKey, err := accountKey(from)
	if err != nil {
		return err
	}

	toKey, err := accountKey(to)
	if err != nil {
		return err
	}

	fromBalance, err := readBalance(snap, fromKey)
	if err != nil {
		return err
	}

	if fromBalance < amount {
		return xerrors.Errorf("insufficient balance of %v: %d < %d", from, fromBalance, amount)
	}

	toBalance, err := readBalance(snap, toKey)
	if err != nil {
		return err
	}

	total, err := checkedAdd(toBalance, amount)
	if err != nil {
		return xerrors.Errorf("transfer to %v: %v", to, err)
	}

	err = writeBalance(snap, fromKey, fromBalance-amount)
	if err != nil {
		return err
	}

	return writeBalance(snap, toKey, total)
}

func accountKey(account access.Identity) ([]byte, error) {
	if account == nil {
		return nil, xerrors.New("missing account identity")
	}

	text, err := account.MarshalText()
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal identity: %v", err)
	}

	return append([]byte(Prefix), text...), nil
}

func readBalance(str store.Readable, key []byte) (uint64, error) {
	buffer, err := str.Get(key)
	if err != nil {
		return 0, xerrors.Errorf("failed to read balance: %v", err)
	}

	if len(buffer) == 0 {
		return 0, nil
	}

	if len(buffer) != 8 {
		return 0, xerrors.Errorf("malformed balance of %d bytes", len(buffer))
	}

	return binary.BigEndian.Uint64(buffer), nil
}

func writeBalance(snap store.Snapshot, key []byte, amount uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, amount)

	err := snap.Set(key, buffer)
	if err != nil {
		return xerrors.Errorf("failed to write balance: %v", err)
	}

	return nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, xerrors.Errorf("balance overflow: %d + %d", a, b)
	}

	return a + b, nil
}
