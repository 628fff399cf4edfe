package bank

import (
	"math"
	"testing"

	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/internal/testing/fake"
	"github.com/stretchr/testify/require"
)

func TestService_Balance(t *testing.T) {
	srvc := NewService()
	snap := fake.NewSnapshot()

	alice := access.NewAddress("alice")

	balance, err := srvc.Balance(snap, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(0), balance)

	require.NoError(t, srvc.Deposit(snap, alice, 100))

	balance, err = srvc.Balance(snap, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance)

	_, err = srvc.Balance(snap, nil)
	require.EqualError(t, err, "missing account identity")

	_, err = srvc.Balance(fake.NewBadSnapshot(), alice)
	require.EqualError(t, err, fake.Err("failed to read balance"))

	_, err = srvc.Balance(snap, fake.NewBadIdentity())
	require.EqualError(t, err, fake.Err("failed to marshal identity"))

	require.NoError(t, snap.Set([]byte(Prefix+"alice"), []byte("oops")))

	_, err = srvc.Balance(snap, alice)
	require.EqualError(t, err, "malformed balance of 4 bytes")
}

func TestService_Deposit(t *testing.T) {
	srvc := NewService()
	snap := fake.NewSnapshot()

	alice := access.NewAddress("alice")

	require.NoError(t, srvc.Deposit(snap, alice, math.MaxUint64))

	err := srvc.Deposit(snap, alice, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "balance overflow")

	err = srvc.Deposit(fake.NewBadSnapshot(), alice, 1)
	require.EqualError(t, err, fake.Err("failed to read balance"))

	bad := fake.NewSnapshot()
	bad.ErrWrite = fake.GetError()

	err = srvc.Deposit(bad, alice, 1)
	require.EqualError(t, err, fake.Err("failed to write balance"))
}

func TestService_Transfer(t *testing.T) {
	srvc := NewService()
	snap := fake.NewSnapshot()

	alice := access.NewAddress("alice")
	bob := access.NewAddress("bob")

	require.NoError(t, srvc.Deposit(snap, alice, 100))
	require.NoError(t, srvc.Transfer(snap, alice, bob, 60))

	balance, err := srvc.Balance(snap, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(40), balance)

	balance, err = srvc.Balance(snap, bob)
	require.NoError(t, err)
	require.Equal(t, uint64(60), balance)

	err = srvc.Transfer(snap, alice, bob, 41)
	require.EqualError(t, err, "insufficient balance of alice: 40 < 41")

	// The destination overflow is detected before any write.
	require.NoError(t, srvc.Deposit(snap, bob, math.MaxUint64-60))

	err = srvc.Transfer(snap, alice, bob, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "balance overflow")

	balance, err = srvc.Balance(snap, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(40), balance)

	err = srvc.Transfer(snap, nil, bob, 1)
	require.EqualError(t, err, "missing account identity")

	err = srvc.Transfer(snap, alice, fake.NewBadIdentity(), 1)
	require.EqualError(t, err, fake.Err("failed to marshal identity"))

	err = srvc.Transfer(fake.NewBadSnapshot(), alice, bob, 1)
	require.EqualError(t, err, fake.Err("failed to read balance"))
}
