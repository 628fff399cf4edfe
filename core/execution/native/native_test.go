package native

import (
	"testing"

	"github.com/gavelchain/gavel/core/execution"
	"github.com/gavelchain/gavel/core/store"
	"github.com/gavelchain/gavel/core/txn/plain"
	"github.com/gavelchain/gavel/internal/testing/fake"
	"github.com/stretchr/testify/require"
)

func TestService_Set(t *testing.T) {
	srvc := NewExecution()

	srvc.Set("abc", fakeContract{uid: "ABCD"})

	require.PanicsWithError(t, "contract 'abc' already registered", func() {
		srvc.Set("abc", fakeContract{uid: "EFGH"})
	})

	require.PanicsWithError(t, "contract UID '414243' for 'def' is not 4 bytes long", func() {
		srvc.Set("def", fakeContract{uid: "ABC"})
	})

	require.PanicsWithError(t, "contract UID '41424344' for 'def' already registered", func() {
		srvc.Set("def", fakeContract{uid: "ABCD"})
	})
}

func TestService_Execute(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeContract{uid: "ABCD"})
	srvc.Set("bad", fakeContract{uid: "EFGH", err: fake.GetError()})

	res, err := srvc.Execute(fake.NewSnapshot(), makeStep(t, "abc"))
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Empty(t, res.Message)

	res, err = srvc.Execute(fake.NewSnapshot(), makeStep(t, "bad"))
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.Equal(t, "fake error", res.Message)

	_, err = srvc.Execute(fake.NewSnapshot(), makeStep(t, "unknown"))
	require.EqualError(t, err, "unknown contract 'unknown'")
}

// -----------------------------------------------------------------------------
// Utility functions

func makeStep(t *testing.T, contract string) execution.Step {
	tx, err := plain.NewTransaction(0, fake.NewIdentity("alice"),
		plain.WithArg(ContractArg, []byte(contract)))
	require.NoError(t, err)

	return execution.Step{Current: tx}
}

// fakeContract is a fake native contract.
//
// - implements native.Contract
type fakeContract struct {
	uid string
	err error
}

func (c fakeContract) Execute(store.Snapshot, execution.Step) error {
	return c.err
}

func (c fakeContract) UID() string {
	return c.uid
}
