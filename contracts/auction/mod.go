// Package auction implements a native contract that runs a single-asset
// English auction: monotonically increasing bids with a floor price and
// a minimum increment, a deadline that extends itself under late
// contention, an explicit close after expiry, and the settlement of the
// escrowed funds to the losing bidders and the operator.
//
// The execution environment supplies the caller identity, the ledger
// time and the atomic state commit; value transfer goes through the bank
// collaborator so that an operation either fully applies or leaves no
// trace.
package auction

import (
	"io"
	"time"

	"github.com/gavelchain/gavel"
	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/core/bank"
	"github.com/gavelchain/gavel/core/execution"
	"github.com/gavelchain/gavel/core/execution/native"
	"github.com/gavelchain/gavel/core/store"
	"github.com/gavelchain/gavel/serde"
	"github.com/gavelchain/gavel/serde/json"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"
)

// commands defines the commands of the auction contract. This interface
// helps in testing the contract.
type commands interface {
	open(snap store.Snapshot, step execution.Step) error
	bid(snap store.Snapshot, step execution.Step) error
	close(snap store.Snapshot, step execution.Step) error
	winner(snap store.Snapshot) error
	list(snap store.Snapshot) error
	settle(snap store.Snapshot, step execution.Step) error
}

const (
	// ContractName is the name of the contract.
	ContractName = "github.com/gavelchain/gavel.Auction"

	// ContractUID is the unique 4-byte identifier of the contract, used
	// as the prefix of its keys in the ledger state.
	ContractUID = "GAVL"

	// ValueArg is the argument's name in the transaction that contains
	// the bid value, as a decimal string of token units.
	ValueArg = "auction:value"

	// CmdArg is the argument's name to indicate the kind of command we
	// want to run on the contract. Should be one of the Command type.
	CmdArg = "auction:command"

	// credentialAllCommand defines the credential command that is
	// allowed to perform all commands.
	credentialAllCommand = "all"
)

// Command defines a type of command for the auction contract.
type Command string

const (
	// CmdOpen defines the command to create the auction. It can run only
	// once; the caller becomes the operator.
	CmdOpen Command = "OPEN"

	// CmdBid defines the command to place a bid.
	CmdBid Command = "BID"

	// CmdClose defines the command to close the auction once expired.
	CmdClose Command = "CLOSE"

	// CmdWinner defines the command to display the winner once the
	// auction is closed.
	CmdWinner Command = "WINNER"

	// CmdList defines the command to display the full bid log.
	CmdList Command = "LIST"

	// CmdSettle defines the command to pay out the losing bidders and
	// the operator commissions.
	CmdSettle Command = "SETTLE"
)

// Config holds the auction constants fixed at creation. None of them can
// be reconfigured afterwards.
type Config struct {
	// FloorPrice is the minimum admissible bid value.
	FloorPrice uint64

	// Duration is the initial length of the bidding interval.
	Duration time.Duration

	// ExtensionWindow is the trailing interval before the deadline in
	// which an admitted bid pushes the deadline out.
	ExtensionWindow time.Duration

	// ExtensionAmount is the duration added to the deadline on
	// extension.
	ExtensionAmount time.Duration

	// IncrementFraction is the minimum relative step over the current
	// price for a bid to be admitted.
	IncrementFraction decimal.Decimal

	// CommissionFraction is the fraction of a losing bid retained by the
	// operator on settlement.
	CommissionFraction decimal.Decimal
}

// DefaultConfig returns the auction constants of the reference
// deployment: 5% increment, 2% commission, 10 minute extension window
// and amount.
func DefaultConfig(floor uint64, duration time.Duration) Config {
	return Config{
		FloorPrice:         floor,
		Duration:           duration,
		ExtensionWindow:    10 * time.Minute,
		ExtensionAmount:    10 * time.Minute,
		IncrementFraction:  decimal.New(5, -2),
		CommissionFraction: decimal.New(2, -2),
	}
}

// Validate returns an error when the configuration cannot describe a
// well-formed auction.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return xerrors.Errorf("duration must be positive, got %v", c.Duration)
	}

	if c.ExtensionWindow <= 0 || c.ExtensionAmount <= 0 {
		return xerrors.New("extension window and amount must be positive")
	}

	one := decimal.New(1, 0)

	if !c.IncrementFraction.IsPositive() || c.IncrementFraction.GreaterThanOrEqual(one) {
		return xerrors.Errorf("increment fraction must be in (0,1), got %v", c.IncrementFraction)
	}

	if !c.CommissionFraction.IsPositive() || c.CommissionFraction.GreaterThanOrEqual(one) {
		return xerrors.Errorf("commission fraction must be in (0,1), got %v", c.CommissionFraction)
	}

	return nil
}

// NewCreds creates new credentials for an auction contract execution.
func NewCreds(id []byte) access.Credential {
	return access.NewContractCreds(id, ContractName, credentialAllCommand)
}

// RegisterContract registers the auction contract to the given execution
// service.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// EscrowAccount returns the bank account holding the funds escrowed by
// the contract.
func EscrowAccount() access.Address {
	return access.NewAddress("contract:" + ContractName)
}

// Contract is the auction ledger contract.
//
// - implements native.Contract
type Contract struct {
	// cfg holds the constants frozen into the state by OPEN.
	cfg Config

	// access is the access control service managing this contract.
	access access.Service

	// accessKey is the credential identifier of the operator guard. No
	// public command uses it; it is reserved for future operator-only
	// commands.
	accessKey []byte

	// bank moves the escrowed value around.
	bank bank.Bank

	// context is the serialization context of the state messages.
	context serde.Context

	// cmd provides the commands that can be executed by this contract.
	cmd commands

	// printer is the output used by the WINNER and LIST commands.
	printer io.Writer
}

// NewContract creates a new auction contract.
func NewContract(cfg Config, aKey []byte, srvc access.Service, bk bank.Bank) Contract {
	contract := Contract{
		cfg:       cfg,
		access:    srvc,
		accessKey: aKey,
		bank:      bk,
		context:   json.NewContext(),
		printer:   infoLog{},
	}

	contract.cmd = auctionCommand{Contract: &contract}

	return contract
}

// UID implements native.Contract. It returns the unique identifier of
// the contract.
func (c Contract) UID() string {
	return ContractUID
}

// Execute implements native.Contract. It runs the appropriate command.
func (c Contract) Execute(snap store.Snapshot, step execution.Step) error {
	cmd := step.Current.GetArg(CmdArg)
	if len(cmd) == 0 {
		return xerrors.Errorf("'%s' not found in tx arg", CmdArg)
	}

	switch Command(cmd) {
	case CmdOpen:
		err := c.cmd.open(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to OPEN: %v", err)
		}
	case CmdBid:
		err := c.cmd.bid(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to BID: %v", err)
		}
	case CmdClose:
		err := c.cmd.close(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to CLOSE: %v", err)
		}
	case CmdWinner:
		err := c.cmd.winner(snap)
		if err != nil {
			return xerrors.Errorf("failed to WINNER: %v", err)
		}
	case CmdList:
		err := c.cmd.list(snap)
		if err != nil {
			return xerrors.Errorf("failed to LIST: %v", err)
		}
	case CmdSettle:
		err := c.cmd.settle(snap, step)
		if err != nil {
			return xerrors.Errorf("failed to SETTLE: %v", err)
		}
	default:
		return xerrors.Errorf("unknown command: %s", cmd)
	}

	return nil
}

// onlyOperator returns nil when the identity has been granted the
// operator credential. The check is currently attached to no command; it
// is the guard a future operator-only command would use.
func (c Contract) onlyOperator(str store.Readable, ident access.Identity) error {
	err := c.access.Match(str, NewCreds(c.accessKey), ident)
	if err != nil {
		return xerrors.Errorf("identity not authorized: %v (%v)", ident, err)
	}

	return nil
}

// infoLog defines an output using zerolog
//
// - implements io.Writer
type infoLog struct{}

func (h infoLog) Write(p []byte) (int, error) {
	gavel.Logger.Info().Msg(string(p))

	return len(p), nil
}
