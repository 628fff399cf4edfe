// This file contains the state machine of the auction contract: bid
// admission, deadline extension, closing, and settlement accounting.

package auction

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/gavelchain/gavel"
	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/core/execution"
	"github.com/gavelchain/gavel/core/store"
	"github.com/gavelchain/gavel/core/store/prefixed"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"
)

// RejectReason explains why a command left the state untouched. The
// rejection paths are deliberately not errors: the call succeeds without
// effect, matching the silent no-op behavior of the platform contract,
// but the reason is logged and available to tests.
type RejectReason string

const (
	// Admitted is the empty reason of an accepted operation.
	Admitted RejectReason = ""

	// BelowFloor rejects a bid not strictly above the floor price.
	BelowFloor RejectReason = "below floor"

	// BelowCurrent rejects a bid not strictly above the current price.
	BelowCurrent RejectReason = "below current price"

	// BelowIncrement rejects a bid not strictly above the current price
	// plus the minimum increment.
	BelowIncrement RejectReason = "below minimum increment"

	// AuctionNotOpen rejects a bid placed outside the bidding interval
	// or after closure.
	AuctionNotOpen RejectReason = "auction not open"

	// InsufficientFunds rejects a bid whose value cannot be escrowed
	// from the bidder's account.
	InsufficientFunds RejectReason = "insufficient funds"

	// AuctionNotExpired ignores a close before the deadline.
	AuctionNotExpired RejectReason = "auction not expired"

	// AlreadyClosed ignores a close of an already closed auction.
	AlreadyClosed RejectReason = "already closed"

	// AuctionNotClosed ignores a settlement before closure.
	AuctionNotClosed RejectReason = "auction not closed"
)

// Winner is the decided outcome of the auction. Decided stays false
// until the auction is closed, so that "no bids" and "not closed yet"
// cannot be confused.
type Winner struct {
	Bidder  string
	Value   uint64
	Decided bool
}

// Admit returns the reason a bid of the given value at the given ledger
// time would be rejected, or Admitted when every admission predicate
// holds. The predicates are checked in the order of the original
// contract: floor, current price, minimum increment, bidding interval.
func Admit(a Auction, value uint64, now time.Time) RejectReason {
	if value <= a.FloorPrice {
		return BelowFloor
	}

	if value <= a.CurrentPrice {
		return BelowCurrent
	}

	// The increment is computed against the current price, not against
	// the incoming value.
	threshold := dec(a.CurrentPrice).Add(dec(a.CurrentPrice).Mul(a.IncrementFraction))
	if !dec(value).GreaterThan(threshold) {
		return BelowIncrement
	}

	if a.Closed || now.Unix() < a.StartTime || now.Unix() >= a.EndTime {
		return AuctionNotOpen
	}

	return Admitted
}

// CommissionOf returns the commission retained by the operator on a
// refund: the fraction of the amount, rounded down to a whole token
// unit.
func CommissionOf(amount uint64, fraction decimal.Decimal) uint64 {
	return dec(amount).Mul(fraction).Floor().BigInt().Uint64()
}

// auctionCommand implements the commands of the auction contract.
//
// - implements commands
type auctionCommand struct {
	*Contract
}

// open implements commands. It performs the OPEN command: it writes the
// initial auction state, exactly once, with the caller as operator.
func (c auctionCommand) open(snap store.Snapshot, step execution.Step) error {
	state := prefixed.NewSnapshot(ContractUID, snap)

	existing, err := state.Get(metaKey)
	if err != nil {
		return xerrors.Errorf("failed to read state: %v", err)
	}

	if len(existing) > 0 {
		return xerrors.New("auction already opened")
	}

	err = c.cfg.Validate()
	if err != nil {
		return xerrors.Errorf("invalid config: %v", err)
	}

	operator, err := step.Current.GetIdentity().MarshalText()
	if err != nil {
		return xerrors.Errorf("failed to marshal identity: %v", err)
	}

	now := step.Timestamp.Unix()

	a := Auction{
		Operator:           string(operator),
		FloorPrice:         c.cfg.FloorPrice,
		IncrementFraction:  c.cfg.IncrementFraction,
		CommissionFraction: c.cfg.CommissionFraction,
		StartTime:          now,
		EndTime:            now + int64(c.cfg.Duration/time.Second),
		ExtensionWindow:    int64(c.cfg.ExtensionWindow / time.Second),
		ExtensionAmount:    int64(c.cfg.ExtensionAmount / time.Second),
		CurrentPrice:       c.cfg.FloorPrice,
	}

	err = c.access.Grant(snap, NewCreds(c.accessKey), step.Current.GetIdentity())
	if err != nil {
		return xerrors.Errorf("failed to grant operator: %v", err)
	}

	err = c.saveAuction(state, a)
	if err != nil {
		return err
	}

	gavel.Logger.Info().Str("contract", ContractName).
		Msgf("auction opened by %s, floor %d, ends at %d", operator, a.FloorPrice, a.EndTime)

	return nil
}

// bid implements commands. It performs the BID command: it admits or
// silently ignores the bid, escrows the value on admission, and extends
// the deadline when the bid lands inside the extension window.
func (c auctionCommand) bid(snap store.Snapshot, step execution.Step) error {
	state := prefixed.NewSnapshot(ContractUID, snap)

	a, err := c.loadAuction(state)
	if err != nil {
		return err
	}

	raw := step.Current.GetArg(ValueArg)
	if len(raw) == 0 {
		return xerrors.Errorf("'%s' not found in tx arg", ValueArg)
	}

	value, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return xerrors.Errorf("failed to parse bid value: %v", err)
	}

	bidder, err := step.Current.GetIdentity().MarshalText()
	if err != nil {
		return xerrors.Errorf("failed to marshal identity: %v", err)
	}

	reason := Admit(a, value, step.Timestamp)
	if reason != Admitted {
		gavel.Logger.Debug().Str("contract", ContractName).
			Msgf("bid of %d by %s rejected: %s", value, bidder, reason)

		return nil
	}

	// The bid is admissible: escrow the value. A bidder that cannot fund
	// the bid is ignored like any other failed predicate.
	balance, err := c.bank.Balance(snap, step.Current.GetIdentity())
	if err != nil {
		return xerrors.Errorf("failed to read balance: %v", err)
	}

	if balance < value {
		gavel.Logger.Debug().Str("contract", ContractName).
			Msgf("bid of %d by %s rejected: %s", value, bidder, InsufficientFunds)

		return nil
	}

	err = c.bank.Transfer(snap, step.Current.GetIdentity(), EscrowAccount(), value)
	if err != nil {
		return xerrors.Errorf("failed to escrow bid: %v", err)
	}

	now := step.Timestamp.Unix()

	record := BidRecord{
		Bidder:    string(bidder),
		Value:     value,
		Timestamp: now,
	}

	err = c.appendBid(state, &a, record)
	if err != nil {
		return err
	}

	err = c.writeRefund(state, record.Bidder, value)
	if err != nil {
		return err
	}

	a.CurrentPrice = value
	a.HighestBidder = record.Bidder
	a.HighestValue = value

	err = c.appendEvent(state, &a, Event{
		Kind:      EventNewBid,
		Bidder:    record.Bidder,
		Value:     value,
		Timestamp: now,
	})
	if err != nil {
		return err
	}

	gavel.Logger.Info().Str("contract", ContractName).
		Msgf("new bid of %d by %s", value, bidder)

	if now >= a.EndTime-a.ExtensionWindow {
		a.EndTime += a.ExtensionAmount

		err = c.appendEvent(state, &a, Event{
			Kind:      EventExtended,
			EndTime:   a.EndTime,
			Timestamp: now,
		})
		if err != nil {
			return err
		}

		gavel.Logger.Info().Str("contract", ContractName).
			Msgf("auction extended to %d", a.EndTime)
	}

	return c.saveAuction(state, a)
}

// close implements commands. It performs the CLOSE command: once the
// deadline has passed it flips the closed flag, exactly once.
func (c auctionCommand) close(snap store.Snapshot, step execution.Step) error {
	state := prefixed.NewSnapshot(ContractUID, snap)

	a, err := c.loadAuction(state)
	if err != nil {
		return err
	}

	if a.Closed {
		gavel.Logger.Debug().Str("contract", ContractName).
			Msgf("close ignored: %s", AlreadyClosed)

		return nil
	}

	now := step.Timestamp.Unix()

	if now < a.EndTime {
		gavel.Logger.Debug().Str("contract", ContractName).
			Msgf("close ignored: %s", AuctionNotExpired)

		return nil
	}

	a.Closed = true

	err = c.appendEvent(state, &a, Event{
		Kind:      EventClosed,
		Bidder:    a.HighestBidder,
		Value:     a.HighestValue,
		Timestamp: now,
	})
	if err != nil {
		return err
	}

	err = c.saveAuction(state, a)
	if err != nil {
		return err
	}

	gavel.Logger.Info().Str("contract", ContractName).
		Msgf("auction closed, winner %s at %d", a.HighestBidder, a.HighestValue)

	return nil
}

// winner implements commands. It performs the WINNER command.
func (c auctionCommand) winner(snap store.Snapshot) error {
	winner, err := c.GetWinner(snap)
	if err != nil {
		return err
	}

	if !winner.Decided {
		fmt.Fprint(c.printer, "undecided")

		return nil
	}

	fmt.Fprintf(c.printer, "winner=%s value=%d", winner.Bidder, winner.Value)

	return nil
}

// list implements commands. It performs the LIST command.
func (c auctionCommand) list(snap store.Snapshot) error {
	records, err := c.ListBids(snap)
	if err != nil {
		return err
	}

	res := make([]string, len(records))
	for i, record := range records {
		res[i] = fmt.Sprintf("%s=%d", record.Bidder, record.Value)
	}

	fmt.Fprint(c.printer, strings.Join(res, ","))

	return nil
}

// settle implements commands. It performs the SETTLE command: for every
// non-winning bidder with a pending refund it pays the commission to the
// operator and the remainder back to the bidder. A refund is paid at
// most once per bidder; once every refund is drained the command is a
// no-op, so settlement is safe to call repeatedly.
func (c auctionCommand) settle(snap store.Snapshot, step execution.Step) error {
	state := prefixed.NewSnapshot(ContractUID, snap)

	a, err := c.loadAuction(state)
	if err != nil {
		return err
	}

	if !a.Closed {
		gavel.Logger.Debug().Str("contract", ContractName).
			Msgf("settle ignored: %s", AuctionNotClosed)

		return nil
	}

	operator := access.NewAddress(a.Operator)
	paid := 0

	for index := uint64(0); index < a.NumBids; index++ {
		record, err := c.bidAt(state, index)
		if err != nil {
			return err
		}

		// The winner never reclaims the locked winning bid here.
		if record.Bidder == a.HighestBidder {
			continue
		}

		refund, ok, err := c.readRefund(state, record.Bidder)
		if err != nil {
			return err
		}

		if !ok {
			// Already paid out through an earlier log entry or an
			// earlier settlement call.
			continue
		}

		commission := CommissionOf(refund, a.CommissionFraction)

		err = c.bank.Transfer(snap, EscrowAccount(), operator, commission)
		if err != nil {
			return xerrors.Errorf("failed to pay commission: %v", err)
		}

		err = c.bank.Transfer(snap, EscrowAccount(), access.NewAddress(record.Bidder), refund-commission)
		if err != nil {
			return xerrors.Errorf("failed to pay refund: %v", err)
		}

		err = state.Delete(refundKey(record.Bidder))
		if err != nil {
			return xerrors.Errorf("failed to clear refund: %v", err)
		}

		paid++

		gavel.Logger.Info().Str("contract", ContractName).
			Msgf("settled %s: refund %d, commission %d", record.Bidder, refund-commission, commission)
	}

	if paid == 0 {
		gavel.Logger.Debug().Str("contract", ContractName).Msg("nothing to settle")
	}

	return nil
}

// GetAuction returns the current auction state.
func (c Contract) GetAuction(snap store.Readable) (Auction, error) {
	return c.loadAuction(prefixed.NewReadable(ContractUID, snap))
}

// GetWinner returns the winner of the auction. The result is undecided
// until the auction is closed.
func (c Contract) GetWinner(snap store.Readable) (Winner, error) {
	a, err := c.loadAuction(prefixed.NewReadable(ContractUID, snap))
	if err != nil {
		return Winner{}, err
	}

	if !a.Closed {
		return Winner{}, nil
	}

	return Winner{
		Bidder:  a.HighestBidder,
		Value:   a.HighestValue,
		Decided: true,
	}, nil
}

// ListBids returns the full bid log in insertion order.
func (c Contract) ListBids(snap store.Readable) ([]BidRecord, error) {
	state := prefixed.NewReadable(ContractUID, snap)

	a, err := c.loadAuction(state)
	if err != nil {
		return nil, err
	}

	records := make([]BidRecord, 0, a.NumBids)

	for index := uint64(0); index < a.NumBids; index++ {
		record, err := c.bidAt(state, index)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// ListEvents returns the full notification log in emission order.
func (c Contract) ListEvents(snap store.Readable) ([]Event, error) {
	state := prefixed.NewReadable(ContractUID, snap)

	a, err := c.loadAuction(state)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, a.NumEvents)

	for index := uint64(0); index < a.NumEvents; index++ {
		buffer, err := state.Get(eventKey(index))
		if err != nil {
			return nil, xerrors.Errorf("failed to read event %d: %v", index, err)
		}

		event, err := EventFactory{}.EventOf(c.context, buffer)
		if err != nil {
			return nil, xerrors.Errorf("failed to decode event %d: %v", index, err)
		}

		events = append(events, event)
	}

	return events, nil
}

// -----------------------------------------------------------------------------
// State helpers

func (c Contract) loadAuction(state store.Readable) (Auction, error) {
	buffer, err := state.Get(metaKey)
	if err != nil {
		return Auction{}, xerrors.Errorf("failed to read state: %v", err)
	}

	if len(buffer) == 0 {
		return Auction{}, xerrors.New("auction not opened")
	}

	a, err := AuctionFactory{}.AuctionOf(c.context, buffer)
	if err != nil {
		return Auction{}, xerrors.Errorf("failed to decode state: %v", err)
	}

	return a, nil
}

func (c Contract) saveAuction(state store.Snapshot, a Auction) error {
	buffer, err := a.Serialize(c.context)
	if err != nil {
		return xerrors.Errorf("failed to serialize state: %v", err)
	}

	err = state.Set(metaKey, buffer)
	if err != nil {
		return xerrors.Errorf("failed to write state: %v", err)
	}

	return nil
}

func (c Contract) bidAt(state store.Readable, index uint64) (BidRecord, error) {
	buffer, err := state.Get(bidKey(index))
	if err != nil {
		return BidRecord{}, xerrors.Errorf("failed to read bid %d: %v", index, err)
	}

	record, err := BidRecordFactory{}.BidRecordOf(c.context, buffer)
	if err != nil {
		return BidRecord{}, xerrors.Errorf("failed to decode bid %d: %v", index, err)
	}

	return record, nil
}

func (c Contract) appendBid(state store.Snapshot, a *Auction, record BidRecord) error {
	buffer, err := record.Serialize(c.context)
	if err != nil {
		return xerrors.Errorf("failed to serialize bid: %v", err)
	}

	err = state.Set(bidKey(a.NumBids), buffer)
	if err != nil {
		return xerrors.Errorf("failed to write bid: %v", err)
	}

	a.NumBids++

	return nil
}

func (c Contract) appendEvent(state store.Snapshot, a *Auction, event Event) error {
	buffer, err := event.Serialize(c.context)
	if err != nil {
		return xerrors.Errorf("failed to serialize event: %v", err)
	}

	err = state.Set(eventKey(a.NumEvents), buffer)
	if err != nil {
		return xerrors.Errorf("failed to write event: %v", err)
	}

	a.NumEvents++

	return nil
}

func (c Contract) readRefund(state store.Readable, bidder string) (uint64, bool, error) {
	buffer, err := state.Get(refundKey(bidder))
	if err != nil {
		return 0, false, xerrors.Errorf("failed to read refund: %v", err)
	}

	if len(buffer) == 0 {
		return 0, false, nil
	}

	if len(buffer) != 8 {
		return 0, false, xerrors.Errorf("malformed refund of %d bytes", len(buffer))
	}

	return binary.BigEndian.Uint64(buffer), true, nil
}

func (c Contract) writeRefund(state store.Snapshot, bidder string, value uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)

	err := state.Set(refundKey(bidder), buffer)
	if err != nil {
		return xerrors.Errorf("failed to write refund: %v", err)
	}

	return nil
}

func dec(value uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), 0)
}
