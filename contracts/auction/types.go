// This file contains the messages stored in the ledger state by the
// auction contract: the auction singleton, the append-only bid log
// entries and the notification events.

package auction

import (
	"encoding/binary"

	"github.com/gavelchain/gavel/serde"
	"github.com/gavelchain/gavel/serde/registry"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"
)

var (
	auctionFormats = registry.NewSimpleRegistry()
	bidFormats     = registry.NewSimpleRegistry()
	eventFormats   = registry.NewSimpleRegistry()
)

// RegisterAuctionFormat registers the engine for the provided format.
func RegisterAuctionFormat(f serde.Format, e serde.FormatEngine) {
	auctionFormats.Register(f, e)
}

// RegisterBidRecordFormat registers the engine for the provided format.
func RegisterBidRecordFormat(f serde.Format, e serde.FormatEngine) {
	bidFormats.Register(f, e)
}

// RegisterEventFormat registers the engine for the provided format.
func RegisterEventFormat(f serde.Format, e serde.FormatEngine) {
	eventFormats.Register(f, e)
}

// Auction is the singleton state of the auction ledger. It is created
// once by the OPEN command and then mutated by every state-changing
// command until settlement.
//
// - implements serde.Message
type Auction struct {
	// Operator is the identity collecting the commissions. Immutable.
	Operator string

	// FloorPrice is the minimum admissible bid value. Immutable.
	FloorPrice uint64

	// IncrementFraction is the minimum relative increase over the
	// current price for a bid to be admitted. Immutable.
	IncrementFraction decimal.Decimal

	// CommissionFraction is the fraction of a losing bid retained by the
	// operator on settlement. Immutable.
	CommissionFraction decimal.Decimal

	// StartTime and EndTime delimit the open interval, in unix seconds.
	// EndTime only ever increases (extension).
	StartTime int64
	EndTime   int64

	// ExtensionWindow is the trailing interval before EndTime, in
	// seconds, during which an admitted bid triggers an extension.
	ExtensionWindow int64

	// ExtensionAmount is the duration, in seconds, added to EndTime on
	// extension.
	ExtensionAmount int64

	// CurrentPrice is the admission floor for the next bid.
	CurrentPrice uint64

	// HighestBidder and HighestValue describe the current leader. They
	// are updated atomically with each admitted bid.
	HighestBidder string
	HighestValue  uint64

	// Closed is false until the auction is explicitly closed after
	// expiry. The transition is one way.
	Closed bool

	// NumBids is the length of the bid log.
	NumBids uint64

	// NumEvents is the length of the event log.
	NumEvents uint64
}

// Serialize implements serde.Message. It returns the serialized data of
// the auction state.
func (a Auction) Serialize(ctx serde.Context) ([]byte, error) {
	format := auctionFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, a)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode auction: %v", err)
	}

	return data, nil
}

// AuctionFactory is a factory to deserialize auction states.
//
// - implements serde.Factory
type AuctionFactory struct{}

// Deserialize implements serde.Factory. It populates the auction state
// from the data if appropriate, otherwise it returns an error.
func (f AuctionFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := auctionFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode auction: %v", err)
	}

	return msg, nil
}

// AuctionOf returns the auction state from the data.
func (f AuctionFactory) AuctionOf(ctx serde.Context, data []byte) (Auction, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return Auction{}, err
	}

	auction, ok := msg.(Auction)
	if !ok {
		return Auction{}, xerrors.Errorf("invalid auction of type '%T'", msg)
	}

	return auction, nil
}

// BidRecord is one entry of the append-only bid log. The insertion order
// of the log is the chronological order of the admitted bids.
//
// - implements serde.Message
type BidRecord struct {
	Bidder    string
	Value     uint64
	Timestamp int64
}

// Serialize implements serde.Message. It returns the serialized data of
// the bid record.
func (r BidRecord) Serialize(ctx serde.Context) ([]byte, error) {
	format := bidFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, r)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode bid record: %v", err)
	}

	return data, nil
}

// BidRecordFactory is a factory to deserialize bid records.
//
// - implements serde.Factory
type BidRecordFactory struct{}

// Deserialize implements serde.Factory. It populates the bid record from
// the data if appropriate, otherwise it returns an error.
func (f BidRecordFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := bidFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode bid record: %v", err)
	}

	return msg, nil
}

// BidRecordOf returns the bid record from the data.
func (f BidRecordFactory) BidRecordOf(ctx serde.Context, data []byte) (BidRecord, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return BidRecord{}, err
	}

	record, ok := msg.(BidRecord)
	if !ok {
		return BidRecord{}, xerrors.Errorf("invalid bid record of type '%T'", msg)
	}

	return record, nil
}

// Kinds of the notification events appended by the state-changing
// commands.
const (
	// EventNewBid is emitted on every admitted bid.
	EventNewBid = "NEW_BID"

	// EventExtended is emitted on every deadline extension.
	EventExtended = "AUCTION_EXTENDED"

	// EventClosed is emitted when the auction transitions to closed.
	EventClosed = "AUCTION_CLOSED"
)

// Event is one entry of the append-only notification log.
//
// - implements serde.Message
type Event struct {
	Kind string

	// Bidder and Value are set for NEW_BID and AUCTION_CLOSED events.
	Bidder string
	Value  uint64

	// EndTime is set for AUCTION_EXTENDED events, in unix seconds.
	EndTime int64

	// Timestamp is the ledger time of the emission, in unix seconds.
	Timestamp int64
}

// Serialize implements serde.Message. It returns the serialized data of
// the event.
func (e Event) Serialize(ctx serde.Context) ([]byte, error) {
	format := eventFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, e)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode event: %v", err)
	}

	return data, nil
}

// EventFactory is a factory to deserialize events.
//
// - implements serde.Factory
type EventFactory struct{}

// Deserialize implements serde.Factory. It populates the event from the
// data if appropriate, otherwise it returns an error.
func (f EventFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := eventFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode event: %v", err)
	}

	return msg, nil
}

// EventOf returns the event from the data.
func (f EventFactory) EventOf(ctx serde.Context, data []byte) (Event, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return Event{}, err
	}

	event, ok := msg.(Event)
	if !ok {
		return Event{}, xerrors.Errorf("invalid event of type '%T'", msg)
	}

	return event, nil
}

// Keys of the contract state, relative to the contract prefix.

var metaKey = []byte("meta")

func bidKey(index uint64) []byte {
	key := make([]byte, 4+8)
	copy(key, "bid:")
	binary.BigEndian.PutUint64(key[4:], index)

	return key
}

func eventKey(index uint64) []byte {
	key := make([]byte, 6+8)
	copy(key, "event:")
	binary.BigEndian.PutUint64(key[6:], index)

	return key
}

func refundKey(bidder string) []byte {
	return append([]byte("refund:"), bidder...)
}
