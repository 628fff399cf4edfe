// This file contains the JSON formats of the auction contract messages.
// They register themselves to the format registries of types.go, so any
// import of the contract brings the JSON representation with it.

package auction

import (
	"github.com/gavelchain/gavel/serde"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"
)

func init() {
	RegisterAuctionFormat(serde.FormatJSON, auctionFormat{})
	RegisterBidRecordFormat(serde.FormatJSON, bidRecordFormat{})
	RegisterEventFormat(serde.FormatJSON, eventFormat{})
}

// AuctionJSON is the JSON message of the auction state. The fractions
// travel as decimal strings so that no precision is lost.
type AuctionJSON struct {
	Operator           string
	FloorPrice         uint64
	IncrementFraction  string
	CommissionFraction string
	StartTime          int64
	EndTime            int64
	ExtensionWindow    int64
	ExtensionAmount    int64
	CurrentPrice       uint64
	HighestBidder      string
	HighestValue       uint64
	Closed             bool
	NumBids            uint64
	NumEvents          uint64
}

// AuctionFormat is the JSON format engine for the auction state.
//
// - implements serde.FormatEngine
type auctionFormat struct{}

// Encode implements serde.FormatEngine. It returns the JSON data of the
// auction state if appropriate, otherwise it returns an error.
func (auctionFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	a, ok := msg.(Auction)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	m := AuctionJSON{
		Operator:           a.Operator,
		FloorPrice:         a.FloorPrice,
		IncrementFraction:  a.IncrementFraction.String(),
		CommissionFraction: a.CommissionFraction.String(),
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		ExtensionWindow:    a.ExtensionWindow,
		ExtensionAmount:    a.ExtensionAmount,
		CurrentPrice:       a.CurrentPrice,
		HighestBidder:      a.HighestBidder,
		HighestValue:       a.HighestValue,
		Closed:             a.Closed,
		NumBids:            a.NumBids,
		NumEvents:          a.NumEvents,
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It returns the auction state
// from the JSON data if appropriate, otherwise it returns an error.
func (auctionFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := AuctionJSON{}
	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	increment, err := decimal.NewFromString(m.IncrementFraction)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse increment fraction: %v", err)
	}

	commission, err := decimal.NewFromString(m.CommissionFraction)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse commission fraction: %v", err)
	}

	a := Auction{
		Operator:           m.Operator,
		FloorPrice:         m.FloorPrice,
		IncrementFraction:  increment,
		CommissionFraction: commission,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		ExtensionWindow:    m.ExtensionWindow,
		ExtensionAmount:    m.ExtensionAmount,
		CurrentPrice:       m.CurrentPrice,
		HighestBidder:      m.HighestBidder,
		HighestValue:       m.HighestValue,
		Closed:             m.Closed,
		NumBids:            m.NumBids,
		NumEvents:          m.NumEvents,
	}

	return a, nil
}

// BidRecordJSON is the JSON message of a bid log entry.
type BidRecordJSON struct {
	Bidder    string
	Value     uint64
	Timestamp int64
}

// BidRecordFormat is the JSON format engine for bid records.
//
// - implements serde.FormatEngine
type bidRecordFormat struct{}

// Encode implements serde.FormatEngine. It returns the JSON data of the
// bid record if appropriate, otherwise it returns an error.
func (bidRecordFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	record, ok := msg.(BidRecord)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	m := BidRecordJSON{
		Bidder:    record.Bidder,
		Value:     record.Value,
		Timestamp: record.Timestamp,
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It returns the bid record from
// the JSON data if appropriate, otherwise it returns an error.
func (bidRecordFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := BidRecordJSON{}
	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	record := BidRecord{
		Bidder:    m.Bidder,
		Value:     m.Value,
		Timestamp: m.Timestamp,
	}

	return record, nil
}

// EventJSON is the JSON message of a notification event.
type EventJSON struct {
	Kind      string
	Bidder    string `json:",omitempty"`
	Value     uint64 `json:",omitempty"`
	EndTime   int64  `json:",omitempty"`
	Timestamp int64
}

// EventFormat is the JSON format engine for events.
//
// - implements serde.FormatEngine
type eventFormat struct{}

// Encode implements serde.FormatEngine. It returns the JSON data of the
// event if appropriate, otherwise it returns an error.
func (eventFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	event, ok := msg.(Event)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	m := EventJSON{
		Kind:      event.Kind,
		Bidder:    event.Bidder,
		Value:     event.Value,
		EndTime:   event.EndTime,
		Timestamp: event.Timestamp,
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It returns the event from the
// JSON data if appropriate, otherwise it returns an error.
func (eventFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := EventJSON{}
	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	event := Event{
		Kind:      m.Kind,
		Bidder:    m.Bidder,
		Value:     m.Value,
		EndTime:   m.EndTime,
		Timestamp: m.Timestamp,
	}

	return event, nil
}
