package auction

import (
	"testing"

	"github.com/gavelchain/gavel/serde"
	"github.com/gavelchain/gavel/serde/json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAuction_Serialize(t *testing.T) {
	ctx := json.NewContext()

	a := Auction{
		Operator:           "operator",
		FloorPrice:         100,
		IncrementFraction:  decimal.New(5, -2),
		CommissionFraction: decimal.New(2, -2),
		StartTime:          1000,
		EndTime:            4600,
		ExtensionWindow:    600,
		ExtensionAmount:    600,
		CurrentPrice:       150,
		HighestBidder:      "bidderA",
		HighestValue:       150,
		NumBids:            1,
		NumEvents:          1,
	}

	data, err := a.Serialize(ctx)
	require.NoError(t, err)

	decoded, err := AuctionFactory{}.AuctionOf(ctx, data)
	require.NoError(t, err)
	require.Equal(t, a, decoded)

	_, err = a.Serialize(badContext())
	require.EqualError(t, err,
		"failed to encode auction: format 'bad' is not implemented")

	_, err = AuctionFactory{}.AuctionOf(ctx, []byte("garbage"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to unmarshal")
}

func TestBidRecord_Serialize(t *testing.T) {
	ctx := json.NewContext()

	record := BidRecord{Bidder: "bidderA", Value: 150, Timestamp: 2000}

	data, err := record.Serialize(ctx)
	require.NoError(t, err)

	decoded, err := BidRecordFactory{}.BidRecordOf(ctx, data)
	require.NoError(t, err)
	require.Equal(t, record, decoded)

	_, err = record.Serialize(badContext())
	require.EqualError(t, err,
		"failed to encode bid record: format 'bad' is not implemented")
}

func TestEvent_Serialize(t *testing.T) {
	ctx := json.NewContext()

	event := Event{Kind: EventExtended, EndTime: 5200, Timestamp: 4000}

	data, err := event.Serialize(ctx)
	require.NoError(t, err)

	decoded, err := EventFactory{}.EventOf(ctx, data)
	require.NoError(t, err)
	require.Equal(t, event, decoded)

	_, err = event.Serialize(badContext())
	require.EqualError(t, err,
		"failed to encode event: format 'bad' is not implemented")
}

// -----------------------------------------------------------------------------
// Utility functions

func badContext() serde.Context {
	return serde.NewContext(badEngine{})
}

// badEngine is a context engine of a format no message family implements.
//
// - implements serde.ContextEngine
type badEngine struct{}

func (badEngine) GetFormat() serde.Format {
	return "bad"
}

func (badEngine) Marshal(interface{}) ([]byte, error) {
	return nil, nil
}

func (badEngine) Unmarshal([]byte, interface{}) error {
	return nil
}
