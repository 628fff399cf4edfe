// Package serde defines the primitives to serialize and deserialize
// (serde) the messages stored in the ledger state.
//
// A message knows how to serialize itself with a context, and a factory
// knows how to instantiate a message from raw data. The actual encoding
// is delegated to a format engine registered per format, so that a
// message definition stays independent of the wire representation.
package serde

// Format is the identifier type of a format implementation.
type Format string

const (
	// FormatJSON is the identifier of the JSON format.
	FormatJSON Format = "JSON"
)

// Message is the interface a data model should implement to be
// serialized and deserialized.
type Message interface {
	// Serialize returns the byte slice of the serialized message for the
	// format of the context.
	Serialize(ctx Context) ([]byte, error)
}

// Factory is the interface to implement to instantiate a data model from
// raw data.
type Factory interface {
	// Deserialize returns the message associated to the data, using the
	// format of the context.
	Deserialize(ctx Context, data []byte) (Message, error)
}

// FormatEngine is the interface to implement to encode and decode the
// messages of one family in a given format.
type FormatEngine interface {
	// Encode returns the serialized data of the message according to the
	// format.
	Encode(ctx Context, message Message) ([]byte, error)

	// Decode returns the message instantiated from the data according to
	// the format.
	Decode(ctx Context, data []byte) (Message, error)
}
