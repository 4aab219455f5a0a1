package wire

import "errors"

var (
	// ErrMalformedVarInt is returned when a VarInt runs past 5 bytes without terminating.
	ErrMalformedVarInt = errors.New("wire: varint is too big")
	// ErrMalformedVarLong is returned when a VarLong runs past 10 bytes without terminating.
	ErrMalformedVarLong = errors.New("wire: varlong is too big")
	// ErrUnexpectedEOF is returned when a read needs more bytes than remain.
	ErrUnexpectedEOF = errors.New("wire: unexpected end of buffer")
	// ErrPayloadTooLarge is returned when a length-prefixed value exceeds its maximum.
	ErrPayloadTooLarge = errors.New("wire: payload too large")
	// ErrNegativeLength is returned for a negative length prefix.
	ErrNegativeLength = errors.New("wire: negative length")
)
