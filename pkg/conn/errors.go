package conn

import "errors"

var (
	// ErrPacketTooLarge is returned for a frame whose length exceeds MaxFrameLen.
	ErrPacketTooLarge = errors.New("conn: packet too large")
	// ErrZeroLengthPacket is returned for a frame with a zero length prefix.
	ErrZeroLengthPacket = errors.New("conn: zero length packet")
	// ErrDecompression is returned when a compressed frame cannot be inflated
	// to exactly its declared size.
	ErrDecompression = errors.New("conn: decompression failed")
	// ErrNoProtocol is returned by Send and Receive before a protocol is set.
	ErrNoProtocol = errors.New("conn: no protocol selected")
)
