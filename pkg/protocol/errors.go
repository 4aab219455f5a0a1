package protocol

import "errors"

var (
	// ErrUnknownPacketID is returned when deserializing an ID with no registered type.
	ErrUnknownPacketID = errors.New("protocol: unknown packet id")
	// ErrTrailingBytes is returned when a packet body does not consume the whole payload.
	ErrTrailingBytes = errors.New("protocol: trailing bytes after packet")
	// ErrUnregisteredPacketType is returned when serializing a packet not registered in the direction.
	ErrUnregisteredPacketType = errors.New("protocol: packet type is not registered")
)
