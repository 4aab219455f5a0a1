package wire

// Encoded size limits.
const (
	MaxVarIntLen  = 5
	MaxVarLongLen = 10
)

// AppendVarInt appends v using the 32-bit two's-complement bit pattern, so
// negative values always take 5 bytes.
func AppendVarInt(buf []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// AppendVarLong is AppendVarInt over 64 bits.
func AppendVarLong(buf []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// VarIntSize returns the number of bytes AppendVarInt would emit for v.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// VarLongSize returns the number of bytes AppendVarLong would emit for v.
func VarLongSize(v int64) int {
	u := uint64(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// DecodeVarInt decodes a VarInt from the start of buf and returns the value and
// the number of bytes consumed.
//
// If buf ends before the VarInt terminates, ErrUnexpectedEOF is returned; the
// caller may retry with more bytes. If 5 bytes are consumed without
// terminating, ErrMalformedVarInt is returned and more input will not help.
func DecodeVarInt(buf []byte) (int32, int, error) {
	var v uint32
	for i := 0; i < MaxVarIntLen; i++ {
		if i >= len(buf) {
			return 0, 0, ErrUnexpectedEOF
		}
		b := buf[i]
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(v), i + 1, nil
		}
	}
	return 0, 0, ErrMalformedVarInt
}

// DecodeVarLong is DecodeVarInt over 64 bits, bounded to 10 bytes.
func DecodeVarLong(buf []byte) (int64, int, error) {
	var v uint64
	for i := 0; i < MaxVarLongLen; i++ {
		if i >= len(buf) {
			return 0, 0, ErrUnexpectedEOF
		}
		b := buf[i]
		v |= uint64(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int64(v), i + 1, nil
		}
	}
	return 0, 0, ErrMalformedVarLong
}
