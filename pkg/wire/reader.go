package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Reader decodes protocol values from an immutable byte slice. Every read
// advances the cursor and fails with ErrUnexpectedEOF rather than reading
// past the end of the slice.
type Reader struct {
	buf []byte
	pos int
	nbt NBTCodec
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// SetNBTCodec overrides the codec used by ReadNBT.
func (r *Reader) SetNBTCodec(c NBTCodec) { r.nbt = c }

// BytesRead returns the cursor position.
func (r *Reader) BytesRead() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if n > len(r.buf)-r.pos {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOF, n, len(r.buf)-r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytes returns the next n bytes. The slice aliases the reader's buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

// ReadRest returns every unread byte and moves the cursor to the end.
func (r *Reader) ReadRest() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}

// ReadByte reads an unsigned byte. It also satisfies io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint8() (uint8, error) { return r.ReadByte() }

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

// ReadBool reads a byte and treats any non-zero value as true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadVarInt reads a VarInt. Running out of bytes mid-value is
// ErrUnexpectedEOF; more than 5 bytes is ErrMalformedVarInt.
func (r *Reader) ReadVarInt() (int32, error) {
	v, n, err := DecodeVarInt(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadVarLong reads a VarLong, bounded to 10 bytes.
func (r *Reader) ReadVarLong() (int64, error) {
	v, n, err := DecodeVarLong(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

func (r *Reader) readLength(maxLen int) (int, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegativeLength
	}
	if maxLen > 0 && int(n) > maxLen {
		return 0, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLarge, n, maxLen)
	}
	return int(n), nil
}

// ReadByteArray reads a VarInt-prefixed byte array. maxLen <= 0 means no
// limit beyond the bytes available. The result aliases the reader's buffer.
func (r *Reader) ReadByteArray(maxLen int) ([]byte, error) {
	n, err := r.readLength(maxLen)
	if err != nil {
		return nil, err
	}
	return r.take(n)
}

// ReadString reads a VarInt-prefixed UTF-8 string of at most maxLen
// characters. The byte length is checked against 3*maxLen before decoding and
// the character count is checked after. maxLen <= 0 disables both checks.
func (r *Reader) ReadString(maxLen int) (string, error) {
	byteLimit := 0
	if maxLen > 0 {
		byteLimit = maxLen * 3
	}
	b, err := r.ReadByteArray(byteLimit)
	if err != nil {
		return "", err
	}
	if maxLen > 0 {
		if n := utf8.RuneCount(b); n > maxLen {
			return "", fmt.Errorf("%w: string is %d characters, max %d", ErrPayloadTooLarge, n, maxLen)
		}
	}
	return string(b), nil
}

// ReadJSON reads a string and unmarshals it into v.
func (r *Reader) ReadJSON(v any, maxLen int) error {
	b, err := r.ReadByteArray(maxLen)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("wire: decode json: %w", err)
	}
	return nil
}

// ReadUUID reads a UUID as two big-endian longs.
func (r *Reader) ReadUUID() (uuid.UUID, error) {
	b, err := r.take(16)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.UUID(b), nil
}

// ReadNBT hands the unread bytes to the NBT codec and advances past whatever
// it consumed. A nil compound is returned for an empty tag.
func (r *Reader) ReadNBT() (Compound, error) {
	codec := r.nbt
	if codec == nil {
		codec = DefaultNBT
	}
	c, n, err := codec.DecodeNBT(r.buf[r.pos:])
	if err != nil {
		return nil, err
	}
	if n > len(r.buf)-r.pos {
		return nil, ErrUnexpectedEOF
	}
	r.pos += n
	return c, nil
}
