package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const defaultWriterSize = 16

// Writer encodes protocol values into a growable buffer. Methods return the
// Writer for chaining. Encoders that can fail (JSON, NBT) record the first
// error, which is reported by Err; later writes still go through.
type Writer struct {
	buf []byte
	pos int
	nbt NBTCodec
	err error
}

// NewWriter returns a Writer with a small initial buffer.
func NewWriter() *Writer {
	return NewWriterBuffer(make([]byte, defaultWriterSize))
}

// NewWriterBuffer returns a Writer that writes into buf from offset 0. The
// whole length of buf is the initial capacity.
func NewWriterBuffer(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// SetNBTCodec overrides the codec used by WriteNBT.
func (w *Writer) SetNBTCodec(c NBTCodec) { w.nbt = c }

// Bytes returns the bytes written so far. The slice aliases the writer's
// buffer and is valid until the next write or Reset.
func (w *Writer) Bytes() []byte { return w.buf[:w.pos] }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.pos }

// Cap returns the current buffer capacity.
func (w *Writer) Cap() int { return len(w.buf) }

// Err returns the first encoding error, if any.
func (w *Writer) Err() error { return w.err }

// Reset empties the writer but keeps its buffer.
func (w *Writer) Reset() {
	w.pos = 0
	w.err = nil
}

// grow makes room for n more bytes. A full buffer is replaced by one of
// twice the old capacity plus n, with the written bytes copied over.
func (w *Writer) grow(n int) {
	if w.pos+n <= len(w.buf) {
		return
	}
	buf := make([]byte, len(w.buf)*2+n)
	copy(buf, w.buf[:w.pos])
	w.buf = buf
}

func (w *Writer) setErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Write implements io.Writer so external encoders can stream straight into
// the buffer. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.WriteBytes(p)
	return len(p), nil
}

// WriteBytes appends b verbatim.
func (w *Writer) WriteBytes(b []byte) *Writer {
	w.grow(len(b))
	w.pos += copy(w.buf[w.pos:], b)
	return w
}

func (w *Writer) WriteUint8(b byte) *Writer {
	w.grow(1)
	w.buf[w.pos] = b
	w.pos++
	return w
}

func (w *Writer) WriteInt8(v int8) *Writer { return w.WriteUint8(byte(v)) }

func (w *Writer) WriteBool(v bool) *Writer {
	if v {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

func (w *Writer) WriteUint16(v uint16) *Writer {
	w.grow(2)
	binary.BigEndian.PutUint16(w.buf[w.pos:], v)
	w.pos += 2
	return w
}

func (w *Writer) WriteInt16(v int16) *Writer { return w.WriteUint16(uint16(v)) }

func (w *Writer) WriteUint32(v uint32) *Writer {
	w.grow(4)
	binary.BigEndian.PutUint32(w.buf[w.pos:], v)
	w.pos += 4
	return w
}

func (w *Writer) WriteInt32(v int32) *Writer { return w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint64(v uint64) *Writer {
	w.grow(8)
	binary.BigEndian.PutUint64(w.buf[w.pos:], v)
	w.pos += 8
	return w
}

func (w *Writer) WriteInt64(v int64) *Writer { return w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) *Writer { return w.WriteUint32(math.Float32bits(v)) }

func (w *Writer) WriteFloat64(v float64) *Writer { return w.WriteUint64(math.Float64bits(v)) }

func (w *Writer) WriteVarInt(v int32) *Writer {
	w.grow(VarIntSize(v))
	w.pos += len(AppendVarInt(w.buf[w.pos:w.pos], v))
	return w
}

func (w *Writer) WriteVarLong(v int64) *Writer {
	w.grow(VarLongSize(v))
	w.pos += len(AppendVarLong(w.buf[w.pos:w.pos], v))
	return w
}

// WriteByteArray writes a VarInt length followed by b.
func (w *Writer) WriteByteArray(b []byte) *Writer {
	return w.WriteVarInt(int32(len(b))).WriteBytes(b)
}

// WriteString writes a VarInt byte length followed by the UTF-8 bytes of s.
func (w *Writer) WriteString(s string) *Writer {
	w.WriteVarInt(int32(len(s)))
	w.grow(len(s))
	w.pos += copy(w.buf[w.pos:], s)
	return w
}

// WriteJSON marshals v and writes it as a string.
func (w *Writer) WriteJSON(v any) *Writer {
	b, err := json.Marshal(v)
	if err != nil {
		w.setErr(fmt.Errorf("wire: encode json: %w", err))
		return w
	}
	return w.WriteByteArray(b)
}

func (w *Writer) WriteUUID(u uuid.UUID) *Writer { return w.WriteBytes(u[:]) }

// WriteNBT lets the NBT codec encode c directly into the buffer. A nil
// compound is written as an empty tag.
func (w *Writer) WriteNBT(c Compound) *Writer {
	codec := w.nbt
	if codec == nil {
		codec = DefaultNBT
	}
	start := w.pos
	n, err := codec.EncodeNBT(w, c)
	if err != nil {
		w.setErr(err)
		return w
	}
	if w.pos-start != n {
		w.setErr(fmt.Errorf("wire: nbt codec reported %d bytes, wrote %d", n, w.pos-start))
	}
	return w
}
