package wire

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNBTRoundTrip(t *testing.T) {
	tag := Compound{"hello": "world"}

	buf := NewWriter().WriteNBT(tag).WriteInt8(-1)
	require.NoError(t, buf.Err())

	r := NewReader(buf.Bytes())
	got, err := r.ReadNBT()
	require.NoError(t, err)
	assert.Equal(t, tag, got)

	b, err := r.ReadInt8()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), b)
}

func TestNBTEmptyTag(t *testing.T) {
	w := NewWriter().WriteNBT(nil)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{0x00}, w.Bytes())

	r := NewReader([]byte{0x00, 0x07})
	got, err := r.ReadNBT()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, r.BytesRead())
}

type fixedCodec struct {
	consumed int
	err      error
}

func (f fixedCodec) DecodeNBT(buf []byte) (Compound, int, error) {
	return Compound{}, f.consumed, f.err
}

func (f fixedCodec) EncodeNBT(w io.Writer, c Compound) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := w.Write(make([]byte, f.consumed))
	return n, err
}

func TestNBTCodecAdvancesCursor(t *testing.T) {
	r := NewReader(make([]byte, 10))
	r.SetNBTCodec(fixedCodec{consumed: 4})
	_, err := r.ReadNBT()
	require.NoError(t, err)
	assert.Equal(t, 4, r.BytesRead())

	w := NewWriter()
	w.SetNBTCodec(fixedCodec{consumed: 7})
	w.WriteNBT(Compound{})
	require.NoError(t, w.Err())
	assert.Equal(t, 7, w.Len())
}

func TestNBTCodecOverrun(t *testing.T) {
	r := NewReader(make([]byte, 2))
	r.SetNBTCodec(fixedCodec{consumed: 3})
	_, err := r.ReadNBT()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestNBTCodecError(t *testing.T) {
	boom := errors.New("boom")
	w := NewWriter()
	w.SetNBTCodec(fixedCodec{err: boom})
	w.WriteNBT(Compound{})
	assert.ErrorIs(t, w.Err(), boom)
}
