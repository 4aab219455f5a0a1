package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"
)

// Compound is a decoded NBT compound tag. Its internals are owned by the
// codec; the wire package only moves it across the cursor.
type Compound = map[string]any

// NBTCodec is the external codec ReadNBT and WriteNBT delegate to. Both
// methods report how many bytes they consumed or produced so the cursor can
// be advanced.
type NBTCodec interface {
	// DecodeNBT decodes one root compound from the start of buf. An empty tag
	// decodes to a nil Compound.
	DecodeNBT(buf []byte) (Compound, int, error)
	// EncodeNBT writes c to w, or an empty tag when c is nil.
	EncodeNBT(w io.Writer, c Compound) (int, error)
}

// DefaultNBT is backed by github.com/Tnze/go-mc/nbt.
var DefaultNBT NBTCodec = goMCCodec{}

type goMCCodec struct{}

func (goMCCodec) DecodeNBT(buf []byte) (Compound, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrUnexpectedEOF
	}
	if buf[0] == nbt.TagEnd {
		return nil, 1, nil
	}
	rd := bytes.NewReader(buf)
	var c Compound
	if _, err := nbt.NewDecoder(rd).Decode(&c); err != nil {
		return nil, 0, fmt.Errorf("wire: decode nbt: %w", err)
	}
	return c, len(buf) - rd.Len(), nil
}

func (goMCCodec) EncodeNBT(w io.Writer, c Compound) (int, error) {
	cw := &countingWriter{w: w}
	if c == nil {
		_, err := cw.Write([]byte{nbt.TagEnd})
		return cw.n, err
	}
	if err := nbt.NewEncoder(cw).Encode(c, ""); err != nil {
		return cw.n, fmt.Errorf("wire: encode nbt: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
