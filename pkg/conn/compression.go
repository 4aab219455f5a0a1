package conn

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/go-mclib/transport/pkg/wire"
)

// MaxUncompressedLen bounds the declared size of a compressed frame.
const MaxUncompressedLen = 1 << 23

// compressor holds the zlib state reused across frames.
type compressor struct {
	zw  *zlib.Writer
	zr  io.ReadCloser
	src bytes.Reader
	out []byte
	tmp []byte
}

// deflate compresses payload into dst.
func (c *compressor) deflate(dst *wire.Writer, payload []byte) error {
	if c.zw == nil {
		c.zw = zlib.NewWriter(dst)
	} else {
		c.zw.Reset(dst)
	}
	if _, err := c.zw.Write(payload); err != nil {
		return err
	}
	return c.zw.Close()
}

// inflate decompresses src, which must inflate to exactly size bytes. The
// result aliases an internal buffer valid until the next call.
func (c *compressor) inflate(src []byte, size int) ([]byte, error) {
	if size < 0 || size > MaxUncompressedLen {
		return nil, fmt.Errorf("%w: declared size %d", ErrDecompression, size)
	}
	c.src.Reset(src)
	if c.zr == nil {
		zr, err := zlib.NewReader(&c.src)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
		}
		c.zr = zr
	} else if err := c.zr.(zlib.Resetter).Reset(&c.src, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}

	if cap(c.out) < size {
		c.out = make([]byte, size)
	}
	out := c.out[:size]
	if _, err := io.ReadFull(c.zr, out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	if c.tmp == nil {
		c.tmp = make([]byte, 1)
	}
	n, err := c.zr.Read(c.tmp)
	if n > 0 {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDecompression, size)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return out, nil
}
