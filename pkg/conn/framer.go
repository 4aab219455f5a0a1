package conn

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-mclib/transport/pkg/wire"
)

// MaxFrameLen is the largest frame length a length prefix may carry: the
// largest value that fits a 3-byte VarInt.
const MaxFrameLen = 1<<21 - 1

type frameState int

const (
	// needMoreBytes: the length prefix is not decoded yet.
	needMoreBytes frameState = iota
	// haveLengthPrefix: the prefix is decoded, the body may be incomplete.
	haveLengthPrefix
	// haveFullFrame: prefix and body are buffered.
	haveFullFrame
)

func (s frameState) String() string {
	switch s {
	case needMoreBytes:
		return "need-more-bytes"
	case haveLengthPrefix:
		return "have-length-prefix"
	case haveFullFrame:
		return "have-full-frame"
	}
	return fmt.Sprintf("frameState(%d)", int(s))
}

// framer reassembles length-prefixed frames from a stream delivered in
// arbitrary chunks.
type framer struct {
	src     io.Reader
	buf     *buffer
	decrypt func([]byte)

	state     frameState
	prefixLen int
	frameLen  int

	// set when a read returned data together with an error; reported on
	// the next read attempt
	readErr error
	reads   int
}

func newFramer(src io.Reader, size int) *framer {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &framer{src: src, buf: newBuffer(size)}
}

// next returns the body of the next frame. The slice aliases the internal
// buffer and is valid until the next call. io.EOF means the stream ended,
// including in the middle of a frame.
func (f *framer) next() ([]byte, error) {
	f.buf.compact()
	for {
		switch f.state {
		case needMoreBytes:
			n, size, err := wire.DecodeVarInt(f.buf.unread())
			switch {
			case err == nil:
				if n == 0 {
					return nil, ErrZeroLengthPacket
				}
				if n < 0 || n > MaxFrameLen {
					return nil, fmt.Errorf("%w: length %d", ErrPacketTooLarge, n)
				}
				f.prefixLen, f.frameLen = size, int(n)
				f.state = haveLengthPrefix
			case errors.Is(err, wire.ErrUnexpectedEOF):
				if err := f.fill(1); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("conn: frame length: %w", err)
			}

		case haveLengthPrefix:
			total := f.prefixLen + f.frameLen
			if f.buf.len() >= total {
				f.state = haveFullFrame
				continue
			}
			if err := f.fill(total - f.buf.len()); err != nil {
				return nil, err
			}

		case haveFullFrame:
			frame := f.buf.unread()[f.prefixLen : f.prefixLen+f.frameLen]
			f.buf.consume(f.prefixLen + f.frameLen)
			f.state = needMoreBytes
			return frame, nil
		}
	}
}

// fill performs exactly one read of up to the free buffer space, making
// room for at least need bytes first. Newly read bytes are decrypted in
// place before they are appended.
func (f *framer) fill(need int) error {
	if f.readErr != nil {
		return f.readErr
	}
	f.buf.reserve(need)
	free := f.buf.free()
	n, err := f.src.Read(free)
	f.reads++
	if n > 0 {
		if f.decrypt != nil {
			f.decrypt(free[:n])
		}
		f.buf.commit(n)
		f.readErr = err
		return nil
	}
	if err != nil {
		return err
	}
	return io.EOF
}

// setDecrypt installs decrypt and applies it to bytes that were buffered
// but not yet parsed: the peer encrypts everything it sends after the
// switch.
func (f *framer) setDecrypt(decrypt func([]byte)) {
	f.decrypt = decrypt
	f.state = needMoreBytes
	if decrypt != nil {
		decrypt(f.buf.unread())
	}
}
