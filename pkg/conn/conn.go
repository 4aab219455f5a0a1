// Package conn frames packets over a raw byte stream. A Conn composes the
// frame codec, optional compression, the optional stream cipher and the
// active protocol phase.
//
// Sends and the compression and encryption switches may be called from any
// goroutine. Receiving must happen on one goroutine at a time, and
// SetEncryption must not overlap a pending Receive; call it from the
// receiving goroutine, typically from a handler. Closing the Conn unblocks a
// pending Receive, which then reports io.EOF.
package conn

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/go-mclib/transport/pkg/encryption"
	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/wire"
)

const defaultBufferSize = 256

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the logger used for frame and lifecycle traces.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Conn) { c.log = l }
}

// WithMetrics attaches shared traffic counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Conn) { c.metrics = m }
}

// WithCipher selects the CFB8 implementation used once SetEncryption is
// called. The default is encryption.Portable.
func WithCipher(s encryption.Strategy) Option {
	return func(c *Conn) { c.strategy = s }
}

// WithBufferSize sets the initial receive buffer size.
func WithBufferSize(n int) Option {
	return func(c *Conn) { c.bufferSize = n }
}

// Conn is a packet connection over a raw duplex byte stream.
type Conn struct {
	rw         io.ReadWriteCloser
	log        zerolog.Logger
	metrics    *Metrics
	strategy   encryption.Strategy
	bufferSize int

	frames    *framer
	threshold atomic.Int64

	// sendMu guards the send side: the encrypting cipher, the deflater and
	// the frame buffers.
	sendMu   sync.Mutex
	cipher   encryption.Cipher
	zip      compressor
	frame    *wire.Writer
	payload  *wire.Writer
	deflated *wire.Writer

	proto   *protocol.Protocol
	sendDir protocol.Direction
	recvDir protocol.Direction
	handler protocol.Handler
	mu      sync.Mutex

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// New returns a Conn over rw with compression and encryption disabled and
// no protocol selected.
func New(rw io.ReadWriteCloser, opts ...Option) *Conn {
	c := &Conn{
		rw:         rw,
		log:        zerolog.Nop(),
		strategy:   encryption.Portable,
		bufferSize: defaultBufferSize,
		frame:      wire.NewWriter(),
		payload:    wire.NewWriter(),
		deflated:   wire.NewWriter(),
	}
	c.threshold.Store(-1)
	for _, opt := range opts {
		opt(c)
	}
	c.frames = newFramer(rw, c.bufferSize)
	c.metrics.opened()
	return c
}

// SetCompression enables compression for frames whose payload is at least
// threshold bytes long. A negative threshold disables compression.
func (c *Conn) SetCompression(threshold int) {
	if threshold < 0 {
		threshold = -1
	}
	c.threshold.Store(int64(threshold))
	if threshold < 0 {
		c.log.Debug().Msg("compression disabled")
		return
	}
	c.log.Debug().Int("threshold", threshold).Msg("compression enabled")
}

// CompressionThreshold returns the current threshold, or -1 when
// compression is disabled.
func (c *Conn) CompressionThreshold() int { return int(c.threshold.Load()) }

// SetEncryption enables the stream cipher keyed by secret in both
// directions. Bytes already buffered but not yet parsed are decrypted too.
func (c *Conn) SetEncryption(secret []byte) error {
	ciph, err := c.strategy.New(secret)
	if err != nil {
		return err
	}
	c.sendMu.Lock()
	c.cipher = ciph
	c.sendMu.Unlock()
	c.frames.setDecrypt(ciph.Decrypt)
	c.log.Debug().Str("cipher", c.strategy.Name).Msg("encryption enabled")
	return nil
}

// Encrypted reports whether SetEncryption was called.
func (c *Conn) Encrypted() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.cipher != nil
}

// SetClientProtocol makes p the active protocol for the client side of the
// connection: serverbound packets are sent, clientbound packets are
// received and passed to h. h may be nil.
func (c *Conn) SetClientProtocol(p *protocol.Protocol, h protocol.Handler) {
	c.setProtocol(p, protocol.Serverbound, protocol.Clientbound, h)
}

// SetServerProtocol is SetClientProtocol for the server side.
func (c *Conn) SetServerProtocol(p *protocol.Protocol, h protocol.Handler) {
	c.setProtocol(p, protocol.Clientbound, protocol.Serverbound, h)
}

func (c *Conn) setProtocol(p *protocol.Protocol, send, recv protocol.Direction, h protocol.Handler) {
	c.mu.Lock()
	c.proto, c.sendDir, c.recvDir, c.handler = p, send, recv, h
	c.mu.Unlock()
	c.log.Debug().Stringer("phase", p.Phase()).Stringer("receive", recv).Msg("protocol selected")
}

// Phase returns the phase of the active protocol. ok is false until a
// protocol is selected.
func (c *Conn) Phase() (phase protocol.Phase, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proto == nil {
		return 0, false
	}
	return c.proto.Phase(), true
}

// Send serializes p with the active protocol and sends it as one frame.
func (c *Conn) Send(p protocol.Packet) error {
	c.mu.Lock()
	proto, dir := c.proto, c.sendDir
	c.mu.Unlock()
	if proto == nil {
		return ErrNoProtocol
	}

	c.sendMu.Lock()
	c.payload.Reset()
	if err := proto.Packets(dir).Serialize(c.payload, p); err != nil {
		c.sendMu.Unlock()
		return err
	}
	c.log.Trace().Stringer("phase", proto.Phase()).Int32("id", p.ID()).Int("len", c.payload.Len()).Msg("send packet")
	broken, err := c.sendFrame(c.payload.Bytes())
	c.sendMu.Unlock()
	return c.sendDone(broken, err)
}

// SendRaw frames payload, compressing and encrypting it as configured, and
// writes the frame to the raw stream. A frame longer than MaxFrameLen is
// rejected before anything is written. A failed write closes the Conn.
func (c *Conn) SendRaw(payload []byte) error {
	c.sendMu.Lock()
	broken, err := c.sendFrame(payload)
	c.sendMu.Unlock()
	return c.sendDone(broken, err)
}

// sendDone closes the Conn after a failed write. It runs without sendMu
// held since Close calls the handler, which may try to send.
func (c *Conn) sendDone(broken bool, err error) error {
	if broken {
		c.log.Debug().Err(err).Msg("write failed, closing")
		_ = c.Close()
	}
	return err
}

// sendFrame builds and writes one frame. It must be called with sendMu
// held. broken reports a failed write to the raw stream.
func (c *Conn) sendFrame(payload []byte) (broken bool, err error) {
	if c.closed.Load() {
		return false, io.ErrClosedPipe
	}
	c.frame.Reset()

	threshold := int(c.threshold.Load())
	switch {
	case threshold < 0:
		if len(payload) > MaxFrameLen {
			return false, fmt.Errorf("%w: length %d", ErrPacketTooLarge, len(payload))
		}
		c.frame.WriteVarInt(int32(len(payload))).WriteBytes(payload)

	case len(payload) < threshold:
		if len(payload)+1 > MaxFrameLen {
			return false, fmt.Errorf("%w: length %d", ErrPacketTooLarge, len(payload)+1)
		}
		c.frame.WriteVarInt(int32(len(payload) + 1)).WriteVarInt(0).WriteBytes(payload)

	default:
		if len(payload) > MaxUncompressedLen {
			return false, fmt.Errorf("%w: uncompressed length %d", ErrPacketTooLarge, len(payload))
		}
		c.deflated.Reset()
		if err := c.zip.deflate(c.deflated, payload); err != nil {
			return false, fmt.Errorf("conn: deflate: %w", err)
		}
		n := wire.VarIntSize(int32(len(payload))) + c.deflated.Len()
		if n > MaxFrameLen {
			return false, fmt.Errorf("%w: length %d", ErrPacketTooLarge, n)
		}
		c.frame.WriteVarInt(int32(n)).WriteVarInt(int32(len(payload))).WriteBytes(c.deflated.Bytes())
	}

	buf := c.frame.Bytes()
	if c.cipher != nil {
		c.cipher.Encrypt(buf)
	}
	if err := c.writeAll(buf); err != nil {
		return true, err
	}
	c.metrics.sent(len(buf))
	return false, nil
}

func (c *Conn) writeAll(b []byte) error {
	for len(b) > 0 {
		n, err := c.rw.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}

// Receive reads the next frame, deserializes it with the active protocol
// and passes it to the handler, if any. A handler error is returned along
// with the packet. io.EOF means the stream ended and the Conn is closed.
func (c *Conn) Receive() (protocol.Packet, error) {
	if _, ok := c.Phase(); !ok {
		return nil, ErrNoProtocol
	}
	buf, err := c.ReceiveRaw()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	proto, dir, h := c.proto, c.recvDir, c.handler
	c.mu.Unlock()

	p, err := proto.Deserialize(dir, buf)
	if err != nil {
		c.metrics.frameError("decode")
		return nil, err
	}
	c.log.Trace().Stringer("phase", proto.Phase()).Int32("id", p.ID()).Int("len", len(buf)).Msg("receive packet")
	if h != nil {
		if err := h.HandlePacket(p); err != nil {
			return p, err
		}
	}
	return p, nil
}

// ReceiveRaw returns the payload of the next frame, decompressed if
// compression is enabled. The slice is only valid until the next receive.
// io.EOF means the stream ended and the Conn is closed. Other errors leave
// the Conn open; the caller decides whether to close it.
func (c *Conn) ReceiveRaw() ([]byte, error) {
	if c.closed.Load() {
		return nil, io.EOF
	}
	frame, err := c.frames.next()
	if err != nil {
		return nil, c.receiveError(err)
	}
	c.metrics.received(len(frame))
	c.log.Trace().Int("len", len(frame)).Msg("frame received")

	if c.threshold.Load() < 0 {
		return frame, nil
	}
	size, n, err := wire.DecodeVarInt(frame)
	if err != nil {
		c.metrics.frameError("decompression")
		return nil, fmt.Errorf("%w: data length: %w", ErrDecompression, err)
	}
	if size == 0 {
		return frame[n:], nil
	}
	out, err := c.zip.inflate(frame[n:], int(size))
	if err != nil {
		c.metrics.frameError("decompression")
		return nil, err
	}
	return out, nil
}

func (c *Conn) receiveError(err error) error {
	if c.closed.Load() {
		return io.EOF
	}
	if errors.Is(err, io.EOF) {
		c.log.Debug().Msg("end of stream")
		_ = c.Close()
		return io.EOF
	}
	switch {
	case errors.Is(err, ErrZeroLengthPacket):
		c.metrics.frameError("zero_length")
	case errors.Is(err, ErrPacketTooLarge):
		c.metrics.frameError("too_large")
	case errors.Is(err, wire.ErrMalformedVarInt):
		c.metrics.frameError("malformed_length")
	}
	return err
}

// Close closes the raw stream and notifies the current handler. Only the
// first call has any effect; later calls return the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.rw.Close()
		c.metrics.closed()

		c.mu.Lock()
		h := c.handler
		c.mu.Unlock()
		if h != nil {
			h.HandleDisconnect()
		}
		c.log.Debug().Msg("connection closed")
	})
	return c.closeErr
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool { return c.closed.Load() }
