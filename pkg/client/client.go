package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-mclib/transport/pkg/conn"
	"github.com/go-mclib/transport/pkg/encryption"
	"github.com/go-mclib/transport/pkg/protocol"
)

// DefaultProtocolVersion is announced in the handshake unless overridden.
const DefaultProtocolVersion = 772 // 1.21.8

// ErrDisconnected is returned by ConnectAndStart when the server ends a
// session the client did not close itself.
var ErrDisconnected = errors.New("client: disconnected by server")

type Client struct {
	*conn.Conn

	// connection
	Address         string
	Username        string
	ProtocolVersion int32
	Timeout         time.Duration
	Resolver        Resolver
	Cipher          encryption.Strategy
	Metrics         *conn.Metrics

	// reconnection
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	shouldReconnect      atomic.Bool
	forced               atomic.Bool

	Logger zerolog.Logger

	// modules
	modules       []Module
	modulesByName map[string]Module
	handlers      []Handler

	// populated after Connect()
	resolved Address

	sendMu sync.Mutex
	swarm  *Swarm
}

// New creates a minimal client. Register modules before calling ConnectAndStart.
func New(address, username string) *Client {
	return &Client{
		Address:              address,
		Username:             username,
		ProtocolVersion:      DefaultProtocolVersion,
		Timeout:              10 * time.Second,
		Cipher:               encryption.Portable,
		MaxReconnectAttempts: 5,
		ReconnectDelay:       3 * time.Second,
		Logger:               zerolog.Nop(),
		modulesByName:        make(map[string]Module),
	}
}

// ResolvedAddr returns the address the client connected to.
func (c *Client) ResolvedAddr() Address { return c.resolved }

// Register adds a module to the client. Panics on duplicate name.
func (c *Client) Register(m Module) {
	if _, exists := c.modulesByName[m.Name()]; exists {
		panic("module already registered: " + m.Name())
	}
	c.modules = append(c.modules, m)
	c.modulesByName[m.Name()] = m
	m.Init(c)
}

// Module returns a registered module by name, or nil.
func (c *Client) Module(name string) Module {
	return c.modulesByName[name]
}

// RegisterHandler appends a lightweight packet callback (escape hatch).
func (c *Client) RegisterHandler(h Handler) {
	c.handlers = append(c.handlers, h)
}

// SetProtocol selects the protocol used for both directions from now on.
func (c *Client) SetProtocol(p *protocol.Protocol) {
	c.Conn.SetClientProtocol(p, nil)
}

// WritePacket sends p with the active protocol. It may be called from any
// goroutine.
func (c *Client) WritePacket(p protocol.Packet) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.Conn == nil {
		return net.ErrClosed
	}
	return c.Conn.Send(p)
}

// Disconnect closes the connection. If force is true, no reconnect is attempted.
func (c *Client) Disconnect(force bool) error {
	c.forced.Store(force)
	c.shouldReconnect.Store(!force)
	c.sendMu.Lock()
	cn := c.Conn
	c.sendMu.Unlock()
	if cn == nil {
		return nil
	}
	return cn.Close()
}

// Swarm returns the swarm this client belongs to, or nil.
func (c *Client) Swarm() *Swarm { return c.swarm }

// dial resolves the address and opens a TCP connection to it.
func (c *Client) dial(ctx context.Context) (net.Conn, Address, error) {
	addr, err := ParseAddress(c.Address)
	if err != nil {
		return nil, Address{}, err
	}
	resolved := ResolveAddress(ctx, c.Resolver, addr)

	d := net.Dialer{Timeout: c.Timeout}
	nc, err := d.DialContext(ctx, "tcp", resolved.String())
	if err != nil {
		return nil, Address{}, fmt.Errorf("connect failed: %w", err)
	}
	c.Logger.Debug().Str("address", resolved.String()).Msg("connected")
	return nc, resolved, nil
}

func (c *Client) newConn(nc net.Conn) *conn.Conn {
	opts := []conn.Option{
		conn.WithLogger(c.Logger),
		conn.WithCipher(c.Cipher),
	}
	if c.Metrics != nil {
		opts = append(opts, conn.WithMetrics(c.Metrics))
	}
	return conn.New(nc, opts...)
}

// ConnectAndStart connects, runs the registered modules' login sequence and
// enters the module dispatch loop, reconnecting as configured. It returns
// nil once the client is disconnected with force.
func (c *Client) ConnectAndStart(ctx context.Context) error {
	attempts := 0
	maxAttempts := c.MaxReconnectAttempts

	for {
		c.shouldReconnect.Store(false)
		c.forced.Store(false)
		err := c.connectAndStartOnce(ctx)
		if err == nil {
			return nil
		}

		c.Logger.Warn().Err(err).Msg("connection error")

		if ctx.Err() != nil {
			return err
		}
		if !c.shouldReconnect.Load() || maxAttempts == 0 {
			c.Logger.Info().Msg("not reconnecting, exiting")
			return err
		}

		attempts++
		if maxAttempts > 0 && attempts > maxAttempts {
			c.Logger.Warn().Int("attempts", maxAttempts).Msg("max reconnect attempts reached, giving up")
			return err
		}
		c.Logger.Info().
			Int("attempt", attempts).
			Int("max", maxAttempts).
			Dur("delay", c.ReconnectDelay).
			Msg("reconnecting")

		select {
		case <-time.After(c.ReconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) connectAndStartOnce(ctx context.Context) error {
	// reset all modules
	for _, m := range c.modules {
		m.Reset()
	}

	nc, resolved, err := c.dial(ctx)
	if err != nil {
		c.shouldReconnect.Store(true)
		return err
	}
	c.sendMu.Lock()
	c.Conn = c.newConn(nc)
	c.sendMu.Unlock()
	c.resolved = resolved

	cn := c.Conn
	stop := context.AfterFunc(ctx, func() { _ = cn.Close() })
	defer stop()
	defer cn.Close()

	// notify modules of connection
	for _, m := range c.modules {
		if ch, ok := m.(ConnectHandler); ok {
			if err := ch.OnConnect(); err != nil {
				return fmt.Errorf("%s: %w", m.Name(), err)
			}
		}
	}

	// packet loop
	for {
		pkt, err := cn.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				if c.forced.Load() {
					return nil
				}
				c.shouldReconnect.Store(true)
				return ErrDisconnected
			}
			c.Logger.Error().Err(err).Msg("read packet error")
			c.shouldReconnect.Store(true)
			return err
		}
		for _, m := range c.modules {
			m.HandlePacket(pkt)
		}
		for _, h := range c.handlers {
			h(c, pkt)
		}
	}
}
