package protocol

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mclib/transport/pkg/client"
	mcproto "github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/protocol/login"
	"github.com/go-mclib/transport/pkg/server"
)

func startServer(t *testing.T, cfg server.Config) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.New(cfg).Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

func newClient(addr, name string) (*client.Client, *Module) {
	c := client.New(addr, name)
	c.Timeout = 5 * time.Second
	c.MaxReconnectAttempts = 0
	c.ReconnectDelay = 10 * time.Millisecond
	m := New()
	c.Register(m)
	return c, m
}

func run(t *testing.T, c *client.Client) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.ConnectAndStart(ctx)
}

func TestOfflineLogin(t *testing.T) {
	addr := startServer(t, server.Config{
		CompressionThreshold: 16,
		OnPlay: func(s *server.Session) {
			_ = s.Send(&mcproto.Unregistered{PacketID: 0x30, Data: make([]byte, 40)})
			_ = s.Close()
		},
	})

	c, m := newClient(addr, "Steve")
	var got []mcproto.Packet
	c.RegisterHandler(func(c *client.Client, p mcproto.Packet) {
		if _, ok := p.(*mcproto.Unregistered); ok {
			got = append(got, p)
		}
	})

	err := run(t, c)
	assert.ErrorIs(t, err, client.ErrDisconnected)

	require.NotNil(t, m.Profile())
	assert.Equal(t, "Steve", m.Profile().Name)
	assert.Equal(t, login.OfflineUUID("Steve"), m.Profile().UUID)
	assert.Equal(t, 16, c.CompressionThreshold())
	phase, _ := c.Phase()
	assert.Equal(t, mcproto.Play, phase)

	require.Len(t, got, 1)
	assert.Equal(t, &mcproto.Unregistered{PacketID: 0x30, Data: make([]byte, 40)}, got[0])
}

func TestForcedDisconnect(t *testing.T) {
	addr := startServer(t, server.Config{
		CompressionThreshold: -1,
		OnPlay: func(s *server.Session) {
			_ = s.Send(&mcproto.Unregistered{PacketID: 0x01})
		},
	})

	c, _ := newClient(addr, "Alex")
	c.RegisterHandler(func(c *client.Client, p mcproto.Packet) {
		if _, ok := p.(*mcproto.Unregistered); ok {
			_ = c.Disconnect(true)
		}
	})
	assert.NoError(t, run(t, c))
}

func TestOnLoginAndCancel(t *testing.T) {
	addr := startServer(t, server.Config{CompressionThreshold: -1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, m := newClient(addr, "Alex")
	c.MaxReconnectAttempts = 5
	var joined *login.LoginFinished
	m.OnLogin = func(p *login.LoginFinished) {
		joined = p
		cancel()
	}

	err := c.ConnectAndStart(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, joined)
	assert.Equal(t, "Alex", joined.Name)
}

func TestKickAndReconnect(t *testing.T) {
	addr := startServer(t, server.Config{KickMessage: "banned"})

	c, m := newClient(addr, "Alex")
	c.MaxReconnectAttempts = 1
	kicks := 0
	c.RegisterHandler(func(c *client.Client, p mcproto.Packet) {
		if _, ok := p.(*login.LoginDisconnect); ok {
			kicks++
		}
	})

	err := run(t, c)
	assert.ErrorIs(t, err, client.ErrDisconnected)
	assert.Equal(t, 2, kicks)
	assert.Equal(t, "banned", m.KickReason())
	assert.Nil(t, m.Profile())
}

func TestFrom(t *testing.T) {
	c, m := newClient("localhost", "Alex")
	assert.Same(t, m, From(c))
	assert.Nil(t, From(client.New("localhost", "Alex")))
}
