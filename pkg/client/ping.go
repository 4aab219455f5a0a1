package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-mclib/transport/pkg/protocol/handshake"
	"github.com/go-mclib/transport/pkg/protocol/status"
)

// PingResult is the outcome of a server list ping.
type PingResult struct {
	Address Address
	Status  status.Response
	Latency time.Duration
}

// Ping performs a server list ping on its own connection: handshake with
// the status intent, status request, then a ping/pong round trip whose
// duration is reported as Latency. The client's Timeout bounds the whole
// exchange.
func (c *Client) Ping(ctx context.Context) (*PingResult, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	nc, addr, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}
	cn := c.newConn(nc)
	defer cn.Close()
	stop := context.AfterFunc(ctx, func() { _ = cn.Close() })
	defer stop()

	cn.SetClientProtocol(handshake.Protocol, nil)
	if err := cn.Send(&handshake.Intention{
		ProtocolVersion: c.ProtocolVersion,
		ServerAddress:   addr.Host,
		ServerPort:      addr.Port,
		Intent:          handshake.IntentStatus,
	}); err != nil {
		return nil, fmt.Errorf("send handshake: %w", err)
	}

	cn.SetClientProtocol(status.Protocol, nil)
	if err := cn.Send(&status.StatusRequest{}); err != nil {
		return nil, fmt.Errorf("send status request: %w", err)
	}
	pkt, err := receive(ctx, cn.Receive)
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}
	resp, ok := pkt.(*status.StatusResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected packet %T during status", pkt)
	}

	start := time.Now()
	payload := start.UnixMilli()
	if err := cn.Send(&status.PingRequest{Payload: payload}); err != nil {
		return nil, fmt.Errorf("send ping: %w", err)
	}
	pkt, err = receive(ctx, cn.Receive)
	if err != nil {
		return nil, fmt.Errorf("read pong: %w", err)
	}
	pong, ok := pkt.(*status.PongResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected packet %T during ping", pkt)
	}
	if pong.Payload != payload {
		return nil, fmt.Errorf("pong payload %d does not match ping %d", pong.Payload, payload)
	}

	result := &PingResult{Address: addr, Status: resp.Status, Latency: time.Since(start)}
	c.Logger.Debug().
		Str("address", addr.String()).
		Str("version", result.Status.Version.Name).
		Dur("latency", result.Latency).
		Msg("ping")
	return result, nil
}

// receive reports an end of stream as io.ErrUnexpectedEOF, or as the
// context error when the context closed the connection.
func receive[T any](ctx context.Context, f func() (T, error)) (T, error) {
	v, err := f()
	if errors.Is(err, io.EOF) {
		if ctx.Err() != nil {
			return v, ctx.Err()
		}
		return v, io.ErrUnexpectedEOF
	}
	return v, err
}
