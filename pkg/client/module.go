package client

import "github.com/go-mclib/transport/pkg/protocol"

// Module is a pluggable component driven by the client's packet loop.
type Module interface {
	// Name returns a unique key for this module (e.g. "protocol").
	Name() string
	// Init is called once when the module is registered on a client.
	// Store the *Client reference for later use.
	Init(c *Client)
	// HandlePacket is called for every incoming packet in any phase.
	HandlePacket(p protocol.Packet)
	// Reset is called on reconnect to clear module state.
	Reset()
}

// ConnectHandler is optionally implemented by modules that need to act
// after the TCP connection is established but before the packet loop starts.
// The protocol module uses this to send the handshake and login start.
type ConnectHandler interface {
	OnConnect() error
}

// Handler is a lightweight packet callback for one-off matching.
type Handler func(c *Client, p protocol.Packet)
