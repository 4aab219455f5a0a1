// Package protocol maps numeric packet IDs to packet types, per protocol
// phase and traffic direction.
package protocol

import (
	"fmt"

	"github.com/go-mclib/transport/pkg/wire"
)

// Packet is implemented by every packet type. ID is the packet's numeric ID
// within its phase and direction. Write must be pure; Read fills the
// receiver from the bytes following the ID.
type Packet interface {
	ID() int32
	Write(w *wire.Writer)
	Read(r *wire.Reader) error
}

// Factory returns a new zero packet ready for Read.
type Factory func() Packet

// Handler receives decoded packets from a connection. HandleDisconnect is
// called exactly once when the connection closes.
type Handler interface {
	HandlePacket(p Packet) error
	HandleDisconnect()
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are no-ops.
type HandlerFuncs struct {
	OnPacket     func(p Packet) error
	OnDisconnect func()
}

func (h HandlerFuncs) HandlePacket(p Packet) error {
	if h.OnPacket == nil {
		return nil
	}
	return h.OnPacket(p)
}

func (h HandlerFuncs) HandleDisconnect() {
	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
}

// Unregistered carries a packet whose ID has no registered type, for
// registries that tolerate unknown IDs. Data holds the bytes after the ID.
type Unregistered struct {
	PacketID int32
	Data     []byte
}

func (p *Unregistered) ID() int32 { return p.PacketID }

// Write re-emits the undecoded body so the packet can be forwarded as is.
func (p *Unregistered) Write(w *wire.Writer) { w.WriteBytes(p.Data) }

func (p *Unregistered) Read(r *wire.Reader) error {
	p.Data = append([]byte(nil), r.ReadRest()...)
	return nil
}

func (p *Unregistered) String() string {
	return fmt.Sprintf("Unregistered{id=0x%02X, %d bytes}", p.PacketID, len(p.Data))
}
