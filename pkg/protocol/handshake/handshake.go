// Package handshake defines the handshake phase: a single serverbound
// packet announcing the protocol version and the phase to switch to.
package handshake

import (
	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/wire"
)

// Intent values carried by Intention.
const (
	IntentStatus   int32 = 1
	IntentLogin    int32 = 2
	IntentTransfer int32 = 3
)

const IntentionID int32 = 0x00

type Intention struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	Intent          int32
}

func (p *Intention) ID() int32 { return IntentionID }

func (p *Intention) Write(w *wire.Writer) {
	w.WriteVarInt(p.ProtocolVersion).
		WriteString(p.ServerAddress).
		WriteUint16(p.ServerPort).
		WriteVarInt(p.Intent)
}

func (p *Intention) Read(r *wire.Reader) (err error) {
	if p.ProtocolVersion, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.ServerAddress, err = r.ReadString(255); err != nil {
		return err
	}
	if p.ServerPort, err = r.ReadUint16(); err != nil {
		return err
	}
	p.Intent, err = r.ReadVarInt()
	return err
}

func (p *Intention) Handle(h ServerHandler) error { return h.HandleIntention(p) }

// NextPhase maps the intent to the phase the connection switches to.
func (p *Intention) NextPhase() (protocol.Phase, bool) {
	switch p.Intent {
	case IntentStatus:
		return protocol.Status, true
	case IntentLogin, IntentTransfer:
		return protocol.Login, true
	}
	return 0, false
}

// ServerHandler handles serverbound handshake packets.
type ServerHandler interface {
	protocol.DisconnectHandler
	HandleIntention(p *Intention) error
}

// UnimplementedServerHandler ignores every packet.
type UnimplementedServerHandler struct{}

func (UnimplementedServerHandler) HandleIntention(*Intention) error { return nil }
func (UnimplementedServerHandler) HandleDisconnect()                {}

// Protocol is the handshake phase registry.
var Protocol = newProtocol()

func newProtocol() *protocol.Protocol {
	p := protocol.New(protocol.Handshake)
	p.RegisterServerbound(IntentionID, func() protocol.Packet { return &Intention{} })
	return p
}
