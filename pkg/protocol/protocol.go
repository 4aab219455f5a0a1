package protocol

import "github.com/go-mclib/transport/pkg/wire"

// Protocol holds the serverbound and clientbound packet sets of one phase.
type Protocol struct {
	phase       Phase
	serverbound *PacketSet
	clientbound *PacketSet
}

// Option configures a Protocol.
type Option func(*options)

type options struct {
	allowUnknown bool
}

// WithUnknownPassthrough makes Deserialize return *Unregistered for unknown
// IDs instead of ErrUnknownPacketID.
func WithUnknownPassthrough() Option {
	return func(o *options) { o.allowUnknown = true }
}

// New returns an empty Protocol for phase.
func New(phase Phase, opts ...Option) *Protocol {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Protocol{
		phase:       phase,
		serverbound: newPacketSet(Serverbound, o.allowUnknown),
		clientbound: newPacketSet(Clientbound, o.allowUnknown),
	}
}

func (p *Protocol) Phase() Phase { return p.phase }

func (p *Protocol) RegisterServerbound(id int32, f Factory) { p.serverbound.Register(id, f) }

func (p *Protocol) RegisterClientbound(id int32, f Factory) { p.clientbound.Register(id, f) }

// Packets returns the set for direction d.
func (p *Protocol) Packets(d Direction) *PacketSet {
	if d == Clientbound {
		return p.clientbound
	}
	return p.serverbound
}

// Serialize encodes pkt with the set for direction d and returns the bytes.
func (p *Protocol) Serialize(d Direction, pkt Packet) ([]byte, error) {
	w := wire.NewWriter()
	if err := p.Packets(d).Serialize(w, pkt); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Deserialize decodes buf with the set for direction d.
func (p *Protocol) Deserialize(d Direction, buf []byte) (Packet, error) {
	return p.Packets(d).Deserialize(buf)
}
