package protocol

// DisconnectHandler is embedded by every phase handler interface.
type DisconnectHandler interface {
	HandleDisconnect()
}

// Handleable is implemented by the packets of a phase: each dispatches
// itself to the matching method of the phase handler H.
type Handleable[H any] interface {
	Handle(h H) error
}

// Dispatcher adapts a phase handler to Handler. Packets that do not belong
// to H's phase and direction, including *Unregistered, are ignored.
func Dispatcher[H DisconnectHandler](h H) Handler {
	return dispatcher[H]{h: h}
}

type dispatcher[H DisconnectHandler] struct {
	h H
}

func (d dispatcher[H]) HandlePacket(p Packet) error {
	if hp, ok := p.(Handleable[H]); ok {
		return hp.Handle(d.h)
	}
	return nil
}

func (d dispatcher[H]) HandleDisconnect() { d.h.HandleDisconnect() }
