package protocol

import (
	"fmt"
	"reflect"

	"github.com/go-mclib/transport/pkg/wire"
)

// PacketSet is the ID to type mapping for one direction of one phase. It is
// populated at startup and must not be registered into once in use.
type PacketSet struct {
	direction    Direction
	factories    map[int32]Factory
	types        map[int32]reflect.Type
	allowUnknown bool
}

func newPacketSet(d Direction, allowUnknown bool) *PacketSet {
	return &PacketSet{
		direction:    d,
		factories:    make(map[int32]Factory),
		types:        make(map[int32]reflect.Type),
		allowUnknown: allowUnknown,
	}
}

// Register binds id to the packets produced by f. It panics if id is taken
// or if the packet reports a different ID, both programmer errors.
func (s *PacketSet) Register(id int32, f Factory) {
	if f == nil {
		panic("protocol: nil packet factory")
	}
	sample := f()
	if sample.ID() != id {
		panic(fmt.Sprintf("protocol: %T reports id 0x%02X, registered as 0x%02X", sample, sample.ID(), id))
	}
	if prev, ok := s.factories[id]; ok {
		panic(fmt.Sprintf("protocol: %s id 0x%02X already registered to %T", s.direction, id, prev()))
	}
	s.factories[id] = f
	s.types[id] = reflect.TypeOf(sample)
}

// Direction returns the direction the set decodes.
func (s *PacketSet) Direction() Direction { return s.direction }

// Len returns the number of registered packet types.
func (s *PacketSet) Len() int { return len(s.factories) }

// Lookup returns the factory registered for id.
func (s *PacketSet) Lookup(id int32) (Factory, bool) {
	f, ok := s.factories[id]
	return f, ok
}

// Serialize writes VarInt(id) followed by the packet body into w. p must
// be of the type registered under its ID. *Unregistered packets are written
// as is when the set passes unknown packets through.
func (s *PacketSet) Serialize(w *wire.Writer, p Packet) error {
	id := p.ID()
	if _, raw := p.(*Unregistered); !raw || !s.allowUnknown {
		if want, ok := s.types[id]; !ok || reflect.TypeOf(p) != want {
			return fmt.Errorf("%w: %T (id 0x%02X, %s)", ErrUnregisteredPacketType, p, id, s.direction)
		}
	}
	w.WriteVarInt(id)
	p.Write(w)
	if err := w.Err(); err != nil {
		return fmt.Errorf("protocol: write %T: %w", p, err)
	}
	return nil
}

// Deserialize decodes one packet from buf, which must hold exactly one
// packet: VarInt(id) followed by its body.
func (s *PacketSet) Deserialize(buf []byte) (Packet, error) {
	r := wire.NewReader(buf)
	id, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("protocol: read packet id: %w", err)
	}

	f, ok := s.factories[id]
	if !ok {
		if s.allowUnknown {
			p := &Unregistered{PacketID: id}
			_ = p.Read(r)
			return p, nil
		}
		return nil, fmt.Errorf("%w: 0x%02X (%s)", ErrUnknownPacketID, id, s.direction)
	}

	p := f()
	if err := p.Read(r); err != nil {
		return nil, fmt.Errorf("protocol: read %T: %w", p, err)
	}
	if n := r.Remaining(); n > 0 {
		return nil, fmt.Errorf("%w: %d bytes left reading %T", ErrTrailingBytes, n, p)
	}
	return p, nil
}
