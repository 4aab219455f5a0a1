package protocol

import (
	"testing"

	"github.com/go-mclib/transport/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namePacket struct {
	Name string
}

func (p *namePacket) ID() int32            { return 0x00 }
func (p *namePacket) Write(w *wire.Writer) { w.WriteString(p.Name) }
func (p *namePacket) Read(r *wire.Reader) (err error) {
	p.Name, err = r.ReadString(16)
	return err
}

type emptyPacket struct{}

func (p *emptyPacket) ID() int32                 { return 0x01 }
func (p *emptyPacket) Write(w *wire.Writer)      {}
func (p *emptyPacket) Read(r *wire.Reader) error { return nil }

type otherEmptyPacket struct{ emptyPacket }

func (p *otherEmptyPacket) ID() int32 { return 0x05 }

func TestProtocolRoundTrip(t *testing.T) {
	p := New(Status)
	p.RegisterServerbound(0x00, func() Packet { return &namePacket{} })
	p.RegisterClientbound(0x01, func() Packet { return &emptyPacket{} })

	buf := wire.NewWriter().WriteVarInt(0x00).WriteString("hello").Bytes()
	pkt, err := p.Deserialize(Serverbound, buf)
	require.NoError(t, err)
	assert.Equal(t, &namePacket{Name: "hello"}, pkt)

	out, err := p.Serialize(Serverbound, pkt)
	require.NoError(t, err)
	assert.Equal(t, buf, out)

	out, err = p.Serialize(Clientbound, &emptyPacket{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, out)
}

func TestDirectionsAreSeparate(t *testing.T) {
	p := New(Status)
	p.RegisterServerbound(0x00, func() Packet { return &namePacket{} })

	_, err := p.Serialize(Clientbound, &namePacket{Name: "x"})
	assert.ErrorIs(t, err, ErrUnregisteredPacketType)

	_, err = p.Deserialize(Clientbound, []byte{0x00, 0x00})
	assert.ErrorIs(t, err, ErrUnknownPacketID)
}

func TestUnknownPacketID(t *testing.T) {
	p := New(Play)
	_, err := p.Deserialize(Clientbound, []byte{0x00})
	assert.ErrorIs(t, err, ErrUnknownPacketID)
}

func TestUnknownPacketPassthrough(t *testing.T) {
	p := New(Play, WithUnknownPassthrough())

	pkt, err := p.Deserialize(Clientbound, []byte{0x2A, 0xDE, 0xAD})
	require.NoError(t, err)
	u, ok := pkt.(*Unregistered)
	require.True(t, ok, "got %T", pkt)
	assert.Equal(t, int32(0x2A), u.PacketID)
	assert.Equal(t, []byte{0xDE, 0xAD}, u.Data)

	// passthrough packets can be forwarded unchanged
	out, err := p.Serialize(Clientbound, u)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2A, 0xDE, 0xAD}, out)
}

// collidingPacket shares namePacket's ID but is a different type.
type collidingPacket struct{ Version int32 }

func (p *collidingPacket) ID() int32                 { return 0x00 }
func (p *collidingPacket) Write(w *wire.Writer)      { w.WriteVarInt(p.Version) }
func (p *collidingPacket) Read(r *wire.Reader) error { return nil }

func TestSerializeWrongTypeWithSameID(t *testing.T) {
	p := New(Login)
	p.RegisterServerbound(0x00, func() Packet { return &namePacket{} })

	w := wire.NewWriter()
	err := p.Packets(Serverbound).Serialize(w, &collidingPacket{Version: 770})
	assert.ErrorIs(t, err, ErrUnregisteredPacketType)
	assert.Zero(t, w.Len())

	_, err = p.Serialize(Serverbound, &Unregistered{PacketID: 0x00, Data: []byte{0x01}})
	assert.ErrorIs(t, err, ErrUnregisteredPacketType)

	out, err := p.Serialize(Serverbound, &namePacket{Name: "ok"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x02, 'o', 'k'}, out)
}

func TestPassthroughWritesUnregistered(t *testing.T) {
	p := New(Play, WithUnknownPassthrough())
	p.RegisterClientbound(0x01, func() Packet { return &emptyPacket{} })

	out, err := p.Serialize(Clientbound, &Unregistered{PacketID: 0x20, Data: []byte{0xAA}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x20, 0xAA}, out)

	_, err = p.Serialize(Clientbound, &otherEmptyPacket{})
	assert.ErrorIs(t, err, ErrUnregisteredPacketType)
}

func TestUnregisteredNotForwardedWithoutPassthrough(t *testing.T) {
	p := New(Play)
	_, err := p.Serialize(Clientbound, &Unregistered{PacketID: 3})
	assert.ErrorIs(t, err, ErrUnregisteredPacketType)
}

func TestTrailingBytes(t *testing.T) {
	p := New(Status)
	p.RegisterClientbound(0x01, func() Packet { return &emptyPacket{} })

	_, err := p.Deserialize(Clientbound, []byte{0x01, 0x00})
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestShortBody(t *testing.T) {
	p := New(Status)
	p.RegisterServerbound(0x00, func() Packet { return &namePacket{} })

	_, err := p.Deserialize(Serverbound, []byte{0x00, 0x05, 'a'})
	assert.ErrorIs(t, err, wire.ErrUnexpectedEOF)
}

func TestMalformedID(t *testing.T) {
	p := New(Status)
	_, err := p.Deserialize(Serverbound, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	assert.ErrorIs(t, err, wire.ErrMalformedVarInt)
}

func TestRegisterPanics(t *testing.T) {
	p := New(Login)
	p.RegisterClientbound(0x01, func() Packet { return &emptyPacket{} })

	assert.Panics(t, func() {
		p.RegisterClientbound(0x01, func() Packet { return &emptyPacket{} })
	}, "duplicate id")

	assert.Panics(t, func() {
		p.RegisterClientbound(0x02, func() Packet { return &emptyPacket{} })
	}, "id mismatch")

	assert.NotPanics(t, func() {
		p.RegisterClientbound(0x05, func() Packet { return &otherEmptyPacket{} })
	})
	assert.Equal(t, 2, p.Packets(Clientbound).Len())
}

func TestHandlerFuncsNil(t *testing.T) {
	var h Handler = HandlerFuncs{}
	assert.NoError(t, h.HandlePacket(&emptyPacket{}))
	h.HandleDisconnect()
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "handshake", Handshake.String())
	assert.Equal(t, "play", Play.String())
	assert.Equal(t, "clientbound", Clientbound.String())
}
