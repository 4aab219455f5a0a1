package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/wire"
)

func TestIntentionRoundTrip(t *testing.T) {
	in := &Intention{ProtocolVersion: 772, ServerAddress: "localhost", ServerPort: 25565, Intent: IntentStatus}

	buf, err := Protocol.Serialize(protocol.Serverbound, in)
	require.NoError(t, err)

	want := wire.NewWriter().
		WriteVarInt(IntentionID).
		WriteVarInt(772).
		WriteString("localhost").
		WriteUint16(25565).
		WriteVarInt(1).
		Bytes()
	assert.Equal(t, want, buf)

	out, err := Protocol.Deserialize(protocol.Serverbound, buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestIntentionNextPhase(t *testing.T) {
	tests := []struct {
		intent int32
		phase  protocol.Phase
		ok     bool
	}{
		{IntentStatus, protocol.Status, true},
		{IntentLogin, protocol.Login, true},
		{IntentTransfer, protocol.Login, true},
		{7, 0, false},
	}
	for _, tt := range tests {
		phase, ok := (&Intention{Intent: tt.intent}).NextPhase()
		assert.Equal(t, tt.ok, ok, "intent %d", tt.intent)
		if ok {
			assert.Equal(t, tt.phase, phase)
		}
	}
}

type recordingHandler struct {
	UnimplementedServerHandler
	got *Intention
}

func (h *recordingHandler) HandleIntention(p *Intention) error {
	h.got = p
	return nil
}

func TestDispatchIntention(t *testing.T) {
	h := &recordingHandler{}
	d := protocol.Dispatcher[ServerHandler](h)

	p := &Intention{Intent: IntentLogin}
	require.NoError(t, d.HandlePacket(p))
	assert.Same(t, p, h.got)

	// packets from other phases are ignored
	require.NoError(t, d.HandlePacket(&protocol.Unregistered{PacketID: 9}))
}
