package login

import (
	"testing"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/wire"
)

func TestOfflineUUID(t *testing.T) {
	id := OfflineUUID("Steve")
	assert.Equal(t, uuid.Version(3), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
	assert.Equal(t, id, OfflineUUID("Steve"))
	assert.NotEqual(t, id, OfflineUUID("steve"))
}

func TestHelloRoundTrip(t *testing.T) {
	in := &Hello{Name: "Steve", UUID: OfflineUUID("Steve")}
	buf, err := Protocol.Serialize(protocol.Serverbound, in)
	require.NoError(t, err)

	out, err := Protocol.Deserialize(protocol.Serverbound, buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHelloNameTooLong(t *testing.T) {
	buf := wire.NewWriter().
		WriteVarInt(HelloID).
		WriteString("seventeen_chars_x").
		WriteUUID(uuid.Nil).
		Bytes()
	_, err := Protocol.Deserialize(protocol.Serverbound, buf)
	assert.Error(t, err)
}

func TestLoginFinishedProperties(t *testing.T) {
	sig := "c2ln"
	in := &LoginFinished{
		UUID: OfflineUUID("Alex"),
		Name: "Alex",
		Properties: []Property{
			{Name: "textures", Value: "dGV4", Signature: &sig},
			{Name: "plain", Value: "v"},
		},
	}
	buf, err := Protocol.Serialize(protocol.Clientbound, in)
	require.NoError(t, err)

	out, err := Protocol.Deserialize(protocol.Clientbound, buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoginFinishedBadPropertyCount(t *testing.T) {
	buf := wire.NewWriter().
		WriteVarInt(LoginFinishedID).
		WriteUUID(uuid.Nil).
		WriteString("Alex").
		WriteVarInt(1000).
		Bytes()
	_, err := Protocol.Deserialize(protocol.Clientbound, buf)
	assert.Error(t, err)
}

func TestLoginCompressionAndDisconnect(t *testing.T) {
	buf, err := Protocol.Serialize(protocol.Clientbound, &LoginCompression{Threshold: 256})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x80, 0x02}, buf)

	buf, err = Protocol.Serialize(protocol.Clientbound, &LoginDisconnect{Reason: chat.Text("bye")})
	require.NoError(t, err)
	pkt, err := Protocol.Deserialize(protocol.Clientbound, buf)
	require.NoError(t, err)
	assert.Equal(t, "bye", pkt.(*LoginDisconnect).Reason.ClearString())
}

func TestLoginAcknowledgedShareIDWithCompression(t *testing.T) {
	pkt, err := Protocol.Deserialize(protocol.Serverbound, []byte{0x03})
	require.NoError(t, err)
	assert.IsType(t, &LoginAcknowledged{}, pkt)
}
