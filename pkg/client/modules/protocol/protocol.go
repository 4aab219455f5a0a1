package protocol

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/go-mclib/transport/pkg/client"
	mcproto "github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/protocol/handshake"
	"github.com/go-mclib/transport/pkg/protocol/login"
)

const ModuleName = "protocol"

// Module drives the client through handshake -> login -> play for offline
// mode servers.
type Module struct {
	login.UnimplementedClientHandler

	client   *client.Client
	dispatch mcproto.Handler

	// Play is installed once the login finishes. Nil means a play protocol
	// with no packets that passes every packet through as
	// *protocol.Unregistered.
	Play *mcproto.Protocol

	// OnLogin is called after the client acknowledged the login.
	OnLogin func(p *login.LoginFinished)

	profile    *login.LoginFinished
	kickReason string
}

func New() *Module {
	m := &Module{}
	m.dispatch = mcproto.Dispatcher[login.ClientHandler](m)
	return m
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) {
	m.client = c
}

func (m *Module) Reset() {
	m.profile = nil
	m.kickReason = ""
}

// From retrieves the protocol module from a client.
func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// Profile returns the identity the server assigned at login, or nil
// before the login finished.
func (m *Module) Profile() *login.LoginFinished { return m.profile }

// KickReason returns the plain text of the last login disconnect.
func (m *Module) KickReason() string { return m.kickReason }

// OnConnect sends handshake and login start after TCP connection.
func (m *Module) OnConnect() error {
	c := m.client
	addr := c.ResolvedAddr()

	c.SetProtocol(handshake.Protocol)
	if err := c.WritePacket(&handshake.Intention{
		ProtocolVersion: c.ProtocolVersion,
		ServerAddress:   addr.Host,
		ServerPort:      addr.Port,
		Intent:          handshake.IntentLogin,
	}); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}

	c.SetProtocol(login.Protocol)
	if err := c.WritePacket(&login.Hello{
		Name: c.Username,
		UUID: login.OfflineUUID(c.Username),
	}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}
	return nil
}

func (m *Module) HandlePacket(p mcproto.Packet) {
	if phase, _ := m.client.Phase(); phase != mcproto.Login {
		return
	}
	if err := m.dispatch.HandlePacket(p); err != nil {
		m.client.Logger.Error().Err(err).Msg("login")
		_ = m.client.Disconnect(false)
	}
}

func (m *Module) HandleLoginCompression(p *login.LoginCompression) error {
	m.client.SetCompression(int(p.Threshold))
	m.client.Logger.Info().Int32("threshold", p.Threshold).Msg("compression enabled")
	return nil
}

func (m *Module) HandleLoginFinished(p *login.LoginFinished) error {
	c := m.client
	c.Logger.Info().Str("name", p.Name).Stringer("uuid", p.UUID).Msg("login successful")
	if want := login.OfflineUUID(c.Username); p.UUID != want && p.UUID != uuid.Nil {
		c.Logger.Debug().Stringer("expected", want).Msg("server assigned a non-offline uuid")
	}

	if err := c.WritePacket(&login.LoginAcknowledged{}); err != nil {
		return fmt.Errorf("send login acknowledged: %w", err)
	}
	play := m.Play
	if play == nil {
		play = mcproto.New(mcproto.Play, mcproto.WithUnknownPassthrough())
	}
	c.SetProtocol(play)
	m.profile = p
	c.Logger.Info().Msg("switched from login -> play phase")

	if m.OnLogin != nil {
		m.OnLogin(p)
	}
	return nil
}

func (m *Module) HandleLoginDisconnect(p *login.LoginDisconnect) error {
	m.kickReason = p.Reason.ClearString()
	m.client.Logger.Warn().Str("reason", m.kickReason).Msg("login disconnect")
	return m.client.Disconnect(false)
}
