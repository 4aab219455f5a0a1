package server

import (
	"fmt"
	"sync/atomic"

	"github.com/Tnze/go-mc/chat"
	"github.com/rs/zerolog"

	"github.com/go-mclib/transport/pkg/conn"
	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/protocol/handshake"
	"github.com/go-mclib/transport/pkg/protocol/login"
	"github.com/go-mclib/transport/pkg/protocol/status"
)

// Session is one accepted connection. It implements the serverbound
// handler of every phase it serves.
type Session struct {
	srv  *Server
	conn *conn.Conn
	log  zerolog.Logger

	intention handshake.Intention
	profile   login.LoginFinished
	playing   atomic.Bool
}

// Intention returns the handshake the client sent.
func (s *Session) Intention() handshake.Intention { return s.intention }

// Profile returns the identity assigned at login.
func (s *Session) Profile() login.LoginFinished { return s.profile }

// Conn returns the underlying connection.
func (s *Session) Conn() *conn.Conn { return s.conn }

// Send sends p with the session's current protocol.
func (s *Session) Send(p protocol.Packet) error { return s.conn.Send(p) }

// Close closes the session.
func (s *Session) Close() error { return s.conn.Close() }

func (s *Session) run() {
	defer s.srv.remove(s)
	defer s.conn.Close()

	s.conn.SetServerProtocol(handshake.Protocol, protocol.Dispatcher[handshake.ServerHandler](s))
	for {
		if _, err := s.conn.Receive(); err != nil {
			if !isClosed(err) {
				s.log.Warn().Err(err).Msg("session ended")
			}
			return
		}
	}
}

func (s *Session) HandleIntention(p *handshake.Intention) error {
	s.intention = *p
	next, ok := p.NextPhase()
	if !ok {
		return fmt.Errorf("server: unknown intent %d", p.Intent)
	}
	s.log.Debug().
		Int32("protocol", p.ProtocolVersion).
		Str("host", p.ServerAddress).
		Stringer("next", next).
		Msg("handshake")

	switch next {
	case protocol.Status:
		s.conn.SetServerProtocol(status.Protocol, protocol.Dispatcher[status.ServerHandler](s))
	case protocol.Login:
		s.conn.SetServerProtocol(login.Protocol, protocol.Dispatcher[login.ServerHandler](s))
	}
	return nil
}

func (s *Session) HandleStatusRequest(*status.StatusRequest) error {
	return s.conn.Send(&status.StatusResponse{Status: s.srv.statusResponse()})
}

// HandlePingRequest answers the ping and ends the session, as the status
// exchange is complete.
func (s *Session) HandlePingRequest(p *status.PingRequest) error {
	if err := s.conn.Send(&status.PongResponse{Payload: p.Payload}); err != nil {
		return err
	}
	return s.conn.Close()
}

func (s *Session) HandleHello(p *login.Hello) error {
	cfg := s.srv.cfg
	if cfg.KickMessage != "" {
		s.log.Info().Str("name", p.Name).Msg("login refused")
		if err := s.conn.Send(&login.LoginDisconnect{Reason: chat.Text(cfg.KickMessage)}); err != nil {
			return err
		}
		return s.conn.Close()
	}

	if cfg.CompressionThreshold >= 0 {
		if err := s.conn.Send(&login.LoginCompression{Threshold: int32(cfg.CompressionThreshold)}); err != nil {
			return err
		}
		s.conn.SetCompression(cfg.CompressionThreshold)
	}

	s.profile = login.LoginFinished{UUID: login.OfflineUUID(p.Name), Name: p.Name}
	return s.conn.Send(&s.profile)
}

func (s *Session) HandleLoginAcknowledged(*login.LoginAcknowledged) error {
	play := protocol.New(protocol.Play, protocol.WithUnknownPassthrough())
	s.conn.SetServerProtocol(play, protocol.HandlerFuncs{
		OnPacket: func(p protocol.Packet) error {
			if s.srv.cfg.OnPacket != nil {
				s.srv.cfg.OnPacket(s, p)
			}
			return nil
		},
		OnDisconnect: s.HandleDisconnect,
	})
	s.playing.Store(true)
	s.log.Info().Str("name", s.profile.Name).Stringer("uuid", s.profile.UUID).Msg("player joined")

	if s.srv.cfg.OnPlay != nil {
		s.srv.cfg.OnPlay(s)
	}
	return nil
}

// HandleDisconnect is called once when the connection closes.
func (s *Session) HandleDisconnect() {
	if s.playing.Swap(false) {
		s.log.Info().Str("name", s.profile.Name).Msg("player left")
	}
}
