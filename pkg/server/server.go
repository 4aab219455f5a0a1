// Package server accepts connections and answers server list pings and
// offline logins. After a login the session is handed to Config.OnPlay.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/Tnze/go-mc/chat"
	"github.com/rs/zerolog"

	"github.com/go-mclib/transport/pkg/conn"
	"github.com/go-mclib/transport/pkg/encryption"
	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/protocol/status"
)

// Config holds the server settings. The zero value answers pings with an
// empty description and accepts every login.
type Config struct {
	Address         string
	ProtocolVersion int32
	VersionName     string
	MaxPlayers      int
	Description     chat.Message
	Favicon         string

	// CompressionThreshold is sent to clients during login. Zero compresses
	// every packet; negative disables compression.
	CompressionThreshold int

	// KickMessage, when set, refuses every login with this reason.
	KickMessage string

	// OnPlay is called on the session's goroutine once a client enters the
	// play phase. Packets received afterwards are passed to OnPacket.
	OnPlay   func(s *Session)
	OnPacket func(s *Session, p protocol.Packet)

	Cipher  encryption.Strategy
	Metrics *conn.Metrics
	Logger  zerolog.Logger
}

// Server serves Config over accepted connections.
type Server struct {
	cfg Config
	log zerolog.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}
	wg       sync.WaitGroup
}

// New creates a server. Unset fields keep their zero meaning except
// Cipher, which defaults to encryption.Portable.
func New(cfg Config) *Server {
	if cfg.Cipher.Encrypter == nil {
		cfg.Cipher = encryption.Portable
	}
	return &Server{
		cfg:      cfg,
		log:      cfg.Logger.With().Str("component", "server").Logger(),
		sessions: make(map[*Session]struct{}),
	}
}

// ListenAndServe listens on cfg.Address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes every
// open session and waits for them to finish. It always returns a non-nil
// error; after ctx is done that is ctx.Err().
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.closeAll()

	s.log.Info().Str("address", ln.Addr().String()).Msg("listening")
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}
		sess := s.newSession(nc)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			sess.run()
		}()
	}
}

func (s *Server) newSession(nc net.Conn) *Session {
	log := s.log.With().Str("remote", nc.RemoteAddr().String()).Logger()
	opts := []conn.Option{conn.WithLogger(log), conn.WithCipher(s.cfg.Cipher)}
	if s.cfg.Metrics != nil {
		opts = append(opts, conn.WithMetrics(s.cfg.Metrics))
	}
	sess := &Session{srv: s, conn: conn.New(nc, opts...), log: log}

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	return sess
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	for sess := range s.sessions {
		_ = sess.conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) statusResponse() status.Response {
	return status.Response{
		Version: status.Version{Name: s.cfg.VersionName, Protocol: s.cfg.ProtocolVersion},
		Players: &status.Players{
			Max:    s.cfg.MaxPlayers,
			Online: s.online(),
		},
		Description: s.cfg.Description,
		Favicon:     s.cfg.Favicon,
	}
}

func (s *Server) online() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sess := range s.sessions {
		if sess.playing.Load() {
			n++
		}
	}
	return n
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
