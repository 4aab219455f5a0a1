// Package helpers holds the flag and logger plumbing shared by the
// command line tools.
package helpers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/go-mclib/transport/pkg/client"
	"github.com/go-mclib/transport/pkg/client/modules/protocol"
	"github.com/go-mclib/transport/pkg/encryption"
)

// Flags holds common CLI flags for client commands.
type Flags struct {
	Address              string
	Username             string
	Verbose              bool
	MaxReconnectAttempts int
	ProtocolVersion      int32
	Timeout              time.Duration
	Cipher               string
}

// RegisterFlags registers the standard client flags on fs.
func RegisterFlags(fs *pflag.FlagSet, f *Flags) {
	fs.StringVarP(&f.Address, "server", "s", "localhost:25565", "server address (host[:port])")
	fs.StringVarP(&f.Username, "username", "u", "mcproto", "offline username")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "verbose logging")
	fs.IntVar(&f.MaxReconnectAttempts, "reconnects", 5, "max reconnect attempts (-1 = infinite, 0 = none)")
	fs.Int32Var(&f.ProtocolVersion, "protocol", client.DefaultProtocolVersion, "protocol version sent in the handshake")
	fs.DurationVar(&f.Timeout, "timeout", 10*time.Second, "dial and ping timeout")
	fs.StringVar(&f.Cipher, "cipher", encryption.Portable.Name, "CFB8 implementation (portable, go-mc)")
}

// CipherStrategy resolves a --cipher value.
func CipherStrategy(name string) (encryption.Strategy, error) {
	switch name {
	case encryption.Portable.Name, "":
		return encryption.Portable, nil
	case encryption.GoMC.Name, "gomc":
		return encryption.GoMC, nil
	}
	return encryption.Strategy{}, fmt.Errorf("unknown cipher %q", name)
}

// NewClient creates a client from parsed flags with the protocol module
// registered.
func NewClient(f Flags, logger zerolog.Logger) (*client.Client, error) {
	strategy, err := CipherStrategy(f.Cipher)
	if err != nil {
		return nil, err
	}
	c := client.New(f.Address, f.Username)
	c.MaxReconnectAttempts = f.MaxReconnectAttempts
	c.ProtocolVersion = f.ProtocolVersion
	c.Timeout = f.Timeout
	c.Cipher = strategy
	c.Logger = logger.With().Str("username", f.Username).Logger()
	c.Register(protocol.New())
	return c, nil
}

// Run connects and starts the client, logging the final error.
func Run(ctx context.Context, c *client.Client) error {
	err := c.ConnectAndStart(ctx)
	if err != nil && ctx.Err() == nil {
		c.Logger.Error().Err(err).Msg("client stopped")
	}
	return err
}

// NewLogger builds the process logger. Console output is human readable
// unless jsonOut is set. An unknown level falls back to info.
func NewLogger(w io.Writer, level string, jsonOut bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if !jsonOut {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
