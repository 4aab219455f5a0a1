package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Tnze/go-mc/chat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-mclib/transport/pkg/client"
	"github.com/go-mclib/transport/pkg/conn"
	"github.com/go-mclib/transport/pkg/helpers"
	"github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/server"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var (
		cfg         server.Config
		motd        string
		cipher      string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a minimal offline-mode server",
		Long: `Serve answers server list pings and accepts offline logins. Players
that finish the login are held in the play phase and their packets are
logged until they disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger()
			strategy, err := helpers.CipherStrategy(cipher)
			if err != nil {
				return err
			}
			cfg.Cipher = strategy
			cfg.Description = chat.Text(motd)
			cfg.Logger = log
			cfg.OnPlay = func(s *server.Session) {
				log.Info().Str("name", s.Profile().Name).Msg("player joined")
			}
			cfg.OnPacket = func(s *server.Session, p protocol.Packet) {
				log.Debug().Str("name", s.Profile().Name).Int32("id", p.ID()).Msg("play packet")
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				cfg.Metrics = conn.NewMetrics(conn.WithRegistry(reg))
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           metricsMux(reg),
					ReadHeaderTimeout: 5 * time.Second,
				}
				g.Go(func() error {
					log.Info().Str("address", metricsAddr).Msg("serving metrics")
					if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}

			srv := server.New(cfg)
			g.Go(func() error {
				log.Info().Str("address", cfg.Address).Msg("listening")
				return srv.ListenAndServe(ctx)
			})
			return g.Wait()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Address, "addr", "a", ":25565", "listen address")
	f.Int32Var(&cfg.ProtocolVersion, "protocol", client.DefaultProtocolVersion, "protocol version reported in status")
	f.StringVar(&cfg.VersionName, "version-name", "1.21.8", "version name reported in status")
	f.IntVar(&cfg.MaxPlayers, "max-players", 20, "max players reported in status")
	f.StringVar(&motd, "motd", "A mcproto server", "server description")
	f.IntVar(&cfg.CompressionThreshold, "compression", 256, "compression threshold (negative disables)")
	f.StringVar(&cfg.KickMessage, "kick", "", "refuse every login with this message")
	f.StringVar(&cipher, "cipher", "portable", "CFB8 implementation (portable, go-mc)")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}
