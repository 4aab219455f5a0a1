package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-mclib/transport/pkg/helpers"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootOptions struct {
	logLevel string
	logJSON  bool
}

func (o *rootOptions) logger() zerolog.Logger {
	return helpers.NewLogger(os.Stderr, o.logLevel, o.logJSON)
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "mcproto",
		Short: "Minecraft protocol transport tools",
		Long: `mcproto speaks the Minecraft Java Edition wire protocol.

It can ping servers, run a minimal offline-mode server and join a
server as an offline player.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "log as JSON instead of console text")

	rootCmd.AddCommand(
		pingCmd(opts),
		serveCmd(opts),
		joinCmd(opts),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		stop()
		os.Exit(1)
	}
}
