package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-mclib/transport/pkg/client"
	"github.com/go-mclib/transport/pkg/helpers"
	"github.com/go-mclib/transport/pkg/tui"
)

func pingCmd(opts *rootOptions) *cobra.Command {
	var (
		flags       helpers.Flags
		watch       time.Duration
		concurrency int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "ping [address...]",
		Short: "Query the status of one or more servers",
		Long: `Ping performs a server list ping against every address and prints the
reported version, player count and round trip latency. Without arguments
the --server address is pinged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger()
			if interactive {
				return runInteractivePing(cmd.Context(), flags, opts)
			}
			if len(args) == 0 {
				args = []string{flags.Address}
			}

			swarm := client.NewSwarm()
			swarm.Concurrency = concurrency
			for _, addr := range args {
				f := flags
				f.Address = addr
				if err := configureClient(swarm.NewClient(addr, f.Username), f, log); err != nil {
					return err
				}
			}

			for {
				outcomes := swarm.Ping(cmd.Context())
				printPingTable(cmd.OutOrStdout(), outcomes)
				if watch <= 0 {
					return pingError(outcomes)
				}
				select {
				case <-time.After(watch):
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}

	helpers.RegisterFlags(cmd.Flags(), &flags)
	cmd.Flags().DurationVarP(&watch, "watch", "w", 0, "repeat the ping at this interval")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 8, "max servers pinged at once")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read addresses from an interactive prompt")

	return cmd
}

func configureClient(c *client.Client, f helpers.Flags, log zerolog.Logger) error {
	strategy, err := helpers.CipherStrategy(f.Cipher)
	if err != nil {
		return err
	}
	c.ProtocolVersion = f.ProtocolVersion
	c.Timeout = f.Timeout
	c.Cipher = strategy
	c.Logger = log.With().Str("address", f.Address).Logger()
	return nil
}

func printPingTable(w io.Writer, outcomes []client.PingOutcome) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Address", "Version", "Protocol", "Players", "Latency", "Description"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, o := range outcomes {
		if o.Err != nil {
			tw.Append([]string{o.Client.Address, "-", "-", "-", "-", "error: " + o.Err.Error()})
			continue
		}
		s := o.Result.Status
		players := "-"
		if s.Players != nil {
			players = fmt.Sprintf("%d/%d", s.Players.Online, s.Players.Max)
		}
		tw.Append([]string{
			o.Result.Address.String(),
			s.Version.Name,
			strconv.Itoa(int(s.Version.Protocol)),
			players,
			o.Result.Latency.Round(time.Millisecond).String(),
			s.Description.ClearString(),
		})
	}

	tw.Render()
}

// pingError returns an error only when every ping failed.
func pingError(outcomes []client.PingOutcome) error {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 && failed == len(outcomes) {
		return fmt.Errorf("%d of %d pings failed", failed, len(outcomes))
	}
	return nil
}

// pinger is the interactive ping backend: every submitted line is an
// address to ping.
type pinger struct {
	ctx    context.Context
	cancel context.CancelFunc
	flags  helpers.Flags
	log    zerolog.Logger
}

func (p *pinger) Title() string    { return "mcproto ping" }
func (p *pinger) MaxLogLines() int { return 500 }

func (p *pinger) Close() error {
	p.cancel()
	return nil
}

func (p *pinger) Submit(line string) error {
	if _, err := client.ParseAddress(line); err != nil {
		return err
	}
	f := p.flags
	f.Address = line
	c := client.New(line, f.Username)
	if err := configureClient(c, f, p.log); err != nil {
		return err
	}
	go func() {
		res, err := c.Ping(p.ctx)
		if err != nil {
			p.log.Error().Str("address", line).Err(err).Msg("ping failed")
			return
		}
		p.log.Info().
			Str("address", res.Address.String()).
			Str("version", res.Status.Version.Name).
			Dur("latency", res.Latency).
			Str("motd", res.Status.Description.ClearString()).
			Msg("pong")
	}()
	return nil
}

func runInteractivePing(ctx context.Context, flags helpers.Flags, opts *rootOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := &pinger{ctx: ctx, cancel: cancel, flags: flags}
	program, w := tui.Start(p, "server address")
	p.log = helpers.NewLogger(w, opts.logLevel, opts.logJSON)

	stop := context.AfterFunc(ctx, program.Quit)
	defer stop()

	_, err := program.Run()
	return err
}
