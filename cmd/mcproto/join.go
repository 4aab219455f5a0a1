package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-mclib/transport/pkg/client"
	"github.com/go-mclib/transport/pkg/client/modules/protocol"
	"github.com/go-mclib/transport/pkg/helpers"
	mcproto "github.com/go-mclib/transport/pkg/protocol"
	"github.com/go-mclib/transport/pkg/protocol/login"
)

func joinCmd(opts *rootOptions) *cobra.Command {
	var flags helpers.Flags

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a server as an offline player",
		Long: `Join logs in to an offline-mode server and stays in the play phase,
logging every packet id it receives, until interrupted or kicked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger()
			if flags.Verbose && log.GetLevel() > zerolog.DebugLevel {
				log = log.Level(zerolog.DebugLevel)
			}
			c, err := helpers.NewClient(flags, log)
			if err != nil {
				return err
			}
			protocol.From(c).OnLogin = func(p *login.LoginFinished) {
				c.Logger.Info().Str("name", p.Name).Stringer("uuid", p.UUID).Msg("joined")
			}
			c.RegisterHandler(func(c *client.Client, p mcproto.Packet) {
				if phase, _ := c.Phase(); phase == mcproto.Play {
					c.Logger.Debug().Int32("id", p.ID()).Msg("play packet")
				}
			})

			err = helpers.Run(cmd.Context(), c)
			if cmd.Context().Err() != nil {
				return nil
			}
			if reason := protocol.From(c).KickReason(); reason != "" {
				c.Logger.Warn().Str("reason", reason).Msg("kicked")
			}
			return err
		},
	}

	helpers.RegisterFlags(cmd.Flags(), &flags)

	return cmd
}
