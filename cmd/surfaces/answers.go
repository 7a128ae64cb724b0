package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tablero-live/surfaces/internal/answers"
	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/internal/realtime"
	"github.com/tablero-live/surfaces/pkg/wire"
)

func newAnswersCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:   "answers",
		Short: "Run one team's answer pad",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			teamID, ok := game.ParseTeamID(team)
			if !ok {
				return fmt.Errorf("invalid --team: %s", team)
			}

			log, err := newLogger(cfg.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var client *realtime.Client
			pad := answers.New(ctx, teamID, func(msg any) { client.Send(msg) }, log)
			defer pad.Close()

			client = realtime.NewClient(realtime.Options{
				URL:          cfg.serverURL,
				Rooms:        []string{wire.RoomDisplay},
				RequestState: true,
				RetryDelay:   cfg.retryDelay,
				MaxAttempts:  cfg.maxRetries,
				Logger:       log,
			}, pad.HandleMessage)

			return runSurface(ctx, client, pad.Frames(), func(ctx context.Context) {
				readCommands(ctx, os.Stdin, func(line string) {
					msg, err := parseAnswerCommand(line)
					if err != nil {
						fmt.Fprintln(os.Stderr, err)
						return
					}
					pad.Inbox() <- msg
				})
			})
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "which team this pad belongs to: team1 or team2 (env: TABLERO_TEAM)")
	_ = v.BindPFlag("team", cmd.Flags().Lookup("team"))
	_ = v.BindEnv("team")
	if v.IsSet("team") {
		team = v.GetString("team")
	} else {
		_ = cmd.MarkFlagRequired("team")
	}
	return cmd
}
