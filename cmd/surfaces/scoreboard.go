package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tablero-live/surfaces/internal/realtime"
	"github.com/tablero-live/surfaces/internal/scoreboard"
	"github.com/tablero-live/surfaces/pkg/wire"
)

func newScoreboardCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "scoreboard",
		Short: "Run the public score panel",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			panel := scoreboard.New(ctx, log)
			defer panel.Close()

			client := realtime.NewClient(realtime.Options{
				URL:          cfg.serverURL,
				Rooms:        []string{wire.RoomDisplay, wire.RoomScoreboard},
				RequestState: true,
				RetryDelay:   cfg.retryDelay,
				MaxAttempts:  cfg.maxRetries,
				Logger:       log,
			}, panel.HandleMessage)

			return runSurface(ctx, client, panel.Frames(), nil)
		},
	}
}
