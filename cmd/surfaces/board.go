package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tablero-live/surfaces/internal/board"
	"github.com/tablero-live/surfaces/internal/realtime"
	"github.com/tablero-live/surfaces/pkg/wire"
)

func newBoardCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Run the public game display",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			display := board.New(ctx, log)
			defer display.Close()

			client := realtime.NewClient(realtime.Options{
				URL:          cfg.serverURL,
				Rooms:        []string{wire.RoomDisplay},
				RequestState: true,
				RetryDelay:   cfg.retryDelay,
				MaxAttempts:  cfg.maxRetries,
				Logger:       log,
			}, display.HandleMessage)

			return runSurface(ctx, client, display.Frames(), nil)
		},
	}
}
