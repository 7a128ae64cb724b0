package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablero-live/surfaces/internal/moderator"
	"github.com/tablero-live/surfaces/internal/realtime"
	"github.com/tablero-live/surfaces/internal/snapshot"
	"github.com/tablero-live/surfaces/pkg/wire"
)

func newModeratorCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "moderator",
		Short: "Run the moderator console",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			loader, err := snapshot.New(cfg.apiURL, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var client *realtime.Client
			console := moderator.New(ctx, loader, func(msg any) { client.Send(msg) }, log)
			defer console.Close()

			client = realtime.NewClient(realtime.Options{
				URL:          cfg.serverURL,
				Rooms:        []string{wire.RoomModerator},
				RequestState: true,
				RetryDelay:   cfg.retryDelay,
				MaxAttempts:  cfg.maxRetries,
				Logger:       log,
			}, console.HandleMessage)

			return runSurface(ctx, client, console.Frames(), func(ctx context.Context) {
				readCommands(ctx, os.Stdin, func(line string) {
					msg, err := parseModeratorCommand(line)
					if err != nil {
						fmt.Fprintln(os.Stderr, err)
						return
					}
					console.Inbox() <- msg
				})
			})
		},
	}
}
