package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tablero-live/surfaces/internal/overlay"
	"github.com/tablero-live/surfaces/internal/realtime"
	"github.com/tablero-live/surfaces/internal/snapshot"
	"github.com/tablero-live/surfaces/pkg/wire"
)

// The scoreboard strip stops retrying after a few attempts so a stream
// without a game server is not stuck reconnecting forever; alerts and chat
// keep the configured policy.
const defaultScoreboardRetries = 5

func newOverlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	var listen string
	var joinBase string

	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Serve the stream widgets: alerts, chat and scoreboard",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			alerts := overlay.NewAlerts(ctx, nil, log)
			chat := overlay.NewChat(ctx, log)
			score := overlay.NewScore(ctx, log)
			defer alerts.Close()
			defer chat.Close()
			defer score.Close()

			seedWidgets(ctx, cfg, chat, score, log)

			scoreboardRetries := cfg.maxRetries
			if scoreboardRetries == 0 {
				scoreboardRetries = defaultScoreboardRetries
			}

			clients := []*realtime.Client{
				newChannelClient(cfg, wire.ChannelAlerts, cfg.maxRetries, log, alerts.HandleMessage),
				newChannelClient(cfg, wire.ChannelChat, cfg.maxRetries, log, chat.HandleMessage),
				newChannelClient(cfg, wire.ChannelScoreboard, scoreboardRetries, log, score.HandleMessage),
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           overlay.NewServer(alerts, chat, score, joinBase, log).Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			g, ctx := errgroup.WithContext(ctx)
			for _, c := range clients {
				c := c
				g.Go(func() error { return c.Run(ctx) })
			}
			g.Go(func() error {
				log.Info("overlay listening", zap.String("addr", listen))
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
			return g.Wait()
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&listen, "listen", ":8089", "address to serve the overlay widgets on (env: TABLERO_LISTEN)")
	fs.StringVar(&joinBase, "join-base", "http://localhost:8089", "public base URL encoded into the join QR codes (env: TABLERO_JOIN_BASE)")
	for _, name := range []string{"listen", "join-base"} {
		_ = v.BindPFlag(name, fs.Lookup(name))
		_ = v.BindEnv(name)
	}
	if v.IsSet("listen") {
		listen = v.GetString("listen")
	}
	if v.IsSet("join-base") {
		joinBase = v.GetString("join-base")
	}
	return cmd
}

func newChannelClient(cfg *Config, channel string, maxAttempts int, log *zap.Logger, handler realtime.Handler) *realtime.Client {
	return realtime.NewClient(realtime.Options{
		URL:         cfg.serverURL,
		Channels:    []string{channel},
		RetryDelay:  cfg.retryDelay,
		MaxAttempts: maxAttempts,
		Logger:      log,
	}, handler)
}

// seedWidgets primes chat and scoreboard from the HTTP snapshot so the
// overlay is not blank until the first push arrives. Failures only log; the
// realtime channel fills the gap.
func seedWidgets(ctx context.Context, cfg *Config, chat *overlay.Chat, score *overlay.Score, log *zap.Logger) {
	client, err := snapshot.New(cfg.apiURL, log)
	if err != nil {
		log.Warn("snapshot client", zap.Error(err))
		return
	}
	if msgs, err := client.OverlayChat(ctx); err != nil {
		log.Warn("seed chat", zap.Error(err))
	} else if len(msgs) > 0 {
		chat.Seed(msgs)
	}
	if fs, err := client.OverlayScoreboard(ctx); err != nil {
		log.Warn("seed scoreboard", zap.Error(err))
	} else {
		score.Seed(fs)
	}
}
