package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is shared by every surface subcommand.
type Config struct {
	serverURL  string
	apiURL     string
	retryDelay time.Duration
	maxRetries int
	verbose    bool
}

func (c *Config) validate() error {
	if c.serverURL == "" {
		return errors.New("--server-url must not be empty")
	}
	if c.apiURL == "" {
		return errors.New("--api-url must not be empty")
	}
	if c.retryDelay <= 0 {
		return fmt.Errorf("invalid --retry-delay: %s", c.retryDelay)
	}
	if c.maxRetries < 0 {
		return fmt.Errorf("invalid --max-retries: %d", c.maxRetries)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	cfg := &Config{}

	v := viper.New()
	v.SetEnvPrefix("TABLERO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "surfaces",
		Short:         "Live trivia surfaces: moderator console, displays, answer pads and stream overlay.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.serverURL, "server-url", "ws://localhost:5000/ws", "game server websocket URL (env: TABLERO_SERVER_URL)")
	fs.StringVar(&cfg.apiURL, "api-url", "http://localhost:5000", "game server HTTP base URL (env: TABLERO_API_URL)")
	fs.DurationVar(&cfg.retryDelay, "retry-delay", 3*time.Second, "delay between reconnect attempts (env: TABLERO_RETRY_DELAY)")
	fs.IntVar(&cfg.maxRetries, "max-retries", 0, "reconnect attempts before giving up, 0 retries forever (env: TABLERO_MAX_RETRIES)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log at debug level (env: TABLERO_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.AddCommand(
		newModeratorCmd(cfg),
		newBoardCmd(cfg),
		newScoreboardCmd(cfg),
		newAnswersCmd(cfg, v),
		newOverlayCmd(cfg, v),
	)
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
