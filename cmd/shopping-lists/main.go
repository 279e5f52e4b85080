package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shopping-lists/internal/app"
	"shopping-lists/internal/assistant"
	"shopping-lists/internal/config"
	"shopping-lists/internal/database"
	"shopping-lists/internal/metrics"
	"shopping-lists/internal/shopping"
	"shopping-lists/internal/storage"
)

const Version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "shopping-lists",
		Short: "Grocery lists per supermarket with a scripted assistant",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv("CONFIG_FILE", configPath)
			}
			return nil
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides CONFIG_FILE)")

	cmd.AddCommand(
		serveCmd(),
		chatCmd(),
		askCmd(),
		supermarketCmd(),
		listCmd(),
		itemCmd(),
		shareCmd(),
		metricsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "shopping-lists version %s\n", Version)
			},
		},
	)
	return cmd
}

// env is everything a command needs, opened from the configuration.
type env struct {
	cfg     *config.Config
	app     *app.App
	db      *database.DB
	metrics *metrics.Store
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, db, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, store)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	e := &env{cfg: cfg, app: a, db: db}
	if db != nil {
		e.metrics = metrics.NewStore(db.SQL)
	}
	return e, nil
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
}

func (e *env) newAssistant(channel string) *assistant.Assistant {
	opts := []assistant.Option{assistant.WithDelay(e.cfg.AssistantDelay)}
	if e.metrics != nil {
		opts = append(opts, assistant.WithRecorder(e.metrics, channel))
	}
	return assistant.New(e.app, opts...)
}

func (e *env) newEndpoint() *assistant.Endpoint {
	ep := &assistant.Endpoint{Delay: e.cfg.EndpointDelay}
	if e.metrics != nil {
		ep.Recorder = e.metrics
	}
	return ep
}

func (e *env) signer() *shopping.ShareSigner {
	if e.cfg.ShareSigningKey == "" {
		return nil
	}
	return shopping.NewShareSigner(e.cfg.ShareSigningKey, 0)
}

// withEnv adapts a function needing an env into a cobra RunE.
func withEnv(fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, e, args)
	}
}
