package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/skury/internal/cli"
	"github.com/aretw0/skury/internal/config"
	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skury",
	Short: "Skury is a page assistant coordinator backed by Gemini",
	Long: `Skury reads pages, answers multiple-choice forms and chats about what is on screen.
It runs the coordinator that routes requests between pages, panels and the model.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing skury.yaml and .env")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
}

// env is what every command needs before building a coordinator.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  ports.PreferenceStore
	close  func() error
}

func setup(cmd *cobra.Command) (*env, error) {
	dir, _ := cmd.Flags().GetString("dir")
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	logger := logging.New(cli.ParseLevel(cfg.LogLevel))

	store, closeFn, err := cli.OpenStore(cfg, nil)
	if err != nil {
		return nil, err
	}
	logger.Debug("store ready", "backend", cfg.Store.Backend, "credential", cfg.Credential)
	return &env{cfg: cfg, logger: logger, store: store, close: closeFn}, nil
}
