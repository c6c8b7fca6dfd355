package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/linechat/internal/app"
	"github.com/vovakirdan/linechat/internal/config"
	applog "github.com/vovakirdan/linechat/internal/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type serveFlags struct {
	configPath string
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	flags := &serveFlags{}

	root := &cobra.Command{
		Use:           "linechat",
		Short:         "Line-oriented chat server with channels and short history",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default $LINECHAT_CONFIG_DEFAULT_PATH or ./config.yaml)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the TCP and HTTP listeners",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	bindServeFlags(serve, &flags.overrides)
	bindServeFlags(root, &flags.overrides)

	root.AddCommand(serve, newVersionCmd())
	return root
}

func bindServeFlags(cmd *cobra.Command, o *config.Config) {
	f := cmd.Flags()
	f.StringVar(&o.TCPAddr, "tcp-addr", "", "TCP line protocol listen address")
	f.StringVar(&o.HTTPAddr, "http-addr", "", "HTTP listen address")
	f.StringVar(&o.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	f.StringVar(&o.DatabasePath, "db", "", "credential database path (:memory: keeps credentials in RAM)")
	f.IntVar(&o.MaxClientsPerChannel, "max-clients", 0, "maximum members per channel")
	f.IntVar(&o.HistorySize, "history", 0, "recent lines replayed on join")
	f.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "linechat", version)
		},
	}
}

func runServe(parent context.Context, flags *serveFlags) error {
	bootLog := applog.New("info")

	cfg, path, err := config.Load(bootLog, flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(flags.overrides)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := applog.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("version", version).Msg("starting linechat")

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
