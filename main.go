package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/server"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "src-portal",
	Short: "SRC portal API",
	Long: `src-portal serves the student representative council portal: accounts,
role dashboards, news, avatar uploads and report management.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, cfg, err := build(ctx)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())
		logger.Infof("config loaded: env=%s mongo=%v redis=%v minio=%v oidc=%v",
			cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "", cfg.OIDC.Issuer != "")
		return app.Run(ctx)
	},
}

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create MongoDB indexes and seed the default SRC departments",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())
		if err := app.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
		logger.Infof("indexes ensured")
		return nil
	},
}

func build(ctx context.Context) (*server.App, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	app, err := server.Build(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build server: %w", err)
	}
	return app, cfg, nil
}

func init() {
	rootCmd.AddCommand(serveCmd, ensureIndexesCmd, assignRoleCmd, publishNewsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
