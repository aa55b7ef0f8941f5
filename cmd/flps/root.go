package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/flps/internal/app"
	"github.com/okian/flps/internal/config"
	"github.com/okian/flps/pkg/logger"
	"github.com/okian/flps/pkg/metrics"
)

// HTTP server timeout constants for the metrics endpoint.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// cli holds what every subcommand shares once the root has initialised.
type cli struct {
	configPath string
	cfg        *config.Config
	log        logger.Logger
	metricsSrv *http.Server
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "flps",
		Short: "Final Loot Priority Score calculator",
		Long: `flps scores the raiders of a guild roster snapshot for loot priority.

Configuration is layered: built-in defaults, then the YAML file given by
--config (or FLPS_CONFIG), then FLPS_* environment variables.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.close(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is $FLPS_CONFIG)")

	root.AddCommand(evaluateCmd(c))
	root.AddCommand(revokeCheckCmd(c))
	root.AddCommand(configCmd(c))

	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	ctx := cmd.Context()

	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFrom(ctx, c.configPath)
	} else {
		c.cfg, err = config.Load(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWithOptions(logger.WithFormat(c.cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(c.cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	c.log = logger.Named("cli")

	if c.cfg.MetricsAddr != "" {
		c.serveMetrics(ctx)
	}
	return nil
}

func (c *cli) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	c.metricsSrv = &http.Server{
		Addr:              c.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		c.log.Info(ctx, "starting metrics server", logger.String("addr", c.cfg.MetricsAddr))
		if err := c.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
}

func (c *cli) close(ctx context.Context) error {
	if c.metricsSrv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := c.metricsSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	return nil
}

// newService builds a service from the loaded configuration. The caller starts
// it when it needs the worker pool.
func (c *cli) newService() (*service.Service, error) {
	svc, err := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithWorkerCount(c.cfg.WorkerCount),
		service.WithQueueSize(c.cfg.QueueSize),
		service.WithConfigCacheSize(c.cfg.ConfigCacheSize),
		service.WithDefaultConfiguration(c.cfg.FLPS),
		service.WithGuildConfigurations(c.cfg.Guilds),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}
