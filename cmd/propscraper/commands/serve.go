package commands

import (
	"context"
	"time"

	"github.com/fortuna/propline/internal/api/rest"
	"github.com/fortuna/propline/internal/config"
	"github.com/fortuna/propline/internal/scheduler"
	"github.com/fortuna/propline/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().String("addr", "", "Listen address, defaults to server.addr from config.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--addr :8080]",
	Short: "Serves player game logs and today's props over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		stats, err := newStatsService(cfg, log)
		if err != nil {
			return err
		}
		props, cleanup := newPropsService(cmd.Context(), cfg, log)
		defer cleanup()

		if cfg.Schedule.Enabled {
			daily := scheduler.NewDaily(cfg.Schedule.Hour, nil, func(ctx context.Context) error {
				_, err := props.Run(ctx, service.RunOptions{
					OutputDir: cfg.OutputDir,
					UseMock:   cfg.Mock,
					Strict:    cfg.Strict,
				})
				return err
			}, log)
			go daily.Run(cmd.Context())
		}

		server := rest.NewServer(listenAddr(cmd, cfg), stats, props, log)
		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func listenAddr(cmd *cobra.Command, cfg *config.AppConfig) string {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		return addr
	}
	return cfg.Server.Addr
}
