package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ougirez/ayudas/internal/api"
	"github.com/ougirez/ayudas/internal/cache"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the asistencias HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer c.Close()

		svc, err := api.NewAPIService(cfg.Server, st, c)
		if err != nil {
			return eris.Wrap(err, "create api")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("starting server", zap.Int("port", port), zap.String("store", cfg.Store.Driver))
			errCh <- svc.Serve(fmt.Sprintf(":%d", port))
		}()

		select {
		case err = <-errCh:
			return eris.Wrap(err, "server listen")
		case <-ctx.Done():
		}

		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return svc.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
