package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ragdemo/internal/logger"
	"ragdemo/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [files...]",
		Short: "Serve the knowledge base and answer endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewLogger(opts.cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := newApp(opts.cfg, log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.preload(ctx, cmd.ErrOrStderr(), append(opts.load, args...)); err != nil {
				return err
			}
			if addr == "" {
				addr = opts.cfg.Server.Addr()
			}

			srv := server.NewServer(a.svc, server.Limits{
				DefaultK: opts.cfg.Retrieval.SearchDefaultK,
				MaxK:     opts.cfg.Retrieval.SearchMaxK,
			}, log)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				log.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Stop(shutdownCtx); err != nil {
					log.Error("shutdown failed", zap.Error(err))
					return err
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.host and server.port)")
	return cmd
}
