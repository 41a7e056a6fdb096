package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"books-storefront/internal/model"
	"books-storefront/internal/opener"
	"books-storefront/internal/server"
	"books-storefront/internal/service"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront API and keep the catalogue fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, func(logger *log.Logger) service.Opener {
				return opener.NewPage(logger)
			})
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.NewServer(a.controller, a.sessions, a.admin, a.download, a.logger)
			serverAddr := a.cfg.HTTP.Host + ":" + a.cfg.HTTP.Port

			watchCtx, stopWatch := context.WithCancel(context.Background())
			watchDone := make(chan struct{})
			go func() {
				defer close(watchDone)
				a.controller.Watch(watchCtx, model.Filter{})
			}()

			a.logger.Infof("Starting HTTP server on %s", serverAddr)
			serverErr := make(chan error, 1)
			go func() {
				if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
			defer signal.Stop(sigChan)

			select {
			case <-sigChan:
				a.logger.Info("Signal received, starting graceful shutdown...")
			case err := <-serverErr:
				a.logger.Errorf("HTTP server error: %v", err)
				stopWatch()
				<-watchDone
				return err
			}

			stopWatch()
			<-watchDone

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Errorf("HTTP server shutdown error: %v", err)
				return err
			}
			return nil
		},
	}
}
