package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"contract_deployer/internal/infrastructure/restapi"
	"contract_deployer/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app func() *application) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deployment HTTP API",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if port == "" {
				port = a.cfg.Server.Port
			}
			if !a.cfg.Logging.Development {
				gin.SetMode(gin.ReleaseMode)
			}

			router := restapi.SetupRouter(
				restapi.NewNetworkHandler(a.registry),
				restapi.NewDeploymentHandler(a.deployer, a.cfg.Deployment.DefaultContract, a.logger),
				a.promRegistry,
			)
			srv := &http.Server{
				Addr:         fmt.Sprintf(":%s", port),
				Handler:      router,
				ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
				IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
			}
			return serve(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from config)")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
