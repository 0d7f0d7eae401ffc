package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/youruser/deckprint/internal/api"
	"github.com/youruser/deckprint/internal/config"
)

func newServeCmd() *cobra.Command {
	var port, configPath, root string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := cfg.ApplyEnv(); err != nil {
				return err
			}
			s, err := api.NewServer(cfg, root)
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: api.NewRouter(s),
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("deckprint API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to listen on")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config used as the render defaults")
	cmd.Flags().StringVar(&root, "root", "", "Directory render requests may read from and write to (default: working directory)")
	return cmd
}
