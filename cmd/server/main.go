package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/youruser/deckprint/internal/api"
	"github.com/youruser/deckprint/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Default()
	if path := os.Getenv("DECKPRINT_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			slog.Error("Unable to load config", "path", path, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		slog.Error("Bad environment", "err", err)
		os.Exit(1)
	}

	s, err := api.NewServer(cfg, os.Getenv("DECKPRINT_ROOT"))
	if err != nil {
		slog.Error("Unable to load layouts", "err", err)
		os.Exit(1)
	}
	r := api.NewRouter(s)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("Starting server", "url", "http://localhost:"+port)
	if err := r.Run(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}
