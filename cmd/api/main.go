package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal/config"
	"github.com/scythe504/taboo-backend/internal/database"
	"github.com/scythe504/taboo-backend/internal/game"
	"github.com/scythe504/taboo-backend/internal/ports"
	"github.com/scythe504/taboo-backend/internal/server"
	"github.com/scythe504/taboo-backend/internal/utils"
)

func gracefulShutdown(apiServer *http.Server, engine *game.Engine, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	engine.Shutdown()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown with error: %v", err)
	}

	log.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// wordSource picks the corpus backing the engine. The database source is
// seeded from the CSV corpus when its table is empty.
func wordSource(cfg *config.Config, db database.Service) (ports.WordSource, error) {
	switch cfg.WordSource {
	case "csv":
		words, err := utils.ReadCsvFile(cfg.WordsCSVPath)
		if err != nil {
			return nil, err
		}
		log.Infof("loaded %d words from %s", len(words), cfg.WordsCSVPath)
		return utils.NewMemoryWordSource(words, nil), nil

	case "db":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := db.WordCount(ctx)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			words, err := utils.ReadCsvFile(cfg.WordsCSVPath)
			if err != nil {
				return nil, fmt.Errorf("seed secret words: %w", err)
			}
			if _, err := db.SeedWords(ctx, words); err != nil {
				return nil, err
			}
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown word source %q", cfg.WordSource)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	setupLogging(cfg)

	db, err := database.New(cfg.DB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx)
	cancel()
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	words, err := wordSource(cfg, db)
	if err != nil {
		log.Fatalf("word source: %v", err)
	}

	engine := game.NewEngine(cfg.Game, words, db)
	apiServer := server.NewServer(cfg.Port, db, engine)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, engine, done)

	log.Infof("listening on %s", apiServer.Addr)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("http server error: %v", err)
		os.Exit(1)
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete.")
}
