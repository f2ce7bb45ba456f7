package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/poolvest/deposit-recon-api/api"
	"github.com/poolvest/deposit-recon-api/database"
	"github.com/poolvest/deposit-recon-api/engine"
)

// Version will be set at build time
var Version = "development"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	// create a new logger
	Logger := slog.New(tint.NewHandler(os.Stderr, nil))

	// set global logger with custom options
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		}),
	))

	Logger.Info("Starting deposit-recon-api ("+Version+")",
		"Go Version", runtime.Version(),
		"Operating System", runtime.GOOS,
		"Architecture", runtime.GOARCH)

	refreshInterval, err := strconv.ParseUint(getenvDefault("REFRESH_INTERVAL_SECONDS", "30"), 10, 64)
	if err != nil {
		log.Fatalf("failed to parse REFRESH_INTERVAL_SECONDS: %v", err)
	}

	fetchTimeout, err := strconv.ParseUint(getenvDefault("SOURCE_FETCH_TIMEOUT_SECONDS", "10"), 10, 64)
	if err != nil {
		log.Fatalf("failed to parse SOURCE_FETCH_TIMEOUT_SECONDS: %v", err)
	}

	db, err := database.NewDatabase(database.DatabaseOpts{
		URI:          os.Getenv("DATABASE_URI"),
		DatabaseName: os.Getenv("DATABASE_NAME"),
		Logger:       Logger.With("component", "database"),
	})
	if err != nil {
		log.Fatalf("failed to create database: %v", err)
	}

	if err := db.CreateIndexes(context.Background()); err != nil {
		log.Fatalf("failed to create database indexes: %v", err)
	}

	eng := engine.NewEngine(engine.EngineOpts{
		Source:       db,
		Logger:       Logger.With("component", "recon-engine"),
		Interval:     time.Duration(refreshInterval) * time.Second,
		FetchTimeout: time.Duration(fetchTimeout) * time.Second,
	})

	// start api server
	server, err := api.NewServer(api.ServerOpts{
		Logger: Logger.With("component", "api-server"),
		Engine: eng,
		Port:   os.Getenv("API_PORT"),
	})
	if err != nil {
		log.Fatalf("failed to create api server: %v", err)
	}

	go server.StartServer()

	// Create context that will be canceled on SIGINT or SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start engine in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- eng.Run(ctx)
	}()

	// Wait for either error or signal
	select {
	case err := <-errChan:
		if err != nil {
			log.Printf("Engine error: %v", err)
		}
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)
		fmt.Println("Shutting down gracefully...")
		cancel() // This will trigger shutdown via context

		// Wait for engine to finish
		if err := <-errChan; err != nil && err != context.Canceled {
			log.Printf("Error during shutdown: %v", err)
		}

		if err := db.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting database: %v", err)
		}
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
