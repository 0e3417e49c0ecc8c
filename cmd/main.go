/*
Package main is the entry point for the auction room server.

It is responsible for loading configuration, initializing the global logging system,
constructing the Room (the authoritative session state), setting up the HTTP server,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"aucroom/internal/app/room"
	"aucroom/internal/configs"
	"aucroom/internal/handler"
	"aucroom/internal/pkg/eventlog"
	"aucroom/internal/pkg/logx"
)

func main() {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("admin_name", cfg.AdminName).
		Int("max_users", cfg.MaxUsers).
		Bool("chat_enabled", cfg.ChatEnabled).
		Int("default_decrement", cfg.DefaultDecrementAmount).
		Dur("default_interval", cfg.DefaultDecrementInterval).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := eventlog.New(cfg.EventLogDir)
	events.ServerStarted(cfg.Port)

	// The single authoritative room for this process lifetime.
	sessionRoom := room.NewRoom(cfg, clockwork.NewRealClock(), events)
	go sessionRoom.Run(ctx)

	router := handler.Router(&handler.AppDeps{
		Config: cfg,
		Room:   sessionRoom,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Auction Room Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	events.Close()

	logx.Info("Server gracefully stopped.")
}
