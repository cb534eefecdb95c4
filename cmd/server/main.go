// AgroSage Diagnostic Plane server.
//
// Turns a crop photo (or a pre-resolved detection) into a complete
// diagnostic report: severity assessment, treatment plan with IPM
// timeline, economic impact, and weather risk context.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agrosage/agrosage/diagnostic-plane/pkg/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("AgroSage diagnostic plane starting...")

	ctx := context.Background()
	srv, err := server.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}
	defer srv.ShutdownFunc(ctx)

	if level, err := zerolog.ParseLevel(srv.Config.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.Config.Server.Port),
		Handler:      srv.Handler,
		ReadTimeout:  srv.Config.Server.ReadTimeout,
		WriteTimeout: srv.Config.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.Config.Server.ShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().
		Int("port", srv.Config.Server.Port).
		Str("env", srv.Config.Environment).
		Msg("AgroSage diagnostic plane listening")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
