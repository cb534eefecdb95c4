// Package server provides the public entry point for initializing the
// AgroSage diagnostic plane.
//
// It lives in pkg/ (not internal/) so downstream deployments can
// compose the handler with their own middleware:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/agrosage/agrosage/diagnostic-plane/internal/api"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/api/handlers"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/config"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/diagnosis"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/telemetry"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/vision"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/weather"
)

// Server holds the initialized diagnostic plane.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Config is the loaded configuration.
	Config *config.Config

	// ShutdownFunc flushes telemetry on graceful shutdown.
	ShutdownFunc func(context.Context) error
}

// New loads configuration from the environment and initializes all
// components.
func New(ctx context.Context) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig initializes the diagnostic plane with an explicit
// configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	kb, err := knowledge.Load()
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	log.Info().Int("pests", len(kb.Pests())).Msg("knowledge base loaded")

	var vp vision.Provider
	if cfg.Vision.GeminiAPIKey != "" {
		vp = vision.NewGeminiProvider(cfg.Vision.GeminiAPIKey, vision.WithGeminiModel(cfg.Vision.GeminiModel))
	} else {
		// Keep the plane runnable without upstream credentials.
		vp = vision.NewStaticProvider()
		log.Warn().Msg("GEMINI_API_KEY not set, using static vision provider")
	}
	log.Info().Str("provider", vp.Name()).Msg("vision provider initialized")

	wp := weather.NewStaticProvider()
	engine := diagnosis.NewEngine(kb)

	h := handlers.New(engine, vp, wp, kb, cfg.Server.MaxImageBytes)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Config:       cfg,
		ShutdownFunc: shutdown,
	}, nil
}
