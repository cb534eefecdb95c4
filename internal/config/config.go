// Package config defines the configuration for the AgroSage diagnostic
// plane. Configuration is loaded once at startup and immutable
// afterwards; values come from the OS environment with a .env file as
// fallback. A missing required value or invalid format fails startup
// immediately.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the top-level configuration struct. Sub-components receive
// only the subsets they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev staging prod"`
	Version     string `envconfig:"AGROSAGE_VERSION" default:"0.4.0"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`

	Server    ServerConfig
	Vision    VisionConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server tuning.
type ServerConfig struct {
	Port            int           `envconfig:"AGROSAGE_PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	// MaxImageBytes caps multipart image uploads on the diagnose endpoint.
	MaxImageBytes int64 `envconfig:"MAX_IMAGE_BYTES" default:"8388608" validate:"gt=0"`
}

// VisionConfig selects and configures the image analysis provider.
// With an empty API key the plane falls back to the static provider so
// it stays runnable without upstream credentials.
type VisionConfig struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Enabled      bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"agrosage-diagnostic-plane"`
}

// Load reads configuration from the environment, with a .env file as
// non-overriding fallback, then validates the result.
func Load() (*Config, error) {
	// Silently succeeds when no .env exists and never overrides
	// variables already set in the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
