// Package config defines the process-wide configuration for the FairHour
// service. Configuration is loaded once at startup and immutable thereafter,
// following 12-Factor principles.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format fails startup immediately.
package config

import (
	"time"

	"fairhour/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for sensitive configuration values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"fairhour"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server    ServerConfig
	Database  DatabaseConfig
	Forecast  ForecastConfig
	Email     EmailConfig
	Security  SecurityConfig
	Telemetry TelemetryConfig
	Janitor   JanitorConfig

	// Build metadata, injected via ldflags rather than environment.
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// ForecastConfig holds the weather provider settings.
type ForecastConfig struct {
	BaseURL string        `envconfig:"FORECAST_BASE_URL" default:"https://api.open-meteo.com" validate:"url"`
	Timeout time.Duration `envconfig:"FORECAST_TIMEOUT" default:"10s"`
}

// EmailConfig holds alert delivery settings. The SendGrid API key itself is
// supplied per monitored event, not globally.
type EmailConfig struct {
	BaseURL     string `envconfig:"SENDGRID_BASE_URL" default:"https://api.sendgrid.com" validate:"url"`
	FromAddress string `envconfig:"EMAIL_FROM_ADDRESS" default:"alerts@fairhour.io" validate:"email"`
	FromName    string `envconfig:"EMAIL_FROM_NAME" default:"FairHour Alerts"`
}

// SecurityConfig holds CORS settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// TelemetryConfig holds CloudWatch metric publication settings.
type TelemetryConfig struct {
	Enabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`
	Region  string `envconfig:"AWS_REGION" default:"us-east-1"`
	// LocalStack support; empty in production.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// JanitorConfig holds the expired-event sweep schedule.
type JanitorConfig struct {
	// SweepSchedule is a standard cron expression.
	SweepSchedule string `envconfig:"JANITOR_SWEEP_SCHEDULE" default:"*/15 * * * *"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
