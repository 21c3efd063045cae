// Package config defines the configuration structures for the weather proxy
// and the weather client. Configuration is loaded once at process start (Lambda
// cold start or CLI invocation) and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// There is no built-in credential: a proxy without WEATHERSTACK_API_KEY (or
// WEATHERSTACK_API_KEY_SSM_PARAM) refuses to start.
package config

import (
	"time"

	"skyglass/internal/types"
)

// SecretString is an alias for types.SecretString so config consumers do not
// need to import the types package for secret fields.
type SecretString = types.SecretString

// ProxyConfig is the configuration of the proxy endpoint (cmd/proxy).
type ProxyConfig struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"skyglass-proxy"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Upstream      UpstreamConfig
	Security      SecurityConfig
	Observability ObservabilityConfig
	AWS           AWSConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo `ignored:"true"`
}

// ServerConfig holds HTTP listener settings used in local (non-Lambda) mode.
type ServerConfig struct {
	Port      string `envconfig:"PORT" default:"8080"`
	RoutePath string `envconfig:"ROUTE_PATH" default:"/api/weather"`
}

// UpstreamConfig describes the weather provider the proxy forwards to.
type UpstreamConfig struct {
	BaseURL    string       `envconfig:"UPSTREAM_BASE_URL" default:"http://api.weatherstack.com" validate:"required,url"`
	Credential SecretString `envconfig:"WEATHERSTACK_API_KEY" validate:"required"`
	UserAgent  string       `envconfig:"UPSTREAM_USER_AGENT" default:"Skyglass-Proxy/1.0"`
	// Timeout bounds a single upstream call. Zero leaves the call unbounded so
	// the provider's own connection behaviour is the only limit.
	Timeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"0s"`

	// BreakerFailureThreshold opens the circuit breaker after that many
	// consecutive failures. Zero disables it, keeping requests independent.
	BreakerFailureThreshold uint32        `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"0"`
	BreakerOpenTimeout      time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`
}

// SecurityConfig holds CORS and response-hardening settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	EnableGzip         bool     `envconfig:"ENABLE_GZIP" default:"true"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"Skyglass"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// AWSConfig holds regional configuration for the AWS SDK clients (SSM,
// CloudWatch).
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ClientConfig is the configuration of the weather client consumer
// (cmd/weather). It maps one-to-one onto weatherstack.Options.
type ClientConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn" validate:"oneof=debug info warn error"`

	// BaseURL is the upstream base in direct mode or the proxy route
	// (e.g. https://example.com/api/weather) in proxied mode.
	BaseURL    string        `envconfig:"WEATHER_BASE_URL" validate:"required,url"`
	Credential SecretString  `envconfig:"WEATHER_CREDENTIAL"`
	UseProxy   bool          `envconfig:"WEATHER_USE_PROXY" default:"false"`
	Units      string        `envconfig:"WEATHER_UNITS" default:"m" validate:"oneof=m f s"`
	Timeout    time.Duration `envconfig:"WEATHER_TIMEOUT" default:"0s"`
	RecentFile string        `envconfig:"WEATHER_RECENT_FILE"`
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
	// ErrParsing indicates a failure when parsing environment variable values.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
