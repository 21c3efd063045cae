// Package main is the entry point for the weather proxy.
//
// It loads configuration (resolving the provider key from SSM outside local
// development), builds the HTTP chassis with the relay mounted at the
// configured route, and serves it either as an AWS Lambda behind API Gateway
// or as a plain HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"

	"skyglass/internal/config"
	"skyglass/internal/core"
	"skyglass/internal/external"
	"skyglass/internal/metrics"
	"skyglass/internal/proxy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadProxyConfig(secretProvider())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("weather proxy starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"route", cfg.Server.RoutePath,
	)

	var collector *metrics.CloudWatchCollector
	if cfg.Observability.EnableMetrics {
		collector, err = newCloudWatchCollector(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
	}

	srv, err := buildServer(cfg, logger, collector)
	if err != nil {
		return err
	}

	if isLambdaEnvironment() {
		return runLambda(srv, logger)
	}
	return runHTTPServer(srv, cfg, logger)
}

// secretProvider returns the SSM provider outside local development. Locally
// a pointer names another environment variable instead. The config is not
// loaded yet, so region and endpoint come straight from the environment.
func secretProvider() config.SecretProvider {
	if os.Getenv("APP_ENV") == "local" {
		return config.NewEnvVarProvider()
	}
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	return config.NewSSMProvider(region, os.Getenv("AWS_ENDPOINT_URL"))
}

// buildServer wires the upstream client, the relay handler and the health
// probe into a mounted core.Server. collector may be nil.
func buildServer(cfg *config.ProxyConfig, logger *slog.Logger, collector *metrics.CloudWatchCollector) (*core.Server, error) {
	upstream := external.NewBaseClient(
		&http.Client{Transport: http.DefaultTransport},
		external.BreakerSettings{
			Name:             "weatherstack",
			FailureThreshold: cfg.Upstream.BreakerFailureThreshold,
			OpenTimeout:      cfg.Upstream.BreakerOpenTimeout,
		},
		cfg.Upstream.UserAgent,
		external.WithTimeout(cfg.Upstream.Timeout),
		external.WithLogger(logger),
	)

	var opts []proxy.Option
	if collector != nil {
		opts = append(opts, proxy.WithFailureRecorder(collector))
	}
	handler, err := proxy.NewHandler(upstream, cfg.Upstream.BaseURL, cfg.Upstream.Credential, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating proxy handler: %w", err)
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	if collector != nil {
		srv.Metrics = collector
	}
	srv.HealthProbes = append(srv.HealthProbes, proxy.UpstreamProbe{Breaker: upstream})
	srv.RouteRegistrars = append(srv.RouteRegistrars, func(r chi.Router) {
		r.Route(cfg.Server.RoutePath, handler.RegisterRoutes)
	})
	srv.MountRoutes()
	return srv, nil
}

func newCloudWatchCollector(ctx context.Context, cfg *config.ProxyConfig, logger *slog.Logger) (*metrics.CloudWatchCollector, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for CloudWatch: %w", err)
	}
	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return metrics.NewCloudWatchCollector(client, cfg.Observability.MetricNamespace, logger), nil
}

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runLambda bridges API Gateway proxy events onto the chi router. lambda.Start
// blocks for the life of the execution environment.
func runLambda(srv *core.Server, logger *slog.Logger) error {
	adapter := chiadapter.New(srv.Router())
	logger.Info("serving as AWS Lambda")
	lambda.Start(adapter.ProxyWithContext)
	return nil
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.ProxyConfig, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	// No WriteTimeout: the relay waits as long as the provider does unless
	// UPSTREAM_TIMEOUT is set.
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr, "route", cfg.Server.RoutePath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
