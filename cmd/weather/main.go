// Package main is the weather command-line client.
//
// Usage:
//
//	weather [-units m|f|s] [-json] <command> [flags] [args]
//
// Commands:
//
//	current <place>                       current conditions
//	forecast [-days N] <place>            daily forecast (default 7 days)
//	historical -date YYYY-MM-DD <place>   one past day, hourly
//	compare -dates D1,D2,... <place>      up to 5 past days side by side
//	marine <lat,lon>                      sea conditions
//	locations <query>                     place lookup
//	bulk <place> <place>...               current conditions for several places
//	recent [list | remove <place> | clear]
//
// Configuration comes from the environment (or .env): WEATHER_BASE_URL,
// WEATHER_CREDENTIAL, WEATHER_USE_PROXY, WEATHER_UNITS, WEATHER_TIMEOUT and
// WEATHER_RECENT_FILE.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"skyglass/internal/config"
	"skyglass/internal/recent"
	"skyglass/internal/types"
	"skyglass/internal/weatherstack"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run loads configuration, builds the client and executes one command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintf(stderr, "error: loading configuration: %v\n", err)
		return exitFailure
	}

	logger := newLogger(cfg.LogLevel, stderr)

	client, err := weatherstack.New(weatherstack.Options{
		BaseURL:    cfg.BaseURL,
		Credential: cfg.Credential,
		UseProxy:   cfg.UseProxy,
		Timeout:    cfg.Timeout,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: creating weather client: %v\n", err)
		return exitFailure
	}

	store, err := recent.Open(recent.NewFileStorage(cfg.RecentFile))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}

	a := newApp(client, store, logger, stdout, stderr, types.Units(cfg.Units), colorEnabled(stdout))
	return a.run(ctx, args)
}

// usageError marks a problem with the command line rather than the lookup.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// run parses the global flags and dispatches to a command.
func (a *app) run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("weather", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	units := fs.String("units", string(a.units), "units: m (metric), f (imperial), s (scientific)")
	asJSON := fs.Bool("json", false, "print the provider's JSON instead of a summary")
	fs.Usage = func() {
		fmt.Fprintf(a.errOut, "Usage: weather [-units m|f|s] [-json] <command> [flags] [args]\n\n")
		fmt.Fprintf(a.errOut, "Commands: current, forecast, historical, compare, marine, locations, bulk, recent\n\n")
		fmt.Fprintf(a.errOut, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	a.units = types.Units(*units)
	if !a.units.Valid() {
		fmt.Fprintf(a.errOut, "error: -units must be one of m, f, s\n")
		return exitUsage
	}
	a.json = *asJSON

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "error: unknown command %q\n", rest[0])
		fs.Usage()
		return exitUsage
	}

	if err := cmd(a, ctx, rest[1:]); err != nil {
		return a.fail(err)
	}
	return exitOK
}

// fail prints err for a person and picks the exit code.
func (a *app) fail(err error) int {
	var uerr usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(a.errOut, "error: %s\n", uerr.msg)
		return exitUsage
	}
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintf(a.errOut, "error: %s\n", appErr.Message)
		return exitFailure
	}
	fmt.Fprintf(a.errOut, "error: %v\n", err)
	return exitFailure
}

// colorEnabled reports whether w is a terminal that should get styled
// output. NO_COLOR and TERM=dumb turn styling off.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// newLogger writes human-readable logs to w at the given level.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
