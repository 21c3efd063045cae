package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"skyglass/internal/recent"
	"skyglass/internal/types"
	"skyglass/internal/weatherstack"
)

// maxCompareDates caps compare, matching the comparison table's size.
const maxCompareDates = 5

type command func(a *app, ctx context.Context, args []string) error

var commands = map[string]command{
	"current":    (*app).cmdCurrent,
	"forecast":   (*app).cmdForecast,
	"historical": (*app).cmdHistorical,
	"compare":    (*app).cmdCompare,
	"marine":     (*app).cmdMarine,
	"locations":  (*app).cmdLocations,
	"bulk":       (*app).cmdBulk,
	"recent":     (*app).cmdRecent,
}

type app struct {
	client *weatherstack.Client
	recent *recent.Store
	logger *slog.Logger

	out    io.Writer
	errOut io.Writer
	units  types.Units
	json   bool
	styles styles
}

func newApp(client *weatherstack.Client, store *recent.Store, logger *slog.Logger, out, errOut io.Writer, units types.Units, color bool) *app {
	return &app{
		client: client,
		recent: store,
		logger: logger,
		out:    out,
		errOut: errOut,
		units:  units,
		styles: newStyles(out, color),
	}
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parseFlags parses args, reporting bad flags as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{msg: err.Error()}
	}
	return nil
}

// place joins the remaining arguments into one location query.
func place(cmd string, fs *flag.FlagSet) (string, error) {
	p := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if p == "" {
		return "", usagef("%s: a location is required", cmd)
	}
	return p, nil
}

// remember records a successful lookup. The list is a convenience, so a
// failure to save it only warns.
func (a *app) remember(p string) {
	if err := a.recent.Add(p); err != nil {
		a.logger.Warn("could not update recent searches", "error", err)
	}
}

func (a *app) cmdCurrent(ctx context.Context, args []string) error {
	fs := a.flagSet("current")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	p, err := place("current", fs)
	if err != nil {
		return err
	}

	resp, err := a.client.Current(ctx, p, a.units)
	if err != nil {
		return err
	}
	a.remember(p)
	if a.json {
		return a.printJSON(resp.Raw)
	}

	cur, err := resp.Current()
	if err != nil {
		return err
	}
	a.renderCurrent(cur)
	return nil
}

func (a *app) cmdForecast(ctx context.Context, args []string) error {
	fs := a.flagSet("forecast")
	days := fs.Int("days", weatherstack.DefaultForecastDays, "number of days")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *days < 1 {
		return usagef("forecast: -days must be at least 1")
	}
	p, err := place("forecast", fs)
	if err != nil {
		return err
	}

	resp, err := a.client.Forecast(ctx, p, *days, a.units)
	if err != nil {
		return err
	}
	a.remember(p)
	if a.json {
		return a.printJSON(resp.Raw)
	}

	fc, err := resp.Forecast()
	if err != nil {
		return err
	}
	a.renderForecast(fc)
	return nil
}

func (a *app) cmdHistorical(ctx context.Context, args []string) error {
	fs := a.flagSet("historical")
	date := fs.String("date", "", "day to fetch, YYYY-MM-DD")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *date == "" {
		return usagef("historical: -date is required")
	}
	p, err := place("historical", fs)
	if err != nil {
		return err
	}

	resp, err := a.client.Historical(ctx, p, *date, a.units)
	if err != nil {
		return err
	}
	a.remember(p)
	if a.json {
		return a.printJSON(resp.Raw)
	}

	h, err := resp.Historical()
	if err != nil {
		return err
	}
	a.renderHistorical(h, *date)
	return nil
}

func (a *app) cmdCompare(ctx context.Context, args []string) error {
	fs := a.flagSet("compare")
	datesFlag := fs.String("dates", "", "comma-separated days, YYYY-MM-DD")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	dates := splitDates(*datesFlag)
	switch {
	case len(dates) == 0:
		return usagef("compare: -dates is required")
	case len(dates) > maxCompareDates:
		return usagef("compare: at most %d distinct dates", maxCompareDates)
	}
	for _, d := range dates {
		if err := weatherstack.ValidateDate(d); err != nil {
			return err
		}
	}
	p, err := place("compare", fs)
	if err != nil {
		return err
	}

	results := make([]*weatherstack.Response, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dates {
		g.Go(func() error {
			resp, err := a.client.Historical(gctx, p, d, a.units)
			if err != nil {
				return fmt.Errorf("%s: %w", d, err)
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.remember(p)

	if a.json {
		raws := make([]json.RawMessage, len(results))
		for i, r := range results {
			raws[i] = r.Raw
		}
		body, err := json.Marshal(raws)
		if err != nil {
			return err
		}
		return a.printJSON(body)
	}

	rows := make([]compareRow, 0, len(results))
	for i, r := range results {
		h, err := r.Historical()
		if err != nil {
			return err
		}
		day, _ := h.Day(dates[i])
		rows = append(rows, compareRow{date: dates[i], day: day, from: a.sourceUnits(h.Request)})
		if i == 0 {
			a.renderLocation(h.Location)
		}
	}
	a.renderCompare(rows)
	return nil
}

// splitDates splits a comma-separated list, dropping blanks and repeats.
func splitDates(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range strings.Split(s, ",") {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

func (a *app) cmdMarine(ctx context.Context, args []string) error {
	fs := a.flagSet("marine")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	p, err := place("marine", fs)
	if err != nil {
		return err
	}

	resp, err := a.client.Marine(ctx, p, a.units)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(resp.Raw)
	}

	m, err := resp.Marine()
	if err != nil {
		return err
	}
	a.renderMarine(m, p)
	return nil
}

func (a *app) cmdLocations(ctx context.Context, args []string) error {
	fs := a.flagSet("locations")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	q, err := place("locations", fs)
	if err != nil {
		return err
	}

	resp, err := a.client.SearchLocations(ctx, q)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(resp.Raw)
	}

	locs, err := resp.Locations()
	if err != nil {
		return err
	}
	a.renderLocations(locs)
	return nil
}

func (a *app) cmdBulk(ctx context.Context, args []string) error {
	fs := a.flagSet("bulk")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if len(fs.Args()) == 0 {
		return usagef("bulk: at least one location is required")
	}

	resp, err := a.client.BulkCurrent(ctx, fs.Args(), a.units)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(resp.Raw)
	}

	all, err := resp.Bulk()
	if err != nil {
		return err
	}
	a.renderBulk(all)
	return nil
}

func (a *app) cmdRecent(_ context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		entries := a.recent.List()
		if a.json {
			body, err := json.Marshal(entries)
			if err != nil {
				return err
			}
			return a.printJSON(body)
		}
		if len(entries) == 0 {
			fmt.Fprintln(a.out, "No recent searches.")
			return nil
		}
		for i, e := range entries {
			fmt.Fprintf(a.out, "%d. %s\n", i+1, e)
		}
		return nil
	case "remove":
		name := strings.TrimSpace(strings.Join(args[1:], " "))
		if name == "" {
			return usagef("recent remove: a place is required")
		}
		return a.recent.Remove(name)
	case "clear":
		return a.recent.Clear()
	}
	return usagef("recent: unknown subcommand %q (want list, remove or clear)", sub)
}

// printJSON pretty-prints an encoded document.
func (a *app) printJSON(raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(a.out)
	return err
}
