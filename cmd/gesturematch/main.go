// Command gesturematch registers valid gestures and checks new ones against them.
//
//	gesturematch add   [-dir DIR] [FILE...]   register gesture files as valid exemplars
//	gesturematch check [-dir DIR] [FILE...]   print validity and probability per file
//	gesturematch scores FILE                  print the mismatch score against every exemplar
//	gesturematch explain FILE                 print the per-channel alignment against the nearest exemplar
//	gesturematch list                         print the registered exemplars
//
// Gesture files hold {"frames": [[...], ...]}, one row of channel values per
// frame. Exemplars persist in GESTURE_STORE between runs; see package config
// for the remaining environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/gesturematch/align"
	"github.com/katalvlaran/gesturematch/comparator"
	"github.com/katalvlaran/gesturematch/config"
	"github.com/katalvlaran/gesturematch/logging"
	"github.com/katalvlaran/gesturematch/metrics"
	"github.com/katalvlaran/gesturematch/store"
)

const usage = `usage: gesturematch <add|check|scores|explain|list> [flags] [files...]`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "gesturematch: %v\n", err)
		os.Exit(1)
	}
}

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	cmp    *comparator.DP
	out    io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)

	var mc comparator.MetricsCollector = comparator.NoopMetricsCollector{}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		p, err := metrics.NewPrometheus(reg)
		if err != nil {
			return err
		}
		mc = p
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	cmp, err := comparator.New(cfg.Threshold, cfg.ComparatorOptions(logger, mc)...)
	if err != nil {
		return err
	}
	n, err := store.LoadInto(cmp, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("load exemplars: %w", err)
	}
	logger.Debug("exemplars loaded", "store", cfg.StorePath, "count", n)

	a := &app{cfg: cfg, logger: logger, cmp: cmp, out: stdout}
	switch args[0] {
	case "add":
		return a.add(args[1:])
	case "check":
		return a.check(ctx, args[1:])
	case "scores":
		return a.scores(ctx, args[1:])
	case "explain":
		return a.explain(ctx, args[1:])
	case "list":
		return a.list()
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}

// inputFiles returns the files named on the command line plus every .json
// file in -dir, sorted.
func inputFiles(name string, args []string) ([]string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dir := fs.String("dir", "", "Directory of gesture files (*.json)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	files := fs.Args()
	if *dir != "" {
		matches, err := filepath.Glob(filepath.Join(*dir, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no gesture files given", name)
	}
	return files, nil
}

func (a *app) add(args []string) error {
	files, err := inputFiles("add", args)
	if err != nil {
		return err
	}
	for _, path := range files {
		g, err := store.ReadGestureFile(path)
		if err != nil {
			return err
		}
		e := a.cmp.Add(g)
		logging.WithExemplar(a.logger, e.ID.String()).Debug("gesture registered", "file", path)
		fmt.Fprintf(a.out, "%s\t%s\n", e.ID, path)
	}
	if err := store.SaveFile(a.cfg.StorePath, a.cmp.Exemplars()); err != nil {
		return fmt.Errorf("save exemplars: %w", err)
	}
	a.logger.Info("exemplars saved", "store", a.cfg.StorePath, "count", a.cmp.Len())
	return nil
}

func (a *app) check(ctx context.Context, args []string) error {
	files, err := inputFiles("check", args)
	if err != nil {
		return err
	}
	for _, path := range files {
		log := logging.WithFile(a.logger, path)
		g, err := store.ReadGestureFile(path)
		if err != nil {
			return err
		}
		valid, err := a.cmp.IsValid(ctx, g)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		p, err := a.cmp.ProbaIsValid(ctx, g)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		log.Debug("gesture checked", "valid", valid, "proba", p)
		fmt.Fprintf(a.out, "%s\tvalid=%t\tproba=%.4f\n", path, valid, p)
	}
	return nil
}

func (a *app) scores(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("scores: exactly one gesture file expected")
	}
	g, err := store.ReadGestureFile(args[0])
	if err != nil {
		return err
	}
	scores, err := a.cmp.Scores(ctx, g)
	if err != nil {
		return err
	}
	for _, s := range scores {
		fmt.Fprintf(a.out, "%s\t%.6f\n", s.Exemplar.ID, s.Mismatch)
	}
	return nil
}

func (a *app) explain(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("explain: exactly one gesture file expected")
	}
	g, err := store.ReadGestureFile(args[0])
	if err != nil {
		return err
	}
	best, err := a.cmp.Nearest(ctx, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "nearest %s mismatch=%.6f threshold=%.6f\n", best.Exemplar.ID, best.Mismatch, a.cmp.Threshold())

	opts := a.cfg.AlignOptions()
	for c := 0; c < g.Channels(); c++ {
		r, err := align.Align(g.Channel(c), best.Exemplar.Gesture.Channel(c), &opts)
		if err != nil {
			return fmt.Errorf("channel %d: %w", c, err)
		}
		fmt.Fprintf(a.out, "channel %d\tdistance=%.6f\tcost=%.6f\tmatched=%d\terased=%d/%d\tbudget=%d\n",
			c, r.Distance, r.Cost, r.Matched, r.ErasedA, r.ErasedB, r.Budget)
	}
	return nil
}

func (a *app) list() error {
	for _, e := range a.cmp.Exemplars() {
		fmt.Fprintf(a.out, "%s\t%s\tframes=%d\tchannels=%d\n",
			e.ID, e.Added.Format(time.RFC3339), e.Gesture.Len(), e.Gesture.Channels())
	}
	return nil
}
