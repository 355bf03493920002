// Command proxyscan is the CLI entrypoint: it loads configuration,
// optionally serves Prometheus metrics and a live stats feed, builds the
// configured Prober, and drives the batching engine over the endpoint
// source until the input is exhausted or the process is interrupted.
// Wiring follows the teacher's main.go shape (flag parsing, a cancellable
// context tied to os/signal, a final summary line) generalized to the
// validation engine's config/metrics/statsfeed layers.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/CXK-Computer/proxy-scan/internal/applog"
	"github.com/CXK-Computer/proxy-scan/internal/batch"
	"github.com/CXK-Computer/proxy-scan/internal/config"
	"github.com/CXK-Computer/proxy-scan/internal/metrics"
	"github.com/CXK-Computer/proxy-scan/internal/probe"
	"github.com/CXK-Computer/proxy-scan/internal/probe/httpprobe"
	"github.com/CXK-Computer/proxy-scan/internal/probe/socks5probe"
	"github.com/CXK-Computer/proxy-scan/internal/source"
	"github.com/CXK-Computer/proxy-scan/internal/statsfeed"
	"github.com/CXK-Computer/proxy-scan/internal/task"
)

func main() {
	os.Exit(run())
}

// run returns a process exit code per spec.md §6: 0 on a completed run
// (including zero hits), non-zero on an input-fatal or output-fatal
// error.
func run() int {
	// godotenv.Load is a no-op (returns an error we ignore) when no .env
	// file is present, matching felipecampolina-FCReverseProxy's optional
	// .env convention.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "proxyscan:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	var stats *statsfeed.Stats
	if cfg.StatsAddr != "" {
		stats = statsfeed.NewStats(0)
		go serveStats(ctx, cfg.StatsAddr, stats)
	}

	creds, err := loadCredentials(cfg.CredsFile)
	if err != nil {
		applog.Errorf("loading credentials: %v", err)
		return 1
	}

	src, err := source.Open(cfg.ProxiesFile, os.Stdin)
	if err != nil {
		applog.Errorf("opening endpoint source: %v", err)
		return 1
	}
	defer src.Close()

	result, err := batch.Run(ctx, src, creds, batch.Config{
		ChunkSize:   cfg.ChunkSize,
		Workers:     cfg.Workers,
		Timeout:     cfg.Timeout,
		BuildProber: func() probe.Prober { return buildProber(cfg) },
		OutputPath:  cfg.Output,
		Stats:       stats,
	})
	if err != nil {
		applog.Errorf("run failed: %v", err)
		return 1
	}

	applog.Infof("done: %d windows, %d accepted", result.Windows, result.TotalAccepted)
	return 0
}

// loadCredentials reads and parses the optional credential file in full
// (spec.md §4.2: K is small and loaded eagerly), dropping malformed lines
// with a logged warning rather than aborting the run.
func loadCredentials(path string) ([]task.Credential, error) {
	if path == "" {
		return nil, nil
	}
	src, err := source.Open(path, nil)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	lines, err := source.ReadAll(src)
	if err != nil {
		return nil, err
	}

	creds := make([]task.Credential, 0, len(lines))
	for _, l := range lines {
		c, perr := task.ParseCredential(l)
		if perr != nil {
			applog.Errorf("skipping credential line: %v", perr)
			continue
		}
		creds = append(creds, c)
	}
	return creds, nil
}

// buildProber selects the C4 or C5 prober family per the configured Mode.
func buildProber(cfg *config.Config) probe.Prober {
	switch cfg.Mode {
	case config.ModeHTTPLoose:
		return httpprobe.New(httpprobe.Config{
			Mode:          httpprobe.ModeLoose,
			ValidationURL: cfg.TargetURL,
			Timeout:       cfg.Timeout,
		})
	case config.ModeSocks5Fast:
		return socks5probe.New(socks5probe.Config{
			Depth:           socks5probe.DepthFast,
			ReferenceTarget: cfg.ReferenceTarget,
			Timeout:         cfg.Timeout,
		})
	case config.ModeSocks5Deep:
		return socks5probe.New(socks5probe.Config{
			Depth:           socks5probe.DepthDeep,
			ReferenceTarget: cfg.ReferenceTarget,
			Timeout:         cfg.Timeout,
		})
	default: // config.ModeHTTPEcho
		return httpprobe.New(httpprobe.Config{
			Mode:          httpprobe.ModeEcho,
			ValidationURL: cfg.TargetURL,
			Timeout:       cfg.Timeout,
		})
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	applog.Infof("serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		applog.Errorf("metrics server: %v", err)
	}
}

func serveStats(ctx context.Context, addr string, stats *statsfeed.Stats) {
	srv := statsfeed.NewServer(stats)
	go srv.Run(ctx.Done())
	applog.Infof("serving live stats on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		applog.Errorf("stats server: %v", err)
	}
}
