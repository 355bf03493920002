// Package batch implements the batching driver (C8): it slices an
// oversized input into bounded windows of M lines, drives the worker pool
// once per window so memory stays O(workers + M), and accumulates a
// running total of accepted endpoints across windows. Corresponds to
// original_source/socks5.py's ask_and_split_file workflow, collapsed from
// "split to disk, invoke a subprocess per part" into one in-process loop
// per spec.md §9's "subprocess launching... collapses to a single
// in-process pool" design note.
package batch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/CXK-Computer/proxy-scan/internal/applog"
	"github.com/CXK-Computer/proxy-scan/internal/metrics"
	"github.com/CXK-Computer/proxy-scan/internal/pool"
	"github.com/CXK-Computer/proxy-scan/internal/probe"
	"github.com/CXK-Computer/proxy-scan/internal/sink"
	"github.com/CXK-Computer/proxy-scan/internal/source"
	"github.com/CXK-Computer/proxy-scan/internal/statsfeed"
	"github.com/CXK-Computer/proxy-scan/internal/task"
)

// unboundedWindow is used internally when ChunkSize <= 0 ("no chunking"):
// the driver reads the whole input as one window of up to this many lines
// through the same ReadChunk code path as chunked mode, so every line of
// the input is held in memory before that window is probed.
const unboundedWindow = 1 << 30

// Config holds the parameters for one batching run.
type Config struct {
	// ChunkSize is the number of lines per window; 0 disables chunking.
	ChunkSize int
	Workers   int
	Timeout   time.Duration
	// BuildProber returns the Prober to use for every window; invoked
	// once per window so stateful probers (none currently) could be
	// re-created if needed, but a single shared Prober is safe to reuse.
	BuildProber func() probe.Prober
	OutputPath  string

	// Stats is optional; when set, every window reports in-flight and
	// completed tasks to it for the live progress feed.
	Stats *statsfeed.Stats
}

// Result summarizes a completed run.
type Result struct {
	TotalAccepted int
	Windows       int
}

// Run drives src through the pool one window at a time, writing every
// accepted endpoint into a single continuously-held output sink. The
// output file is truncated at the start of the run (sink.Create) and
// every window's hits are appended and flushed as they arrive, so the
// same durability guarantee the per-window-temp-file design in spec.md
// §4.8/§9 describes is preserved without needing separate temp files —
// there is no subprocess boundary between windows to reconcile.
func Run(ctx context.Context, src *source.Source, creds []task.Credential, cfg Config) (Result, error) {
	out, err := sink.Create(cfg.OutputPath)
	if err != nil {
		return Result{}, err
	}
	defer out.Close()

	windowSize := cfg.ChunkSize
	unbounded := windowSize <= 0
	if unbounded {
		windowSize = unboundedWindow
	}

	var res Result
	for {
		if ctx.Err() != nil {
			return res, nil
		}

		lines, rerr := source.ReadChunk(src, windowSize)
		if rerr != nil {
			return res, rerr
		}
		if len(lines) == 0 {
			break
		}

		endpoints := make([]task.Endpoint, 0, len(lines))
		for _, l := range lines {
			ep, perr := task.ParseEndpoint(l)
			if perr != nil {
				applog.Errorf("skipping line: %v", perr)
				continue
			}
			endpoints = append(endpoints, ep)
		}

		n := runWindow(ctx, endpoints, creds, cfg, out)
		res.TotalAccepted += n
		res.Windows++

		applog.Infof("window %d complete: %d endpoints, %d accepted so far", res.Windows, len(endpoints), res.TotalAccepted)

		if unbounded {
			break
		}
	}
	return res, nil
}

// runWindow materializes one window's tasks lazily into a bounded channel
// (capacity = worker count, per spec.md §4.2's backpressure model), drives
// one full pool lifecycle over them, and waits for every worker to exit
// before returning — the barrier spec.md §4.8 requires between windows.
func runWindow(ctx context.Context, endpoints []task.Endpoint, creds []task.Credential, cfg Config, out *sink.Sink) int {
	taskCh := make(chan task.Task, cfg.Workers)
	go task.Expand(endpoints, creds, taskCh, ctx.Done())

	stats := cfg.Stats

	var accepted int64
	p := pool.New(cfg.Workers, cfg.BuildProber(), cfg.Timeout, func(r probe.Result, t task.Task) {
		metrics.ProbeFinished()
		if stats != nil {
			stats.UnmarkWaiting(t.Endpoint.String())
			stats.MarkProcessed()
		}

		if !r.Valid {
			metrics.RecordRejected(string(r.RejectedReason))
			return
		}
		if err := out.Accept(r.NormalizedURL); err != nil {
			applog.Errorf("write output: %v", err)
			return
		}
		metrics.RecordValid()
		if stats != nil {
			stats.MarkAccepted(r.NormalizedURL)
		}
		atomic.AddInt64(&accepted, 1)
	}).WithOnStart(func(t task.Task) {
		metrics.TaskDispatched()
		metrics.ProbeStarted()
		if stats != nil {
			stats.MarkWaiting(t.Endpoint.String())
		}
	})
	p.Run(ctx, taskCh)

	return int(accepted)
}
