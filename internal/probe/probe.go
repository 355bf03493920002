// Package probe defines the shared result type and prober interface used
// by the HTTP-proxy and SOCKS5 probe families (C4, C5). Individual probes
// never return a Go error out of a worker: every outcome is a tagged
// Result, matching the exception-free control-flow design in spec.md §9.
package probe

import (
	"context"

	"github.com/CXK-Computer/proxy-scan/internal/task"
)

// Reason classifies why a probe was Rejected. Purely diagnostic: it never
// reaches the output sink, only logs/metrics.
type Reason string

const (
	ReasonDialFailure     Reason = "tcp-dial-failure"
	ReasonHandshakeBad    Reason = "handshake-malformed"
	ReasonAuthRequired    Reason = "auth-required"
	ReasonAuthFailed      Reason = "auth-failed"
	ReasonBodyMismatch    Reason = "body-mismatch"
	ReasonStatusNon2xx    Reason = "status-non-2xx"
	ReasonImpersonator    Reason = "appears-to-be-web-server"
	ReasonTimeout         Reason = "timeout"
)

// Result is the outcome of one probe: either Valid with a normalized URL,
// or Rejected with a reason. Only Valid results flow to the sink.
type Result struct {
	Valid          bool
	NormalizedURL  string
	RejectedReason Reason
}

// Valid builds an accepted Result.
func Valid(normalizedURL string) Result {
	return Result{Valid: true, NormalizedURL: normalizedURL}
}

// Rejected builds a rejected Result carrying a diagnostic reason.
func Rejected(reason Reason) Result {
	return Result{Valid: false, RejectedReason: reason}
}

// Prober validates a single Task and returns its Result. Implementations
// must respect ctx cancellation at their next I/O boundary (spec.md §5).
type Prober interface {
	Probe(ctx context.Context, t task.Task) Result
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, t task.Task) Result

func (f ProberFunc) Probe(ctx context.Context, t task.Task) Result { return f(ctx, t) }
