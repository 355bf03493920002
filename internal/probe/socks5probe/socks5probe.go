// Package socks5probe implements the SOCKS5 validation probe (C5): a raw
// RFC 1928 method-negotiation handshake, an optional RFC 1929
// username/password sub-negotiation, and an optional CONNECT to a
// reference target that proves the server can forward traffic on the
// client's behalf. Grounded in original_source/socks5.py's isSocks5 (fast
// handshake) and checkProxyAuth (authenticated sub-negotiation) Go
// snippets; the CONNECT-verified deep path, when no credential is in
// play, is grounded in the teacher's (ogpourya-proxyra/proxyra.go)
// newTransport, which wraps h12.io/socks.Dial to perform a full
// greeting+CONNECT over a single connection exactly as this probe's deep
// mode does.
package socks5probe

import (
	"context"
	"net"
	"time"

	"h12.io/socks"

	"github.com/CXK-Computer/proxy-scan/internal/probe"
	"github.com/CXK-Computer/proxy-scan/internal/task"
)

// Depth selects how far the probe goes to confirm forwarding.
type Depth int

const (
	// DepthFast confirms method negotiation only (spec.md §4.5
	// Handshake-only).
	DepthFast Depth = iota
	// DepthDeep additionally performs a CONNECT to ReferenceTarget (spec.md
	// §4.5 Deep / CONNECT-verified).
	DepthDeep
)

const (
	verSocks5   = 0x05
	methodNone  = 0x00
	methodUser  = 0x02
	atypDomain  = 0x03
	authVersion = 0x01
	authOK      = 0x00
)

// Config holds the parameters shared by every probe invocation.
type Config struct {
	Depth Depth
	// ReferenceTarget is the domain:port used for the deep CONNECT check,
	// e.g. "example.com:80".
	ReferenceTarget string
	Timeout         time.Duration
}

// Prober validates SOCKS5 endpoints per Config.
type Prober struct {
	cfg Config
}

// New builds a socks5probe.Prober for the given configuration.
func New(cfg Config) *Prober {
	return &Prober{cfg: cfg}
}

var _ probe.Prober = (*Prober)(nil)

// Probe implements probe.Prober for the SOCKS5 family. An unauthenticated
// deep probe is handled entirely by h12.io/socks.Dial (one connection,
// greeting+CONNECT together); every other path hand-rolls the raw bytes
// on a single connection this function owns.
func (p *Prober) Probe(ctx context.Context, t task.Task) probe.Result {
	if !t.Credential.HasValue() && p.cfg.Depth == DepthDeep {
		return p.connectViaLibrary(ctx, t)
	}

	dialer := net.Dialer{Timeout: p.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.Endpoint.String())
	if err != nil {
		return probe.Rejected(probe.ReasonDialFailure)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.cfg.Timeout)
	_ = conn.SetDeadline(deadline)

	if t.Credential.HasValue() {
		return p.probeAuthenticated(conn, t)
	}
	return p.probeFastNoAuth(conn, t)
}

// probeFastNoAuth implements spec.md §4.5's Handshake-only path: greet
// with NO_AUTH only and confirm the server accepts it, without a CONNECT.
func (p *Prober) probeFastNoAuth(conn net.Conn, t task.Task) probe.Result {
	if _, err := conn.Write([]byte{verSocks5, 0x01, methodNone}); err != nil {
		return probe.Rejected(probe.ReasonDialFailure)
	}

	reply := make([]byte, 2)
	if _, err := readFull(conn, reply); err != nil {
		return probe.Rejected(timeoutOrReason(err, probe.ReasonHandshakeBad))
	}
	if reply[0] != verSocks5 {
		return probe.Rejected(probe.ReasonHandshakeBad)
	}
	switch reply[1] {
	case methodNone:
		return probe.Valid(t.Endpoint.String())
	case methodUser:
		return probe.Rejected(probe.ReasonAuthRequired)
	default:
		return probe.Rejected(probe.ReasonHandshakeBad)
	}
}

// connectViaLibrary performs the deep CONNECT-verified check for an
// unauthenticated endpoint via h12.io/socks, matching the teacher's
// newTransport wiring: a single call that re-establishes the connection
// and drives the full greeting+CONNECT exchange.
func (p *Prober) connectViaLibrary(ctx context.Context, t task.Task) probe.Result {
	dial := socks.Dial("socks5://" + t.Endpoint.String())
	type dialOutcome struct {
		conn net.Conn
		err  error
	}
	ch := make(chan dialOutcome, 1)
	go func() {
		c, err := dial("tcp", p.cfg.ReferenceTarget)
		ch <- dialOutcome{c, err}
	}()

	select {
	case <-ctx.Done():
		return probe.Rejected(probe.ReasonTimeout)
	case res := <-ch:
		if res.err != nil {
			return probe.Rejected(probe.ReasonHandshakeBad)
		}
		_ = res.conn.Close()
		return probe.Valid(t.Endpoint.String())
	}
}

// probeAuthenticated implements spec.md §4.5's Authenticated variant: the
// greeting advertises both NO_AUTH and USER_PASS. A server that accepts
// NO_AUTH despite credentials being supplied has not exercised the
// credential the task was built to test, so it is rejected rather than
// silently accepted; a server that requests USER_PASS is driven through
// RFC 1929 sub-negotiation.
func (p *Prober) probeAuthenticated(conn net.Conn, t task.Task) probe.Result {
	if _, err := conn.Write([]byte{verSocks5, 0x02, methodNone, methodUser}); err != nil {
		return probe.Rejected(probe.ReasonDialFailure)
	}

	reply := make([]byte, 2)
	if _, err := readFull(conn, reply); err != nil {
		return probe.Rejected(timeoutOrReason(err, probe.ReasonHandshakeBad))
	}
	if reply[0] != verSocks5 {
		return probe.Rejected(probe.ReasonHandshakeBad)
	}

	switch reply[1] {
	case methodNone:
		return probe.Rejected(probe.ReasonAuthFailed)
	case methodUser:
		// fall through to sub-negotiation
	default:
		return probe.Rejected(probe.ReasonAuthFailed)
	}

	user := []byte(t.Credential.Username)
	pass := []byte(t.Credential.Password)
	req := make([]byte, 0, 3+len(user)+len(pass))
	req = append(req, authVersion, byte(len(user)))
	req = append(req, user...)
	req = append(req, byte(len(pass)))
	req = append(req, pass...)
	if _, err := conn.Write(req); err != nil {
		return probe.Rejected(probe.ReasonAuthFailed)
	}

	authReply := make([]byte, 2)
	if _, err := readFull(conn, authReply); err != nil {
		return probe.Rejected(probe.ReasonAuthFailed)
	}
	if authReply[0] != authVersion || authReply[1] != authOK {
		return probe.Rejected(probe.ReasonAuthFailed)
	}

	if p.cfg.Depth == DepthFast {
		return probe.Valid(t.Endpoint.String())
	}
	return p.connectRaw(conn, t)
}

// connectRaw drives the CONNECT request over an already-authenticated
// connection (spec.md §4.5 Deep, steps 4-5), used for the authenticated
// path where the connection already carries a successful sub-negotiation
// and must not be re-dialed.
func (p *Prober) connectRaw(conn net.Conn, t task.Task) probe.Result {
	host, portStr, err := net.SplitHostPort(p.cfg.ReferenceTarget)
	if err != nil {
		return probe.Rejected(probe.ReasonHandshakeBad)
	}
	port, err := parsePort(portStr)
	if err != nil {
		return probe.Rejected(probe.ReasonHandshakeBad)
	}

	req := make([]byte, 0, 7+len(host))
	req = append(req, verSocks5, 0x01, 0x00, atypDomain, byte(len(host)))
	req = append(req, host...)
	req = append(req, byte(port>>8), byte(port&0xff))
	if _, err := conn.Write(req); err != nil {
		return probe.Rejected(probe.ReasonHandshakeBad)
	}

	reply := make([]byte, 4)
	if _, err := readFull(conn, reply); err != nil {
		return probe.Rejected(timeoutOrReason(err, probe.ReasonHandshakeBad))
	}
	if reply[0] != verSocks5 || reply[1] != 0x00 {
		return probe.Rejected(probe.ReasonHandshakeBad)
	}
	return probe.Valid(t.Endpoint.String())
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func timeoutOrReason(err error, fallback probe.Reason) probe.Reason {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return probe.ReasonTimeout
	}
	return fallback
}

func parsePort(s string) (int, error) {
	var port int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, net.InvalidAddrError(s)
		}
		port = port*10 + int(c-'0')
	}
	return port, nil
}
