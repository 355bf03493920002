package httpprobe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/CXK-Computer/proxy-scan/internal/probe"
	"github.com/CXK-Computer/proxy-scan/internal/task"
)

// fakeProxyServer plays both roles a probed endpoint can play on the same
// listening port: when reached *through* an http.Transport's Proxy field,
// Go's client sends an absolute-URI request line (RFC 7230 §5.3.2), which
// net/http's server surfaces as a non-empty r.URL.Host — this handler
// treats that as "request arrived via proxying" and answers with an
// origin-echo JSON body, mimicking an IP-reflection endpoint reached
// through the proxy. A direct hit (the discriminator's non-proxied GET to
// the endpoint's own port) has no absolute-URI target, so r.URL.Host is
// empty; webServerBehind then selects whether that direct hit looks like
// "nothing here" (404, the plain-proxy case) or "a real web server" (200
// OK HTML, the impersonator case S5 exercises).
func fakeProxyServer(t *testing.T, webServerBehind bool) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Host != "" {
			host, _, _ := net.SplitHostPort(r.RemoteAddr)
			fmt.Fprintf(w, `{"origin": "%s"}`, host)
			return
		}
		if webServerBehind {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "<html>hello</html>")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})}
	go srv.Serve(ln)
	return ln.Addr().String(), func() { srv.Close() }
}

func TestProbeEchoModeAccepts(t *testing.T) {
	proxyAddr, stop := fakeProxyServer(t, false)
	defer stop()

	host, portStr, _ := net.SplitHostPort(proxyAddr)
	var port int
	fmt.Sscanf(portStr, "%d", &port)

	p := New(Config{Mode: ModeEcho, ValidationURL: "http://anything.invalid/ip", Timeout: 2 * time.Second})
	tk := task.Task{Endpoint: task.Endpoint{Host: host, Port: port}}

	result := p.Probe(context.Background(), tk)
	// The fake proxy echoes the dialing client's own address for
	// proxy-style requests, so the echo-match against the endpoint host
	// succeeds (host == "127.0.0.1" on both sides); a direct hit from the
	// discriminator gets a 404, so it is not rejected as an impersonator.
	if !result.Valid {
		t.Fatalf("expected Valid result, got %+v", result)
	}
	if !strings.Contains(result.NormalizedURL, host) {
		t.Errorf("normalized URL %q should contain host %q", result.NormalizedURL, host)
	}
}

// S5: the validation URL's echo-check passes, but a direct GET to the
// endpoint's own port answers like a real web server — Probe must reject
// it as an impersonator rather than returning Valid.
func TestProbeEchoModeRejectsWebServerImpersonator(t *testing.T) {
	proxyAddr, stop := fakeProxyServer(t, true)
	defer stop()

	host, portStr, _ := net.SplitHostPort(proxyAddr)
	var port int
	fmt.Sscanf(portStr, "%d", &port)

	p := New(Config{Mode: ModeEcho, ValidationURL: "http://anything.invalid/ip", Timeout: 2 * time.Second})
	tk := task.Task{Endpoint: task.Endpoint{Host: host, Port: port}}

	result := p.Probe(context.Background(), tk)
	if result.Valid {
		t.Fatalf("expected Rejected (web-server impersonator), got %+v", result)
	}
	if result.RejectedReason != probe.ReasonImpersonator {
		t.Fatalf("expected reason %q, got %q", probe.ReasonImpersonator, result.RejectedReason)
	}
}

func TestProbeLooseModeAcceptsAny2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	u, _ := url.Parse(ts.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	var port int
	fmt.Sscanf(portStr, "%d", &port)

	p := New(Config{Mode: ModeLoose, ValidationURL: ts.URL, Timeout: 2 * time.Second})
	tk := task.Task{Endpoint: task.Endpoint{Host: host, Port: port}}

	result := p.Probe(context.Background(), tk)
	if !result.Valid {
		t.Fatalf("expected Valid result in loose mode, got %+v", result)
	}
}

func TestProbeRejectsOnDialFailure(t *testing.T) {
	p := New(Config{Mode: ModeEcho, ValidationURL: "http://anything.invalid/ip", Timeout: 200 * time.Millisecond})
	tk := task.Task{Endpoint: task.Endpoint{Host: "127.0.0.1", Port: 1}} // nothing listening

	result := p.Probe(context.Background(), tk)
	if result.Valid {
		t.Fatalf("expected rejection for an endpoint with nothing listening, got %+v", result)
	}
}

func TestBuildProxyURLWithCredentials(t *testing.T) {
	tk := task.Task{
		Endpoint:   task.Endpoint{Host: "1.2.3.4", Port: 8080},
		Credential: mustCred(t, "user", "p@ss"),
	}
	u, err := buildProxyURL(tk)
	if err != nil {
		t.Fatalf("buildProxyURL: %v", err)
	}
	if u.User.Username() != "user" {
		t.Errorf("got username %q, want user", u.User.Username())
	}
	pw, _ := u.User.Password()
	if pw != "p@ss" {
		t.Errorf("got password %q, want p@ss", pw)
	}
}

func mustCred(t *testing.T, user, pass string) task.Credential {
	t.Helper()
	c, err := task.ParseCredential(user + ":" + pass)
	if err != nil {
		t.Fatalf("ParseCredential: %v", err)
	}
	return c
}
