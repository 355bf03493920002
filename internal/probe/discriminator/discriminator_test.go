package discriminator

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/CXK-Computer/proxy-scan/internal/task"
)

func TestIsWebServerDetectsDirectHTTPServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	host, portStr, _ := net.SplitHostPort(ts.Listener.Addr().String())
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port %q: %v", portStr, err)
	}

	ep := task.Endpoint{Host: host, Port: port}
	if !IsWebServer(context.Background(), ep, 2*time.Second) {
		t.Fatal("expected a plain HTTP server to be detected as a web server impersonator")
	}
}

func TestIsWebServerFalseWhenNothingListening(t *testing.T) {
	ep := task.Endpoint{Host: "127.0.0.1", Port: 1}
	if IsWebServer(context.Background(), ep, 200*time.Millisecond) {
		t.Fatal("expected false when no server is listening")
	}
}
