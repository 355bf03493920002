// Package discriminator implements the false-positive check (C6): a
// direct, non-proxied HTTP GET against the candidate endpoint's own port,
// used to reject endpoints that are simply web servers (or redirectors)
// listening on the same port as a forward proxy. Grounded on the
// teacher's testAsWebServer-equivalent shape carried forward from
// original_source/http.py's testAsWebServer, generalized to an
// independently testable component with an injectable http.Client.
package discriminator

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/CXK-Computer/proxy-scan/internal/task"
)

// IsWebServer performs an independent HTTP GET directly to
// http://host:port/ (never through any proxy) with redirect-following
// disabled. It reports true when the response status is in [200, 400),
// meaning the port answers like a real web server or redirector and the
// endpoint must be rejected as a proxy even if the echo-check passed.
func IsWebServer(ctx context.Context, e task.Endpoint, timeout time.Duration) bool {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: timeout}).DialContext,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// A 3xx is itself evidence of a real web server on that port;
			// the first response must be returned, not followed.
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+e.String()+"/", nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
