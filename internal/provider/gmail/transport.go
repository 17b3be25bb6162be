package gmail

import (
	"net/http"
	"time"

	"github.com/lu-zhengda/zeromail/internal/log"
)

// loggingTransport records method, path, status and latency of each Gmail
// API call in the debug log. Bodies are never logged.
type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := t.base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if !log.DebugEnabled() {
		return rt.RoundTrip(req)
	}

	start := time.Now()
	resp, err := rt.RoundTrip(req)
	if err != nil {
		log.Printf("gmail: %s %s failed after %v: %v", req.Method, req.URL.Path, time.Since(start), err)
		return resp, err
	}
	log.Printf("gmail: %s %s -> %d (%v)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}
