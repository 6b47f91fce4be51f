package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/giantswarm/mcp-proxmox/internal/instrumentation"
)

// statusRecorder wraps http.ResponseWriter to remember the status code
// the handler sent.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code; later calls pass through
// unrecorded, matching net/http's superfluous-WriteHeader behavior.
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.status = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.wroteHeader = true
	return sr.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer so http.ResponseController can
// reach Flusher and friends.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Flush forwards to the underlying writer when it supports streaming.
// SSE connections need this.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// HTTPMetrics records request count and duration per method, endpoint
// and status. A nil or disabled provider turns the middleware into a
// pass-through.
func HTTPMetrics(provider *instrumentation.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil || !provider.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder := newStatusRecorder(w)
			next.ServeHTTP(recorder, r)

			provider.Metrics().RecordHTTPRequest(
				r.Context(),
				r.Method,
				metricPath(r.URL.Path),
				recorder.status,
				time.Since(start),
			)
		})
	}
}

// knownEndpoints is every path the server serves directly. Requests to
// these are labeled verbatim; everything else is collapsed so that
// probes and scanners cannot inflate metric cardinality.
var knownEndpoints = map[string]struct{}{
	"/mcp":              {},
	"/sse":              {},
	"/message":          {},
	"/healthz":          {},
	"/healthz/detailed": {},
	"/readyz":           {},
	"/metrics":          {},
}

// mcpSessionPattern matches the per-session endpoints the streamable
// HTTP transport issues under /mcp.
var mcpSessionPattern = regexp.MustCompile(`^/mcp/[a-zA-Z0-9_-]{8,64}$`)

// metricPath maps a request path onto a bounded label set.
func metricPath(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}

	if _, ok := knownEndpoints[path]; ok {
		return path
	}
	if mcpSessionPattern.MatchString(path) {
		return "/mcp/:session"
	}
	return "/other"
}
