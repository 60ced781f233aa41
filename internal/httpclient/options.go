// Package httpclient provides an instrumented JSON HTTP client with OTEL
// tracing, metrics and optional outbound pacing.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/ratelimit"
)

type options struct {
	client        *http.Client
	roundTripper  http.RoundTripper
	timeout       time.Duration
	baseURL       string
	headers       map[string]string
	limiter       *ratelimit.Limiter
	name          string
	meterProvider metric.MeterProvider
	tracer        trace.Tracer
	redact        []string
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient uses an existing http.Client instead of building one.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithRoundTripper sets a custom HTTP transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.roundTripper = rt
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithBaseURL sets the base URL paths are resolved against.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHeaders sets default headers for all requests.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithLimiter paces every outbound request through l.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// WithName sets the provider name recorded on metrics and spans.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithRedactedHeaders masks the named headers when they are recorded on spans.
func WithRedactedHeaders(names ...string) Option {
	return func(o *options) {
		o.redact = append(o.redact, names...)
	}
}
