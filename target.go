package orca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/theapemachine/errnie"
)

const (
	// AccessURLEnv names the environment variable holding the
	// comma-separated list of ORCA service endpoints.
	AccessURLEnv = "ORCA_ACCESS_URL"

	// DefaultAccessURLs is the endpoint list used when AccessURLEnv is
	// unset.
	DefaultAccessURLs = "http://localhost:3035,http://localhost:3037"
)

// ErrBadTarget is returned when the access URL list cannot be turned into
// a usable target.
var ErrBadTarget = errors.New("bad target configuration")

/*
Target is a configured ORCA backend. It exposes one virtual QPU per access
URL; QPU id i addresses the i-th URL in the list. A Target carries its own
HTTP client, result space, and per-endpoint circuit breakers, so two
targets never share state.
*/
type Target struct {
	endpoints []*endpoint
	config    *Config
	client    *http.Client
	token     string
	space     *resultSpace
	metrics   *Metrics

	// pollCtx parents every future's poll loop so Close can stop them.
	pollCtx    context.Context
	pollCancel context.CancelFunc
}

// TargetOption configures a Target during construction.
type TargetOption func(*Target)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) TargetOption {
	return func(t *Target) {
		t.client = c
	}
}

// WithAuthToken attaches a bearer token to every request.
func WithAuthToken(token string) TargetOption {
	return func(t *Target) {
		t.token = token
	}
}

// WithConfig replaces the default client configuration.
func WithConfig(cfg *Config) TargetOption {
	return func(t *Target) {
		t.config = cfg
	}
}

/*
ResolveTarget builds a Target from the ORCA_ACCESS_URL environment
variable, falling back to DefaultAccessURLs when it is unset or blank.
*/
func ResolveTarget(opts ...TargetOption) (*Target, error) {
	urls := os.Getenv(AccessURLEnv)
	if strings.TrimSpace(urls) == "" {
		urls = DefaultAccessURLs
	}
	return NewTarget(urls, opts...)
}

/*
NewTarget parses a comma-separated access URL list into a Target. Every
URL must carry a scheme and host; a malformed or empty list is a
configuration error.
*/
func NewTarget(urls string, opts ...TargetOption) (*Target, error) {
	t := &Target{
		config:  NewConfig(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.config = t.config.withDefaults()
	if t.client == nil {
		t.client = &http.Client{Timeout: t.config.RequestTimeout}
	}

	for _, raw := range strings.Split(urls, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadTarget, raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: %q is missing a scheme or host", ErrBadTarget, raw)
		}
		t.endpoints = append(t.endpoints, &endpoint{
			baseURL: strings.TrimRight(u.String(), "/"),
			client:  t.client,
			token:   t.token,
			breaker: NewCircuitBreaker(t.config.BreakerFailures, t.config.BreakerReset, 1),
		})
	}
	if len(t.endpoints) == 0 {
		return nil, fmt.Errorf("%w: no access URLs in %q", ErrBadTarget, urls)
	}

	t.space = newResultSpace()
	t.pollCtx, t.pollCancel = context.WithCancel(context.Background())
	errnie.Info(
		"NewTarget - urls %v, virtual QPUs %d",
		urls,
		len(t.endpoints),
	)
	return t, nil
}

// NumQPUs returns the number of virtual QPUs the target exposes.
func (t *Target) NumQPUs() int {
	return len(t.endpoints)
}

// Metrics returns the target's client-side metrics.
func (t *Target) Metrics() *Metrics {
	return t.metrics
}

// Close stops the poll loops of all in-flight futures and releases the
// target's result space. Pending Gets resolve with ErrSpaceClosed.
func (t *Target) Close() {
	if t == nil || t.space == nil {
		return
	}
	if t.pollCancel != nil {
		t.pollCancel()
	}
	t.space.Close()
}

// endpointFor maps a QPU id to its endpoint.
func (t *Target) endpointFor(qpu int) (*endpoint, error) {
	if qpu < 0 || qpu >= len(t.endpoints) {
		return nil, fmt.Errorf("%w: QPU id %d out of range [0,%d)", ErrBadTarget, qpu, len(t.endpoints))
	}
	return t.endpoints[qpu], nil
}
