package llm

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status describes a provider's state after registry initialization.
type Status string

// Provider statuses reported by the startup report.
const (
	StatusConfigured Status = "configured"
	StatusMissing    Status = "missing"
	StatusErrored    Status = "errored"
)

// Report is the structured startup report: one status per known provider.
// It is read-only after initialization and exposed by the health endpoint.
type Report struct {
	Providers map[Provider]Status `json:"providers"`
	Details   []string            `json:"details,omitempty"`
}

// Configured reports whether p initialized successfully.
func (r Report) Configured(p Provider) bool {
	return r.Providers[p] == StatusConfigured
}

// Any reports whether at least one provider is available.
func (r Report) Any() bool {
	for _, status := range r.Providers {
		if status == StatusConfigured {
			return true
		}
	}
	return false
}

// Options configures registry construction. An empty API key leaves that
// provider unregistered rather than failing startup.
type Options struct {
	GeminiAPIKey string
	GroqAPIKey   string

	// Default models used when a call does not name one.
	GeminiModel string
	GroqModel   string
}

// Registry maps providers to client adapters. It is built once at process
// start and never mutated by request handling.
type Registry struct {
	clients map[Provider]generator
	models  map[Provider]string
	report  Report
	closers []func() error
}

// NewRegistry builds client adapters for every provider whose API key is
// present. Adapters are constructed concurrently; a failed construction
// marks the provider errored without sinking the process.
func NewRegistry(ctx context.Context, opts Options) *Registry {
	r := &Registry{
		clients: make(map[Provider]generator),
		models:  make(map[Provider]string),
		report: Report{
			Providers: map[Provider]Status{
				ProviderGemini: StatusMissing,
				ProviderGroq:   StatusMissing,
			},
		},
	}
	r.models[ProviderGemini] = opts.GeminiModel
	r.models[ProviderGroq] = opts.GroqModel

	var mu sync.Mutex
	register := func(p Provider, client generator, closer func() error, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			r.report.Providers[p] = StatusErrored
			r.report.Details = append(r.report.Details, string(p)+": "+err.Error())
			return
		}
		r.clients[p] = client
		if closer != nil {
			r.closers = append(r.closers, closer)
		}
		r.report.Providers[p] = StatusConfigured
		r.report.Details = append(r.report.Details, string(p)+": client initialized")
	}

	g, gCtx := errgroup.WithContext(ctx)

	if opts.GeminiAPIKey != "" {
		g.Go(func() error {
			client, err := newGeminiClient(gCtx, opts.GeminiAPIKey)
			var closer func() error
			if client != nil {
				closer = client.close
			}
			register(ProviderGemini, client, closer, err)
			return nil
		})
	}

	if opts.GroqAPIKey != "" {
		g.Go(func() error {
			register(ProviderGroq, newGroqClient(opts.GroqAPIKey), nil, nil)
			return nil
		})
	}

	// Construction errors are recorded per provider, never returned.
	_ = g.Wait()

	for p, status := range r.report.Providers {
		log.Printf("[llm] provider %s: %s", p, status)
	}
	return r
}

// Report returns a copy of the startup report. The registry's own report
// stays immutable after initialization, so callers can't poison it through
// the returned map.
func (r *Registry) Report() Report {
	providers := make(map[Provider]Status, len(r.report.Providers))
	for p, status := range r.report.Providers {
		providers[p] = status
	}
	return Report{
		Providers: providers,
		Details:   append([]string(nil), r.report.Details...),
	}
}

// Configured reports whether p has a client handle.
func (r *Registry) Configured(p Provider) bool {
	_, ok := r.clients[p]
	return ok
}

// DefaultModel returns the model used for p when a call does not name one.
func (r *Registry) DefaultModel(p Provider) string {
	return r.models[p]
}

// Generate issues a single generation call against the named provider.
// The response text is returned verbatim apart from whitespace trimming.
// There are no retries; a failed call surfaces as an UpstreamError.
func (r *Registry) Generate(ctx context.Context, p Provider, model, systemInstruction, userPrompt string) (string, error) {
	client, ok := r.clients[p]
	if !ok {
		return "", &NotConfiguredError{Provider: p}
	}
	if model == "" {
		model = r.models[p]
	}

	text, err := client.generate(ctx, model, systemInstruction, userPrompt)
	if err != nil {
		return "", &UpstreamError{Provider: p, Timeout: isTimeout(err), Cause: err}
	}
	return strings.TrimSpace(text), nil
}

// Close releases provider client resources.
func (r *Registry) Close() error {
	var firstErr error
	for _, closer := range r.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// isTimeout distinguishes deadline expiry from other upstream failures so
// callers can report "upstream timeout" rather than a generic error.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
