// Package translate sends strings.xml resource text to an external
// translation provider and writes the results back onto the parsed document.
//
// Two providers are supported: the free Google Translate web endpoint
// (default) and any OpenAI-compatible chat completions endpoint. Chunks are
// processed strictly sequentially in source order; each chunk is retried
// with exponential backoff on transient failures.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gorgorito12/WoL-traduccion-IA/android"
	"github.com/Gorgorito12/WoL-traduccion-IA/placeholder"
)

// Provider IDs.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Provider holds the configuration for a translation service.
type Provider struct {
	// ID selects the wire protocol (google, openai).
	ID string
	// BaseURL overrides the default API base URL.
	BaseURL string
	// APIKey authenticates openai-style providers. Unused by google.
	APIKey string
	// Model is the model identifier for openai-style providers.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the built-in provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			BaseURL: "https://translate.googleapis.com",
			Timeout: 30 * time.Second,
		},
		ProviderOpenAI: {
			ID:      ProviderOpenAI,
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 120 * time.Second,
		},
	}
}

// ServiceError is a fatal provider or network failure. It aborts the run;
// no output file is written.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("translation service %s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Options controls a translation run.
type Options struct {
	// Provider is the service configuration.
	Provider Provider
	// Source and Target are two-letter ISO language codes.
	Source string
	// Target is the destination language code.
	Target string
	// MaxChars caps the combined character count of one request (default 3500).
	MaxChars int
	// MaxRetries is the per-chunk retry budget on transient failures (default 3).
	MaxRetries int
	// OnProgress is called after each translated chunk.
	OnProgress func(done, total int)
	// OnLog emits informational messages.
	OnLog func(format string, args ...any)
	// OnWarn emits per-entry warnings (placeholder mismatches).
	OnWarn func(format string, args ...any)
	// Verbose enables request-level logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) warn(format string, args ...any) {
	if o.OnWarn != nil {
		o.OnWarn(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveMaxChars() int {
	if o.MaxChars > 0 {
		return o.MaxChars
	}
	return 3500
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

// client is the wire-level contract a provider implements: translate a batch
// of texts, preserving count and order.
type client interface {
	translateBatch(ctx context.Context, texts []string, source, target string) ([]string, error)
	name() string
}

func newClient(prov Provider) client {
	switch prov.ID {
	case ProviderOpenAI:
		return &openaiClient{prov: prov, http: makeHTTPClient(prov.Proxy, prov.Timeout)}
	default:
		return &googleClient{prov: prov, http: makeHTTPClient(prov.Proxy, prov.Timeout)}
	}
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.Proxy = http.ProxyURL(parsed)
			transport = t
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Translate translates every translatable entry of doc in place.
// Non-translatable entries, comments, and blank values pass through; a
// placeholder mismatch keeps the source text for that unit and is reported
// via OnWarn. Any provider failure surfaces as a *ServiceError.
func Translate(ctx context.Context, doc *android.Document, opts Options) error {
	units := BuildUnits(doc)
	if len(units) == 0 {
		opts.log("nothing to translate")
		return nil
	}

	// Mask placeholders before the provider sees the text.
	masked := make([]string, len(units))
	tokens := make([][]placeholder.Token, len(units))
	for i, u := range units {
		masked[i], tokens[i] = placeholder.Mask(u.Source)
	}

	// Identical masked texts are translated once; blanks pass through.
	cache := make(map[string]string, len(units))
	var unique []string
	for _, m := range masked {
		if strings.TrimSpace(m) == "" {
			cache[m] = m
			continue
		}
		if _, seen := cache[m]; !seen {
			cache[m] = ""
			unique = append(unique, m)
		}
	}

	chunks := BuildChunks(unique, opts.effectiveMaxChars(), len(Separator))
	cl := newClient(opts.Provider)
	opts.log("%d strings (%d unique) in %d chunks", len(units), len(unique), len(chunks))

	for i, chunk := range chunks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		translated, err := translateChunkWithRetry(ctx, cl, chunk, opts)
		if err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		for j, src := range chunk {
			cache[src] = translated[j]
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(chunks))
		}
	}

	// Restore placeholders and write results back onto the document.
	for i, u := range units {
		tr := cache[masked[i]]
		if strings.TrimSpace(tr) == "" {
			continue // blank source or dropped item: keep source text
		}
		restored, err := placeholder.Restore(tr, tokens[i])
		if err != nil {
			opts.warn("%s: %v, keeping source text", u.Describe(), err)
			continue
		}
		u.apply(restored)
	}
	return nil
}

// translateChunkWithRetry calls the provider with exponential backoff.
// Transient failures (network errors, 5xx, 429) are retried up to the
// configured budget; anything left over becomes a *ServiceError.
func translateChunkWithRetry(ctx context.Context, cl client, chunk []string, opts Options) ([]string, error) {
	maxRetries := opts.effectiveMaxRetries()
	var lastErr error
	var serverWait time.Duration

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := retryDelay(attempt, serverWait)
			if opts.Verbose {
				opts.log("retry %d/%d in %s: %v", attempt, maxRetries, wait, lastErr)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		translated, err := cl.translateBatch(ctx, chunk, opts.Source, opts.Target)
		if err == nil {
			if len(translated) != len(chunk) {
				return nil, &ServiceError{
					Provider: cl.name(),
					Err:      fmt.Errorf("got %d translations for %d inputs", len(translated), len(chunk)),
				}
			}
			// An empty item means the provider dropped it; fall back to source.
			for i, tr := range translated {
				if strings.TrimSpace(tr) == "" {
					translated[i] = chunk[i]
				}
			}
			return translated, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var rerr *retryableError
		if !errors.As(err, &rerr) {
			return nil, &ServiceError{Provider: cl.name(), Err: err}
		}
		serverWait = rerr.wait
		lastErr = err
	}

	return nil, &ServiceError{
		Provider: cl.name(),
		Err:      fmt.Errorf("exhausted %d retries: %w", maxRetries, lastErr),
	}
}

// backoff returns the wait before retry attempt n (1-based): 2s, 4s, 8s, …
func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// retryDelay picks the wait before a retry: a server-requested delay
// (Retry-After) replaces the exponential backoff for that attempt.
func retryDelay(attempt int, serverWait time.Duration) time.Duration {
	if serverWait > 0 {
		return serverWait
	}
	return backoff(attempt)
}

// retryableError marks a failure worth retrying. wait carries a
// server-requested delay (Retry-After) when present.
type retryableError struct {
	err  error
	wait time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retryAfter parses a Retry-After header value in seconds.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	var secs int
	if _, err := fmt.Sscanf(v, "%d", &secs); err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
