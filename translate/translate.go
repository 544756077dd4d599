// Package translate turns batches of documentation fragments into their
// translation in a target human language. The client guarantees positional
// pairing: a successful call returns exactly one output per input fragment,
// in order, and any other outcome is an error that leaves the caller's
// fragments untouched.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dokit-tools/dokit/segment"
)

// Hint carries per-file context the prompt can use to keep markup intact.
type Hint struct {
	// Syntax is the documentation family of the file the fragments came from.
	Syntax segment.SyntaxKind
	// Path is the file's relative path, shown to the model as context.
	Path string
}

// Translator is the interface the pipeline consumes. Implementations must
// return len(fragments) results in input order or an error.
type Translator interface {
	Translate(ctx context.Context, fragments []string, targetLang string, hint Hint) ([]string, error)
}

// Backend performs one raw completion against a provider.
type Backend interface {
	// Complete sends a system and user prompt and returns the response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Name identifies the backend in errors and logs.
	Name() string
}

// TranslationError wraps any failure of a Translate call after retries are
// exhausted. The original fragments were not modified.
type TranslationError struct {
	Backend   string
	Fragments int
	Err       error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translating %d fragments via %s: %v", e.Fragments, e.Backend, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// RateLimitError is returned by backends on HTTP 429. RetryAfter is the
// provider-suggested wait, zero when the provider gave none.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (retry after %v)", e.RetryAfter)
}

// retryable marks backend errors worth another attempt (network failures,
// 5xx responses). 4xx responses other than 429 are permanent.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable wraps err so the client treats it as transient.
func Retryable(err error) error { return &retryableError{err: err} }

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Options controls batching and retry behavior of a Client.
type Options struct {
	// ChunkSize is the maximum number of fragments per backend call.
	// 0 sends everything in one call.
	ChunkSize int
	// MaxRetries bounds retry attempts per chunk. Default: 3.
	MaxRetries int
	// Timeout is the per-call deadline. Default: 120s.
	Timeout time.Duration
	// OnLog emits progress and retry messages.
	OnLog func(format string, args ...any)
	// Verbose enables per-attempt logging.
	Verbose bool

	// backoffUnit scales the exponential backoff; tests shrink it.
	backoffUnit time.Duration
}

func (o *Options) effectiveBackoffUnit() time.Duration {
	if o.backoffUnit > 0 {
		return o.backoffUnit
	}
	return time.Second
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 120 * time.Second
}

// Client batches fragments into chunks, calls the backend with retries, and
// validates that the response pairs positionally with the request. A circuit
// breaker stops hammering a backend that keeps failing.
type Client struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker
	opts    Options
}

// NewClient wraps a backend in chunking, retry, and breaker logic.
func NewClient(backend Backend, opts Options) *Client {
	return &Client{
		backend: backend,
		opts:    opts,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    backend.Name(),
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Translate implements Translator. The call is atomic: either every fragment
// gets a translation or the whole batch fails.
func (c *Client) Translate(ctx context.Context, fragments []string, targetLang string, hint Hint) ([]string, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	systemPrompt := buildSystemPrompt(targetLang, hint)
	out := make([]string, 0, len(fragments))
	for _, chunk := range splitChunks(fragments, c.opts.ChunkSize) {
		got, err := c.translateChunk(ctx, chunk, systemPrompt, hint)
		if err != nil {
			return nil, &TranslationError{Backend: c.backend.Name(), Fragments: len(fragments), Err: err}
		}
		out = append(out, got...)
	}
	return out, nil
}

func (c *Client) translateChunk(ctx context.Context, chunk []string, systemPrompt string, hint Hint) ([]string, error) {
	userPrompt, err := buildUserPrompt(chunk)
	if err != nil {
		return nil, err
	}

	maxRetries := c.opts.effectiveMaxRetries()
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.opts.Verbose {
			c.opts.log("%s: attempt %d/%d, %d fragments", c.backend.Name(), attempt+1, maxRetries+1, len(chunk))
		}

		text, err := c.complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			translations, perr := parseTranslations(text, len(chunk))
			if perr == nil {
				perr = verifyLineStructure(chunk, translations, hint.Syntax)
			}
			if perr == nil {
				return translations, nil
			}
			// A malformed response is worth one more round trip.
			lastErr = perr
		} else {
			lastErr = err
		}

		if attempt == maxRetries || !shouldRetry(lastErr) {
			break
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * c.opts.effectiveBackoffUnit()
		var rl *RateLimitError
		if errors.As(lastErr, &rl) && rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}
		c.opts.log("%s: %v, retrying in %v", c.backend.Name(), lastErr, wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.effectiveTimeout())
	defer cancel()

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.backend.Complete(callCtx, systemPrompt, userPrompt)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// shouldRetry decides whether another attempt can succeed. Rate limits,
// transient backend errors, deadline overruns, malformed responses, and an
// open breaker (which may close again) all qualify.
func shouldRetry(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var re *retryableError
	if errors.As(err, &re) {
		return true
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pe *parseError
	return errors.As(err, &pe)
}

// splitChunks divides fragments into slices of at most size entries.
func splitChunks(fragments []string, size int) [][]string {
	if size <= 0 || size >= len(fragments) {
		return [][]string{fragments}
	}
	var chunks [][]string
	for i := 0; i < len(fragments); i += size {
		end := i + size
		if end > len(fragments) {
			end = len(fragments)
		}
		chunks = append(chunks, fragments[i:end])
	}
	return chunks
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

// parseTranslations extracts the JSON string array from a model response.
// Models sometimes wrap the array in a markdown fence or chat around it, so
// the outermost bracket pair is located first. The array must hold exactly
// expected entries.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, &parseError{msg: fmt.Sprintf("response is not a JSON string array: %v (got: %s)", err, truncate(content, 300))}
	}
	if len(translations) != expected {
		return nil, &parseError{msg: fmt.Sprintf("got %d translations, expected %d", len(translations), expected)}
	}
	return translations, nil
}

// verifyLineStructure rejects translations that change a fragment's line
// count in families whose fragments are single lines (line comments,
// markdown prose). A newline smuggled into such a fragment would land
// outside the comment marker on reassembly and become live code.
func verifyLineStructure(fragments, translations []string, kind segment.SyntaxKind) error {
	if kind != segment.SyntaxLineComments && kind != segment.SyntaxMarkdown {
		return nil
	}
	for i, tr := range translations {
		if strings.Count(tr, "\n") != strings.Count(fragments[i], "\n") {
			return &parseError{msg: fmt.Sprintf("translation %d changed line structure: %s", i, truncate(tr, 120))}
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
