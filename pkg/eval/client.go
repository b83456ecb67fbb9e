package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
	"github.com/kolamstudio/kolamstudio/pkg/observability"
)

// Status describes where a submission is in its lifecycle.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// DefaultTimeout bounds a single evaluator call. The service endpoint
// itself sets no deadline, so the client enforces one defensively.
const DefaultTimeout = 30 * time.Second

// fileField is the multipart form field name the evaluator expects.
const fileField = "file"

// Verdict is the evaluator's response. The payload format belongs to the
// remote service; it is carried opaquely and surfaced as-is.
type Verdict struct {
	Raw json.RawMessage
}

// Client submits canvas exports to an evaluator endpoint.
//
// All methods are safe for concurrent use. At most one submission is in
// flight at a time; a second Submit while one is running fails with
// [errors.ErrCodeBusy] without touching the remote service.
type Client struct {
	http    *http.Client
	baseURL string

	mu      sync.Mutex
	busy    bool
	status  Status
	verdict *Verdict
	lastErr error
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the evaluator at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "evaluator URL %q", baseURL)
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: baseURL,
		status:  StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Status returns the current submission status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Verdict returns the last successful verdict, or nil if none.
func (c *Client) Verdict() *Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verdict
}

// LastError returns the error from the most recent failed submission,
// or nil if the last submission succeeded or none was made.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit uploads a PNG export to the evaluator and returns its verdict.
//
// The image travels as a multipart form upload under the "file" field.
// While the request runs the status is StatusLoading; it settles to
// StatusSuccess or StatusError when the call finishes. Failed calls are
// not retried.
func (c *Client) Submit(ctx context.Context, filename string, image []byte) (*Verdict, error) {
	if len(image) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty image")
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, errors.New(errors.ErrCodeBusy, "an evaluation is already in flight")
	}
	c.busy = true
	c.status = StatusLoading
	c.mu.Unlock()

	verdict, err := c.post(ctx, filename, image)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.status = StatusError
		c.lastErr = err
	} else {
		c.status = StatusSuccess
		c.lastErr = nil
		c.verdict = verdict
	}
	c.mu.Unlock()

	return verdict, err
}

func (c *Client) post(ctx context.Context, filename string, image []byte) (*Verdict, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build multipart body")
	}
	if _, err := part.Write(image); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build multipart body")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, http.MethodPost, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodPost, host, path, err)
		if ctx.Err() != nil || isTimeout(err) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "evaluator did not respond")
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "submit to evaluator")
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodPost, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeNetwork, "evaluator returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read evaluator response")
	}
	if !json.Valid(raw) {
		return nil, errors.New(errors.ErrCodeInternal, "evaluator returned invalid JSON")
	}
	return &Verdict{Raw: raw}, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeouter); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}
