// internal/crawler/fetch.go
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"topic-crawler/internal/metrics"
)

// Response is a fetched page body, decoded to UTF-8.
type Response struct {
	URL        string // final URL after redirects
	StatusCode int
	Body       []byte
}

// Fetcher downloads one URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// StatusError is returned for HTTP responses with status >= 400.
// Its message is the status line, e.g. "404 Not Found".
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return e.Status }

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

func newStatusError(code int) *StatusError {
	return &StatusError{Code: code, Status: fmt.Sprintf("%d %s", code, http.StatusText(code))}
}

// FetchOptions configures both fetcher implementations.
type FetchOptions struct {
	Client          *http.Client // HTTP fetcher only; a client with Timeout is built when nil
	UserAgent       string
	Timeout         time.Duration // per request
	MaxBodySize     int64
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Log             logrus.FieldLogger
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		UserAgent:       DefaultUserAgent,
		Timeout:         15 * time.Second,
		MaxBodySize:     5 << 20,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (o *FetchOptions) fill() {
	def := DefaultFetchOptions()
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = def.MaxBodySize
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = def.InitialInterval
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = def.MaxInterval
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
}

// HTTPFetcher fetches with net/http, retrying transport errors and 5xx/429
// responses with exponential backoff.
type HTTPFetcher struct {
	opts FetchOptions
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(opts FetchOptions) *HTTPFetcher {
	opts.fill()
	return &HTTPFetcher{opts: opts}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u string) (*Response, error) {
	return f.opts.retry(ctx, u, f.once)
}

// retry runs attempt until it succeeds, fails permanently or the retry
// budget is spent.
func (o FetchOptions) retry(ctx context.Context, u string, attempt func(context.Context, string) (*Response, error)) (*Response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.InitialInterval
	b.MaxInterval = o.MaxInterval
	bo := backoff.WithContext(backoff.WithMaxRetries(b, o.MaxRetries), ctx)

	var out *Response
	op := func() error {
		r, err := attempt(ctx, u)
		if err == nil {
			out = r
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		metrics.FetchRetries.Inc()
		o.Log.WithFields(logrus.Fields{"url": u, "wait": wait}).WithError(err).Debug("retrying fetch")
	}

	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return nil, err
	}
	return out, nil
}

// once performs a single GET.
func (f *HTTPFetcher) once(ctx context.Context, u string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	// capped, charset-decoded body
	var body io.Reader = io.LimitReader(resp.Body, f.opts.MaxBodySize)
	if r, err := charset.NewReader(body, resp.Header.Get("Content-Type")); err == nil {
		body = r
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode, Body: b}, nil
}

// retryable: transport errors and temporary statuses.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

// FailureReason renders a fetch error as the failure_reason of a record.
func FailureReason(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return err.Error()
}
