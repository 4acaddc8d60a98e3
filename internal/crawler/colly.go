// internal/crawler/colly.go
package crawler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher fetches through a colly collector. robots.txt is handled by
// the engine's host manager, so the collector ignores it.
type CollyFetcher struct {
	opts FetchOptions
}

var _ Fetcher = (*CollyFetcher)(nil)

func NewCollyFetcher(opts FetchOptions) *CollyFetcher {
	opts.fill()
	return &CollyFetcher{opts: opts}
}

func (f *CollyFetcher) Fetch(ctx context.Context, u string) (*Response, error) {
	return f.opts.retry(ctx, u, f.once)
}

func (f *CollyFetcher) once(ctx context.Context, u string) (*Response, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.MaxBodySize(int(f.opts.MaxBodySize)),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.opts.Timeout)
	if f.opts.Client != nil && f.opts.Client.Transport != nil {
		c.WithTransport(f.opts.Client.Transport)
	}

	var (
		out      *Response
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		out = &Response{URL: r.Request.URL.String(), StatusCode: r.StatusCode, Body: r.Body}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= http.StatusBadRequest {
			fetchErr = newStatusError(r.StatusCode)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(u); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if out == nil {
		return nil, errors.New("colly: no response")
	}
	return out, nil
}
