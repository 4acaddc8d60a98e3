package crawler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"topic-crawler/internal/metrics"
	"topic-crawler/internal/parser"
	"topic-crawler/internal/pipeline"
)

// ReasonRobots is the failure reason for URLs excluded by robots.txt.
const ReasonRobots = "Forbidden by robots.txt"

type worker struct {
	fetcher     Fetcher
	parser      pipeline.Parser
	pageTimeout time.Duration
	log         logrus.FieldLogger
}

// -----------------------------------------------------------------------------
// run handles the whole life-cycle for one goroutine.
// -----------------------------------------------------------------------------
func (w *worker) run(ctx context.Context, jobs <-chan string, results chan<- pipeline.PageResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case u, ok := <-jobs:
			if !ok { // channel closed
				return nil
			}
			r := w.process(ctx, u)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case results <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// process fetches one URL and runs it through the page parser under the
// per-page deadline.
func (w *worker) process(ctx context.Context, u string) pipeline.PageResult {
	if w.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.pageTimeout)
		defer cancel()
	}
	log := w.log.WithField("url", u)

	resp, err := w.fetcher.Fetch(ctx, u)
	if err != nil {
		reason := FailureReason(err)
		log.WithField("reason", reason).Warn("fetch failed")
		return pipeline.OnFailure(u, reason)
	}
	metrics.PagesFetched.Inc()
	metrics.BytesFetched.Add(float64(len(resp.Body)))

	paras, err := parser.Paragraphs(resp.Body)
	if err != nil {
		log.WithError(err).Warn("parse failed")
		return pipeline.OnFailure(u, err.Error())
	}
	log.WithFields(logrus.Fields{
		"final_url":  resp.URL,
		"title":      parser.Title(resp.Body),
		"paragraphs": len(paras),
		"bytes":      len(resp.Body),
	}).Debug("page fetched")

	return w.parser.Parse(ctx, pipeline.Page{URL: resp.URL, Paragraphs: paras})
}
