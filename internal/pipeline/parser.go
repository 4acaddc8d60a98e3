// internal/pipeline/parser.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"topic-crawler/internal/metrics"
	"topic-crawler/internal/text"
	"topic-crawler/internal/topic"
)

// Page is the fetched content handed to a Parser.
type Page struct {
	URL        string
	Paragraphs []string
}

// Parser turns a fetched page into its result record. Implementations must
// not return a Go error for per-page problems; those go into the record.
type Parser interface {
	Parse(ctx context.Context, page Page) PageResult
}

// Options tunes the default pipeline.
type Options struct {
	NumTopics   int
	NumKeywords int
	Mode        topic.Mode
	Algorithm   topic.Algorithm
	Lemmatize   bool
	Seed        int64
}

// DefaultOptions returns the stock pipeline settings.
func DefaultOptions() Options {
	return Options{
		NumTopics:   topic.DefaultNumTopics,
		NumKeywords: topic.DefaultNumKeywords,
		Mode:        topic.ModeCount,
		Algorithm:   topic.AlgorithmNMF,
		Lemmatize:   true,
	}
}

// Validate checks option ranges and names.
func (o Options) Validate() error {
	if o.NumTopics < 1 || o.NumKeywords < 1 {
		return fmt.Errorf("pipeline: %w", topic.ErrInvalidTopics)
	}
	if _, err := topic.ParseMode(string(o.Mode)); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if _, err := topic.ParseAlgorithm(string(o.Algorithm)); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

// DefaultParser runs Clean → Tokenize/Filter → Vectorize → FitTopics.
// It is safe for concurrent use.
type DefaultParser struct {
	res  *text.Resources
	opts Options
	log  logrus.FieldLogger
}

var _ Parser = (*DefaultParser)(nil)

// NewDefaultParser validates opts and binds the shared text resources.
func NewDefaultParser(res *text.Resources, opts Options, log logrus.FieldLogger) (*DefaultParser, error) {
	if res == nil {
		return nil, errors.New("pipeline: nil text resources")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DefaultParser{res: res, opts: opts, log: log}, nil
}

func (p *DefaultParser) Parse(ctx context.Context, page Page) PageResult {
	cleaned := text.Clean(strings.Join(page.Paragraphs, " "))
	tokens := p.res.TokenizeAndFilter(cleaned, p.opts.Lemmatize)

	m, err := topic.Vectorize(tokens, p.opts.Mode)
	if err != nil {
		return p.degraded(page.URL, tokens, KindVectorization, err)
	}

	start := time.Now()
	topics, err := topic.FitTopics(ctx, m, topic.FitOptions{
		NumTopics:   p.opts.NumTopics,
		NumKeywords: p.opts.NumKeywords,
		Algorithm:   p.opts.Algorithm,
		Seed:        p.opts.Seed,
	})
	metrics.TopicFitSeconds.WithLabelValues(string(p.opts.Algorithm)).Observe(time.Since(start).Seconds())
	if err != nil {
		return p.degraded(page.URL, tokens, KindModelFit, err)
	}
	return Assemble(page.URL, tokens, topics)
}

// degraded keeps the tokens, drops the topics and records why.
func (p *DefaultParser) degraded(url string, tokens []string, kind ErrorKind, err error) PageResult {
	p.log.WithFields(logrus.Fields{
		"url":    url,
		"kind":   kind,
		"tokens": len(tokens),
	}).WithError(err).Warn("topic extraction skipped")

	r := Assemble(url, tokens, nil)
	r.Error = &ErrorInfo{Kind: kind, Message: err.Error()}
	return r
}
