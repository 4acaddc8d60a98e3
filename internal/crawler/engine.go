// internal/crawler/engine.go
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"topic-crawler/internal/frontier"
	"topic-crawler/internal/hostman"
	"topic-crawler/internal/metrics"
	"topic-crawler/internal/parser"
	"topic-crawler/internal/pipeline"
)

// Sink receives every result record. Write is called from one goroutine.
type Sink interface {
	Write(ctx context.Context, r pipeline.PageResult) error
}

// Deps are the collaborators the engine drives.
type Deps struct {
	Fetcher    Fetcher
	Parser     pipeline.Parser
	Sink       Sink
	HTTPClient *http.Client // robots.txt downloads
	Log        logrus.FieldLogger
}

// Stats summarizes a finished crawl.
type Stats struct {
	Seeds      int
	Duplicates int
	Succeeded  int // complete records
	Degraded   int // tokens without topics
	Failed     int // fetch failures
}

func (s *Stats) count(r pipeline.PageResult) {
	switch {
	case r.Failed():
		s.Failed++
	case r.Error != nil:
		s.Degraded++
	default:
		s.Succeeded++
	}
}

// -----------------------------------------------------------------------------
// Public entry-point
// -----------------------------------------------------------------------------

// Run crawls every seed once and writes one record per distinct seed to the
// sink. It returns early only when ctx is cancelled or the sink fails.
func Run(ctx context.Context, seeds []string, opts Options, deps Deps) (Stats, error) {
	opts.prepare()
	if deps.Fetcher == nil || deps.Parser == nil || deps.Sink == nil {
		return Stats{}, errors.New("crawler: fetcher, parser and sink are required")
	}
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	// ----- Frontier / visited sets ------------------------------------------
	queue := frontier.NewQueue()
	visited := frontier.NewVisited()
	for _, s := range seeds {
		queue.Enqueue(s)
	}

	// ----- Host politeness manager ------------------------------------------
	hm := hostman.New(hostman.Options{
		UserAgent:     opts.UserAgent,
		RPS:           opts.RequestsPerHost,
		RobotsTimeout: opts.RobotsTimeout,
		RespectRobots: opts.RespectRobots,
		Client:        deps.HTTPClient,
		Log:           log,
	})

	// ----- Worker pool channels ---------------------------------------------
	jobs := make(chan string, opts.Workers*2)
	results := make(chan pipeline.PageResult, opts.Workers*2)
	g, gctx := errgroup.WithContext(ctx)
	stats := Stats{Seeds: queue.TotalQueued()}
	var statsMu sync.Mutex

	// -----------------------------------------------------------------------
	// METRICS SERVER  →  http://<addr>/metrics
	// -----------------------------------------------------------------------
	if opts.MetricsAddr != "" {
		stop := serveMetrics(opts.MetricsAddr, log)
		defer stop()
	}

	emit := func(r pipeline.PageResult) error {
		select {
		case results <- r:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	}

	var producers sync.WaitGroup
	producers.Add(1 + opts.Workers)

	// ----- Dispatcher --------------------------------------------------------
	g.Go(func() error {
		defer producers.Done()
		defer close(jobs)
		for {
			raw, ok := queue.PopFront()
			if !ok { // every seed handed out
				return nil
			}

			webURL, err := parser.NormalizeURL(raw)
			if err != nil {
				log.WithField("seed", raw).WithError(err).Warn("invalid seed")
				if err := emit(pipeline.OnFailure(raw, err.Error())); err != nil {
					return err
				}
				continue
			}
			if !visited.MarkNew(webURL) {
				log.WithField("url", webURL).Debug("duplicate seed skipped")
				statsMu.Lock()
				stats.Duplicates++
				statsMu.Unlock()
				continue
			}

			// politeness checks (robots + rate-limit)
			parsed, err := url.Parse(webURL)
			if err != nil {
				if err := emit(pipeline.OnFailure(webURL, err.Error())); err != nil {
					return err
				}
				continue
			}
			allow, wait := hm.Check(gctx, parsed)
			if !allow {
				log.WithField("url", webURL).Info("disallowed by robots.txt")
				if err := emit(pipeline.OnFailure(webURL, ReasonRobots)); err != nil {
					return err
				}
				continue
			}
			if err := wait(gctx); err != nil {
				return err
			}

			select {
			case jobs <- webURL: // enqueue for workers
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	// ----- Workers -----------------------------------------------------------
	w := &worker{fetcher: deps.Fetcher, parser: deps.Parser, pageTimeout: opts.PageTimeout, log: log}
	for i := 0; i < opts.Workers; i++ {
		g.Go(func() error {
			defer producers.Done()
			return w.run(gctx, jobs, results)
		})
	}
	go func() {
		producers.Wait()
		close(results)
	}()

	// ----- Sink writer -------------------------------------------------------
	g.Go(func() error {
		for r := range results {
			if err := deps.Sink.Write(gctx, r); err != nil {
				log.WithField("url", r.URL).WithError(err).Error("sink write failed")
				return fmt.Errorf("write result: %w", err)
			}
			metrics.Results.WithLabelValues(r.Outcome()).Inc()
			statsMu.Lock()
			stats.count(r)
			statsMu.Unlock()
		}
		return nil
	})

	// ----- Stats ticker ------------------------------------------------------
	start := time.Now()
	ticker := time.NewTicker(opts.StatsInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case t := <-ticker.C:
				statsMu.Lock()
				s := stats
				statsMu.Unlock()
				log.WithFields(logrus.Fields{
					"elapsed_min": fmt.Sprintf("%.0f", t.Sub(start).Minutes()),
					"written":     s.Succeeded + s.Degraded + s.Failed,
					"queued":      queue.Size(),
					"visited":     visited.Size(),
					"hosts":       hm.Hosts(),
				}).Info("crawl progress")
			case <-done:
				return
			}
		}
	}()

	err := g.Wait()
	ticker.Stop()
	close(done)

	statsMu.Lock()
	final := stats
	statsMu.Unlock()
	log.WithFields(logrus.Fields{
		"seeds":      final.Seeds,
		"duplicates": final.Duplicates,
		"distinct":   visited.Size(),
		"succeeded":  final.Succeeded,
		"degraded":   final.Degraded,
		"failed":     final.Failed,
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Info("crawl finished")
	return final, err
}

// serveMetrics exposes the default registry on its own mux.
func serveMetrics(addr string, log logrus.FieldLogger) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
