package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_fetched_total",
		Help: "Total number of pages successfully fetched",
	})
	BytesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_bytes_fetched_total",
		Help: "Total bytes downloaded",
	})
	FetchRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_fetch_retries_total",
		Help: "Fetch attempts retried after a transient error",
	})
	// outcome: ok | fetch | vectorization | model_fit
	Results = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_results_total",
		Help: "Page results written, by outcome",
	}, []string{"outcome"})
	TopicFitSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crawler_topic_fit_seconds",
		Help:    "Time spent fitting the topic model for one page",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"algorithm"})
)

func init() {
	prometheus.MustRegister(PagesFetched, BytesFetched, FetchRetries, Results, TopicFitSeconds)
}
