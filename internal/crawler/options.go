package crawler

import (
	"time"
)

const DefaultUserAgent = "topic-crawler/0.1 (+https://github.com/topic-crawler)"

// Options tunes the engine. Zero values fall back to DefaultOptions.
type Options struct {
	Workers         int
	RequestsPerHost float64       // rps per host; <= 0 disables rate limiting
	RobotsTimeout   time.Duration // robots.txt download timeout
	RespectRobots   bool
	UserAgent       string
	PageTimeout     time.Duration // fetch + parse budget for one page
	MetricsAddr     string        // "" disables the /metrics listener
	StatsInterval   time.Duration
}

func DefaultOptions() Options {
	return Options{
		Workers:         8,
		RequestsPerHost: 2,
		RobotsTimeout:   5 * time.Second,
		RespectRobots:   true,
		UserAgent:       DefaultUserAgent,
		PageTimeout:     60 * time.Second,
		StatsInterval:   time.Minute,
	}
}

// -----------------------------------------------------------------------------
// helper called by engine once
// -----------------------------------------------------------------------------
func (o *Options) prepare() {
	def := DefaultOptions()
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	if o.RobotsTimeout <= 0 {
		o.RobotsTimeout = def.RobotsTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.StatsInterval <= 0 {
		o.StatsInterval = def.StatsInterval
	}
}
