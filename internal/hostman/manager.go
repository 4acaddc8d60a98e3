package hostman

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// HostInfo stores crawl policy & limiter for one host.
type HostInfo struct {
	once    sync.Once
	robots  *robotstxt.RobotsData // nil if fetch failed or robots are ignored
	limiter *rate.Limiter         // per-host token bucket
}

// Options configures a Manager.
type Options struct {
	UserAgent     string
	RPS           float64       // requests per second per host; <= 0 means unlimited
	RobotsTimeout time.Duration // robots.txt download timeout
	RespectRobots bool
	Client        *http.Client // defaults to http.DefaultClient
	Log           logrus.FieldLogger
}

// Manager holds HostInfo for every host we touch.
type Manager struct {
	mu    sync.Mutex
	hosts map[string]*HostInfo
	opts  Options
}

// New returns a ready Manager.
func New(opts Options) *Manager {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Manager{
		hosts: make(map[string]*HostInfo),
		opts:  opts,
	}
}

// Check returns (allowed, waitFn). waitFn blocks on the host's token bucket.
// robots.txt is fetched at most once per host.
func (m *Manager) Check(ctx context.Context, u *url.URL) (bool, func(ctx context.Context) error) {
	h := m.host(ctx, u)

	// robots allow/deny
	allowed := true
	if h.robots != nil {
		allowed = h.robots.TestAgent(u.RequestURI(), m.opts.UserAgent)
	}
	return allowed, h.limiter.Wait
}

// Hosts reports how many hosts have been seen.
func (m *Manager) Hosts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hosts)
}

func (m *Manager) host(ctx context.Context, u *url.URL) *HostInfo {
	m.mu.Lock()
	h, ok := m.hosts[u.Host]
	if !ok {
		// Lazily create HostInfo
		h = &HostInfo{limiter: newLimiter(m.opts.RPS)}
		m.hosts[u.Host] = h
	}
	m.mu.Unlock()

	// Fetch robots.txt once; other callers for the same host wait here.
	h.once.Do(func() {
		if m.opts.RespectRobots {
			h.robots = m.fetchRobots(ctx, u.Scheme, u.Host)
		}
	})
	return h
}

// --- helpers -------------------------------------------------------------

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(rps) // burst = rps, at least one token
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (m *Manager) fetchRobots(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	robotsURL := scheme + "://" + host + "/robots.txt"
	log := m.opts.Log.WithField("robots", robotsURL)

	ctx, cancel := context.WithTimeout(ctx, m.opts.RobotsTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", m.opts.UserAgent)

	resp, err := m.opts.Client.Do(req)
	if err != nil {
		log.WithError(err).Debug("robots.txt unavailable, allowing all")
		return nil // treat as no robots file
	}
	defer resp.Body.Close()

	// FromResponse applies the usual status rules: 4xx allows all, 5xx disallows all.
	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		log.WithError(err).Debug("robots.txt unparsable, allowing all")
		return nil
	}
	return robots
}
