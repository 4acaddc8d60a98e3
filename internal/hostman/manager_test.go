package hostman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func robotsServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestCheckHonoursRobots(t *testing.T) {
	srv, hits := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /private\n")
	m := New(Options{UserAgent: "topic-crawler-test", RPS: 100, RobotsTimeout: time.Second, RespectRobots: true, Client: srv.Client()})

	allowed, wait := m.Check(context.Background(), mustParse(t, srv.URL+"/public/page"))
	assert.True(t, allowed)
	require.NoError(t, wait(context.Background()))

	allowed, _ = m.Check(context.Background(), mustParse(t, srv.URL+"/private/secret"))
	assert.False(t, allowed)

	assert.EqualValues(t, 1, atomic.LoadInt32(hits), "robots.txt fetched once per host")
	assert.Equal(t, 1, m.Hosts())
}

func TestCheckMatchesQueryString(t *testing.T) {
	srv, _ := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /*?sessionid\n")
	m := New(Options{UserAgent: "topic-crawler-test", RPS: 100, RobotsTimeout: time.Second, RespectRobots: true, Client: srv.Client()})

	allowed, _ := m.Check(context.Background(), mustParse(t, srv.URL+"/article?sessionid=42"))
	assert.False(t, allowed)

	allowed, _ = m.Check(context.Background(), mustParse(t, srv.URL+"/article"))
	assert.True(t, allowed)

	allowed, _ = m.Check(context.Background(), mustParse(t, srv.URL+"/article?page=2"))
	assert.True(t, allowed)
}

func TestCheckIgnoresRobotsWhenDisabled(t *testing.T) {
	srv, hits := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /\n")
	m := New(Options{UserAgent: "topic-crawler-test", RobotsTimeout: time.Second, Client: srv.Client()})

	allowed, _ := m.Check(context.Background(), mustParse(t, srv.URL+"/anything"))
	assert.True(t, allowed)
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestCheckMissingRobotsAllowsAll(t *testing.T) {
	srv, _ := robotsServer(t, http.StatusNotFound, "")
	m := New(Options{UserAgent: "topic-crawler-test", RobotsTimeout: time.Second, RespectRobots: true, Client: srv.Client()})

	allowed, _ := m.Check(context.Background(), mustParse(t, srv.URL+"/page"))
	assert.True(t, allowed)
}

func TestNewLimiter(t *testing.T) {
	assert.Equal(t, 1, newLimiter(0.5).Burst())
	assert.Equal(t, 3, newLimiter(3).Burst())
	assert.True(t, newLimiter(0).Allow())
	assert.True(t, newLimiter(-1).Allow())
}
