// Package seeds collects the start URLs of a crawl.
package seeds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
)

// ErrNoSeeds is returned by Collect when every source came up empty.
var ErrNoSeeds = errors.New("no seed urls")

// Sources lists where seeds come from. Any subset may be set.
type Sources struct {
	File    string   // one URL per line; blank lines and # comments skipped
	URLs    []string // inline list
	FeedURL string   // RSS/Atom/JSON feed; item links become seeds
}

// FromReader reads one seed per line, stripped.
func FromReader(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seeds: %w", err)
	}
	return out, nil
}

// FromFile reads seeds from path.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds: %w", err)
	}
	defer f.Close()
	return FromReader(f)
}

// FromFeed fetches a feed and returns its item links in feed order.
func FromFeed(ctx context.Context, feedURL string, client *http.Client, userAgent string) ([]string, error) {
	fp := gofeed.NewParser()
	if client != nil {
		fp.Client = client
	}
	if userAgent != "" {
		fp.UserAgent = userAgent
	}
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	out := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" && len(item.Links) > 0 {
			link = strings.TrimSpace(item.Links[0])
		}
		if link != "" {
			out = append(out, link)
		}
	}
	return out, nil
}

// Collect gathers seeds from every configured source, file first, then the
// inline list, then the feed. Exact duplicates are dropped; URL-level
// duplicates are left to the crawler.
func Collect(ctx context.Context, src Sources, client *http.Client, userAgent string) ([]string, error) {
	var all []string
	if src.File != "" {
		s, err := FromFile(src.File)
		if err != nil {
			return nil, err
		}
		all = append(all, s...)
	}
	for _, u := range src.URLs {
		if u = strings.TrimSpace(u); u != "" {
			all = append(all, u)
		}
	}
	if src.FeedURL != "" {
		s, err := FromFeed(ctx, src.FeedURL, client, userAgent)
		if err != nil {
			return nil, err
		}
		all = append(all, s...)
	}

	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, u := range all {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	if len(out) == 0 {
		return nil, ErrNoSeeds
	}
	return out, nil
}
