// internal/parser/link.go
package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned by NormalizeURL for seeds that cannot be crawled.
var ErrInvalidURL = errors.New("invalid url")

// schemes we refuse to crawl
var badScheme = map[string]struct{}{
	"mailto":     {},
	"javascript": {},
	"tel":        {},
	"data":       {},
	"file":       {},
}

// NormalizeURL turns a seed line into an absolute http(s) URL.
// A missing scheme defaults to https; fragments are dropped and an empty
// path becomes "/" so equal seeds compare equal.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") && !hasBadScheme(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	// Disallow unsupported or dangerous schemes.
	scheme := strings.ToLower(u.Scheme)
	if _, bad := badScheme[scheme]; bad || (scheme != "http" && scheme != "https") {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = "" // drop #section
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

func hasBadScheme(raw string) bool {
	i := strings.IndexByte(raw, ':')
	if i <= 0 {
		return false
	}
	_, bad := badScheme[strings.ToLower(raw[:i])]
	return bad
}
