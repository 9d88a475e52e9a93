package queue

import (
	"net/url"
	"regexp"
	"strings"
)

var shortsRe = regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]+)`)

// ValidateURL checks that rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// NormalizeURL rewrites known short-form URLs to their canonical watch-page
// form so a shorts link and its watch link probe identically. Already
// canonical URLs pass through unchanged, so normalization is idempotent.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if m := shortsRe.FindStringSubmatch(rawURL); m != nil {
		return "https://www.youtube.com/watch?v=" + m[1]
	}
	return rawURL
}
