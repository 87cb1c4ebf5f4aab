// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package net

import (
	"errors"
	"net/url"
	"strings"
)

// ErrUnsupportedURL is returned for anything other than an absolute http or
// https URL.
var ErrUnsupportedURL = errors.New("only http and https URLs are supported")

// SanitizeURL removes user info and query parameters for safe logging.
func SanitizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	parsedURL.RawQuery = ""
	return parsedURL.String()
}

// ParseHTTPURL parses an absolute http or https URL with a host. Queries are
// kept since remote media URLs often carry signed parameters.
func ParseHTTPURL(s string) (*url.URL, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrUnsupportedURL
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, ErrUnsupportedURL
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, ErrUnsupportedURL
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, ErrUnsupportedURL
	}
	u.Scheme = scheme
	return u, nil
}
