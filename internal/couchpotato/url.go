package couchpotato

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// RequestType selects which CouchPotato endpoint BuildURL targets.
type RequestType string

const (
	RequestActive   RequestType = "active"
	RequestProfiles RequestType = "profiles"
)

// BuildURL returns the endpoint URL for requestType:
//
//	active:   scheme://host:port/path/api/{key}/movie.list?status=active
//	profiles: scheme://host:port/path/api/{key}/profile.list
//
// A port already present in baseURL is replaced by port.
func BuildURL(baseURL string, requestType RequestType, port int, apiKey string) (string, error) {
	var endpoint string
	switch requestType {
	case RequestActive:
		endpoint = "movie.list?status=active"
	case RequestProfiles:
		endpoint = "profile.list"
	default:
		return "", fmt.Errorf("%w %q, aborting", ErrUnknownRequestType, requestType)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q needs a scheme and host", ErrInvalidBaseURL, baseURL)
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")
	host := u.Hostname()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	return fmt.Sprintf("%s://%s:%s%s/api/%s/%s",
		u.Scheme, host, strconv.Itoa(port), path, url.PathEscape(apiKey), endpoint), nil
}

// apiKeySegment matches the key segment that BuildURL places directly
// before the endpoint, so an /api/ path inside the base URL is left alone.
var apiKeySegment = regexp.MustCompile(`/api/[^/?#]+/((?:movie|profile)\.list)`)

// redactURL hides the API key path segment for logs and errors.
func redactURL(rawURL string) string {
	return apiKeySegment.ReplaceAllString(rawURL, "/api/<redacted>/$1")
}
