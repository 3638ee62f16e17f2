package couchpotato

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		rt      RequestType
		port    int
		apiKey  string
		want    string
	}{
		{
			name:    "active",
			baseURL: "http://x.local/cp",
			rt:      RequestActive,
			port:    80,
			apiKey:  "k",
			want:    "http://x.local:80/cp/api/k/movie.list?status=active",
		},
		{
			name:    "profiles",
			baseURL: "http://x.local/cp",
			rt:      RequestProfiles,
			port:    80,
			apiKey:  "k",
			want:    "http://x.local:80/cp/api/k/profile.list",
		},
		{
			name:    "no path",
			baseURL: "https://cp.example.com",
			rt:      RequestActive,
			port:    5050,
			apiKey:  "abc",
			want:    "https://cp.example.com:5050/api/abc/movie.list?status=active",
		},
		{
			name:    "trailing slash",
			baseURL: "http://x.local/cp/",
			rt:      RequestProfiles,
			port:    80,
			apiKey:  "k",
			want:    "http://x.local:80/cp/api/k/profile.list",
		},
		{
			name:    "port in base url replaced",
			baseURL: "http://x.local:9999/cp",
			rt:      RequestActive,
			port:    5050,
			apiKey:  "k",
			want:    "http://x.local:5050/cp/api/k/movie.list?status=active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(tt.baseURL, tt.rt, tt.port, tt.apiKey)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildURL_UnknownRequestType(t *testing.T) {
	for _, rt := range []RequestType{"", "movies", "ACTIVE", "profile"} {
		_, err := BuildURL("http://x.local/cp", rt, 80, "k")
		assert.True(t, errors.Is(err, ErrUnknownRequestType), "request type %q: %v", rt, err)
	}
}

func TestBuildURL_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"x.local/cp", "://bad", ""} {
		_, err := BuildURL(base, RequestActive, 80, "k")
		assert.True(t, errors.Is(err, ErrInvalidBaseURL), "base %q: %v", base, err)
	}
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t,
		"http://x.local:80/cp/api/<redacted>/movie.list?status=active",
		redactURL("http://x.local:80/cp/api/secret/movie.list?status=active"))
	assert.Equal(t, "http://x.local/other", redactURL("http://x.local/other"))

	// base path that itself contains /api/
	raw, err := BuildURL("http://x.local/api/cp", RequestActive, 80, "SECRETKEY")
	require.NoError(t, err)
	redacted := redactURL(raw)
	assert.Equal(t, "http://x.local:80/api/cp/api/<redacted>/movie.list?status=active", redacted)
	assert.NotContains(t, redacted, "SECRETKEY")

	raw, err = BuildURL("http://x.local/api/", RequestProfiles, 5050, "SECRETKEY")
	require.NoError(t, err)
	assert.Equal(t, "http://x.local:5050/api/api/<redacted>/profile.list", redactURL(raw))
}
