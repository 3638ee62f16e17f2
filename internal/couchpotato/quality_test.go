package couchpotato

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityRequirement(t *testing.T) {
	tests := []struct {
		name      string
		qualities []string
		want      string
	}{
		{"empty", nil, ""},
		{"nothing recognized", []string{"3d1080p", "webdl", "unknown"}, ""},
		{"source and resolution", []string{"brrip", "1080p"}, "1080p bluray"},
		{"resolution only", []string{"720p"}, "720p"},
		{"source only keeps leading space", []string{"brrip"}, " bluray"},
		{"several sources only", []string{"cam", "ts"}, " cam|ts"},
		{"multiple resolutions", []string{"1080p", "720p"}, "1080p|720p"},
		{"duplicate from 3d variant", []string{"1080p", "1080p", "brrip", "brrip"}, "1080p bluray"},
		{"3d code ignored", []string{"1080p", "3d1080p"}, "1080p"},
		{"sources sharing a token", []string{"dvdr", "dvdrip"}, "dvdrip"},
		{"nearest matches", []string{"BR-Disk", "scr", "r5", "tc", "ts", "cam"}, "remux|dvdscr|r5|tc|ts|cam"},
		{"mixed order", []string{"cam", "720p", "brrip", "1080p"}, "720p|1080p cam|bluray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualityRequirement(Profile{Qualities: tt.qualities})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQualityRequirement_NoDuplicateTokens(t *testing.T) {
	all := []string{}
	for k := range sourceQualities {
		all = append(all, k, k)
	}
	for k := range resolutionQualities {
		all = append(all, k, k)
	}

	got := QualityRequirement(Profile{Qualities: all})
	for _, part := range strings.Fields(got) {
		seen := map[string]bool{}
		for _, token := range strings.Split(part, "|") {
			assert.False(t, seen[token], "token %q repeated in %q", token, got)
			seen[token] = true
		}
	}
}

func TestUnmappedQualities(t *testing.T) {
	got := UnmappedQualities(Profile{Qualities: []string{"1080p", "3d1080p", "brrip", "webdl"}})
	assert.Equal(t, []string{"3d1080p", "webdl"}, got)
	assert.Empty(t, UnmappedQualities(Profile{Qualities: []string{"720p"}}))
}
