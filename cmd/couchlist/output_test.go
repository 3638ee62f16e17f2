package main

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/slipstream/couchlist/internal/entry"
)

var sample = []sourceOutput{
	{
		Source: "home",
		Entries: []entry.Entry{
			{Title: "The Matrix", IMDBID: "tt0133093", TMDBID: "603", QualityReq: "1080p bluray", Source: "home"},
		},
	},
	{Source: "office", Entries: []entry.Entry{}, Error: "upstream unreachable"},
}

func TestWriteEntriesYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, formatYAML, sample))

	out := buf.String()
	assert.Contains(t, out, "source: home")
	assert.Contains(t, out, "imdb_id: tt0133093")
	assert.Contains(t, out, "quality_req: 1080p bluray")
	assert.Contains(t, out, "error: upstream unreachable")

	var decoded []sourceOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "The Matrix", decoded[0].Entries[0].Title)
}

func TestWriteEntriesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, formatJSON, sample))

	var decoded []sourceOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "603", decoded[0].Entries[0].TMDBID)
	assert.Empty(t, decoded[0].Error)
	assert.Equal(t, "upstream unreachable", decoded[1].Error)
}

func TestWriteEntriesDefaultsToYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, "", sample[:1]))
	assert.Contains(t, buf.String(), "- source: home")
}

func TestWriteEntriesUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeEntries(&buf, "xml", sample)
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
