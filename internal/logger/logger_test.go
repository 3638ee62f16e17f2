package logger

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHub struct {
	mu       sync.Mutex
	messages []string
	payloads []any
}

func (h *recordingHub) Broadcast(msgType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgType)
	h.payloads = append(h.payloads, payload)
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer[int](3)
	assert.Empty(t, rb.GetAll())

	rb.Push(1)
	rb.Push(2)
	assert.Equal(t, []int{1, 2}, rb.GetAll())
	assert.Equal(t, 2, rb.Len())

	rb.Push(3)
	rb.Push(4)
	rb.Push(5)
	assert.Equal(t, []int{3, 4, 5}, rb.GetAll())
	assert.Equal(t, 3, rb.Len())
}

func TestLogger_StreamsEntries(t *testing.T) {
	var out bytes.Buffer
	log := New(Config{
		Level:           "debug",
		Format:          "json",
		Output:          &out,
		EnableStreaming: true,
		BufferSize:      10,
	})

	hub := &recordingHub{}
	log.SetBroadcaster(hub)

	sub := log.WithComponent("couchpotato")
	sub.Info().Str("source", "home").Msg("fetched movies")

	logs := log.GetRecentLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "info", logs[0].Level)
	assert.Equal(t, "couchpotato", logs[0].Component)
	assert.Equal(t, "fetched movies", logs[0].Message)
	assert.Equal(t, "home", logs[0].Fields["source"])

	require.Len(t, hub.messages, 1)
	assert.Equal(t, MessageTypeLogEntry, hub.messages[0])
	assert.Contains(t, out.String(), "fetched movies")
}

func TestLogger_NoStreaming(t *testing.T) {
	var out bytes.Buffer
	log := New(Config{Format: "json", Output: &out})
	log.Info().Msg("hello")

	assert.Nil(t, log.GetRecentLogs())
	assert.Empty(t, log.GetLogFilePath())
	assert.NoError(t, log.Close())
}

func TestLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	log := New(Config{Format: "json", Path: dir, Output: &out})
	defer log.Close()

	assert.Equal(t, filepath.Join(dir, logFileName), log.GetLogFilePath())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "info", parseLevel("bogus").String())
	assert.Equal(t, "trace", parseLevel("trace").String())
}

func TestBroadcaster_IgnoresMalformed(t *testing.T) {
	b := NewLogBroadcaster(nil, 0)
	n, err := b.Write([]byte("not json"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, b.GetRecentLogs())
}
