package logger

import (
	"sync"

	"github.com/goccy/go-json"
)

const (
	defaultBufferSize = 500

	// MessageTypeLogEntry is the hub message type for streamed log lines.
	MessageTypeLogEntry = "logs:entry"
)

// Broadcaster is the interface for broadcasting messages.
type Broadcaster interface {
	Broadcast(msgType string, payload any)
}

// LogEntry is a parsed log line for the API and websocket clients.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LogBroadcaster is an io.Writer fed by zerolog's JSON output. It keeps a
// ring buffer of recent entries and forwards each entry to the hub.
type LogBroadcaster struct {
	hub    Broadcaster
	buffer *RingBuffer[LogEntry]
	mu     sync.RWMutex
}

// NewLogBroadcaster creates a new log broadcaster. hub may be nil and set later.
func NewLogBroadcaster(hub Broadcaster, bufferSize int) *LogBroadcaster {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &LogBroadcaster{
		hub:    hub,
		buffer: NewRingBuffer[LogEntry](bufferSize),
	}
}

// SetHub sets the broadcaster hub for sending messages.
func (b *LogBroadcaster) SetHub(hub Broadcaster) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hub = hub
}

// Write implements io.Writer. Malformed lines are dropped.
func (b *LogBroadcaster) Write(p []byte) (int, error) {
	entry, err := parseLogEntry(p)
	if err != nil {
		return len(p), nil //nolint:nilerr // a bad line must not break logging
	}

	b.buffer.Push(entry)

	b.mu.RLock()
	hub := b.hub
	b.mu.RUnlock()

	if hub != nil {
		hub.Broadcast(MessageTypeLogEntry, entry)
	}
	return len(p), nil
}

// GetRecentLogs returns all buffered log entries.
func (b *LogBroadcaster) GetRecentLogs() []LogEntry {
	return b.buffer.GetAll()
}

func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Timestamp: takeString(raw, "time"),
		Level:     takeString(raw, "level"),
		Component: takeString(raw, "component"),
		Message:   takeString(raw, "message"),
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, nil
}

// takeString removes key from raw and returns it when it is a string.
func takeString(raw map[string]any, key string) string {
	v, ok := raw[key].(string)
	if ok {
		delete(raw, key)
	}
	return v
}
