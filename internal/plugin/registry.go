// Package plugin is a registry of list plugins. Plugins register from an
// init function, the same way database/sql drivers do, and callers resolve
// them by name.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/entry"
)

// GroupList is the capability group of plugins that produce entries.
const GroupList = "list"

var ErrNotRegistered = errors.New("plugin not registered")

// ListSource produces entries for one configured source.
type ListSource interface {
	ListEntries(ctx context.Context, cfg config.CouchPotatoConfig) ([]entry.Entry, error)
}

// Options are handed to a plugin factory.
type Options struct {
	Logger    zerolog.Logger
	Validator entry.Validator // nil means entry.DefaultValidator
	TestMode  bool
}

// Factory builds a plugin instance.
type Factory func(opts Options) ListSource

// Info describes a registered plugin.
type Info struct {
	Name       string   `json:"name"`
	Groups     []string `json:"groups"`
	APIVersion int      `json:"apiVersion"`
	New        Factory  `json:"-"`
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Info)
)

// Register adds a plugin. It panics on an empty name, a nil factory or a
// duplicate name, since all three are programming errors.
func Register(info Info) {
	mu.Lock()
	defer mu.Unlock()

	if info.Name == "" || info.New == nil {
		panic("plugin: Register called with empty name or nil factory")
	}
	if _, dup := registry[info.Name]; dup {
		panic(fmt.Sprintf("plugin: Register called twice for %q", info.Name))
	}
	registry[info.Name] = info
}

// Lookup returns the plugin registered under name.
func Lookup(name string) (Info, error) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := registry[name]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return info, nil
}

// New builds the plugin registered under name.
func New(name string, opts Options) (ListSource, error) {
	info, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return info.New(opts), nil
}

// InGroup returns the registered plugins carrying group, sorted by name.
func InGroup(group string) []Info {
	mu.RLock()
	defer mu.RUnlock()

	var out []Info
	for _, info := range registry {
		if slices.Contains(info.Groups, group) {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
