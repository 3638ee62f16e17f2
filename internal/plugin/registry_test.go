package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/entry"
)

type staticSource struct {
	entries []entry.Entry
}

func (s staticSource) ListEntries(context.Context, config.CouchPotatoConfig) ([]entry.Entry, error) {
	return s.entries, nil
}

func TestRegisterAndLookup(t *testing.T) {
	Register(Info{
		Name:   "static_list_test",
		Groups: []string{GroupList},
		New: func(Options) ListSource {
			return staticSource{entries: []entry.Entry{{Title: "Heat"}}}
		},
	})

	info, err := Lookup("static_list_test")
	require.NoError(t, err)
	assert.Equal(t, []string{GroupList}, info.Groups)

	src, err := New("static_list_test", Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	entries, err := src.ListEntries(context.Background(), config.CouchPotatoConfig{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	names := []string{}
	for _, i := range InGroup(GroupList) {
		names = append(names, i.Name)
	}
	assert.Contains(t, names, "static_list_test")
	assert.Empty(t, InGroup("no-such-group"))
}

func TestLookup_NotRegistered(t *testing.T) {
	_, err := Lookup("missing")
	assert.True(t, errors.Is(err, ErrNotRegistered))

	_, err = New("missing", Options{})
	assert.True(t, errors.Is(err, ErrNotRegistered))
}

func TestRegister_Panics(t *testing.T) {
	assert.Panics(t, func() { Register(Info{Name: ""}) })

	Register(Info{Name: "dup_test", New: func(Options) ListSource { return staticSource{} }})
	assert.Panics(t, func() {
		Register(Info{Name: "dup_test", New: func(Options) ListSource { return staticSource{} }})
	})
}
