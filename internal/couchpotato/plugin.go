package couchpotato

import (
	"github.com/slipstream/couchlist/internal/plugin"
)

// PluginName is the registry name of the CouchPotato list plugin.
const PluginName = "couchpotato_list"

func init() {
	plugin.Register(plugin.Info{
		Name:       PluginName,
		Groups:     []string{plugin.GroupList},
		APIVersion: 2,
		New:        newPlugin,
	})
}

func newPlugin(opts plugin.Options) plugin.ListSource {
	client := NewClient(ClientConfig{Logger: opts.Logger})

	listerOpts := []ListerOption{WithTestMode(opts.TestMode)}
	if opts.Validator != nil {
		listerOpts = append(listerOpts, WithValidator(opts.Validator))
	}
	return NewLister(client, opts.Logger, listerOpts...)
}
