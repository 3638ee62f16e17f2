package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/slipstream/couchlist/internal/entry"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// sourceOutput is one source's fetched entries as printed by -once.
type sourceOutput struct {
	Source  string        `json:"source" yaml:"source"`
	Entries []entry.Entry `json:"entries" yaml:"entries"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`
}

func writeEntries(w io.Writer, format string, out []sourceOutput) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case formatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
