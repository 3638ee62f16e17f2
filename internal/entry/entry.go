// Package entry defines the normalized list entry handed to downstream
// consumers, and the validity check applied before an entry is accepted.
package entry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidEntry is wrapped by every Validator failure.
var ErrInvalidEntry = errors.New("invalid entry")

var imdbIDPattern = regexp.MustCompile(`^tt\d{7,}$`)

// Entry is a single discovered item.
type Entry struct {
	Title      string `json:"title" yaml:"title" validate:"required"`
	URL        string `json:"url" yaml:"url"`
	IMDBID     string `json:"imdbId,omitempty" yaml:"imdb_id,omitempty"`
	TMDBID     string `json:"tmdbId,omitempty" yaml:"tmdb_id,omitempty"`
	QualityReq string `json:"qualityReq" yaml:"quality_req"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Field is a single key/value pair of an entry.
type Field struct {
	Key   string
	Value string
}

// Fields returns the entry's fields in a stable order.
func (e Entry) Fields() []Field {
	return []Field{
		{"title", e.Title},
		{"url", e.URL},
		{"imdb_id", e.IMDBID},
		{"tmdb_id", e.TMDBID},
		{"quality_req", e.QualityReq},
		{"source", e.Source},
	}
}

// Matches reports whether e and other identify the same item.
// IMDB ids win over TMDB ids, which win over a case-insensitive title match.
func (e Entry) Matches(other Entry) bool {
	if e.IMDBID != "" && other.IMDBID != "" {
		return e.IMDBID == other.IMDBID
	}
	if e.TMDBID != "" && other.TMDBID != "" {
		return e.TMDBID == other.TMDBID
	}
	return e.Title != "" && strings.EqualFold(e.Title, other.Title)
}

func (e Entry) String() string {
	return fmt.Sprintf("<Entry(title=%s,imdb_id=%s,tmdb_id=%s)>", e.Title, e.IMDBID, e.TMDBID)
}

// Validator decides whether an entry carries enough identity to be used.
type Validator interface {
	Valid(e Entry) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(e Entry) error

// Valid calls f(e).
func (f ValidatorFunc) Valid(e Entry) error { return f(e) }

// DefaultValidator requires a title and at least one of an IMDB or TMDB id.
type DefaultValidator struct{}

// Valid implements Validator.
func (DefaultValidator) Valid(e Entry) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidEntry)
	}
	if e.IMDBID == "" && e.TMDBID == "" {
		return fmt.Errorf("%w: %q has neither imdb_id nor tmdb_id", ErrInvalidEntry, e.Title)
	}
	if e.IMDBID != "" && !imdbIDPattern.MatchString(e.IMDBID) {
		return fmt.Errorf("%w: %q has malformed imdb_id %q", ErrInvalidEntry, e.Title, e.IMDBID)
	}
	return nil
}
