package couchpotato

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// StatusActive marks a movie CouchPotato is still searching for.
const StatusActive = "active"

// Movie is one record from movie.list. Fields are read, never modified.
type Movie struct {
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	ProfileID string    `json:"profile_id"`
	Info      MovieInfo `json:"info"`
}

// MovieInfo holds the external identifiers CouchPotato attaches to a movie.
type MovieInfo struct {
	IMDB   string     `json:"imdb"`
	TMDBID FlexibleID `json:"tmdb_id"`
	Year   int        `json:"year,omitempty"`
}

// Profile is one record from profile.list.
type Profile struct {
	ID        string   `json:"_id"`
	Label     string   `json:"label"`
	Qualities []string `json:"qualities"`
}

// FlexibleID accepts either a JSON string or number. CouchPotato sends
// tmdb_id as a number while older releases sent it quoted.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexibleID(n.String())
	return nil
}

// String returns the identifier as text.
func (f FlexibleID) String() string { return string(f) }

// movieListResponse is the body of /api/{key}/movie.list.
type movieListResponse struct {
	Success bool    `json:"success"`
	Total   int     `json:"total"`
	Movies  []Movie `json:"movies"`
}

// profileListResponse is the body of /api/{key}/profile.list.
type profileListResponse struct {
	Success bool      `json:"success"`
	List    []Profile `json:"list"`
}
