package entry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultValidator(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{"imdb only", Entry{Title: "The Matrix", IMDBID: "tt0133093"}, false},
		{"tmdb only", Entry{Title: "The Matrix", TMDBID: "603"}, false},
		{"both ids", Entry{Title: "The Matrix", IMDBID: "tt0133093", TMDBID: "603"}, false},
		{"eight digit imdb", Entry{Title: "Recent", IMDBID: "tt12345678"}, false},
		{"no title", Entry{IMDBID: "tt0133093"}, true},
		{"blank title", Entry{Title: "  ", IMDBID: "tt0133093"}, true},
		{"no ids", Entry{Title: "The Matrix"}, true},
		{"malformed imdb", Entry{Title: "The Matrix", IMDBID: "0133093"}, true},
	}

	v := DefaultValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Valid(tt.entry)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidEntry), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	matrix := Entry{Title: "The Matrix", IMDBID: "tt0133093", TMDBID: "603"}

	assert.True(t, matrix.Matches(Entry{Title: "the matrix", IMDBID: "tt0133093"}))
	assert.True(t, matrix.Matches(Entry{Title: "Matrix", TMDBID: "603"}))
	assert.True(t, matrix.Matches(Entry{Title: "THE MATRIX"}))
	assert.False(t, matrix.Matches(Entry{Title: "The Matrix", IMDBID: "tt0234215"}))
	assert.False(t, Entry{}.Matches(Entry{}))
}

func TestFields(t *testing.T) {
	e := Entry{Title: "Heat", IMDBID: "tt0113277", QualityReq: "1080p bluray"}
	fields := e.Fields()

	assert.Equal(t, "title", fields[0].Key)
	assert.Equal(t, "Heat", fields[0].Value)
	assert.Equal(t, Field{"quality_req", "1080p bluray"}, fields[4])
}

func TestValidatorFunc(t *testing.T) {
	called := false
	var v Validator = ValidatorFunc(func(Entry) error {
		called = true
		return nil
	})
	assert.NoError(t, v.Valid(Entry{}))
	assert.True(t, called)
}
