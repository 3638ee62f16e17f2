package movielist

import (
	"errors"
	"time"

	"github.com/slipstream/couchlist/internal/entry"
)

// ErrNotFound is returned when no stored entry matches.
var ErrNotFound = errors.New("entry not found in list")

// Item is an entry stored in a named list.
type Item struct {
	ID       int64     `json:"id"`
	ListName string    `json:"listName"`
	AddedAt  time.Time `json:"addedAt"`
	entry.Entry
}

// Summary describes one stored list.
type Summary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
