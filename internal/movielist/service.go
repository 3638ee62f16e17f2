// Package movielist persists named lists of entries in SQLite. A list filled
// by a sync is replaced wholesale; lists can also be edited one entry at a
// time through the API.
package movielist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/couchlist/internal/entry"
)

const selectItems = `SELECT id, list_name, title, url, imdb_id, tmdb_id, quality_req, source, added_at
	FROM list_entries WHERE list_name = ? ORDER BY id`

const insertItem = `INSERT INTO list_entries (list_name, title, url, imdb_id, tmdb_id, quality_req, source, added_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Service stores entry lists.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new list service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "movielist").Logger(),
	}
}

// Add stores e in list. When a matching entry is already present its fields
// are updated in place and the existing item is returned.
func (s *Service) Add(ctx context.Context, list string, e entry.Entry) (*Item, error) {
	items, err := s.items(ctx, list)
	if err != nil {
		return nil, err
	}

	if existing := find(items, e); existing != nil {
		_, err := s.db.ExecContext(ctx,
			`UPDATE list_entries SET title = ?, url = ?, imdb_id = ?, tmdb_id = ?, quality_req = ?, source = ? WHERE id = ?`,
			e.Title, e.URL, e.IMDBID, e.TMDBID, e.QualityReq, e.Source, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update entry: %w", err)
		}
		existing.Entry = e
		s.logger.Debug().Str("list", list).Str("entry", e.String()).Msg("Updated existing entry")
		return existing, nil
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, insertItem,
		list, e.Title, e.URL, e.IMDBID, e.TMDBID, e.QualityReq, e.Source, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry id: %w", err)
	}

	s.logger.Debug().Str("list", list).Str("entry", e.String()).Msg("Added entry")
	return &Item{ID: id, ListName: list, AddedAt: now, Entry: e}, nil
}

// Find returns the stored item matching e.
func (s *Service) Find(ctx context.Context, list string, e entry.Entry) (*Item, error) {
	items, err := s.items(ctx, list)
	if err != nil {
		return nil, err
	}
	if item := find(items, e); item != nil {
		return item, nil
	}
	return nil, ErrNotFound
}

// Contains reports whether list holds an entry matching e.
func (s *Service) Contains(ctx context.Context, list string, e entry.Entry) (bool, error) {
	_, err := s.Find(ctx, list, e)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Discard removes the entry matching e.
func (s *Service) Discard(ctx context.Context, list string, e entry.Entry) error {
	item, err := s.Find(ctx, list, e)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM list_entries WHERE id = ?`, item.ID); err != nil {
		return fmt.Errorf("failed to discard entry: %w", err)
	}
	s.logger.Debug().Str("list", list).Str("entry", item.Entry.String()).Msg("Discarded entry")
	return nil
}

// Clear removes every entry of list.
func (s *Service) Clear(ctx context.Context, list string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM list_entries WHERE list_name = ?`, list); err != nil {
		return fmt.Errorf("failed to clear list %q: %w", list, err)
	}
	return nil
}

// Entries returns the items of list in insertion order.
func (s *Service) Entries(ctx context.Context, list string) ([]*Item, error) {
	return s.items(ctx, list)
}

// Replace swaps the content of list for entries in one transaction.
// Entries matching an earlier one in the slice are dropped.
func (s *Service) Replace(ctx context.Context, list string, entries []entry.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM list_entries WHERE list_name = ?`, list); err != nil {
		return 0, fmt.Errorf("failed to clear list %q: %w", list, err)
	}

	now := time.Now().UTC()
	kept := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if containsMatch(kept, e) {
			s.logger.Debug().Str("list", list).Str("entry", e.String()).Msg("Skipping duplicate entry")
			continue
		}
		if _, err := tx.ExecContext(ctx, insertItem,
			list, e.Title, e.URL, e.IMDBID, e.TMDBID, e.QualityReq, e.Source, now); err != nil {
			return 0, fmt.Errorf("failed to insert entry: %w", err)
		}
		kept = append(kept, e)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit list %q: %w", list, err)
	}

	s.logger.Info().Str("list", list).Int("entries", len(kept)).Msg("Replaced list")
	return len(kept), nil
}

// Lists returns every non-empty list with its size, sorted by name.
func (s *Service) Lists(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT list_name, COUNT(*) FROM list_entries GROUP BY list_name ORDER BY list_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	lists := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.Name, &sum.Count); err != nil {
			return nil, err
		}
		lists = append(lists, sum)
	}
	return lists, rows.Err()
}

func (s *Service) items(ctx context.Context, list string) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, selectItems, list)
	if err != nil {
		return nil, fmt.Errorf("failed to load list %q: %w", list, err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ListName, &it.Title, &it.URL, &it.IMDBID, &it.TMDBID,
			&it.QualityReq, &it.Source, &it.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func find(items []*Item, e entry.Entry) *Item {
	for _, it := range items {
		if it.Entry.Matches(e) {
			return it
		}
	}
	return nil
}

func containsMatch(entries []entry.Entry, e entry.Entry) bool {
	for i := range entries {
		if entries[i].Matches(e) {
			return true
		}
	}
	return false
}
