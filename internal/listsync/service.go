// Package listsync pulls every configured source through its list plugin and
// stores the result as a list named after the source.
package listsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/entry"
	"github.com/slipstream/couchlist/internal/metrics"
	"github.com/slipstream/couchlist/internal/movielist"
	"github.com/slipstream/couchlist/internal/plugin"
)

// MessageTypeListSynced is broadcast after every sync attempt.
const MessageTypeListSynced = "list:synced"

var ErrUnknownSource = errors.New("unknown source")

// Broadcaster sends events to connected websocket clients.
type Broadcaster interface {
	Broadcast(msgType string, payload any)
}

// Report describes one sync attempt of one source.
type Report struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Entries    int       `json:"entries"`
	Error      string    `json:"error,omitempty"`
}

// Failed reports whether the attempt ended with an error.
func (r Report) Failed() bool { return r.Error != "" }

// Service runs list syncs. Syncs are serialized.
type Service struct {
	db      *sql.DB
	sources []config.CouchPotatoConfig
	source  plugin.ListSource
	lists   *movielist.Service
	hub     Broadcaster
	logger  zerolog.Logger

	mu sync.Mutex
}

// NewService creates a sync service over sources, fetching through source.
func NewService(db *sql.DB, sources []config.CouchPotatoConfig, source plugin.ListSource, lists *movielist.Service, logger zerolog.Logger) *Service {
	return &Service{
		db:      db,
		sources: sources,
		source:  source,
		lists:   lists,
		logger:  logger.With().Str("component", "listsync").Logger(),
	}
}

// SetBroadcaster sets the websocket hub for sync events.
func (s *Service) SetBroadcaster(hub Broadcaster) {
	s.hub = hub
}

// Sources returns the configured sources.
func (s *Service) Sources() []config.CouchPotatoConfig {
	return s.sources
}

// Source returns the configured source called name.
func (s *Service) Source(name string) (config.CouchPotatoConfig, error) {
	for _, src := range s.sources {
		if src.Name == name {
			return src, nil
		}
	}
	return config.CouchPotatoConfig{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// Fetch runs the list plugin for one source without storing anything.
func (s *Service) Fetch(ctx context.Context, name string) ([]entry.Entry, error) {
	src, err := s.Source(name)
	if err != nil {
		return nil, err
	}
	return s.source.ListEntries(ctx, src)
}

// SyncAll syncs every source. A failing source does not stop the others;
// the returned error joins every failure.
func (s *Service) SyncAll(ctx context.Context) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports := make([]Report, 0, len(s.sources))
	var errs []error
	for _, src := range s.sources {
		report, err := s.sync(ctx, src)
		reports = append(reports, report)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %q: %w", src.Name, err))
		}
	}

	s.logger.Info().Int("sources", len(reports)).Int("failed", len(errs)).Msg("List sync completed")
	return reports, errors.Join(errs...)
}

// SyncSource syncs the source called name.
func (s *Service) SyncSource(ctx context.Context, name string) (Report, error) {
	src, err := s.Source(name)
	if err != nil {
		return Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync(ctx, src)
}

func (s *Service) sync(ctx context.Context, src config.CouchPotatoConfig) (Report, error) {
	log := s.logger.With().Str("source", src.Name).Logger()
	report := Report{
		ID:        uuid.New().String(),
		Source:    src.Name,
		StartedAt: time.Now().UTC(),
	}

	entries, err := s.source.ListEntries(ctx, src)
	if err == nil {
		report.Entries, err = s.lists.Replace(ctx, src.Name, entries)
	}
	report.FinishedAt = time.Now().UTC()

	if err != nil {
		report.Error = err.Error()
		log.Error().Err(err).Msg("List sync failed, keeping stored list")
	} else {
		log.Info().Int("entries", report.Entries).Dur("took", report.FinishedAt.Sub(report.StartedAt)).Msg("List synced")
	}

	metrics.RecordSync(src.Name, err, report.Entries)

	if recErr := s.record(ctx, report); recErr != nil {
		log.Warn().Err(recErr).Msg("Failed to record sync run")
	}
	if s.hub != nil {
		s.hub.Broadcast(MessageTypeListSynced, report)
	}
	return report, err
}

func (s *Service) record(ctx context.Context, r Report) error {
	_, err := s.db.ExecContext(context.WithoutCancel(ctx),
		`INSERT INTO sync_runs (id, source, started_at, finished_at, entries, error) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.StartedAt, r.FinishedAt, r.Entries, r.Error)
	return err
}

// History returns the most recent sync runs of a source, newest first.
func (s *Service) History(ctx context.Context, name string, limit int) ([]Report, error) {
	if _, err := s.Source(name); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, started_at, finished_at, entries, error FROM sync_runs
		WHERE source = ? ORDER BY rowid DESC LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync history: %w", err)
	}
	defer rows.Close()

	reports := []Report{}
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.Source, &r.StartedAt, &r.FinishedAt, &r.Entries, &r.Error); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
