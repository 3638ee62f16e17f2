package couchpotato

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/entry"
	"github.com/slipstream/couchlist/internal/metrics"
)

// Lister turns a CouchPotato wanted list into entries.
type Lister struct {
	fetcher   Fetcher
	validator entry.Validator
	logger    zerolog.Logger
	testMode  bool
}

// ListerOption configures a Lister.
type ListerOption func(*Lister)

// WithValidator replaces entry.DefaultValidator.
func WithValidator(v entry.Validator) ListerOption {
	return func(l *Lister) { l.validator = v }
}

// WithTestMode logs every field of every emitted entry.
func WithTestMode(enabled bool) ListerOption {
	return func(l *Lister) { l.testMode = enabled }
}

// NewLister creates a Lister fetching through f.
func NewLister(f Fetcher, logger zerolog.Logger, opts ...ListerOption) *Lister {
	l := &Lister{
		fetcher:   f,
		validator: entry.DefaultValidator{},
		logger:    logger.With().Str("component", "couchpotato-list").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ListEntries fetches the active movie list (and the quality profiles when
// cfg.IncludeData is set) and returns one entry per valid active movie.
// A failed request aborts the whole call and no entries are returned.
// Entries that fail validation are logged and skipped.
func (l *Lister) ListEntries(ctx context.Context, cfg config.CouchPotatoConfig) ([]entry.Entry, error) {
	cfg.ApplyDefaults()
	log := l.logger.With().Str("source", cfg.Name).Logger()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second)
		defer cancel()
	}

	log.Info().Msg("Connecting to CouchPotato to retrieve movie list")
	var movies movieListResponse
	if err := l.fetch(ctx, cfg, RequestActive, &movies); err != nil {
		return nil, err
	}

	var profiles []Profile
	if cfg.IncludeData {
		log.Info().Msg("Connecting to CouchPotato to retrieve movie data")
		var resp profileListResponse
		if err := l.fetch(ctx, cfg, RequestProfiles, &resp); err != nil {
			return nil, err
		}
		profiles = resp.List
	}

	entries := make([]entry.Entry, 0, len(movies.Movies))
	for i := range movies.Movies {
		movie := &movies.Movies[i]
		if movie.Status != StatusActive {
			continue
		}

		qualityReq := ""
		if cfg.IncludeData {
			qualityReq = l.qualityFor(movie, profiles, log)
		}

		e := entry.Entry{
			Title:      movie.Title,
			URL:        "",
			IMDBID:     movie.Info.IMDB,
			TMDBID:     movie.Info.TMDBID.String(),
			QualityReq: qualityReq,
			Source:     cfg.Name,
		}

		if err := l.validator.Valid(e); err != nil {
			metrics.EntriesInvalidTotal.WithLabelValues(cfg.Name).Inc()
			log.Error().Err(err).Str("entry", e.String()).Msg("Invalid entry created, skipping")
			continue
		}

		log.Debug().Str("entry", e.String()).Msg("Adding entry")
		entries = append(entries, e)
		metrics.EntriesEmittedTotal.WithLabelValues(cfg.Name).Inc()

		if l.testMode {
			l.logTestEntry(log, e)
		}
	}

	log.Info().
		Int("movies", len(movies.Movies)).
		Int("entries", len(entries)).
		Msg("Retrieved CouchPotato movie list")

	return entries, nil
}

// qualityFor returns the translated requirement of the movie's profile, or
// "" when no profile matches.
func (l *Lister) qualityFor(movie *Movie, profiles []Profile, log zerolog.Logger) string {
	for i := range profiles {
		if profiles[i].ID != movie.ProfileID {
			continue
		}
		if unmapped := UnmappedQualities(profiles[i]); len(unmapped) > 0 {
			log.Debug().
				Str("profile", profiles[i].Label).
				Strs("qualities", unmapped).
				Msg("Ignoring qualities without an equivalent")
		}
		req := QualityRequirement(profiles[i])
		log.Debug().Str("title", movie.Title).Str("quality", req).Msg("Quality requirement built")
		return req
	}
	return ""
}

func (l *Lister) fetch(ctx context.Context, cfg config.CouchPotatoConfig, rt RequestType, out any) error {
	reqURL, err := BuildURL(cfg.BaseURL, rt, cfg.Port, cfg.APIKey)
	if err != nil {
		return err
	}
	l.logger.Debug().Str("request", string(rt)).Str("url", redactURL(reqURL)).Msg("Built request URL")

	start := time.Now()
	err = l.fetcher.GetJSON(ctx, reqURL, out)
	metrics.RecordUpstreamRequest(string(rt), fetchResult(err), time.Since(start))
	return err
}

func fetchResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrUpstreamUnreachable):
		return metrics.ResultUnreachable
	default:
		return metrics.ResultBadResponse
	}
}

func (l *Lister) logTestEntry(log zerolog.Logger, e entry.Entry) {
	log.Info().Msg("Test mode. Entry includes:")
	for _, f := range e.Fields() {
		log.Info().Msgf("     %s: %s", capitalize(f.Key), f.Value)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
