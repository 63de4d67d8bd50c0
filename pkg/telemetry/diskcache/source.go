package diskcache

import (
	"context"
	"errors"
	"time"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
)

type (
	Option func(*Source)
	// Source serves laps from the store and falls back to the wrapped source
	// for missing or expired entries.
	Source struct {
		store *Store
		next  telemetry.Source
		ttl   time.Duration // 0: entries never expire
		now   func() time.Time
		l     *log.Logger
	}
)

var _ telemetry.Source = (*Source)(nil)

func WithTTL(ttl time.Duration) Option {
	return func(s *Source) {
		s.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		s.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		s.l = l
	}
}

func NewSource(store *Store, next telemetry.Source, opts ...Option) *Source {
	s := &Source{
		store: store,
		next:  next,
		now:   time.Now,
		l:     log.Default().Named("telemetry.diskcache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Laps(ctx context.Context, sel telemetry.Selection) (
	[]laps.LapRecord, error,
) {
	key := sel.Key()
	entry, err := s.store.Get(key)
	switch {
	case err == nil && !s.expired(entry):
		s.l.Debug("cache hit", log.String("key", key), log.Time("fetchedAt", entry.FetchedAt))
		return entry.Document.Records(), nil
	case err == nil:
		s.l.Debug("cache entry expired", log.String("key", key))
	case errors.Is(err, ErrNotFound):
		s.l.Debug("cache miss", log.String("key", key))
	default:
		// unreadable entries are refetched
		s.l.Warn("could not read cache entry", log.String("key", key), log.ErrorField(err))
	}

	records, err := s.next.Laps(ctx, sel)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(key, &Entry{
		FetchedAt: s.now(),
		Document:  telemetry.NewDocument(sel, records),
	}); err != nil {
		s.l.Warn("could not store cache entry", log.String("key", key), log.ErrorField(err))
	}
	return records, nil
}

func (s *Source) expired(e *Entry) bool {
	if e.Document == nil {
		return true
	}
	return s.ttl > 0 && s.now().Sub(e.FetchedAt) > s.ttl
}
