// Package source builds the telemetry source selected by the command line flags.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry/diskcache"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry/file"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry/provider"
)

var (
	ErrNoSource   = errors.New("either --input or --provider-url is required")
	ErrTwoSources = errors.New("--input and --provider-url are mutually exclusive")
)

// Setup is the resolved source together with the selection to request.
type Setup struct {
	Source    telemetry.Source
	Selection telemetry.Selection
	File      *file.Source // set when reading from --input
	store     *diskcache.Store
}

// Selection builds the selection from the flags. For file input
// season, event, session and driver are optional.
func Selection(strict bool) (telemetry.Selection, error) {
	sel := telemetry.Selection{
		Season: config.Season,
		Event:  config.Event,
		Driver: config.Driver,
	}
	if config.Session != "" {
		st, err := telemetry.ParseSessionType(config.Session)
		if err != nil {
			return sel, err
		}
		sel.Session = st
	}
	if strict {
		if err := sel.Validate(); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

// New creates the source. The provider is wrapped by the on-disk cache
// unless --no-cache is set.
func New(ctx context.Context) (*Setup, error) {
	logger := log.GetFromContext(ctx)
	cfg, errs := config.Resolve()
	for _, err := range errs {
		logger.Warn("invalid duration value, using default", log.ErrorField(err))
	}
	switch {
	case config.Input == "" && config.ProviderURL == "":
		return nil, ErrNoSource
	case config.Input != "" && config.ProviderURL != "":
		return nil, ErrTwoSources
	}

	if config.Input != "" {
		sel, err := Selection(false)
		if err != nil {
			return nil, err
		}
		opts := []file.Option{file.WithLogger(logger.Named("telemetry.file"))}
		if config.LapsPath != "" {
			opts = append(opts, file.WithLapsPath(config.LapsPath))
		}
		src, err := file.New(config.Input, opts...)
		if err != nil {
			return nil, err
		}
		if sel, err = src.Complete(ctx, sel); err != nil {
			return nil, err
		}
		return &Setup{Source: src, Selection: sel, File: src}, nil
	}

	sel, err := Selection(true)
	if err != nil {
		return nil, err
	}
	client, err := provider.New(config.ProviderURL,
		provider.WithWaitForProvider(cfg.WaitForServices),
		provider.WithLogger(logger.Named("telemetry.provider")))
	if err != nil {
		return nil, err
	}
	ret := &Setup{Source: client, Selection: sel}
	if config.NoCache {
		return ret, nil
	}
	store, err := diskcache.Open(config.CacheDir)
	if err != nil {
		return nil, err
	}
	ret.store = store
	ret.Source = diskcache.NewSource(store, client,
		diskcache.WithTTL(cfg.CacheTTL),
		diskcache.WithLogger(logger.Named("telemetry.cache")))
	return ret, nil
}

func (s *Setup) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Derive fetches the laps of the selection and derives them.
// Invalid records are logged with their details.
func (s *Setup) Derive(ctx context.Context) (*laps.Result, error) {
	logger := log.GetFromContext(ctx).With(log.String("selection", s.Selection.Key()))
	records, err := s.Source.Laps(ctx, s.Selection)
	if err != nil {
		return nil, fmt.Errorf("load laps: %w", err)
	}
	res, err := laps.Derive(records)
	if err != nil {
		var recErr *laps.RecordError
		if errors.As(err, &recErr) {
			logger.Error("could not derive laps",
				log.String("kind", recErr.Kind.Error()),
				log.String("field", recErr.Field),
				log.Ints("laps", recErr.LapNumbers),
				log.Int("stint", recErr.Stint),
				log.Int("index", recErr.Index))
		}
		return nil, err
	}
	logger.Debug("laps derived",
		log.Int("laps", len(res.Laps)),
		log.Ints("pitLaps", res.PitLaps),
		log.Strings("stints", lo.Map(res.Stints(), func(st laps.StintSummary, _ int) string {
			return st.Output()
		})))
	return res, nil
}
