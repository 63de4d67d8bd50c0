//nolint:funlen // ok for tests
package diskcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
	bd "github.com/mpapenbr/iracelog-lapanalysis/testsupport/basedata"
)

var monza = telemetry.Selection{
	Season: 2023, Event: "Monza", Session: telemetry.SessionRace, Driver: "VER",
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func countingSource(calls *int, err error) telemetry.Source {
	return telemetry.SourceFunc(func(ctx context.Context, sel telemetry.Selection) (
		[]laps.LapRecord, error,
	) {
		*calls++
		if err != nil {
			return nil, err
		}
		return bd.SampleLaps(), nil
	})
}

func TestStore(t *testing.T) {
	s := openStore(t)
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	fetched := time.Date(2023, 9, 3, 16, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(monza.Key(),
		&Entry{FetchedAt: fetched, Document: telemetry.NewDocument(monza, bd.SampleLaps())}))
	require.NoError(t, s.Put("2023/spa/R/VER", &Entry{FetchedAt: fetched}))

	e, err := s.Get(monza.Key())
	require.NoError(t, err)
	assert.True(t, fetched.Equal(e.FetchedAt))
	assert.Equal(t, bd.SampleLaps(), e.Document.Records())

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2023/monza/R/VER", list[0].Key)
	assert.Equal(t, 5, list[0].Laps)
	assert.Equal(t, 0, list[1].Laps)

	require.NoError(t, s.Delete("2023/spa/R/VER"))
	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	list, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSource_Laps(t *testing.T) {
	calls := 0
	src := NewSource(openStore(t), countingSource(&calls, nil))
	ctx := context.Background()

	first, err := src.Laps(ctx, monza)
	require.NoError(t, err)
	second, err := src.Laps(ctx, monza)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestSource_TTL(t *testing.T) {
	calls := 0
	now := time.Date(2023, 9, 3, 16, 0, 0, 0, time.UTC)
	src := NewSource(openStore(t), countingSource(&calls, nil),
		WithTTL(time.Hour),
		WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, _ = src.Laps(ctx, monza)
	now = now.Add(30 * time.Minute)
	_, _ = src.Laps(ctx, monza)
	assert.Equal(t, 1, calls)

	now = now.Add(time.Hour)
	_, _ = src.Laps(ctx, monza)
	assert.Equal(t, 2, calls)
}

func TestSource_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	fetchErr := errors.New("provider down")
	store := openStore(t)
	src := NewSource(store, countingSource(&calls, fetchErr))

	_, err := src.Laps(context.Background(), monza)
	assert.ErrorIs(t, err, fetchErr)
	_, err = store.Get(monza.Key())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSource_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	store, err := Open(dir)
	require.NoError(t, err)
	_, err = NewSource(store, countingSource(&calls, nil)).Laps(context.Background(), monza)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()
	_, err = NewSource(store, countingSource(&calls, nil)).Laps(context.Background(), monza)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
