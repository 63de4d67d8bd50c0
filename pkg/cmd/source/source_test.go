package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
)

func resetConfig(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		config.Input, config.ProviderURL, config.LapsPath = "", "", ""
		config.Season, config.Event, config.Session, config.Driver = 0, "", "", ""
		config.CacheDir, config.NoCache = "", false
	})
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "laps.json")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func TestSelection(t *testing.T) {
	resetConfig(t)
	config.Season, config.Event, config.Session, config.Driver = 2023, "Monza", "race", "VER"
	sel, err := Selection(true)
	require.NoError(t, err)
	assert.Equal(t, telemetry.Selection{
		Season: 2023, Event: "Monza", Session: telemetry.SessionRace, Driver: "VER",
	}, sel)

	config.Session = "warmup"
	_, err = Selection(false)
	assert.ErrorIs(t, err, telemetry.ErrInvalidSelection)

	config.Session, config.Driver = "", ""
	_, err = Selection(false)
	assert.NoError(t, err)
	_, err = Selection(true)
	assert.ErrorIs(t, err, telemetry.ErrInvalidSelection)
}

func TestNew_SourceFlags(t *testing.T) {
	resetConfig(t)
	_, err := New(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)

	config.Input, config.ProviderURL = "laps.json", "http://localhost:8080"
	_, err = New(context.Background())
	assert.ErrorIs(t, err, ErrTwoSources)
}

func TestNew_ProviderWithCache(t *testing.T) {
	resetConfig(t)
	config.ProviderURL = "http://localhost:8080"
	config.Season, config.Event, config.Session, config.Driver = 2023, "Monza", "R", "VER"
	config.CacheDir = filepath.Join(t.TempDir(), "cache")
	s, err := New(context.Background())
	require.NoError(t, err)
	defer s.Close()
	assert.NotNil(t, s.store)
	assert.Nil(t, s.File)
	assert.FileExists(t, filepath.Join(config.CacheDir, "laps.db"))
}

func TestSetup_Derive(t *testing.T) {
	resetConfig(t)
	config.Input = writeDoc(t, `{"driver":"VER","laps":[
		{"lapNumber":1,"stint":1,"compound":"MEDIUM","lapTime":91.2},
		{"lapNumber":2,"stint":1,"compound":"MEDIUM","lapTime":88.1,"pitInTime":3700.5},
		{"lapNumber":3,"stint":2,"compound":"HARD","lapTime":95.3,"pitOutTime":3702.9}
	]}`)
	s, err := New(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s.File)
	defer s.Close()

	res, err := s.Derive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.PitLaps)
	assert.Equal(t, 3, res.Laps[2].StintStartLap)
	assert.Equal(t, 0, res.Laps[2].TireAge)
}

func TestSetup_DeriveInvalid(t *testing.T) {
	resetConfig(t)
	config.Input = writeDoc(t, `{"laps":[
		{"lapNumber":1,"stint":1},
		{"lapNumber":1,"stint":1}
	]}`)
	s, err := New(context.Background())
	require.NoError(t, err)

	_, err = s.Derive(context.Background())
	assert.ErrorIs(t, err, laps.ErrInvalidRecord)
}

func TestNew_FileCompletesSelection(t *testing.T) {
	resetConfig(t)
	config.Input = writeDoc(t, `{"season":2023,"event":"Monza","session":"R","driver":"VER","laps":[]}`)
	s, err := New(context.Background())
	require.NoError(t, err)
	assert.Equal(t, telemetry.Selection{
		Season: 2023, Event: "Monza", Session: telemetry.SessionRace, Driver: "VER",
	}, s.Selection)
}

func TestSetup_DeriveLogsStints(t *testing.T) {
	resetConfig(t)
	config.Input = writeDoc(t, `{"season":2023,"event":"Monza","session":"R","driver":"VER","laps":[
		{"lapNumber":1,"stint":1,"compound":"MEDIUM","lapTime":91.2},
		{"lapNumber":2,"stint":1,"compound":"MEDIUM","lapTime":88.1,"pitInTime":3700.5},
		{"lapNumber":3,"stint":2,"compound":"HARD","lapTime":95.3}
	]}`)
	var buf bytes.Buffer
	ctx := log.AddToContext(context.Background(), log.New(&buf, log.DebugLevel))
	s, err := New(ctx)
	require.NoError(t, err)

	_, err = s.Derive(ctx)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"selection":"2023/monza/R/VER"`)
	assert.Contains(t, out, `"stints":["1-2 (2) MEDIUM best 1m28.1s","3-3 (1) HARD best 1m35.3s"]`)
}
