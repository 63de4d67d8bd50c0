package derive

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
)

const doc = `{"schemaVersion":"1.0.0","season":2023,"event":"Monza","session":"R","driver":"VER",
"laps":[
	{"lapNumber":1,"stint":1,"compound":"MEDIUM","lapTime":null},
	{"lapNumber":2,"stint":1,"compound":"MEDIUM","lapTime":88.1},
	{"lapNumber":3,"stint":1,"compound":"MEDIUM","lapTime":89.0,"pitInTime":3700.5},
	{"lapNumber":4,"stint":2,"compound":"HARD","lapTime":108.7,"pitOutTime":3702.9},
	{"lapNumber":5,"stint":2,"compound":"HARD","lapTime":86.0}
]}`

func setup(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	config.Input = filepath.Join(dir, "laps.json")
	require.NoError(t, os.WriteFile(config.Input, []byte(doc), 0o600))
	t.Cleanup(func() {
		config.Input = ""
		format, output = "table", ""
	})
}

func TestDeriveLaps_JSON(t *testing.T) {
	setup(t)
	format = "json"
	var buf bytes.Buffer
	require.NoError(t, deriveLaps(context.Background(), &buf))

	var got struct {
		Laps []struct {
			LapNumber      int          `json:"lapNumber"`
			TireAge        int          `json:"tireAge"`
			LapTimeSeconds *json.Number `json:"lapTimeSeconds"`
		} `json:"laps"`
		PitLaps []int `json:"pitLaps"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []int{3}, got.PitLaps)
	require.Len(t, got.Laps, 5)
	assert.Nil(t, got.Laps[0].LapTimeSeconds)
	assert.Equal(t, json.Number("108.700"), *got.Laps[3].LapTimeSeconds)
	assert.Equal(t, 1, got.Laps[4].TireAge)
}

func TestDeriveLaps_OutputFile(t *testing.T) {
	setup(t)
	format = "csv"
	output = filepath.Join(t.TempDir(), "laps.csv")
	require.NoError(t, deriveLaps(context.Background(), &bytes.Buffer{}))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "4,2,HARD,4,0,108.700,,3702.900")
}

func TestDeriveLaps_Table(t *testing.T) {
	setup(t)
	format = "table"
	var buf bytes.Buffer
	require.NoError(t, deriveLaps(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Pit laps: 3")
}

func TestDeriveCmd_InvalidFormat(t *testing.T) {
	setup(t)
	cmd := NewDeriveCmd()
	cmd.SetArgs([]string{"--format", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
