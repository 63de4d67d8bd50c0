//nolint:funlen // ok for tests
package laps_test

import (
	"testing"

	"github.com/aarondl/opt/opt"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	bd "github.com/mpapenbr/iracelog-lapanalysis/testsupport/basedata"
)

func TestResult_Stints(t *testing.T) {
	res, err := laps.Derive(bd.SampleLaps())
	require.NoError(t, err)

	got := res.Stints()
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Stint)
	assert.Equal(t, "MEDIUM", got[0].Compound)
	assert.Equal(t, 1, got[0].LapStart)
	assert.Equal(t, 3, got[0].LapEnd)
	assert.Equal(t, 3, got[0].Laps)
	assert.True(t, got[0].PitIn)
	assert.Equal(t, opt.From(bd.Secs(90.8)), got[0].Best)
	assert.Equal(t, opt.From(bd.Secs(91.333333333)), got[0].Mean)

	assert.Equal(t, 2, got[1].Stint)
	assert.Equal(t, "HARD", got[1].Compound)
	assert.False(t, got[1].PitIn)
	assert.Equal(t, opt.From(bd.Secs(89.3)), got[1].Mean)
	assert.Equal(t, "4-5 (2) HARD best 1m29.1s", got[1].Output())
}

func TestResult_StintsWithoutLapTimes(t *testing.T) {
	res, err := laps.Derive([]laps.LapRecord{bd.Lap(1, 1), bd.Lap(2, 1, bd.WithPitIn(200))})
	require.NoError(t, err)
	got := res.Stints()
	require.Len(t, got, 1)
	assert.True(t, got[0].Best.IsUnset())
	assert.True(t, got[0].Mean.IsUnset())
	assert.Equal(t, "1-2 (2)  best -", got[0].Output())
}

func TestResult_Compounds(t *testing.T) {
	input := []laps.LapRecord{
		bd.Lap(4, 2, bd.WithCompound("HARD")),
		bd.Lap(1, 1, bd.WithCompound("SOFT")),
		bd.Lap(2, 1, bd.WithCompound("SOFT")),
		bd.Lap(6, 3, bd.WithCompound("SOFT")),
	}
	res, err := laps.Derive(input)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"SOFT", "HARD"}, res.Compounds()); diff != "" {
		t.Errorf("Compounds() mismatch (-want +got):\n%s", diff)
	}
	byCompound := res.ByCompound()
	assert.Len(t, byCompound["SOFT"], 3)
	assert.Len(t, byCompound["HARD"], 1)
	assert.Equal(t, 1, byCompound["SOFT"][0].Lap())
}

func TestResult_Empty(t *testing.T) {
	res, err := laps.Derive(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Laps)
	assert.Empty(t, res.PitLaps)
	assert.Empty(t, res.Stints())
	assert.Empty(t, res.Compounds())
	assert.Empty(t, res.ByCompound())
}
