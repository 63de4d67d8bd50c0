// Package laps derives per lap tire information from the raw lap records
// of a single competitor in a single session.
package laps

import (
	"time"

	"github.com/aarondl/opt/opt"
)

type (
	// LapRecord is one lap as delivered by a telemetry source.
	// PitInTime and PitOutTime are offsets from the session start.
	LapRecord struct {
		LapNumber  opt.Val[int]
		Stint      opt.Val[int]
		Compound   string
		LapTime    opt.Val[time.Duration]
		PitInTime  opt.Val[time.Duration] // set if the car entered the pits at the end of this lap
		PitOutTime opt.Val[time.Duration] // set if the car left the pits during this lap
	}

	DerivedLapRecord struct {
		LapRecord
		LapTimeSeconds opt.Val[float64]
		StintStartLap  int
		TireAge        int // laps since StintStartLap, 0 on the first lap of a stint
	}

	Result struct {
		Laps    []DerivedLapRecord // same order as the input
		PitLaps []int              // ascending
	}
)

// Lap returns the lap number of a derived record. Derived records always carry one.
func (d *DerivedLapRecord) Lap() int {
	return d.LapNumber.GetOr(0)
}

func (d *DerivedLapRecord) StintID() int {
	return d.Stint.GetOr(0)
}

func (d *DerivedLapRecord) IsPitIn() bool {
	return d.PitInTime.IsSet()
}

func (d *DerivedLapRecord) IsPitOut() bool {
	return d.PitOutTime.IsSet()
}
