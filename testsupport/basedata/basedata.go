// Package basedata provides lap records used throughout the tests.
package basedata

import (
	"math"
	"time"

	"github.com/aarondl/opt/opt"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
)

// Secs converts fractional seconds into a time.Duration.
func Secs(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

type LapOption func(r *laps.LapRecord)

func WithLapTime(s float64) LapOption {
	return func(r *laps.LapRecord) { r.LapTime = opt.From(Secs(s)) }
}

func WithPitIn(sessionTime float64) LapOption {
	return func(r *laps.LapRecord) { r.PitInTime = opt.From(Secs(sessionTime)) }
}

func WithPitOut(sessionTime float64) LapOption {
	return func(r *laps.LapRecord) { r.PitOutTime = opt.From(Secs(sessionTime)) }
}

func WithCompound(c string) LapOption {
	return func(r *laps.LapRecord) { r.Compound = c }
}

func Lap(lapNumber, stint int, opts ...LapOption) laps.LapRecord {
	r := laps.LapRecord{
		LapNumber: opt.From(lapNumber),
		Stint:     opt.From(stint),
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

// SampleLaps returns a short two stint race with a pit stop at the end of lap 3.
func SampleLaps() []laps.LapRecord {
	return []laps.LapRecord{
		Lap(1, 1, WithCompound("MEDIUM"), WithLapTime(91.2)),
		Lap(2, 1, WithCompound("MEDIUM"), WithLapTime(90.8)),
		Lap(3, 1, WithCompound("MEDIUM"), WithLapTime(92.0), WithPitIn(3655.4)),
		Lap(4, 2, WithCompound("HARD"), WithLapTime(89.5), WithPitOut(3677.9)),
		Lap(5, 2, WithCompound("HARD"), WithLapTime(89.1)),
	}
}

// SampleRaceLaps resembles a one stop race: the first lap and the in lap
// have no lap time, the out lap does.
func SampleRaceLaps() []laps.LapRecord {
	ret := []laps.LapRecord{
		Lap(1, 1, WithCompound("MEDIUM"), WithPitOut(3512.0)),
	}
	t := 3512.0 + 95.0
	for lap := 2; lap <= 20; lap++ {
		lt := 86.5 + 0.05*float64(lap)
		t += lt
		ret = append(ret, Lap(lap, 1, WithCompound("MEDIUM"), WithLapTime(lt)))
	}
	ret = append(ret, Lap(21, 1, WithCompound("MEDIUM"), WithPitIn(t+90.0)))
	t += 90.0 + 21.0
	ret = append(ret, Lap(22, 2, WithCompound("HARD"), WithLapTime(108.7), WithPitOut(t)))
	for lap := 23; lap <= 51; lap++ {
		ret = append(ret, Lap(lap, 2, WithCompound("HARD"),
			WithLapTime(85.9+0.02*float64(lap-22))))
	}
	return ret
}
