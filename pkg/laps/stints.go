package laps

import (
	"fmt"
	"slices"
	"time"

	"github.com/aarondl/opt/opt"
	"github.com/samber/lo"
)

type StintSummary struct {
	Stint    int
	Compound string // compound of the first lap of the stint
	LapStart int
	LapEnd   int
	Laps     int
	Best     opt.Val[time.Duration] // fastest timed lap
	Mean     opt.Val[time.Duration] // mean of the timed laps
	PitIn    bool                   // stint ended with a pit entry
}

func (s StintSummary) Output() string {
	best := "-"
	if b, ok := s.Best.Get(); ok {
		best = b.String()
	}
	return fmt.Sprintf("%d-%d (%d) %s best %s", s.LapStart, s.LapEnd, s.Laps, s.Compound, best)
}

// Stints summarizes the derived laps per stint, ordered by stint.
func (r *Result) Stints() []StintSummary {
	groups := lo.GroupBy(r.sortedByLap(), func(d DerivedLapRecord) int {
		return d.StintID()
	})
	ret := make([]StintSummary, 0, len(groups))
	for stint, items := range groups {
		s := StintSummary{
			Stint:    stint,
			Compound: items[0].Compound,
			LapStart: items[0].Lap(),
			LapEnd:   items[len(items)-1].Lap(),
			Laps:     len(items),
			PitIn:    items[len(items)-1].IsPitIn(),
		}
		timed := lo.FilterMap(items, func(d DerivedLapRecord, _ int) (time.Duration, bool) {
			return d.LapTime.Get()
		})
		if len(timed) > 0 {
			s.Best = opt.From(slices.Min(timed))
			s.Mean = opt.From(lo.Sum(timed) / time.Duration(len(timed)))
		}
		ret = append(ret, s)
	}
	slices.SortFunc(ret, func(a, b StintSummary) int { return a.Stint - b.Stint })
	return ret
}

// Compounds returns the distinct compounds in the order they were first used.
func (r *Result) Compounds() []string {
	return lo.Uniq(lo.Map(r.sortedByLap(), func(d DerivedLapRecord, _ int) string {
		return d.Compound
	}))
}

func (r *Result) ByCompound() map[string][]DerivedLapRecord {
	return lo.GroupBy(r.sortedByLap(), func(d DerivedLapRecord) string {
		return d.Compound
	})
}

func (r *Result) sortedByLap() []DerivedLapRecord {
	ret := slices.Clone(r.Laps)
	slices.SortFunc(ret, func(a, b DerivedLapRecord) int { return a.Lap() - b.Lap() })
	return ret
}
