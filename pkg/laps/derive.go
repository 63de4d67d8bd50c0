package laps

import (
	"slices"
	"strconv"

	"github.com/aarondl/opt/opt"
	"github.com/samber/lo"
)

// Derive computes lap time in seconds, stint start lap and tire age for every
// record and collects the laps on which the car entered the pits.
//
// The input is not modified. Records are returned in input order, the result
// does not depend on that order. Any invalid record rejects the whole batch.
func Derive(records []LapRecord) (*Result, error) {
	if err := validate(records); err != nil {
		return nil, err
	}
	startLaps := stintStartLaps(records)

	ret := &Result{
		Laps:    make([]DerivedLapRecord, 0, len(records)),
		PitLaps: pitLaps(records),
	}
	for i := range records {
		r := records[i]
		lap, _ := r.LapNumber.Get()
		stint, _ := r.Stint.Get()
		d := DerivedLapRecord{
			LapRecord:     r,
			StintStartLap: startLaps[stint],
			TireAge:       lap - startLaps[stint],
		}
		if lapTime, ok := r.LapTime.Get(); ok {
			d.LapTimeSeconds = opt.From(lapTime.Seconds())
		}
		ret.Laps = append(ret.Laps, d)
	}
	return ret, nil
}

//nolint:cyclop // one case per field
func validate(records []LapRecord) error {
	seen := make(map[int]int, len(records))
	for i := range records {
		r := &records[i]
		lap, lapOk := r.LapNumber.Get()
		stint, stintOk := r.Stint.Get()
		switch {
		case !lapOk:
			return &RecordError{
				Kind: ErrMissingField, Index: i, Field: "lapNumber", Stint: stint,
			}
		case !stintOk:
			return &RecordError{
				Kind: ErrMissingField, Index: i, Field: "stint", LapNumbers: []int{lap},
			}
		case lap < 1:
			return &RecordError{
				Kind: ErrInvalidRecord, Index: i, Field: "lapNumber",
				LapNumbers: []int{lap}, Stint: stint, Reason: "lap number must be positive",
			}
		case stint < 1:
			return &RecordError{
				Kind: ErrInvalidRecord, Index: i, Field: "stint",
				LapNumbers: []int{lap}, Stint: stint, Reason: "stint must be positive",
			}
		}
		if first, ok := seen[lap]; ok {
			return &RecordError{
				Kind: ErrInvalidRecord, Index: i, Field: "lapNumber",
				LapNumbers: []int{lap}, Stint: stint,
				Reason: "duplicate lap number, first seen at index " + strconv.Itoa(first),
			}
		}
		seen[lap] = i
	}
	return nil
}

// stintStartLaps maps each stint to the smallest lap number recorded for it.
func stintStartLaps(records []LapRecord) map[int]int {
	ret := make(map[int]int)
	for i := range records {
		lap := records[i].LapNumber.GetOr(0)
		stint := records[i].Stint.GetOr(0)
		if cur, ok := ret[stint]; !ok || lap < cur {
			ret[stint] = lap
		}
	}
	return ret
}

func pitLaps(records []LapRecord) []int {
	ret := lo.FilterMap(records, func(r LapRecord, _ int) (int, bool) {
		return r.LapNumber.GetOr(0), r.PitInTime.IsSet()
	})
	slices.Sort(ret)
	return ret
}
