// Package export writes derived laps as json or csv.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aarondl/opt/opt"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/render"
)

type (
	// Lap is the serialized form of a derived lap, missing values are null.
	Lap struct {
		LapNumber      int          `json:"lapNumber"`
		Stint          int          `json:"stint"`
		Compound       string       `json:"compound"`
		StintStartLap  int          `json:"stintStartLap"`
		TireAge        int          `json:"tireAge"`
		LapTimeSeconds *json.Number `json:"lapTimeSeconds"`
		PitInTime      *json.Number `json:"pitInTime"`
		PitOutTime     *json.Number `json:"pitOutTime"`
	}
	Result struct {
		Laps    []Lap `json:"laps"`
		PitLaps []int `json:"pitLaps"`
	}
)

var csvHeader = []string{
	"lapNumber", "stint", "compound", "stintStartLap", "tireAge",
	"lapTimeSeconds", "pitInTime", "pitOutTime",
}

func NewResult(res *laps.Result) *Result {
	ret := &Result{Laps: make([]Lap, 0, len(res.Laps)), PitLaps: res.PitLaps}
	if ret.PitLaps == nil {
		ret.PitLaps = []int{}
	}
	for i := range res.Laps {
		d := &res.Laps[i]
		ret.Laps = append(ret.Laps, Lap{
			LapNumber:      d.Lap(),
			Stint:          d.StintID(),
			Compound:       d.Compound,
			StintStartLap:  d.StintStartLap,
			TireAge:        d.TireAge,
			LapTimeSeconds: seconds(d.LapTime),
			PitInTime:      seconds(d.PitInTime),
			PitOutTime:     seconds(d.PitOutTime),
		})
	}
	return ret
}

func JSON(w io.Writer, res *laps.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewResult(res))
}

func CSV(w io.Writer, res *laps.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range NewResult(res).Laps {
		row := []string{
			strconv.Itoa(l.LapNumber),
			strconv.Itoa(l.Stint),
			l.Compound,
			strconv.Itoa(l.StintStartLap),
			strconv.Itoa(l.TireAge),
			numberOrEmpty(l.LapTimeSeconds),
			numberOrEmpty(l.PitInTime),
			numberOrEmpty(l.PitOutTime),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format (json, csv)
func Write(w io.Writer, format string, res *laps.Result) error {
	switch format {
	case "json":
		return JSON(w, res)
	case "csv":
		return CSV(w, res)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func seconds(v opt.Val[time.Duration]) *json.Number {
	d, ok := v.Get()
	if !ok {
		return nil
	}
	n := json.Number(render.Seconds(d))
	return &n
}

func numberOrEmpty(n *json.Number) string {
	if n == nil {
		return ""
	}
	return n.String()
}
