package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/opt/opt"
	"github.com/shopspring/decimal"
	"golang.org/x/mod/semver"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
)

const (
	SchemaVersion         = "1.0.0"
	minimumSchemaVersion  = "v1.0.0"
	supportedSchemaMajor  = "v1"
	secondsFractionDigits = 9
)

type (
	// Document is the exchange format for lap data.
	// Times are given in seconds, null or missing values mean "not available".
	Document struct {
		SchemaVersion string   `json:"schemaVersion"`
		Season        int      `json:"season,omitempty"`
		Event         string   `json:"event,omitempty"`
		Session       string   `json:"session,omitempty"`
		Driver        string   `json:"driver,omitempty"`
		Laps          []LapDoc `json:"laps"`
	}
	LapDoc struct {
		LapNumber  *int     `json:"lapNumber"`
		Stint      *int     `json:"stint"`
		Compound   string   `json:"compound"`
		LapTime    *float64 `json:"lapTime"`
		PitInTime  *float64 `json:"pitInTime"`
		PitOutTime *float64 `json:"pitOutTime"`
	}
)

// CheckSchemaVersion accepts all 1.x versions starting with 1.0.0
func CheckSchemaVersion(toCheck string) error {
	v := toCheck
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q", ErrSchemaVersion, toCheck)
	}
	if semver.Major(v) != supportedSchemaMajor || semver.Compare(v, minimumSchemaVersion) < 0 {
		return fmt.Errorf("%w: %s (supported: %s.x)", ErrSchemaVersion, toCheck,
			supportedSchemaMajor)
	}
	return nil
}

func NewDocument(sel Selection, records []laps.LapRecord) *Document {
	ret := &Document{
		SchemaVersion: SchemaVersion,
		Season:        sel.Season,
		Event:         sel.Event,
		Session:       string(sel.Session),
		Driver:        sel.Driver,
		Laps:          make([]LapDoc, 0, len(records)),
	}
	for i := range records {
		ret.Laps = append(ret.Laps, FromRecord(&records[i]))
	}
	return ret
}

// Matches checks the document header against the selection.
// Empty header fields are not checked.
func (d *Document) Matches(sel Selection) error {
	mismatch := func(field, doc, want string) error {
		return fmt.Errorf("%w: %s is %q, want %q", ErrSelectionMismatch, field, doc, want)
	}
	if d.Season != 0 && sel.Season != 0 && d.Season != sel.Season {
		return mismatch("season", fmt.Sprint(d.Season), fmt.Sprint(sel.Season))
	}
	if d.Event != "" && sel.Event != "" && eventSlug(d.Event) != eventSlug(sel.Event) {
		return mismatch("event", d.Event, sel.Event)
	}
	if d.Session != "" && sel.Session != "" {
		if st, err := ParseSessionType(d.Session); err != nil || st != sel.Session {
			return mismatch("session", d.Session, string(sel.Session))
		}
	}
	if d.Driver != "" && sel.Driver != "" && !strings.EqualFold(d.Driver, sel.Driver) {
		return mismatch("driver", d.Driver, sel.Driver)
	}
	return nil
}

func (d *Document) Records() []laps.LapRecord {
	ret := make([]laps.LapRecord, 0, len(d.Laps))
	for i := range d.Laps {
		ret = append(ret, d.Laps[i].Record())
	}
	return ret
}

func (l *LapDoc) Record() laps.LapRecord {
	return laps.LapRecord{
		LapNumber:  opt.FromPtr(l.LapNumber),
		Stint:      opt.FromPtr(l.Stint),
		Compound:   l.Compound,
		LapTime:    secondsToDuration(l.LapTime),
		PitInTime:  secondsToDuration(l.PitInTime),
		PitOutTime: secondsToDuration(l.PitOutTime),
	}
}

func FromRecord(r *laps.LapRecord) LapDoc {
	return LapDoc{
		LapNumber:  r.LapNumber.Ptr(),
		Stint:      r.Stint.Ptr(),
		Compound:   r.Compound,
		LapTime:    durationToSeconds(r.LapTime),
		PitInTime:  durationToSeconds(r.PitInTime),
		PitOutTime: durationToSeconds(r.PitOutTime),
	}
}

func secondsToDuration(secs *float64) opt.Val[time.Duration] {
	if secs == nil {
		return opt.Val[time.Duration]{}
	}
	ns := decimal.NewFromFloat(*secs).Shift(secondsFractionDigits).Round(0).IntPart()
	return opt.From(time.Duration(ns))
}

func durationToSeconds(d opt.Val[time.Duration]) *float64 {
	v, ok := d.Get()
	if !ok {
		return nil
	}
	secs, _ := decimal.New(int64(v), -secondsFractionDigits).Float64()
	return &secs
}
