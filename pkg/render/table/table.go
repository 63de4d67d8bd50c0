// Package table renders derived laps as text tables.
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/render"
)

type (
	Option  func(*options)
	options struct {
		title  string
		style  table.Style
		stints bool
	}
)

func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithStyle sets the go-pretty table style (default: table.StyleLight)
func WithStyle(style table.Style) Option {
	return func(o *options) {
		o.style = style
	}
}

// WithoutStints omits the stint summary
func WithoutStints() Option {
	return func(o *options) {
		o.stints = false
	}
}

// Render writes the laps table, the stint summary and the pit laps to w.
func Render(w io.Writer, res *laps.Result, opts ...Option) error {
	o := &options{style: table.StyleLight, stints: true}
	for _, opt := range opts {
		opt(o)
	}
	out := []string{lapsTable(res, o)}
	if o.stints {
		out = append(out, stintsTable(res, o.style))
	}
	out = append(out, "Pit laps: "+pitLaps(res.PitLaps))
	_, err := fmt.Fprintln(w, strings.Join(out, "\n\n"))
	return err
}

func lapsTable(res *laps.Result, o *options) string {
	t := table.NewWriter()
	t.SetStyle(o.style)
	if o.title != "" {
		t.SetTitle(o.title)
	}
	t.AppendHeader(table.Row{"Lap", "Stint", "Compound", "Tire age", "Lap time", "Seconds", "Pit"})
	for i := range res.Laps {
		d := &res.Laps[i]
		t.AppendRow(table.Row{
			d.Lap(),
			d.StintID(),
			compound(d.Compound),
			d.TireAge,
			render.OptLapTime(d.LapTime),
			render.OptSeconds(d.LapTimeSeconds),
			pitMarker(d),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return t.Render()
}

func stintsTable(res *laps.Result, style table.Style) string {
	t := table.NewWriter()
	t.SetStyle(style)
	t.AppendHeader(table.Row{"Stint", "Compound", "Laps", "From", "To", "Best", "Mean"})
	for _, s := range res.Stints() {
		t.AppendRow(table.Row{
			s.Stint,
			compound(s.Compound),
			s.Laps,
			s.LapStart,
			s.LapEnd,
			render.OptLapTime(s.Best),
			render.OptLapTime(s.Mean),
		})
	}
	return t.Render()
}

func pitMarker(d *laps.DerivedLapRecord) string {
	switch {
	case d.IsPitIn() && d.IsPitOut():
		return "OUT/IN"
	case d.IsPitIn():
		return "IN"
	case d.IsPitOut():
		return "OUT"
	}
	return ""
}

func compound(c string) string {
	if c == "" {
		return render.Missing
	}
	return c
}

func pitLaps(l []int) string {
	if len(l) == 0 {
		return "none"
	}
	return strings.Join(lo.Map(l, func(lap, _ int) string { return fmt.Sprint(lap) }), ", ")
}
