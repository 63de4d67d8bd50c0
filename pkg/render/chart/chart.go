// Package chart plots lap times over lap numbers, one series per tire compound.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
)

var ErrNoData = errors.New("no lap times to plot")

const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 6 * vg.Inch
	pitLegend     = "Pit Stop"
	unknownLabel  = "UNKNOWN"
)

var (
	compoundColors = map[string]color.Color{
		"SOFT":         color.RGBA{R: 218, G: 41, B: 28, A: 255},
		"MEDIUM":       color.RGBA{R: 255, G: 210, B: 0, A: 255},
		"HARD":         color.RGBA{R: 160, G: 160, B: 160, A: 255},
		"INTERMEDIATE": color.RGBA{R: 67, G: 176, B: 42, A: 255},
		"WET":          color.RGBA{R: 0, G: 103, B: 173, A: 255},
	}
	unknownColor = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	pitColor     = color.NRGBA{R: 255, A: 178}
)

type (
	Option  func(*options)
	options struct {
		title  string
		width  vg.Length
		height vg.Length
	}
)

func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

func WithSize(width, height vg.Length) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

func CompoundColor(compound string) color.Color {
	if c, ok := compoundColors[strings.ToUpper(compound)]; ok {
		return c
	}
	return unknownColor
}

// Title returns the default chart title for a driver and an event
func Title(driver, event string, season int) string {
	return fmt.Sprintf("Lap Times Colored by Tire Compound – %s (%s %d)", driver, event, season)
}

// New creates the lap time plot. The y axis is inverted so faster laps are drawn higher.
// Laps without a lap time are not plotted.
//
//nolint:funlen // plot setup
func New(res *laps.Result, opts ...Option) (*plot.Plot, error) {
	o := newOptions(opts...)
	p := plot.New()
	p.Title.Text = o.title
	p.X.Label.Text = "Lap Number"
	p.Y.Label.Text = "Lap Time (seconds)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	yMin, yMax := math.Inf(1), math.Inf(-1)
	byCompound := res.ByCompound()
	for _, compound := range res.Compounds() {
		xys := plotter.XYs{}
		for _, d := range byCompound[compound] {
			secs, ok := d.LapTimeSeconds.Get()
			if !ok {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(d.Lap()), Y: secs})
			yMin = math.Min(yMin, secs)
			yMax = math.Max(yMax, secs)
		}
		if len(xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = CompoundColor(compound)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add(compoundLabel(compound), s)
	}
	if math.IsInf(yMin, 1) {
		return nil, ErrNoData
	}

	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 1
	}
	p.Y.Min, p.Y.Max = yMin-pad, yMax+pad

	for i, lap := range res.PitLaps {
		l, err := plotter.NewLine(plotter.XYs{
			{X: float64(lap), Y: p.Y.Min},
			{X: float64(lap), Y: p.Y.Max},
		})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = pitColor
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(l)
		// one legend entry for all pit markers
		if i == 0 {
			p.Legend.Add(pitLegend, l)
		}
	}
	return p, nil
}

// Write renders the chart in the given format (png, svg, pdf, ...).
func Write(w io.Writer, res *laps.Result, format string, opts ...Option) error {
	wt, err := writerTo(res, format, opts...)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the chart to file, the format is taken from the file extension.
// No file is created if the chart cannot be rendered.
func Save(file string, res *laps.Result, opts ...Option) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	if format == "" {
		return fmt.Errorf("cannot determine chart format of %q", file)
	}
	wt, err := writerTo(res, format, opts...)
	if err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writerTo(res *laps.Result, format string, opts ...Option) (io.WriterTo, error) {
	o := newOptions(opts...)
	p, err := New(res, opts...)
	if err != nil {
		return nil, err
	}
	return p.WriterTo(o.width, o.height, format)
}

func newOptions(opts ...Option) *options {
	o := &options{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func compoundLabel(compound string) string {
	if compound == "" {
		return unknownLabel
	}
	return compound
}
