package chart

import (
	"context"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/source"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/render/chart"
)

var (
	output string
	title  string
	width  float64
	height float64
)

func NewChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "plots lap times colored by tire compound with pit stops marked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return plotLaps(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "laps.png",
		"chart file, the extension selects the format (png, svg, pdf)")
	cmd.Flags().StringVar(&title, "title", "",
		"chart title (default derived from driver, event and season)")
	cmd.Flags().Float64Var(&width, "width", 12, "chart width in inch")
	cmd.Flags().Float64Var(&height, "height", 6, "chart height in inch")
	return cmd
}

func plotLaps(ctx context.Context) error {
	logger := log.GetFromContext(ctx).Named("chart")
	s, err := source.New(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	res, err := s.Derive(ctx)
	if err != nil {
		return err
	}
	t := title
	if t == "" {
		t = chart.Title(s.Selection.Driver, s.Selection.Event, s.Selection.Season)
	}
	if err := chart.Save(output, res,
		chart.WithTitle(t),
		chart.WithSize(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch),
	); err != nil {
		return err
	}
	logger.Info("chart written",
		log.String("file", output),
		log.Int("laps", len(res.Laps)),
		log.Ints("pitLaps", res.PitLaps))
	return nil
}
