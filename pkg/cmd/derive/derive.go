package derive

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/source"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/render/export"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/render/table"
)

var (
	format string
	output string
)

func NewDeriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "derives tire age, stint start and pit laps of a session",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "table", "json", "csv":
				return nil
			}
			return fmt.Errorf("unsupported format %q (table, json, csv)", format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return deriveLaps(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table",
		"output format (table, json, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"write output to this file instead of stdout")
	return cmd
}

func deriveLaps(ctx context.Context, stdout io.Writer) error {
	s, err := source.New(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	res, err := s.Derive(ctx)
	if err != nil {
		return err
	}
	if output == "" {
		return Write(stdout, format, s.Selection.String(), res)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := Write(f, format, s.Selection.String(), res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders res in the requested format.
func Write(w io.Writer, format, title string, res *laps.Result) error {
	if format == "table" {
		return table.Render(w, res, table.WithTitle(title))
	}
	return export.Write(w, format, res)
}
