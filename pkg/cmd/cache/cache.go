package cache

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry/diskcache"
)

func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "commands to manage the on-disk cache of fetched laps",
	}
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newClearCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the cached sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := diskcache.Open(config.CacheDir)
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.List()
			if err != nil {
				return err
			}
			cfg, _ := config.Resolve()
			return listEntries(cmd.OutOrStdout(), entries, cfg.CacheTTL, time.Now())
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "removes all cached sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := diskcache.Open(config.CacheDir)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := store.Clear()
			if err != nil {
				return err
			}
			log.GetFromContext(cmd.Context()).Info("cache cleared",
				log.String("dir", config.CacheDir), log.Int("entries", n))
			return nil
		},
	}
}

func listEntries(w io.Writer, entries []diskcache.EntryInfo, ttl time.Duration,
	now time.Time,
) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Laps", "Fetched", "Expired"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	totalLaps := 0
	for _, e := range entries {
		totalLaps += e.Laps
		expired := ttl > 0 && now.Sub(e.FetchedAt) > ttl
		t.AppendRow(table.Row{
			e.Key,
			e.Laps,
			e.FetchedAt.Local().Format(time.DateTime),
			expired,
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d entries", len(entries)), totalLaps, "", ""})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
