package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/utils/stringx"
	"github.com/msto63/recordpad/internal/history/store"
)

var (
	historyLimit  int
	historySource string
	historyFailed bool
	historyPrune  time.Duration
	historyStats  bool
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history [ID]",
	Short: "List or prune recorded analyses",
	Long: `Shows recorded analyses, newest first. With an ID the recorded
source of that analysis is printed.

Examples:
  recordpad history
  recordpad history --failed --limit 5
  recordpad history --stats
  recordpad history --prune 720h
  recordpad history 0b6f...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max entries")
	historyCmd.Flags().StringVar(&historySource, "source", "", "only entries for this source")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed analyses")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete entries older than this age")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show statistics")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !appConfig.History.Enabled {
		return mdwerror.New("history is disabled in the configuration").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("cmd.history")
	}
	st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: appConfig.History.Path})
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case historyPrune > 0:
		deleted, err := st.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		if err := st.Vacuum(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d entries older than %s\n", deleted, historyPrune)
		return nil

	case historyStats:
		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(cmd, stats)
		}
		fmt.Fprintf(out, "Total:      %d\n", stats.Total)
		fmt.Fprintf(out, "Successful: %d\n", stats.Successful)
		fmt.Fprintf(out, "Failed:     %d\n", stats.Failed)
		if !stats.LastEntry.IsZero() {
			fmt.Fprintf(out, "Last:       %s\n", stats.LastEntry.Local().Format(time.DateTime))
		}
		for code, n := range stats.ErrorsByKey {
			fmt.Fprintf(out, "  %-32s %d\n", code, n)
		}
		return nil

	case len(args) == 1:
		entry, err := st.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(cmd, entry)
		}
		fmt.Fprint(out, entry.Content)
		return nil
	}

	filter := store.Filter{Source: historySource, Limit: historyLimit}
	if historyFailed {
		ok := false
		filter.Success = &ok
	}
	entries, err := st.Query(ctx, filter)
	if err != nil {
		return err
	}
	if historyJSON {
		return writeJSON(cmd, entries)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSOURCE\tRESULT\tERRORS\tMS")
	for _, e := range entries {
		result := "ok"
		if !e.Success {
			result = e.FirstError
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\n",
			stringx.Truncate(e.ID, 8, ""), e.Timestamp.Local().Format(time.DateTime), e.Source, result, e.ErrorCount, e.DurationMS)
	}
	return tw.Flush()
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return mdwerror.Wrap(err, "failed to write JSON").
			WithCode(mdwerror.CodeIOError).
			WithOperation("cmd.writeJSON")
	}
	return nil
}
