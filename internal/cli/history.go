package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/surge/internal/history"
	"github.com/wesleyorama2/surge/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved runs",
	Long: `History manages the local archive of completed runs. Runs land
there when the config enables history or the run command passes --save.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		limit, _ := cmd.Flags().GetInt("limit")
		return listHistory(path, limit, os.Stdout)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Render the report for a saved run",
	Long: `Show renders the full report for a saved run. The run ID may be
abbreviated to any unique prefix, such as the short ID printed by list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		format, _ := cmd.Flags().GetString("format")
		return showHistory(path, args[0], format, os.Stdout)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete saved runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		keep, _ := cmd.Flags().GetInt("keep")
		return clearHistory(path, keep, os.Stdout)
	},
}

func init() {
	historyCmd.PersistentFlags().String("path", "", "history database file (default ~/.surge/history.db)")
	historyListCmd.Flags().Int("limit", 20, "maximum runs to list, 0 for all")
	historyShowCmd.Flags().StringP("format", "f", "", "report format: console, json, or html")
	historyClearCmd.Flags().Int("keep", 0, "keep the N most recent runs")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)
}

// listHistory prints a table of saved runs, newest first.
func listHistory(path string, limit int, w io.Writer) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "history is empty")
		return nil
	}

	fmt.Fprintf(w, "%-10s %-20s %-24s %10s %9s %8s\n",
		"RUN", "WHEN", "NAME", "REQUESTS", "SUCCESS", "P95")
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = "-"
		}
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		snap := e.Snapshot
		fmt.Fprintf(w, "%-10s %-20s %-24s %10d %8.1f%% %8s\n",
			shortID(e.RunID),
			e.Timestamp.Format("2006-01-02 15:04:05"),
			name,
			snap.Total,
			snap.SuccessRate,
			snap.Latency.P95.Round(time.Millisecond))
	}
	return nil
}

// showHistory renders the stored snapshot for one run.
func showHistory(path, id, format string, w io.Writer) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(id)
	if err != nil {
		return err
	}
	return report.Render(format, w, entry.Snapshot)
}

// clearHistory deletes saved runs, keeping the most recent keep runs
// when keep is positive.
func clearHistory(path string, keep int, w io.Writer) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if keep > 0 {
		removed, err := store.Prune(keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "kept the %d most recent runs, removed %d\n", keep, removed)
		return nil
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(w, "history cleared")
	return nil
}

// shortID abbreviates a run ID for display: the first UUID group, or
// the first 8 characters when the ID has no dashes.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
