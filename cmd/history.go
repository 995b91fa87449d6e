package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/outliers-cli/internal/report"
	"github.com/KaramelBytes/outliers-cli/internal/store"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(currentConfig().HistoryDB)
		if err != nil {
			return err
		}
		defer st.Close()
		runs, err := st.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs recorded)")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  %-6s  %s\n", r.ID[:8], r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.File)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the columns and outliers of one run (id prefix accepted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(currentConfig().HistoryDB)
		if err != nil {
			return err
		}
		defer st.Close()
		r, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run:     %s\n", r.ID)
		fmt.Fprintf(out, "Started: %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "File:    %s\n", r.File)
		fmt.Fprintf(out, "Status:  %s\n", r.Status)
		if r.Error != "" {
			fmt.Fprintf(out, "Error:   %s\n", r.Error)
		}
		if r.ReportPath != "" {
			fmt.Fprintf(out, "Report:  %s\n", r.ReportPath)
		}
		if r.Status == store.StatusOK {
			fmt.Fprintf(out, "Rows:    %d (%d non-numeric values skipped)\n", r.Rows, r.Issues)
		}
		for _, c := range r.Columns {
			p := "-"
			if c.PValue != nil {
				p = fmt.Sprintf("%.4g", *c.PValue)
			}
			vals := make([]string, len(c.Outliers))
			for i, v := range c.Outliers {
				vals[i] = report.FormatValue(v)
			}
			fmt.Fprintf(out, "- %s: %s (p=%s) n=%d→%d outliers=[%s]\n",
				c.Name, c.Algorithm, p, c.NOriginal, c.NCleaned, strings.Join(vals, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
}
