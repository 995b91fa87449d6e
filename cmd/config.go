package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/outliers-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/outliers-cli/internal/config"
	"github.com/KaramelBytes/outliers-cli/internal/report"
	"github.com/KaramelBytes/outliers-cli/internal/tabular"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set outliers configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "report_format: %s\n", cfg.ReportFormat)
		fmt.Fprintf(out, "number_format: %s\n", cfg.NumberFormat)
		fmt.Fprintf(out, "encoding: %s\n", cfg.Encoding)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "history_enabled: %t\n", cfg.HistoryEnabled)
		fmt.Fprintf(out, "history_db: %s\n", cfg.HistoryDB)
		fmt.Fprintf(out, "jobs: %d\n", cfg.Jobs)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "report_format":
			f, err := report.ParseFormat(val)
			if err != nil {
				return err
			}
			cfg.ReportFormat = string(f)
		case "number_format":
			nf, err := analysis.ParseNumberFormat(val)
			if err != nil {
				return err
			}
			cfg.NumberFormat = nf.String()
		case "encoding":
			cfg.Encoding = val
		case "delimiter":
			if _, err := tabular.ParseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "history_enabled":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for history_enabled: %v", val)
			}
			cfg.HistoryEnabled = b
		case "history_db":
			cfg.HistoryDB = val
		case "jobs":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for jobs: %v", val)
			}
			cfg.Jobs = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
