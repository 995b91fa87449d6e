package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/outliers-cli/internal/config"
	"github.com/KaramelBytes/outliers-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	verbose bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "outliers",
	Short: "Outliers CLI: find and remove anomalous values in spreadsheet columns",
	Long: `Outliers reads numeric columns from CSV/TSV or XLSX files, picks a detection method
per column (Dixon for small samples, Z-score for normal data, IQR otherwise),
removes the flagged values and writes a before/after report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.outliers/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "also print per-cell parsing detail")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print per-column decisions")
}

func loadConfig() {
	switch {
	case debug:
		logger.SetLevel(logger.LevelDebug)
	case verbose:
		logger.SetLevel(logger.LevelInfo)
	default:
		logger.SetLevel(logger.LevelWarn)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// currentConfig returns the loaded config, or built-in defaults when loading failed.
func currentConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{ReportFormat: "xlsx", NumberFormat: "comma", Encoding: "utf-8", HistoryEnabled: false, Jobs: 1}
}
