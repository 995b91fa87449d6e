package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/outliers-cli/internal/analysis"
	"github.com/KaramelBytes/outliers-cli/internal/logger"
	"github.com/KaramelBytes/outliers-cli/internal/report"
	"github.com/KaramelBytes/outliers-cli/internal/store"
	"github.com/KaramelBytes/outliers-cli/internal/tabular"
	"github.com/KaramelBytes/outliers-cli/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	anaColumns      []string
	anaOutputPath   string
	anaOutputDir    string
	anaFormat       string
	anaDelimiter    string
	anaNumberFormat string
	anaEncoding     string
	anaSheetName    string
	anaSheetIndex   int
	anaJobs         int
	anaNoHistory    bool
	anaQuiet        bool
)

// fileJob is one input file and its outcome.
type fileJob struct {
	path    string
	report  string
	started time.Time
	res     *analysis.FileResult
	err     error
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files|globs...>",
	Short: "Detect and remove outliers in numeric columns of CSV/TSV/XLSX files",
	Example: `  outliers analyze medidas.xlsx -c peso,altura -o limpio.xlsx
  outliers analyze "data/*.csv" -c peso --output-dir reports --jobs 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		flags := cmd.Flags()

		opt, err := analyzeOptions(cmd)
		if err != nil {
			return err
		}
		formatName := c.ReportFormat
		if flags.Changed("format") {
			formatName = anaFormat
		}
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		jobs := c.Jobs
		if flags.Changed("jobs") {
			jobs = anaJobs
		}
		if jobs < 1 {
			return fmt.Errorf("--jobs must be at least 1")
		}

		var columns []string
		for _, col := range anaColumns {
			columns = append(columns, strings.Split(col, ",")...)
		}
		columns = analysis.NormalizeColumns(columns)
		if len(columns) == 0 {
			return fmt.Errorf("no columns given; use --columns/-c")
		}

		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if anaOutputPath != "" && anaOutputDir != "" {
			return fmt.Errorf("use either --output or --output-dir, not both")
		}
		if anaOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output takes a single input file (got %d); use --output-dir", len(files))
		}
		if anaOutputDir != "" {
			if err := os.MkdirAll(anaOutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		batch := make([]*fileJob, len(files))
		used := map[string]int{}
		for i, path := range files {
			job := &fileJob{path: path}
			switch {
			case anaOutputPath != "":
				job.report = anaOutputPath
			case anaOutputDir != "":
				job.report = uniqueReportPath(used, utils.ReportPath(anaOutputDir, path, string(format)))
			}
			batch[i] = job
		}

		runBatch(cmd.Context(), batch, columns, opt, format, jobs)

		out := cmd.OutOrStdout()
		failed := 0
		total := len(batch)
		for i, job := range batch {
			if job.err != nil {
				failed++
				fmt.Fprintf(out, "✗ [%d/%d] %s: %v\n", i+1, total, filepath.Base(job.path), job.err)
				continue
			}
			if job.report == "" {
				fmt.Fprint(out, report.Markdown(job.res))
				continue
			}
			if !anaQuiet {
				printSummary(out, i+1, total, job)
			}
		}

		if c.HistoryEnabled && !anaNoHistory {
			recordHistory(cmd.Context(), c.HistoryDB, batch)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringSliceVarP(&anaColumns, "columns", "c", nil, "columns to analyze (comma-separated or repeated)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to this file (single input only)")
	analyzeCmd.Flags().StringVar(&anaOutputDir, "output-dir", "", "write one <name>.outliers.<format> report per input into this directory")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "xlsx", "report format: xlsx|csv|md (default from config)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab' (default: sniff from header)")
	analyzeCmd.Flags().StringVar(&anaNumberFormat, "number-format", "comma", "number parsing: comma (',' is the decimal point) or auto")
	analyzeCmd.Flags().StringVar(&anaEncoding, "encoding", "utf-8", "text encoding of CSV inputs: utf-8|latin1|windows-1252")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze (overrides --sheet-index)")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index")
	analyzeCmd.Flags().IntVar(&anaJobs, "jobs", 1, "files analyzed in parallel (default from config)")
	analyzeCmd.Flags().BoolVar(&anaNoHistory, "no-history", false, "do not record this run in the history database")
	analyzeCmd.Flags().BoolVar(&anaQuiet, "quiet", false, "suppress per-file summaries")
	_ = analyzeCmd.MarkFlagRequired("columns")
}

// analyzeOptions merges config values with explicitly set flags.
func analyzeOptions(cmd *cobra.Command) (analysis.Options, error) {
	c := currentConfig()
	flags := cmd.Flags()
	opt := analysis.DefaultOptions()

	numberFormat := c.NumberFormat
	if flags.Changed("number-format") {
		numberFormat = anaNumberFormat
	}
	nf, err := analysis.ParseNumberFormat(numberFormat)
	if err != nil {
		return opt, err
	}
	opt.NumberFormat = nf

	delim := c.Delimiter
	if flags.Changed("delimiter") {
		delim = anaDelimiter
	}
	d, err := tabular.ParseDelimiter(delim)
	if err != nil {
		return opt, err
	}
	opt.Source.Delimiter = d

	opt.Source.Encoding = c.Encoding
	if flags.Changed("encoding") {
		opt.Source.Encoding = anaEncoding
	}
	opt.Source.SheetName = anaSheetName
	if anaSheetIndex < 1 {
		return opt, fmt.Errorf("--sheet-index is 1-based (got %d)", anaSheetIndex)
	}
	opt.Source.SheetIndex = anaSheetIndex
	return opt, nil
}

// runBatch analyzes every job with at most jobs files in flight. A failing
// file records its error on the job and never stops the others.
func runBatch(ctx context.Context, batch []*fileJob, columns []string, opt analysis.Options, format report.Format, jobs int) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, job := range batch {
		job := job
		g.Go(func() error {
			job.started = time.Now()
			if err := ctx.Err(); err != nil {
				job.err = err
				return nil
			}
			logger.Debug("analyzing %s", job.path)
			job.res, job.err = analysis.AnalyzeFile(job.path, columns, opt)
			if job.err != nil || job.report == "" {
				return nil
			}
			if err := report.WriteFile(job.report, report.FormatFromPath(job.report, format), job.res); err != nil {
				job.err = fmt.Errorf("%s: %w", filepath.Base(job.path), err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func printSummary(w io.Writer, i, total int, job *fileJob) {
	res := job.res
	removed := 0
	for _, col := range res.Analyzed() {
		removed += col.Removed()
	}
	fmt.Fprintf(w, "✓ [%d/%d] %s: %d column(s), %d value(s) removed → %s\n",
		i, total, res.Name, len(res.Analyzed()), removed, job.report)
	for _, col := range res.Columns {
		if col.Skipped {
			fmt.Fprintf(w, "  ⚠ Warning: column '%s' skipped (%d values, need at least %d)\n", col.Name, col.N, analysis.MinSampleSize)
			continue
		}
		fmt.Fprintf(w, "  - %s: %s, %d outlier(s)\n", col.Name, col.Algorithm.Label(), len(col.Outliers))
	}
	if n := len(res.Issues); n > 0 {
		fmt.Fprintf(w, "  ⚠ Warning: %d non-numeric value(s) skipped (use --verbose for details)\n", n)
	}
}

// uniqueReportPath appends __2, __3... when two inputs share a base name.
func uniqueReportPath(used map[string]int, p string) string {
	used[p]++
	n := used[p]
	if n == 1 {
		return p
	}
	ext := filepath.Ext(p)
	return fmt.Sprintf("%s__%d%s", strings.TrimSuffix(p, ext), n, ext)
}

// recordHistory stores every job in the history database. Failures only warn.
func recordHistory(ctx context.Context, dbPath string, batch []*fileJob) {
	st, err := store.Open(dbPath)
	if err != nil {
		logger.Warn("history disabled for this run: %v", err)
		return
	}
	defer st.Close()
	for _, job := range batch {
		run := store.NewRun(job.path, job.started, job.res, job.err)
		if job.err == nil {
			run.ReportPath = job.report
		}
		if err := st.RecordRun(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("record history for %s: %v", filepath.Base(job.path), err)
		}
	}
}
