package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausematrix/internal/pipeline"
	"github.com/ppiankov/clausematrix/internal/source"
	"github.com/ppiankov/clausematrix/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	listFile     string
	batchTimeout time.Duration
	// targetParty, noCache and noFooter are shared with analyze
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <matrix> [documents...]",
	Short: "Score many contract documents against one clause matrix",
	Long: `Batch loads the clause matrix once and analyzes documents in parallel:
- Documents come from arguments, a list file (one path per line), or both
- Every document is scored against the same matrix
- A JSON and a Markdown report are written per document

Example:
  clausematrix batch matrix.csv contracts/*.txt
  clausematrix batch matrix.csv --list contracts.txt --party Sony --output-dir ./reports
  clausematrix batch matrix.csv a.txt b.html --concurrency 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./clausematrix-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file listing document paths, one per line")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVarP(&targetParty, "party", "p", "", "counterparty whose negotiated variations are preferred")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	applyFlags()
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	paths := args[1:]
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return fmt.Errorf("read document list: %w", err)
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents given: pass paths or --list")
	}

	p := pipeline.NewPipeline(cfg, logger)
	summary, err := runBatchDocuments(ctx, p, args[0], paths, outputDir)
	if err != nil {
		return err
	}
	printBatchSummary(cmd.ErrOrStderr(), summary)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Total)
	}
	return nil
}

// batchSummary collects per-document outcomes for the console table
type batchSummary struct {
	Total     int
	Failed    int
	OutputDir string
	Rows      [][]string
}

func runBatchDocuments(ctx context.Context, p *pipeline.Pipeline, matrixArg string, paths []string, dir string) (*batchSummary, error) {
	snap, err := p.Load(ctx, source.FromArg(matrixArg))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, logger.Named("batch"))
	results, err := processor.ProcessFiles(ctx, snap.Matrix, targetParty, paths)
	if err != nil {
		return nil, err
	}

	summary := &batchSummary{Total: len(results), OutputDir: dir}
	renderer := p.Renderer()
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			summary.Failed++
			summary.Rows = append(summary.Rows, []string{result.Path, "-", "failed: " + result.Error.Error()})
			continue
		}

		// Reports for documents sharing a base name get a numeric suffix
		slug := sanitizeFilename(result.Report.Subject)
		used[slug]++
		if n := used[slug]; n > 1 {
			slug += "-" + strconv.Itoa(n)
		}
		jsonPath := filepath.Join(dir, slug+".json")
		mdPath := filepath.Join(dir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			summary.Failed++
			summary.Rows = append(summary.Rows, []string{result.Path, "-", "failed to write JSON: " + err.Error()})
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			summary.Failed++
			summary.Rows = append(summary.Rows, []string{result.Path, "-", "failed to write Markdown: " + err.Error()})
			continue
		}

		s := result.Report.Summary
		summary.Rows = append(summary.Rows, []string{
			result.Path,
			fmt.Sprintf("%d/100", result.Report.Score.Index),
			fmt.Sprintf("%d exact, %d acceptable, %d unacceptable, %d missing",
				s.ExactMatch, s.AcceptableModification, s.UnacceptableModification, s.Missing),
		})
	}

	return summary, nil
}

func printBatchSummary(w io.Writer, summary *batchSummary) {
	t := newTable("Batch Complete", "Document", "Index", "Result")
	for _, row := range summary.Rows {
		t.AddRow(row...)
	}
	_, _ = fmt.Fprintln(w, t.Render())
	_, _ = fmt.Fprintf(w, "  Total: %d  Success: %d  Failures: %d  Output: %s\n",
		summary.Total, summary.Total-summary.Failed, summary.Failed, summary.OutputDir)
}

// sanitizeFilename turns a document name into a safe report file stem
func sanitizeFilename(s string) string {
	s = filepath.Base(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." {
		s = "report"
	}
	return s
}
