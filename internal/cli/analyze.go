package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/host"
	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/pipeline"
	"github.com/ppiankov/clausematrix/internal/source"
)

var (
	targetParty string
	outJSON     string
	outMD       string
	applyOut    string
	pretty      bool
	failUnder   int
	timeout     time.Duration
	noCache     bool
	noFooter    bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <matrix> <document>",
	Short: "Score a contract document against a clause matrix",
	Long: `Analyze reads a clause matrix (CSV, TSV or pipe-delimited file, or an
http(s) URL) and a contract document (plain text or HTML), then:
- Locates every numbered clause in the document
- Classifies each baseline clause as exact, acceptable, unacceptable or missing
- Maps tracked revisions onto the clauses they touch
- Reports a compliance index with transparent scoring signals

Example:
  clausematrix analyze matrix.csv contract.txt
  clausematrix analyze matrix.csv contract.html --party Sony --json report.json --md report.md
  clausematrix analyze https://example.com/matrix.csv contract.txt --apply revised.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&targetParty, "party", "p", "", "counterparty whose negotiated variations are preferred")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&applyOut, "apply", "", "write the document with recommendations applied to this path")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "render the full Markdown report in the terminal")
	analyzeCmd.Flags().IntVar(&failUnder, "fail-under", 0, "exit with an error when the compliance index is below this value")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	applyFlags()
	p := pipeline.NewPipeline(cfg, logger)

	report, err := analyzeDocument(ctx, p, cmd.OutOrStdout(), args[0], args[1])
	if err != nil {
		return err
	}

	if failUnder > 0 && report.Score.Index < failUnder {
		return fmt.Errorf("compliance index %d is below %d", report.Score.Index, failUnder)
	}
	return nil
}

// applyFlags copies command flags that override configuration
func applyFlags() {
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = verbose
}

func analyzeDocument(ctx context.Context, p *pipeline.Pipeline, w io.Writer, matrixArg, docPath string) (*model.AnalysisReport, error) {
	snap, err := p.Load(ctx, source.FromArg(matrixArg))
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d clauses from %s (parties: %v)\n",
			snap.Matrix.Len(), snap.Source, snap.Matrix.PartyNames())
	}

	doc, err := host.OpenFile(docPath)
	if err != nil {
		return nil, err
	}

	report, err := p.Analyze(ctx, doc, targetParty)
	if err != nil {
		return nil, fmt.Errorf("analyze failed: %w", err)
	}
	report.Subject = filepath.Base(docPath)

	if applyOut != "" {
		if err := writeApplied(ctx, p, doc, report, applyOut); err != nil {
			return nil, err
		}
	}

	if pretty {
		if err := printPretty(w, p.Renderer().Markdown(report)); err != nil {
			return nil, err
		}
	}

	if err := p.RenderReportTo(w, report, outJSON, outMD, verbose); err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	return report, nil
}

func writeApplied(ctx context.Context, p *pipeline.Pipeline, doc *host.TextHost, report *model.AnalysisReport, path string) error {
	applied, err := p.Apply(ctx, doc, report)
	if err != nil {
		return fmt.Errorf("apply recommendations: %w", err)
	}

	text, err := doc.GetAllText(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write revised document: %w", err)
	}

	for _, a := range applied {
		logger.Debug("recommendation applied",
			zap.String("clause", a.Key),
			zap.String("path", string(a.Path)),
			zap.Int("start", a.Range.Start),
			zap.Int("end", a.Range.End))
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Applied %d recommendations: %s\n", len(applied), path)
	}
	return nil
}

func printPretty(w io.Writer, markdown string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
