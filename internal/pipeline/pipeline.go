// Package pipeline wires loading, analysis, generation and rendering together.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/cache"
	"github.com/ppiankov/clausematrix/internal/extract"
	"github.com/ppiankov/clausematrix/internal/generate"
	"github.com/ppiankov/clausematrix/internal/host"
	"github.com/ppiankov/clausematrix/internal/matrix"
	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/score"
	"github.com/ppiankov/clausematrix/internal/source"
	"github.com/ppiankov/clausematrix/internal/tabular"
)

// Pipeline orchestrates clause table loading and document analysis
type Pipeline struct {
	loader    *source.Loader
	matrices  *cache.MemoryCache // nil when caching is disabled
	holder    *matrix.Holder
	parseOpts tabular.Options
	analyzer  *score.Analyzer
	generator *generate.Generator
	applier   *host.Applier
	renderer  *Renderer
	config    *model.Config
	logger    *zap.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	var memory *cache.MemoryCache
	var sourceCache cache.Cache
	if cfg.Cache.Enabled {
		memory = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		sourceCache = memory
	}

	fetcher := source.NewFetcherFromConfig(cfg.HTTP, cfg.RateLimiting, logger.Named("fetch"))

	return &Pipeline{
		loader:    source.NewLoader(fetcher, sourceCache, logger.Named("source")),
		matrices:  memory,
		holder:    matrix.NewHolder(),
		parseOpts: tabular.OptionsFromConfig(cfg.Matrix),
		analyzer:  score.NewAnalyzerFromConfig(cfg.Analysis, logger.Named("analyze")),
		generator: generate.NewGenerator(cfg.Generator),
		applier:   host.NewApplier(logger.Named("apply")),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		config:    cfg,
		logger:    logger,
	}
}

// Load reads, parses and builds a clause matrix, then makes it current.
// Analyses already running keep the matrix they started with.
func (p *Pipeline) Load(ctx context.Context, in source.Input) (*matrix.Snapshot, error) {
	m, origin, err := p.Build(ctx, in)
	if err != nil {
		return nil, err
	}

	p.holder.Replace(m, origin)
	snap := p.holder.Current()

	if m.Len() == 0 {
		p.logger.Warn("clause table loaded with no clauses", zap.String("source", origin))
	} else {
		p.logger.Info("clause matrix loaded",
			zap.String("source", origin),
			zap.Int("clauses", m.Len()),
			zap.Strings("parties", m.PartyNames()))
	}
	return snap, nil
}

// Build reads and parses a clause table without touching the current matrix
func (p *Pipeline) Build(ctx context.Context, in source.Input) (*matrix.Matrix, string, error) {
	raw, err := p.loader.Load(ctx, in)
	if err != nil {
		return nil, "", fmt.Errorf("load clause data: %w", err)
	}

	key := cache.ContentKey(raw.Content, fmt.Sprintf("%+v", p.parseOpts))
	if p.matrices != nil {
		if cached, ok := p.matrices.GetValue(key); ok {
			if m, ok := cached.(*matrix.Matrix); ok {
				p.logger.Debug("clause matrix cache hit", zap.String("source", raw.Origin))
				return m, raw.Origin, nil
			}
		}
	}

	table, err := tabular.Parse(raw.Content, p.parseOpts)
	if err != nil {
		return nil, "", fmt.Errorf("load clause data from %s: %w", raw.Origin, err)
	}
	m := matrix.FromTable(table)

	if p.matrices != nil {
		p.matrices.SetValue(key, m)
	}
	return m, raw.Origin, nil
}

// Snapshot returns the current matrix snapshot, or nil before the first load
func (p *Pipeline) Snapshot() *matrix.Snapshot {
	return p.holder.Current()
}

// Matrix returns the current matrix, or nil before the first load
func (p *Pipeline) Matrix() *matrix.Matrix {
	return p.holder.Matrix()
}

// Analyzer returns the configured analyzer
func (p *Pipeline) Analyzer() *score.Analyzer {
	return p.analyzer
}

// Analyze reads the host document and classifies it against the matrix that
// is current when the call starts. Tracked revisions are mapped onto clauses.
func (p *Pipeline) Analyze(ctx context.Context, h host.Host, targetParty string) (*model.AnalysisReport, error) {
	return p.AnalyzeWith(ctx, p.holder.Matrix(), h, targetParty)
}

// AnalyzeWith analyzes the host document against a specific matrix
func (p *Pipeline) AnalyzeWith(ctx context.Context, m *matrix.Matrix, h host.Host, targetParty string) (*model.AnalysisReport, error) {
	if m.Len() == 0 {
		return nil, &model.EmptyMatrixError{Op: "analyze"}
	}

	text, err := h.GetAllText(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	structure := extract.Extract(text)
	report, err := p.analyzer.AnalyzeStructure(structure, m, targetParty)
	if err != nil {
		return nil, err
	}

	revisions, err := h.ListRevisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	report.Revisions = p.analyzer.ReviewRevisions(revisions, structure, m)

	return report, nil
}

// Generate assembles a contract from the current matrix
func (p *Pipeline) Generate(variables map[string]string) string {
	return p.generator.Generate(p.holder.Matrix(), variables)
}

// Apply writes the report's recommendations back into the host document
func (p *Pipeline) Apply(ctx context.Context, h host.Host, report *model.AnalysisReport) ([]host.Applied, error) {
	return p.applier.Apply(ctx, h, report)
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// RenderReport renders the report to the specified outputs and prints a summary
func (p *Pipeline) RenderReport(report *model.AnalysisReport, jsonPath string, mdPath string, verbose bool) error {
	return p.RenderReportTo(os.Stdout, report, jsonPath, mdPath, verbose)
}

// RenderReportTo is RenderReport with the summary written to w
func (p *Pipeline) RenderReportTo(w io.Writer, report *model.AnalysisReport, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(w, report)
	return nil
}
