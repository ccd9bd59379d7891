package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/host"
	"github.com/ppiankov/clausematrix/internal/matrix"
	"github.com/ppiankov/clausematrix/internal/model"
)

// Analyzer classifies one host document against a fixed matrix
type Analyzer interface {
	AnalyzeWith(ctx context.Context, m *matrix.Matrix, h host.Host, targetParty string) (*model.AnalysisReport, error)
}

// DocumentJob analyzes a single document file
type DocumentJob struct {
	Index       int
	Path        string
	Matrix      *matrix.Matrix
	TargetParty string
	Analyzer    Analyzer
}

// Execute executes the document job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	result := &DocumentResult{Index: j.Index, Path: j.Path}

	h, err := host.OpenFile(j.Path)
	if err != nil {
		result.Error = err
		return result
	}

	report, err := j.Analyzer.AnalyzeWith(ctx, j.Matrix, h, j.TargetParty)
	if err != nil {
		result.Error = fmt.Errorf("analyze %s: %w", j.Path, err)
		return result
	}
	report.Subject = filepath.Base(j.Path)
	result.Report = report
	return result
}

// DocumentResult represents the result of a document job
type DocumentResult struct {
	Index  int
	Path   string
	Report *model.AnalysisReport
	Error  error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many documents against one matrix snapshot.
// Each analysis is sequential; only independent documents run in parallel.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessFiles analyzes the documents concurrently and returns results in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, m *matrix.Matrix, targetParty string, paths []string) ([]*DocumentResult, error) {
	if m.Len() == 0 {
		return nil, &model.EmptyMatrixError{Op: "analyze batch"}
	}
	if len(paths) == 0 {
		return []*DocumentResult{}, nil
	}

	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()

	for i, path := range paths {
		pool.Submit(&DocumentJob{
			Index:       i,
			Path:        path,
			Matrix:      m,
			TargetParty: targetParty,
			Analyzer:    b.analyzer,
		})
	}

	results := pool.Wait()

	ordered := make([]*DocumentResult, len(paths))
	for _, r := range results {
		dr := r.(*DocumentResult)
		ordered[dr.Index] = dr
	}
	// Jobs dropped by cancellation never report back
	for i, dr := range ordered {
		if dr == nil {
			ordered[i] = &DocumentResult{Index: i, Path: paths[i], Error: fmt.Errorf("analyze %s: %w", paths[i], context.Cause(ctx))}
		}
	}

	failed := 0
	for _, dr := range ordered {
		if dr.Error != nil {
			failed++
			b.logger.Warn("document analysis failed", zap.String("path", dr.Path), zap.Error(dr.Error))
		}
	}
	b.logger.Info("batch complete", zap.Int("documents", len(paths)), zap.Int("failed", failed))

	return ordered, nil
}

// ProcessListFile reads document paths from a file and processes them
func (b *BatchProcessor) ProcessListFile(ctx context.Context, m *matrix.Matrix, targetParty string, listPath string) ([]*DocumentResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read document list: %w", err)
	}
	return b.ProcessFiles(ctx, m, targetParty, paths)
}

// ReadPathsFromFile reads document paths from a file (one per line).
// Blank lines and # comments are skipped, duplicates dropped, and relative
// paths resolved against the list file's directory.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
