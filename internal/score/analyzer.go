// Package score classifies baseline clauses against a live document and
// computes the compliance index.
package score

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/extract"
	"github.com/ppiankov/clausematrix/internal/matrix"
	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/similarity"
)

// Analyzer compares extracted document clauses with a clause matrix
type Analyzer struct {
	exactThreshold      float64
	acceptableThreshold float64
	similarity          *similarity.Scorer
	extractor           *extract.StructureExtractor
	scorer              *Scorer
	severity            *SeverityTable
	logger              *zap.Logger
	now                 func() time.Time
}

// Options configures an Analyzer; zero values fall back to defaults
type Options struct {
	ExactMatchThreshold    float64
	AcceptableModThreshold float64
	Severity               *SeverityTable
	Similarity             *similarity.Scorer
	Logger                 *zap.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(opts Options) *Analyzer {
	a := &Analyzer{
		exactThreshold:      opts.ExactMatchThreshold,
		acceptableThreshold: opts.AcceptableModThreshold,
		similarity:          opts.Similarity,
		extractor:           extract.NewStructureExtractor(),
		severity:            opts.Severity,
		logger:              opts.Logger,
		now:                 time.Now,
	}
	if a.exactThreshold <= 0 {
		a.exactThreshold = similarity.ExactMatchThreshold
	}
	if a.acceptableThreshold <= 0 {
		a.acceptableThreshold = similarity.AcceptableModificationThreshold
	}
	if a.similarity == nil {
		a.similarity = similarity.Default()
	}
	if a.severity == nil {
		a.severity = DefaultSeverityTable()
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.scorer = NewScorer(a.severity)
	return a
}

// NewAnalyzerFromConfig creates an analyzer from the analysis config section
func NewAnalyzerFromConfig(cfg model.AnalysisConfig, logger *zap.Logger) *Analyzer {
	return NewAnalyzer(Options{
		ExactMatchThreshold:    cfg.ExactMatchThreshold,
		AcceptableModThreshold: cfg.AcceptableModThreshold,
		Severity:               NewSeverityTable(cfg),
		Similarity: similarity.NewScorer(similarity.Options{
			MinTokenLength: cfg.MinTokenLength,
			Stopwords:      cfg.Stopwords,
		}),
		Logger: logger,
	})
}

// Analyze extracts the document structure and classifies every baseline clause
func (a *Analyzer) Analyze(text string, m *matrix.Matrix, targetParty string) (*model.AnalysisReport, error) {
	return a.AnalyzeStructure(a.extractor.Extract(text), m, targetParty)
}

// AnalyzeStructure classifies every baseline clause against an already
// extracted structure. Results follow the matrix key order.
func (a *Analyzer) AnalyzeStructure(structure model.Structure, m *matrix.Matrix, targetParty string) (*model.AnalysisReport, error) {
	if m.Len() == 0 {
		return nil, &model.EmptyMatrixError{Op: "analyze"}
	}

	// First occurrence of a key wins
	found := make(map[string]model.ExtractedClause)
	var unmapped []string
	for _, ec := range structure.Clauses() {
		key := ec.Key()
		if _, seen := found[key]; seen {
			continue
		}
		found[key] = ec
		if _, ok := m.Clause(key); !ok {
			unmapped = append(unmapped, key)
		}
	}

	report := &model.AnalysisReport{
		ID:          uuid.NewString(),
		TargetParty: targetParty,
		AnalyzedAt:  a.now(),
	}

	for _, clause := range m.Clauses() {
		var result model.ClauseAnalysisResult
		if ec, ok := found[clause.Key]; ok {
			result = a.classify(clause, ec, targetParty)
		} else {
			result = a.missing(clause)
		}
		report.Results = append(report.Results, result)
		report.Summary.Add(result.Status)
	}

	report.Score = a.scorer.Calculate(report.Results, unmapped)

	a.logger.Debug("analysis complete",
		zap.String("id", report.ID),
		zap.String("target_party", targetParty),
		zap.Int("clauses", report.Summary.Total),
		zap.Int("missing", report.Summary.Missing),
		zap.Int("score", report.Score.Index))

	return report, nil
}

// classify decides exact, acceptable or unacceptable for a located clause
func (a *Analyzer) classify(clause *model.Clause, ec model.ExtractedClause, targetParty string) model.ClauseAnalysisResult {
	foundText, withTitle, sim := a.bestCandidate(ec, clause.Baseline.Text)
	span := ec.Span(withTitle)

	result := model.ClauseAnalysisResult{
		Key:        clause.Key,
		Title:      clause.Title,
		Severity:   a.severity.Severity(clause),
		Similarity: sim,
		FoundText:  foundText,
		FoundSpan:  &span,
	}

	if sim >= a.exactThreshold {
		result.Status = model.StatusExactMatch
		return result
	}

	if match := a.acceptableMatch(clause, ec, targetParty); match != nil {
		result.Status = model.StatusAcceptableModification
		result.BestMatch = match
		return result
	}

	result.Status = model.StatusUnacceptableModification
	suggested, label := clause.Baseline.Text, "baseline"
	if variation, ok := clause.VariationFor(targetParty); ok {
		suggested, label = variation, targetParty
	}
	result.Suggested = suggested
	result.Recommendation = fmt.Sprintf(
		"Clause %s deviates from the baseline (similarity %.2f) and matches no known variation. Replace with the %s wording: %q",
		clause.Key, sim, label, suggested)
	result.Redline = Redline(foundText, suggested)
	return result
}

// acceptableMatch prefers the target party's variation when it clears the
// threshold, otherwise the best-scoring variation of any party that does
func (a *Analyzer) acceptableMatch(clause *model.Clause, ec model.ExtractedClause, targetParty string) *model.Match {
	if variation, ok := clause.VariationFor(targetParty); ok {
		if _, _, sim := a.bestCandidate(ec, variation); sim >= a.acceptableThreshold {
			return &model.Match{Party: targetParty, Text: variation, Similarity: sim}
		}
	}

	var best *model.Match
	for _, mod := range clause.AcceptableModifications {
		if mod.Party == targetParty {
			continue
		}
		_, _, sim := a.bestCandidate(ec, mod.Modification)
		if sim < a.acceptableThreshold {
			continue
		}
		if best == nil || sim > best.Similarity {
			best = &model.Match{Party: mod.Party, Text: mod.Modification, Similarity: sim}
		}
	}
	return best
}

// bestCandidate scores the clause text with and without its title fragment
// against reference and returns the closer one, reporting whether it kept the title
func (a *Analyzer) bestCandidate(ec model.ExtractedClause, reference string) (string, bool, float64) {
	text := ec.Text()
	sim := a.similarity.Similarity(text, reference)
	if ec.Title != "" && ec.Content != "" {
		if s := a.similarity.Similarity(ec.Content, reference); s > sim {
			return ec.Content, false, s
		}
	}
	return text, true, sim
}

func (a *Analyzer) missing(clause *model.Clause) model.ClauseAnalysisResult {
	return model.ClauseAnalysisResult{
		Key:            clause.Key,
		Title:          clause.Title,
		Status:         model.StatusMissing,
		Severity:       a.severity.Severity(clause),
		Suggested:      clause.Baseline.Text,
		Recommendation: fmt.Sprintf("Clause %s is missing from the document. Insert the baseline wording: %q", clause.Key, clause.Baseline.Text),
	}
}

// Analyze runs a default analyzer
func Analyze(text string, m *matrix.Matrix, targetParty string) (*model.AnalysisReport, error) {
	return NewAnalyzer(Options{}).Analyze(text, m, targetParty)
}
