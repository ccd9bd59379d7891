package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/clausematrix/internal/model"
)

// Scorer calculates the compliance index and generates signals
type Scorer struct {
	severity *SeverityTable
}

// NewScorer creates a new scorer
func NewScorer(severity *SeverityTable) *Scorer {
	if severity == nil {
		severity = DefaultSeverityTable()
	}
	return &Scorer{severity: severity}
}

// Calculate calculates the compliance score and generates diagnostic signals.
// unmapped lists numbered document clauses that have no baseline clause.
func (s *Scorer) Calculate(results []model.ClauseAnalysisResult, unmapped []string) model.Score {
	var signals []model.Signal

	// 1. Compliance ratio (0-100 points)
	complianceScore, complianceSignal := s.calculateCompliance(results)
	signals = append(signals, complianceSignal)

	// 2. Missing clauses (penalty)
	penalty, missingSignal := s.calculateMissingPenalty(results)
	if missingSignal.Type != "" {
		signals = append(signals, missingSignal)
	}

	// 3. Unacceptable deviations
	if deviationSignal := s.detectDeviation(results); deviationSignal.Type != "" {
		signals = append(signals, deviationSignal)
	}

	// 4. Numbered text outside the matrix
	if unmappedSignal := s.detectUnmapped(unmapped); unmappedSignal.Type != "" {
		signals = append(signals, unmappedSignal)
	}

	totalScore := complianceScore - penalty
	if totalScore < 0 {
		totalScore = 0
	}

	return model.Score{
		Index:      totalScore,
		Confidence: s.determineConfidence(results),
		Signals:    signals,
	}
}

// calculateCompliance scores compliant clauses over all baseline clauses
func (s *Scorer) calculateCompliance(results []model.ClauseAnalysisResult) (int, model.Signal) {
	total := len(results)
	if total == 0 {
		return 0, model.Signal{
			Type:        model.SignalCompliance,
			Severity:    model.SeverityCritical,
			Description: "No baseline clauses to compare",
			Data:        map[string]interface{}{"total": 0},
		}
	}

	exact, acceptable := 0, 0
	for _, r := range results {
		switch r.Status {
		case model.StatusExactMatch:
			exact++
		case model.StatusAcceptableModification:
			acceptable++
		}
	}

	ratio := float64(exact+acceptable) / float64(total)
	score := int(math.Round(ratio * 100))

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 0.8 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalCompliance,
		Severity:    severity,
		Description: fmt.Sprintf("Compliant clauses: %d/%d (%.0f%%)", exact+acceptable, total, ratio*100),
		Data: map[string]interface{}{
			"exact_match":             exact,
			"acceptable_modification": acceptable,
			"total":                   total,
			"ratio":                   ratio,
			"score":                   score,
			"formula":                 "round(100 * (exact_match + acceptable_modification) / total)",
		},
	}
}

// calculateMissingPenalty sums the severity weight of every missing clause
func (s *Scorer) calculateMissingPenalty(results []model.ClauseAnalysisResult) (int, model.Signal) {
	penalty := 0
	var keys []string
	bySeverity := map[string]int{}

	for _, r := range results {
		if r.Status != model.StatusMissing {
			continue
		}
		penalty += s.severity.Weight(r.Severity)
		keys = append(keys, r.Key)
		bySeverity[string(r.Severity)]++
	}

	if len(keys) == 0 {
		return 0, model.Signal{}
	}

	severity := model.SeverityWarning
	if bySeverity[string(model.SeverityHigh)] > 0 {
		severity = model.SeverityCritical
	}

	return penalty, model.Signal{
		Type:        model.SignalMissingClauses,
		Severity:    severity,
		Description: fmt.Sprintf("%d baseline clauses missing (penalty %d)", len(keys), penalty),
		Data: map[string]interface{}{
			"missing":     len(keys),
			"keys":        keys,
			"by_severity": bySeverity,
			"penalty":     penalty,
			"formula":     "sum(severity_weight(clause) for each missing clause)",
		},
	}
}

// detectDeviation reports clauses whose wording no known variation accepts
func (s *Scorer) detectDeviation(results []model.ClauseAnalysisResult) model.Signal {
	var keys []string
	for _, r := range results {
		if r.Status == model.StatusUnacceptableModification {
			keys = append(keys, r.Key)
		}
	}
	if len(keys) == 0 {
		return model.Signal{}
	}

	return model.Signal{
		Type:        model.SignalDeviation,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d clauses deviate from baseline and every known variation", len(keys)),
		Data: map[string]interface{}{
			"unacceptable_modification": len(keys),
			"keys":                      keys,
		},
	}
}

// detectUnmapped reports numbered document clauses the matrix does not know
func (s *Scorer) detectUnmapped(unmapped []string) model.Signal {
	if len(unmapped) == 0 {
		return model.Signal{}
	}
	return model.Signal{
		Type:        model.SignalUnmappedText,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%d numbered clauses in the document have no baseline", len(unmapped)),
		Data: map[string]interface{}{
			"keys": unmapped,
		},
	}
}

// determineConfidence reflects how much of the baseline the extractor located
// in the document; a low value usually means the numbering was not recognized
func (s *Scorer) determineConfidence(results []model.ClauseAnalysisResult) string {
	if len(results) == 0 {
		return "low"
	}

	found := 0
	for _, r := range results {
		if r.Status != model.StatusMissing {
			found++
		}
	}
	ratio := float64(found) / float64(len(results))

	if ratio >= 0.8 {
		return "high"
	} else if ratio >= 0.5 {
		return "medium"
	} else {
		return "low"
	}
}
