package model

import "time"

// AnalysisReport is the complete compliance report for one document
type AnalysisReport struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject,omitempty"`      // Document name, when known
	TargetParty string    `json:"target_party,omitempty"` // Counterparty whose variations are preferred
	AnalyzedAt  time.Time `json:"analyzed_at"`

	Results   []ClauseAnalysisResult `json:"results"`             // One per baseline clause, in key order
	Summary   StatusSummary          `json:"summary"`             // Counts per status
	Score     Score                  `json:"score"`               // Compliance index and scoring breakdown
	Revisions []RevisionImpact       `json:"revisions,omitempty"` // Tracked changes mapped onto clauses
}

// ClauseStatus is the terminal classification of a baseline clause
type ClauseStatus string

const (
	StatusExactMatch               ClauseStatus = "exact_match"
	StatusAcceptableModification   ClauseStatus = "acceptable_modification"
	StatusUnacceptableModification ClauseStatus = "unacceptable_modification"
	StatusMissing                  ClauseStatus = "missing"
)

// Compliant reports whether the status counts toward the compliance index
func (s ClauseStatus) Compliant() bool {
	return s == StatusExactMatch || s == StatusAcceptableModification
}

// ClauseAnalysisResult is the outcome for a single baseline clause
type ClauseAnalysisResult struct {
	Key            string       `json:"key"`
	Title          string       `json:"title,omitempty"`
	Status         ClauseStatus `json:"status"`
	Severity       Severity     `json:"severity"`
	Similarity     float64      `json:"similarity"` // Similarity of the found text to the baseline
	BestMatch      *Match       `json:"best_match,omitempty"`
	FoundText      string       `json:"found_text,omitempty"`
	FoundSpan      *Span        `json:"found_span,omitempty"` // Where FoundText sits in the analyzed text
	Recommendation string       `json:"recommendation,omitempty"`
	Suggested      string       `json:"suggested,omitempty"` // Replacement text quoted by the recommendation
	Redline        string       `json:"redline,omitempty"`   // Found text vs suggested replacement
}

// Match records which variation produced the best similarity
type Match struct {
	Party      string  `json:"party"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// StatusSummary counts results by status
type StatusSummary struct {
	Total                    int `json:"total"`
	ExactMatch               int `json:"exact_match"`
	AcceptableModification   int `json:"acceptable_modification"`
	UnacceptableModification int `json:"unacceptable_modification"`
	Missing                  int `json:"missing"`
}

// Add counts one result
func (s *StatusSummary) Add(status ClauseStatus) {
	s.Total++
	switch status {
	case StatusExactMatch:
		s.ExactMatch++
	case StatusAcceptableModification:
		s.AcceptableModification++
	case StatusUnacceptableModification:
		s.UnacceptableModification++
	case StatusMissing:
		s.Missing++
	}
}

// Score represents the transparent scoring breakdown
type Score struct {
	Index      int      `json:"index"`      // Compliance index (0-100)
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`    // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Formulas and inputs
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalCompliance     SignalType = "compliance"      // Compliant clauses over baseline clauses
	SignalMissingClauses SignalType = "missing_clauses" // Severity-weighted missing penalty
	SignalDeviation      SignalType = "deviation"       // Unacceptable modifications found
	SignalUnmappedText   SignalType = "unmapped_text"   // Numbered clauses with no baseline
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// RevisionImpact ties a tracked revision to the clause it falls in
type RevisionImpact struct {
	Revision   Revision `json:"revision"`
	ClauseKey  string   `json:"clause_key,omitempty"` // Empty when the revision is outside any clause
	InMatrix   bool     `json:"in_matrix"`
	Similarity float64  `json:"similarity"` // Revision text vs the clause baseline
}
