package score

import (
	"strings"
	"testing"

	"github.com/ppiankov/clausematrix/internal/matrix"
	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/tabular"
)

func testColumns() tabular.ColumnMap {
	return tabular.ColumnMap{
		Article:      "Article",
		ClauseNumber: "Clause",
		Title:        "Title",
		Baseline:     "Baseline",
		Parties:      []string{"Sony", "Acme"},
	}
}

func clauseRow(article, clause, title, baseline, sony, acme string) map[string]string {
	return map[string]string{
		"Article":  article,
		"Clause":   clause,
		"Title":    title,
		"Baseline": baseline,
		"Sony":     sony,
		"Acme":     acme,
	}
}

func sonyMatrix() *matrix.Matrix {
	return matrix.Build([]map[string]string{
		clauseRow("2", "1", "Services", "RHEI will provide services.", "RHEI shall provide services to Sony.", ""),
	}, testColumns())
}

func TestAnalyzer_SonyScenario(t *testing.T) {
	analyzer := NewAnalyzer(Options{})

	report, err := analyzer.Analyze("2.1 RHEI shall provide services to Sony.", sonyMatrix(), "Sony")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(report.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(report.Results))
	}
	r := report.Results[0]
	if r.Status != model.StatusAcceptableModification {
		t.Errorf("Expected acceptable_modification, got %s", r.Status)
	}
	if r.BestMatch == nil || r.BestMatch.Party != "Sony" {
		t.Fatalf("Expected best match from Sony, got %+v", r.BestMatch)
	}
	if r.BestMatch.Similarity != 1.0 {
		t.Errorf("Expected variation similarity 1.0, got %f", r.BestMatch.Similarity)
	}
	if report.Score.Index != 100 {
		t.Errorf("Expected score 100, got %d", report.Score.Index)
	}
	if report.ID == "" {
		t.Error("Expected report ID to be set")
	}
}

func TestAnalyzer_FoundSpanLocatesClauseWording(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "title and body over several lines",
			text: "2.1 Services\nVendor may subcontract\n  everything to anyone.\n",
			want: "Services\nVendor may subcontract\n  everything to anyone.",
		},
		{
			name: "body without the title scores closer",
			text: "2.1 Subcontracting\nRHEI will provide services remotely.\n",
			want: "RHEI will provide services remotely.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Analyze(tt.text, sonyMatrix(), "Sony")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			r := report.Results[0]
			if r.Status != model.StatusUnacceptableModification {
				t.Fatalf("Expected unacceptable_modification, got %s", r.Status)
			}
			if r.FoundSpan == nil {
				t.Fatal("Expected a found span")
			}
			got := tt.text[r.FoundSpan.Start:r.FoundSpan.End]
			if got != tt.want {
				t.Errorf("Expected span text %q, got %q", tt.want, got)
			}
			if strings.Join(strings.Fields(got), " ") != r.FoundText {
				t.Errorf("Span text %q does not hold found text %q", got, r.FoundText)
			}
		})
	}
}

func TestAnalyzer_ExactMatch(t *testing.T) {
	report, err := Analyze("2.1 RHEI will provide services.", sonyMatrix(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	r := report.Results[0]
	if r.Status != model.StatusExactMatch {
		t.Errorf("Expected exact_match, got %s", r.Status)
	}
	if r.Similarity != 1.0 {
		t.Errorf("Expected similarity 1.0, got %f", r.Similarity)
	}
	if r.BestMatch != nil {
		t.Errorf("Expected no best match for exact match, got %+v", r.BestMatch)
	}
}

func TestAnalyzer_TitleLineDoesNotHideExactMatch(t *testing.T) {
	text := "2.1 Services\nRHEI will provide services."

	report, err := Analyze(text, sonyMatrix(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Results[0].Status != model.StatusExactMatch {
		t.Errorf("Expected exact_match when the title sits on the numbering line, got %s", report.Results[0].Status)
	}
}

func TestAnalyzer_OtherPartyVariationAccepted(t *testing.T) {
	m := matrix.Build([]map[string]string{
		clauseRow("3", "1", "Fees", "Fees are due monthly in arrears.",
			"Fees are payable quarterly by wire transfer.",
			"Fees are payable annually in advance by cheque."),
	}, testColumns())

	report, err := Analyze("3.1 Fees are payable annually in advance by cheque.", m, "Sony")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	r := report.Results[0]
	if r.Status != model.StatusAcceptableModification {
		t.Fatalf("Expected acceptable_modification, got %s", r.Status)
	}
	if r.BestMatch.Party != "Acme" {
		t.Errorf("Expected Acme as best match, got %s", r.BestMatch.Party)
	}
}

func TestAnalyzer_UnacceptableQuotesTargetVariation(t *testing.T) {
	report, err := Analyze("2.1 Vendor may subcontract everything without notice.", sonyMatrix(), "Sony")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	r := report.Results[0]
	if r.Status != model.StatusUnacceptableModification {
		t.Fatalf("Expected unacceptable_modification, got %s", r.Status)
	}
	if r.Suggested != "RHEI shall provide services to Sony." {
		t.Errorf("Expected Sony's variation as suggestion, got %q", r.Suggested)
	}
	if !strings.Contains(r.Recommendation, "RHEI shall provide services to Sony.") {
		t.Errorf("Expected recommendation to quote the variation, got %q", r.Recommendation)
	}
	if r.Redline == "" {
		t.Error("Expected a redline for the replacement")
	}
	if report.Score.Index != 0 {
		t.Errorf("Expected score 0, got %d", report.Score.Index)
	}
}

func TestAnalyzer_UnacceptableQuotesBaselineWithoutTarget(t *testing.T) {
	report, err := Analyze("2.1 Vendor may subcontract everything without notice.", sonyMatrix(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	r := report.Results[0]
	if r.Suggested != "RHEI will provide services." {
		t.Errorf("Expected baseline as suggestion, got %q", r.Suggested)
	}
}

func TestAnalyzer_MissingClauses(t *testing.T) {
	m := matrix.Build([]map[string]string{
		clauseRow("1", "1", "Definitions", "Terms are defined below.", "", ""),
		clauseRow("1", "2", "Interpretation", "Headings are for convenience.", "", ""),
		clauseRow("2", "1", "Payment", "Fees are due monthly.", "", ""),
		clauseRow("2", "2", "Termination", "Either party may terminate.", "", ""),
		clauseRow("3", "1", "Liability", "Liability is capped.", "", ""),
	}, testColumns())

	report, err := Analyze("", m, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.Summary.Missing != 5 {
		t.Errorf("Expected 5 missing, got %d", report.Summary.Missing)
	}
	for _, r := range report.Results {
		if r.Status != model.StatusMissing {
			t.Errorf("Expected %s missing, got %s", r.Key, r.Status)
		}
	}
	if report.Score.Index != 0 {
		t.Errorf("Expected score floored at 0, got %d", report.Score.Index)
	}
	if report.Score.Confidence != "low" {
		t.Errorf("Expected low confidence, got %s", report.Score.Confidence)
	}

	var missingSignal *model.Signal
	for i := range report.Score.Signals {
		if report.Score.Signals[i].Type == model.SignalMissingClauses {
			missingSignal = &report.Score.Signals[i]
		}
	}
	if missingSignal == nil {
		t.Fatal("Expected a missing clauses signal")
	}
	// payment + termination high (15 each), liability medium (10), two low (5 each)
	if missingSignal.Data["penalty"] != 50 {
		t.Errorf("Expected penalty 50, got %v", missingSignal.Data["penalty"])
	}
	if missingSignal.Severity != model.SeverityCritical {
		t.Errorf("Expected critical severity with high clauses missing, got %s", missingSignal.Severity)
	}
}

func TestAnalyzer_PartialMissingPenalty(t *testing.T) {
	m := matrix.Build([]map[string]string{
		clauseRow("1", "1", "Scope", "RHEI will provide services.", "", ""),
		clauseRow("1", "2", "Notices", "Notices must be written.", "", ""),
	}, testColumns())

	report, err := Analyze("1.1 RHEI will provide services.", m, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// round(100 * 1/2) - 5 (low)
	if report.Score.Index != 45 {
		t.Errorf("Expected score 45, got %d", report.Score.Index)
	}
	if report.Score.Confidence != "medium" {
		t.Errorf("Expected medium confidence, got %s", report.Score.Confidence)
	}
}

func TestAnalyzer_EmptyMatrix(t *testing.T) {
	_, err := Analyze("1.1 Anything.", matrix.Build(nil, testColumns()), "")
	if !model.IsEmptyMatrix(err) {
		t.Errorf("Expected EmptyMatrixError, got %v", err)
	}

	_, err = Analyze("1.1 Anything.", nil, "")
	if !model.IsEmptyMatrix(err) {
		t.Errorf("Expected EmptyMatrixError for nil matrix, got %v", err)
	}
}

func TestAnalyzer_UnmappedSignal(t *testing.T) {
	report, err := Analyze("2.1 RHEI will provide services.\n9.9 An extra clause nobody negotiated.", sonyMatrix(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	found := false
	for _, s := range report.Score.Signals {
		if s.Type == model.SignalUnmappedText {
			found = true
			keys, _ := s.Data["keys"].([]string)
			if len(keys) != 1 || keys[0] != "9.9" {
				t.Errorf("Expected unmapped key 9.9, got %v", s.Data["keys"])
			}
		}
	}
	if !found {
		t.Error("Expected an unmapped text signal")
	}
}

func TestAnalyzer_CustomThresholds(t *testing.T) {
	cfg := model.DefaultConfig().Analysis
	cfg.ExactMatchThreshold = 0.5

	analyzer := NewAnalyzerFromConfig(cfg, nil)
	report, err := analyzer.Analyze("2.1 RHEI shall provide services to Sony.", sonyMatrix(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// 0.6 clears a 0.5 exact threshold
	if report.Results[0].Status != model.StatusExactMatch {
		t.Errorf("Expected exact_match with lowered threshold, got %s", report.Results[0].Status)
	}
}

func TestSeverityTable_Lookup(t *testing.T) {
	cfg := model.DefaultConfig().Analysis
	cfg.ClauseSeverity = map[string]string{"7.3": "high"}
	table := NewSeverityTable(cfg)

	tests := []struct {
		clause model.Clause
		want   model.Severity
	}{
		{model.Clause{Key: "7.3", Title: "Notices"}, model.SeverityHigh},
		{model.Clause{Key: "4.1", Title: "Revenue Share"}, model.SeverityHigh},
		{model.Clause{Key: "5.1", Title: "Limitation of Liability"}, model.SeverityMedium},
		{model.Clause{Key: "5.2", Title: "Liability on Termination"}, model.SeverityHigh},
		{model.Clause{Key: "6.1", Title: "Counterparts"}, model.SeverityLow},
	}
	for _, tt := range tests {
		if got := table.Severity(&tt.clause); got != tt.want {
			t.Errorf("Severity(%s %q) = %s, want %s", tt.clause.Key, tt.clause.Title, got, tt.want)
		}
	}

	if table.Weight(model.SeverityHigh) != 15 || table.Weight(model.SeverityMedium) != 10 || table.Weight(model.SeverityLow) != 5 {
		t.Error("Expected default weights 15/10/5")
	}
}

func TestScorer_Calculate_NoResults(t *testing.T) {
	result := NewScorer(nil).Calculate(nil, nil)

	if result.Index != 0 {
		t.Errorf("Expected index 0, got %d", result.Index)
	}
	if result.Confidence != "low" {
		t.Errorf("Expected low confidence, got %s", result.Confidence)
	}
	if len(result.Signals) != 1 || result.Signals[0].Severity != model.SeverityCritical {
		t.Errorf("Expected one critical signal, got %+v", result.Signals)
	}
}

func TestRedline(t *testing.T) {
	got := Redline("RHEI will do nothing", "RHEI will provide services")
	want := "RHEI will [-do nothing-] {+provide services+}"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if Redline("same text", "same text") != "" {
		t.Error("Expected empty redline for identical text")
	}
}
