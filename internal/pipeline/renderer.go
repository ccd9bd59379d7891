package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/clausematrix/internal/model"
)

// Renderer writes analysis reports as JSON, Markdown and console summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// JSON returns the indented JSON encoding of the report
func (r *Renderer) JSON(report *model.AnalysisReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(report *model.AnalysisReport, path string) error {
	data, err := r.JSON(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(report)), 0644)
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.AnalysisReport) string {
	var sb strings.Builder

	title := "Clause Compliance Report"
	if report.Subject != "" {
		title += ": " + report.Subject
	}
	sb.WriteString("# " + title + "\n\n")

	fmt.Fprintf(&sb, "**Compliance index:** %d/100 (confidence: %s)\n\n", report.Score.Index, report.Score.Confidence)
	if report.TargetParty != "" {
		fmt.Fprintf(&sb, "**Target party:** %s\n\n", report.TargetParty)
	}

	s := report.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Status | Count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Exact match | %d |\n", s.ExactMatch)
	fmt.Fprintf(&sb, "| Acceptable modification | %d |\n", s.AcceptableModification)
	fmt.Fprintf(&sb, "| Unacceptable modification | %d |\n", s.UnacceptableModification)
	fmt.Fprintf(&sb, "| Missing | %d |\n", s.Missing)
	fmt.Fprintf(&sb, "| **Total** | %d |\n\n", s.Total)

	sb.WriteString("## Signals\n\n")
	for _, sig := range report.Score.Signals {
		fmt.Fprintf(&sb, "- **%s** (%s): %s", sig.Type, sig.Severity, sig.Description)
		if formula, ok := sig.Data["formula"].(string); ok {
			fmt.Fprintf(&sb, " `%s`", formula)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Clauses\n\n")
	sb.WriteString("| Key | Title | Status | Severity | Similarity | Best match |\n|---|---|---|---|---|---|\n")
	for _, res := range report.Results {
		best := ""
		if res.BestMatch != nil {
			best = fmt.Sprintf("%s (%.2f)", res.BestMatch.Party, res.BestMatch.Similarity)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %.2f | %s |\n",
			res.Key, escapeCell(res.Title), res.Status, res.Severity, res.Similarity, escapeCell(best))
	}
	sb.WriteString("\n")

	var recs []model.ClauseAnalysisResult
	for _, res := range report.Results {
		if res.Recommendation != "" {
			recs = append(recs, res)
		}
	}
	if len(recs) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for _, res := range recs {
			fmt.Fprintf(&sb, "### %s %s\n\n%s\n\n", res.Key, res.Title, res.Recommendation)
			if res.Redline != "" {
				fmt.Fprintf(&sb, "```diff\n%s\n```\n\n", res.Redline)
			}
		}
	}

	if len(report.Revisions) > 0 {
		sb.WriteString("## Tracked revisions\n\n")
		sb.WriteString("| Type | Author | Clause | In matrix | Similarity |\n|---|---|---|---|---|\n")
		for _, rev := range report.Revisions {
			fmt.Fprintf(&sb, "| %s | %s | %s | %t | %.2f |\n",
				rev.Revision.Type, escapeCell(rev.Revision.Author), rev.ClauseKey, rev.InMatrix, rev.Similarity)
		}
		sb.WriteString("\n")
	}

	if r.includeFooter {
		sb.WriteString("---\n\n")
		sb.WriteString("_Similarity is word overlap only. The index reports how closely the document follows the clause matrix; it is not legal advice._\n")
	}

	return sb.String()
}

// RenderSummary prints a short console summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.AnalysisReport) {
	s := report.Summary
	_, _ = fmt.Fprintf(w, "Compliance index: %d/100 (%s confidence)\n", report.Score.Index, report.Score.Confidence)
	_, _ = fmt.Fprintf(w, "  exact: %d  acceptable: %d  unacceptable: %d  missing: %d  (of %d)\n",
		s.ExactMatch, s.AcceptableModification, s.UnacceptableModification, s.Missing, s.Total)
	for _, res := range report.Results {
		if res.Status == model.StatusUnacceptableModification || res.Status == model.StatusMissing {
			_, _ = fmt.Fprintf(w, "  ! %s %s: %s\n", res.Key, res.Title, res.Status)
		}
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
