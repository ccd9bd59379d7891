package score

import (
	"sort"
	"strings"

	"github.com/ppiankov/clausematrix/internal/model"
)

// SeverityTable assigns a severity to each baseline clause and a penalty weight
// to each severity. It is data, loaded from configuration.
type SeverityTable struct {
	byKey    map[string]model.Severity
	byTitle  []titleRule
	fallback model.Severity
	weights  map[model.Severity]int
}

type titleRule struct {
	fragment string
	severity model.Severity
}

var severityRank = map[model.Severity]int{
	model.SeverityHigh:   3,
	model.SeverityMedium: 2,
	model.SeverityLow:    1,
}

// NewSeverityTable builds a table from the analysis config
func NewSeverityTable(cfg model.AnalysisConfig) *SeverityTable {
	t := &SeverityTable{
		byKey:    make(map[string]model.Severity, len(cfg.ClauseSeverity)),
		fallback: model.ParseSeverity(cfg.DefaultSeverity),
		weights: map[model.Severity]int{
			model.SeverityHigh:   15,
			model.SeverityMedium: 10,
			model.SeverityLow:    5,
		},
	}

	for key, sev := range cfg.ClauseSeverity {
		t.byKey[strings.TrimSpace(key)] = model.ParseSeverity(sev)
	}
	for fragment, sev := range cfg.TitleSeverity {
		fragment = strings.ToLower(strings.TrimSpace(fragment))
		if fragment == "" {
			continue
		}
		t.byTitle = append(t.byTitle, titleRule{fragment: fragment, severity: model.ParseSeverity(sev)})
	}
	// Most severe rule wins when several fragments match
	sort.Slice(t.byTitle, func(i, j int) bool {
		ri, rj := severityRank[t.byTitle[i].severity], severityRank[t.byTitle[j].severity]
		if ri != rj {
			return ri > rj
		}
		return t.byTitle[i].fragment < t.byTitle[j].fragment
	})

	for sev, weight := range cfg.SeverityWeights {
		t.weights[model.ParseSeverity(sev)] = weight
	}

	return t
}

// DefaultSeverityTable returns the table built from the default config
func DefaultSeverityTable() *SeverityTable {
	return NewSeverityTable(model.DefaultConfig().Analysis)
}

// Severity returns the severity for a clause: explicit key entry first, then
// title fragments, then the default
func (t *SeverityTable) Severity(c *model.Clause) model.Severity {
	if sev, ok := t.byKey[c.Key]; ok {
		return sev
	}
	title := strings.ToLower(c.Title)
	for _, rule := range t.byTitle {
		if strings.Contains(title, rule.fragment) {
			return rule.severity
		}
	}
	return t.fallback
}

// Weight returns the missing-clause penalty for a severity
func (t *SeverityTable) Weight(sev model.Severity) int {
	return t.weights[sev]
}
