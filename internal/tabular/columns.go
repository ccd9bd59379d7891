package tabular

import (
	"strings"

	"github.com/ppiankov/clausematrix/internal/model"
)

// fallbackBaselineIndex is the fixed column holding baseline text in the
// standard matrix template when header names do not identify it
const fallbackBaselineIndex = 6

// ColumnMap names which headers carry clause identity and text
type ColumnMap struct {
	Article      string   `json:"article,omitempty"`
	ClauseNumber string   `json:"clause_number,omitempty"`
	Title        string   `json:"title,omitempty"`
	Baseline     string   `json:"baseline,omitempty"`
	Notes        []string `json:"notes,omitempty"`
	Parties      []string `json:"parties,omitempty"` // Remaining columns, in header order
}

// ResolveColumns locates identifier columns by case-insensitive substring match.
// tier is the row above the header row, if any.
func ResolveColumns(headers []string, tier []string, fragments model.ColumnsConfig) (ColumnMap, error) {
	used := make(map[int]bool)
	var cm ColumnMap

	pick := func(frags []string) string {
		for _, frag := range frags {
			frag = strings.ToLower(strings.TrimSpace(frag))
			if frag == "" {
				continue
			}
			for i, h := range headers {
				if used[i] || h == "" {
					continue
				}
				if strings.Contains(strings.ToLower(h), frag) {
					used[i] = true
					return h
				}
			}
		}
		return ""
	}

	// Most specific first so "Clause Title" is not taken as the article or number
	cm.ClauseNumber = pick(fragments.ClauseNumber)
	cm.Title = pick(fragments.Title)
	cm.Article = pick(fragments.Article)
	cm.Baseline = pick(fragments.Baseline)

	if cm.Baseline == "" && len(headers) > fallbackBaselineIndex && !used[fallbackBaselineIndex] {
		marker := headers[fallbackBaselineIndex]
		if len(tier) > fallbackBaselineIndex {
			marker += " " + tier[fallbackBaselineIndex]
		}
		if strings.Contains(strings.ToUpper(marker), "BASELINE") && headers[fallbackBaselineIndex] != "" {
			cm.Baseline = headers[fallbackBaselineIndex]
			used[fallbackBaselineIndex] = true
		}
	}

	if cm.Article == "" && cm.ClauseNumber == "" && cm.Baseline == "" {
		return ColumnMap{}, &model.FormatError{Reason: "no article, clause number or baseline column found in headers"}
	}

	for i, h := range headers {
		if used[i] || h == "" {
			continue
		}
		if matchesAny(h, fragments.Notes) {
			cm.Notes = append(cm.Notes, h)
			continue
		}
		cm.Parties = append(cm.Parties, h)
	}

	return cm, nil
}

// HasIdentifier reports whether a row carries a value in any identifier column
func (cm ColumnMap) HasIdentifier(row map[string]string) bool {
	for _, col := range []string{cm.Article, cm.ClauseNumber, cm.Baseline} {
		if col != "" && row[col] != "" {
			return true
		}
	}
	return false
}

func matchesAny(header string, fragments []string) bool {
	lower := strings.ToLower(header)
	for _, frag := range fragments {
		frag = strings.ToLower(strings.TrimSpace(frag))
		if frag != "" && strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
