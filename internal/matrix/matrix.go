// Package matrix organizes parsed clause tables into a read-only clause store.
package matrix

import (
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/tabular"
)

// unchangedMarks are cell values that mean "same as baseline"
var unchangedMarks = []string{"✓", "✔", "✅"}

// Matrix is an immutable clause store built from one load
type Matrix struct {
	clauses  map[string]*model.Clause
	keys     []string // Sorted numerically by article then clause number
	parties  []string
	articles []string
	columns  tabular.ColumnMap
}

// Build organizes parsed rows into a clause matrix. Duplicate keys are
// last-write-wins; rows without an article or clause number are skipped.
func Build(rows []map[string]string, columns tabular.ColumnMap) *Matrix {
	m := &Matrix{
		clauses: make(map[string]*model.Clause),
		columns: columns,
	}

	partySeen := make(map[string]bool)
	for _, row := range rows {
		article := strings.TrimSpace(row[columns.Article])
		number := strings.TrimSpace(row[columns.ClauseNumber])
		if columns.Article == "" || columns.ClauseNumber == "" || article == "" || number == "" {
			continue
		}

		clause := &model.Clause{
			Key:          article + "." + number,
			Article:      article,
			ClauseNumber: number,
			Title:        row[columns.Title],
			Baseline: model.Baseline{
				Text:   row[columns.Baseline],
				Source: columns.Baseline,
			},
			Variations: make(map[string]model.Variation),
		}

		for _, party := range columns.Parties {
			raw, ok := row[party]
			if !ok {
				continue
			}
			if !partySeen[party] {
				partySeen[party] = true
				m.parties = append(m.parties, party)
			}
			if raw == "" {
				continue
			}
			clause.Variations[party] = ClassifyVariation(raw)
		}

		clause.AcceptableModifications = acceptableModifications(clause, columns.Parties)
		m.clauses[clause.Key] = clause
	}

	m.keys = make([]string, 0, len(m.clauses))
	articleSeen := make(map[string]bool)
	for key, c := range m.clauses {
		m.keys = append(m.keys, key)
		if !articleSeen[c.Article] {
			articleSeen[c.Article] = true
			m.articles = append(m.articles, c.Article)
		}
	}
	SortKeys(m.keys)
	sort.Slice(m.articles, func(i, j int) bool {
		return lessNumeric(m.articles[i], m.articles[j])
	})

	return m
}

// FromTable builds a matrix from a parsed table
func FromTable(t *tabular.Table) *Matrix {
	return Build(t.Rows, t.Columns)
}

// ClassifyVariation decides whether a party cell keeps or replaces the baseline
func ClassifyVariation(raw string) model.Variation {
	trimmed := strings.TrimSpace(raw)
	v := model.Variation{RawValue: raw}

	for _, mark := range unchangedMarks {
		if trimmed == mark {
			v.IsUnchanged = true
			return v
		}
	}
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "matched") || strings.Contains(lower, "same") {
		v.IsUnchanged = true
		return v
	}

	v.Modification = trimmed
	return v
}

// acceptableModifications collects changed variations in header order
func acceptableModifications(c *model.Clause, parties []string) []model.Modification {
	var mods []model.Modification
	for _, party := range parties {
		v, ok := c.Variations[party]
		if !ok || v.IsUnchanged || v.Modification == "" {
			continue
		}
		mods = append(mods, model.Modification{Party: party, Modification: v.Modification})
	}
	return mods
}

// Clause looks up a clause by key; a miss is a normal outcome. The result is
// a copy the caller may modify.
func (m *Matrix) Clause(key string) (*model.Clause, bool) {
	if m == nil {
		return nil, false
	}
	c, ok := m.clauses[key]
	if !ok {
		return nil, false
	}
	return cloneClause(c), true
}

// Keys returns every clause key in numeric article/clause order
func (m *Matrix) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Clauses returns copies of every clause in key order
func (m *Matrix) Clauses() []*model.Clause {
	out := make([]*model.Clause, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, cloneClause(m.clauses[k]))
	}
	return out
}

func cloneClause(c *model.Clause) *model.Clause {
	out := *c
	out.Variations = maps.Clone(c.Variations)
	out.AcceptableModifications = slices.Clone(c.AcceptableModifications)
	return &out
}

// PartyNames returns every variation column seen, in header order
func (m *Matrix) PartyNames() []string {
	out := make([]string, len(m.parties))
	copy(out, m.parties)
	return out
}

// ArticleNumbers returns the distinct article numbers in numeric order
func (m *Matrix) ArticleNumbers() []string {
	out := make([]string, len(m.articles))
	copy(out, m.articles)
	return out
}

// AcceptableModifications returns the changed variations recorded for a clause
func (m *Matrix) AcceptableModifications(key string) []model.Modification {
	c, ok := m.clauses[key]
	if !ok {
		return nil
	}
	return slices.Clone(c.AcceptableModifications)
}

// Columns returns the column map the matrix was built from
func (m *Matrix) Columns() tabular.ColumnMap {
	return m.columns
}

// Export returns the matrix as header-keyed rows in key order, using the
// source column names. Party cells carry their raw values.
func (m *Matrix) Export() ([]string, []map[string]string) {
	if m.Len() == 0 {
		return nil, nil
	}

	cols := m.columns
	headers := []string{cols.Article, cols.ClauseNumber}
	if cols.Title != "" {
		headers = append(headers, cols.Title)
	}
	baseline := cols.Baseline
	if baseline == "" {
		baseline = "Baseline"
	}
	headers = append(headers, baseline)
	headers = append(headers, m.parties...)

	rows := make([]map[string]string, 0, len(m.keys))
	for _, key := range m.keys {
		c := m.clauses[key]
		row := map[string]string{
			cols.Article:      c.Article,
			cols.ClauseNumber: c.ClauseNumber,
			baseline:          c.Baseline.Text,
		}
		if cols.Title != "" {
			row[cols.Title] = c.Title
		}
		for _, party := range m.parties {
			row[party] = c.Variations[party].RawValue
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// Len returns the number of clauses
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.clauses)
}

// SortKeys sorts "<article>.<clause>" keys numerically, so 1.9 precedes 1.10
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ai, ci := splitKey(keys[i])
		aj, cj := splitKey(keys[j])
		if ai != aj {
			return lessNumeric(ai, aj)
		}
		return lessNumeric(ci, cj)
	})
}

func splitKey(key string) (string, string) {
	article, clause, _ := strings.Cut(key, ".")
	return article, clause
}

// lessNumeric orders numeric strings by value and falls back to lexical order
func lessNumeric(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
