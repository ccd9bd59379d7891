// Package generate assembles a full contract from the baseline clauses of a
// clause matrix.
package generate

import (
	"sort"
	"strings"

	"github.com/ppiankov/clausematrix/internal/matrix"
	"github.com/ppiankov/clausematrix/internal/model"
)

// Variable names accepted by the default placeholder set
const (
	VarCompanyName      = "company_name"
	VarCounterpartyName = "counterparty_name"
	VarAddress          = "address"
	VarDate             = "date"
)

// Generator emits contract text. Placeholders are replaced literally; tokens
// without a supplied variable are left as-is.
type Generator struct {
	header       string
	footer       string
	placeholders map[string]string // variable name -> token
}

// NewGenerator creates a generator from config
func NewGenerator(cfg model.GeneratorConfig) *Generator {
	g := &Generator{
		header:       cfg.Header,
		footer:       cfg.Footer,
		placeholders: cfg.Placeholders,
	}
	if g.placeholders == nil {
		g.placeholders = model.DefaultConfig().Generator.Placeholders
	}
	return g
}

// Generate writes the header, every clause in key order grouped under one
// heading per article, and the footer. An empty matrix yields header and
// footer only.
func (g *Generator) Generate(m *matrix.Matrix, variables map[string]string) string {
	var sb strings.Builder
	sb.WriteString(g.substitute(g.header, variables))

	if m.Len() > 0 {
		currentArticle := ""
		for _, clause := range m.Clauses() {
			if clause.Article != currentArticle {
				currentArticle = clause.Article
				sb.WriteString("ARTICLE " + currentArticle + "\n\n")
			}
			sb.WriteString(clause.Article + " " + clause.ClauseNumber + "\n")
			sb.WriteString(g.substitute(clause.Baseline.Text, variables))
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString(g.substitute(g.footer, variables))
	return sb.String()
}

// substitute replaces each configured token whose variable was supplied.
// Names are visited in sorted order so output never depends on map order.
func (g *Generator) substitute(text string, variables map[string]string) string {
	if text == "" || len(variables) == 0 {
		return text
	}

	names := make([]string, 0, len(g.placeholders))
	for name := range g.placeholders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := variables[name]
		if !ok {
			continue
		}
		token := g.placeholders[name]
		if token == "" {
			continue
		}
		text = strings.ReplaceAll(text, token, value)
	}
	return text
}

// Generate runs a generator built from the default config
func Generate(m *matrix.Matrix, variables map[string]string) string {
	return NewGenerator(model.DefaultConfig().Generator).Generate(m, variables)
}
