package score

import (
	"sort"

	"github.com/ppiankov/clausematrix/internal/matrix"
	"github.com/ppiankov/clausematrix/internal/model"
)

// ReviewRevisions maps each tracked revision onto the document clause whose
// span contains its start offset. A clause spans from its numbering line to
// the next clause's numbering line.
func (a *Analyzer) ReviewRevisions(revisions []model.Revision, structure model.Structure, m *matrix.Matrix) []model.RevisionImpact {
	if len(revisions) == 0 {
		return nil
	}

	clauses := structure.Clauses()
	sort.SliceStable(clauses, func(i, j int) bool {
		return clauses[i].Offset < clauses[j].Offset
	})

	impacts := make([]model.RevisionImpact, 0, len(revisions))
	for _, rev := range revisions {
		impact := model.RevisionImpact{Revision: rev}

		idx := sort.Search(len(clauses), func(i int) bool {
			return clauses[i].Offset > rev.RangeStart
		}) - 1
		if idx >= 0 {
			key := clauses[idx].Key()
			impact.ClauseKey = key
			if m == nil {
				impacts = append(impacts, impact)
				continue
			}
			if clause, ok := m.Clause(key); ok {
				impact.InMatrix = true
				impact.Similarity = a.similarity.Similarity(rev.Text, clause.Baseline.Text)
			}
		}

		impacts = append(impacts, impact)
	}
	return impacts
}

// ReviewRevisions runs a default analyzer's revision review
func ReviewRevisions(revisions []model.Revision, structure model.Structure, m *matrix.Matrix) []model.RevisionImpact {
	return NewAnalyzer(Options{}).ReviewRevisions(revisions, structure, m)
}
