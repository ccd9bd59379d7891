package host

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/model"
)

// Path names how a recommendation was written into the document
type Path string

const (
	// PathReplaced means the found clause text was located and replaced in place
	PathReplaced Path = "replaced"
	// PathAppendAtEnd means the found text could not be located and the
	// recommendation was inserted at the end of the document instead
	PathAppendAtEnd Path = "append_at_end"
)

// Applied records one recommendation written into the document
type Applied struct {
	Key   string `json:"key"`
	Path  Path   `json:"path"`
	Range Range  `json:"range"` // Span the new text occupies after the edit
}

// Applier writes unacceptable-modification recommendations back into a host
type Applier struct {
	find   FindOptions
	logger *zap.Logger
}

// NewApplier creates an applier; nil logger means no logging
func NewApplier(logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{
		find:   FindOptions{MatchCase: true, IgnoreSpacing: true},
		logger: logger,
	}
}

// edit is one change already made during an Apply run
type edit struct {
	end   int // End of the replaced range, before the edit
	delta int // Length change the edit caused
}

// Apply replaces each unacceptable clause's found text with its suggested
// wording. The recorded clause span is used when it still holds the found
// text; otherwise the text is searched for, and as a last resort the
// recommendation is appended. The first error stops the run; edits already
// made stay in place.
func (a *Applier) Apply(ctx context.Context, h Host, report *model.AnalysisReport) ([]Applied, error) {
	var applied []Applied
	var edits []edit

	for _, r := range report.Results {
		if r.Status != model.StatusUnacceptableModification || r.Suggested == "" {
			continue
		}

		target, ok, err := a.locate(ctx, h, r, edits)
		if err != nil {
			return applied, fmt.Errorf("find clause %s: %w", r.Key, err)
		}

		if ok {
			if err := h.ReplaceRange(ctx, target, r.Suggested); err != nil {
				return applied, fmt.Errorf("replace clause %s: %w", r.Key, err)
			}
			edits = append(edits, edit{end: target.End, delta: len(r.Suggested) - (target.End - target.Start)})
			applied = append(applied, Applied{
				Key:   r.Key,
				Path:  PathReplaced,
				Range: Range{Start: target.Start, End: target.Start + len(r.Suggested)},
			})
			a.logger.Debug("recommendation applied", zap.String("key", r.Key), zap.String("path", string(PathReplaced)))
			continue
		}

		span, err := a.AppendAtEnd(ctx, h, r.Suggested)
		if err != nil {
			return applied, fmt.Errorf("append clause %s: %w", r.Key, err)
		}
		applied = append(applied, Applied{Key: r.Key, Path: PathAppendAtEnd, Range: span})
		a.logger.Info("clause text not found, appended recommendation at end of document",
			zap.String("key", r.Key))
	}

	return applied, nil
}

// locate finds the range holding a result's found text
func (a *Applier) locate(ctx context.Context, h Host, r model.ClauseAnalysisResult, edits []edit) (Range, bool, error) {
	if r.FoundText == "" {
		return Range{}, false, nil
	}

	if r.FoundSpan != nil {
		doc, err := h.GetAllText(ctx)
		if err != nil {
			return Range{}, false, err
		}
		span := shift(Range{Start: r.FoundSpan.Start, End: r.FoundSpan.End}, edits)
		if span.Start >= 0 && span.Start < span.End && span.End <= len(doc) &&
			sameWords(doc[span.Start:span.End], r.FoundText) {
			return span, true, nil
		}
	}

	ranges, err := h.FindRanges(ctx, r.FoundText, a.find)
	if err != nil {
		return Range{}, false, err
	}
	if len(ranges) == 0 {
		return Range{}, false, nil
	}
	return ranges[0], true, nil
}

// shift moves a range recorded before the run past the edits made since
func shift(r Range, edits []edit) Range {
	for _, e := range edits {
		if e.end <= r.Start {
			r.Start += e.delta
			r.End += e.delta
		}
	}
	return r
}

func sameWords(a, b string) bool {
	return strings.Join(strings.Fields(a), " ") == strings.Join(strings.Fields(b), " ")
}

// AppendAtEnd inserts text as a new paragraph after the last character of the document
func (a *Applier) AppendAtEnd(ctx context.Context, h Host, text string) (Range, error) {
	doc, err := h.GetAllText(ctx)
	if err != nil {
		return Range{}, err
	}

	insert := text
	if doc != "" {
		insert = "\n" + text
	}
	end := len(doc)
	if err := h.ReplaceRange(ctx, Range{Start: end, End: end}, insert); err != nil {
		return Range{}, err
	}
	return Range{Start: end + len(insert) - len(text), End: end + len(insert)}, nil
}
