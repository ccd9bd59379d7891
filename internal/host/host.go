// Package host defines the document host capability the analyzer consumes and
// an in-memory implementation backed by plain text.
package host

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/clausematrix/internal/model"
)

// Range is a half-open byte span [Start, End) of the document text
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FindOptions controls FindRanges matching
type FindOptions struct {
	MatchCase      bool `json:"match_case"`
	MatchWholeWord bool `json:"match_whole_word"`
	// Any run of whitespace in search matches any run in the document,
	// line breaks included
	IgnoreSpacing bool `json:"ignore_spacing"`
}

// Host is the set of document operations the core relies on
type Host interface {
	GetAllText(ctx context.Context) (string, error)
	FindRanges(ctx context.Context, search string, opts FindOptions) ([]Range, error)
	ReplaceRange(ctx context.Context, r Range, text string) error
	ListRevisions(ctx context.Context) ([]model.Revision, error)
}

// DefaultAuthor is recorded on revisions made through a TextHost
const DefaultAuthor = "clausematrix"

// TextHost holds a document in memory and tracks every replacement as a revision
type TextHost struct {
	mu        sync.Mutex
	text      string
	revisions []model.Revision
	author    string
	detached  bool
	now       func() time.Time
}

// NewTextHost creates a host over the given text
func NewTextHost(text string) *TextHost {
	return &TextHost{
		text:   text,
		author: DefaultAuthor,
		now:    time.Now,
	}
}

// SetAuthor changes the author recorded on subsequent revisions
func (h *TextHost) SetAuthor(author string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.author = author
}

// Detach disconnects the host; every later call fails with HostUnavailableError
func (h *TextHost) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detached = true
}

// GetAllText returns the full document text
func (h *TextHost) GetAllText(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(ctx, "get text"); err != nil {
		return "", err
	}
	return h.text, nil
}

// FindRanges returns every non-overlapping occurrence of search
func (h *TextHost) FindRanges(ctx context.Context, search string, opts FindOptions) ([]Range, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(ctx, "find"); err != nil {
		return nil, err
	}
	if search == "" {
		return nil, nil
	}

	pattern := regexp.QuoteMeta(search)
	if opts.IgnoreSpacing {
		words := strings.Fields(search)
		if len(words) == 0 {
			return nil, nil
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		pattern = strings.Join(words, `\s+`)
	}
	if opts.MatchWholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !opts.MatchCase {
		pattern = `(?i)` + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile search: %w", err)
	}

	var ranges []Range
	for _, loc := range re.FindAllStringIndex(h.text, -1) {
		ranges = append(ranges, Range{Start: loc[0], End: loc[1]})
	}
	return ranges, nil
}

// ReplaceRange swaps the span for text and records a tracked revision.
// An empty range inserts; empty text deletes.
func (h *TextHost) ReplaceRange(ctx context.Context, r Range, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(ctx, "replace"); err != nil {
		return err
	}
	if r.Start < 0 || r.End < r.Start || r.End > len(h.text) {
		return fmt.Errorf("range %d-%d outside document of length %d", r.Start, r.End, len(h.text))
	}

	rev := model.Revision{
		Author:     h.author,
		Date:       h.now().UTC().Format(time.RFC3339),
		RangeStart: r.Start,
	}
	switch {
	case r.Start == r.End:
		rev.Type = "insertion"
		rev.Text = text
		rev.RangeEnd = r.Start + len(text)
	case text == "":
		rev.Type = "deletion"
		rev.Text = h.text[r.Start:r.End]
		rev.RangeEnd = r.Start
	default:
		rev.Type = "replacement"
		rev.Text = text
		rev.RangeEnd = r.Start + len(text)
	}

	h.text = h.text[:r.Start] + text + h.text[r.End:]
	h.revisions = append(h.revisions, rev)
	return nil
}

// ListRevisions returns the tracked revisions in the order they were made
func (h *TextHost) ListRevisions(ctx context.Context) ([]model.Revision, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(ctx, "list revisions"); err != nil {
		return nil, err
	}
	out := make([]model.Revision, len(h.revisions))
	copy(out, h.revisions)
	return out, nil
}

func (h *TextHost) check(ctx context.Context, op string) error {
	if h.detached {
		return &model.HostUnavailableError{Op: op}
	}
	if err := ctx.Err(); err != nil {
		return &model.HostUnavailableError{Op: op, Err: err}
	}
	return nil
}
