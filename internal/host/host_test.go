package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clausematrix/internal/model"
)

func fixedClock(h *TextHost) {
	h.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
}

func TestTextHost_FindRanges(t *testing.T) {
	ctx := context.Background()
	h := NewTextHost("Services. services. subservices.")

	ranges, err := h.FindRanges(ctx, "services", FindOptions{})
	require.NoError(t, err)
	assert.Len(t, ranges, 3)

	ranges, err = h.FindRanges(ctx, "services", FindOptions{MatchCase: true})
	require.NoError(t, err)
	assert.Equal(t, []Range{{Start: 10, End: 18}, {Start: 23, End: 31}}, ranges)

	ranges, err = h.FindRanges(ctx, "services", FindOptions{MatchWholeWord: true})
	require.NoError(t, err)
	assert.Equal(t, []Range{{Start: 0, End: 8}, {Start: 10, End: 18}}, ranges)

	ranges, err = h.FindRanges(ctx, "(1) fees.", FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, ranges, "metacharacters are literal")

	ranges, err = h.FindRanges(ctx, "", FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestTextHost_FindRangesIgnoreSpacing(t *testing.T) {
	ctx := context.Background()
	h := NewTextHost("2.1 Vendor may\n  subcontract (all) work.")

	ranges, err := h.FindRanges(ctx, "Vendor may subcontract (all) work.", FindOptions{IgnoreSpacing: true})
	require.NoError(t, err)
	assert.Equal(t, []Range{{Start: 4, End: 40}}, ranges)

	ranges, err = h.FindRanges(ctx, "Vendor may subcontract (all) work.", FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, ranges)

	ranges, err = h.FindRanges(ctx, " \n ", FindOptions{IgnoreSpacing: true})
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestTextHost_ReplaceRecordsRevisions(t *testing.T) {
	ctx := context.Background()
	h := NewTextHost("RHEI will provide services.")
	fixedClock(h)

	require.NoError(t, h.ReplaceRange(ctx, Range{Start: 5, End: 9}, "shall"))
	require.NoError(t, h.ReplaceRange(ctx, Range{Start: 0, End: 0}, "Vendor "))
	require.NoError(t, h.ReplaceRange(ctx, Range{Start: 0, End: 7}, ""))

	text, err := h.GetAllText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RHEI shall provide services.", text)

	revs, err := h.ListRevisions(ctx)
	require.NoError(t, err)
	require.Len(t, revs, 3)

	assert.Equal(t, model.Revision{
		Type: "replacement", Text: "shall", Author: DefaultAuthor,
		Date: "2024-03-01T12:00:00Z", RangeStart: 5, RangeEnd: 10,
	}, revs[0])
	assert.Equal(t, "insertion", revs[1].Type)
	assert.Equal(t, "deletion", revs[2].Type)
	assert.Equal(t, "Vendor ", revs[2].Text)
}

func TestTextHost_ReplaceOutOfBounds(t *testing.T) {
	h := NewTextHost("short")
	err := h.ReplaceRange(context.Background(), Range{Start: 2, End: 50}, "x")
	assert.Error(t, err)
	assert.False(t, model.IsHostUnavailable(err))
}

func TestTextHost_Detached(t *testing.T) {
	ctx := context.Background()
	h := NewTextHost("text")
	h.Detach()

	_, err := h.GetAllText(ctx)
	assert.True(t, model.IsHostUnavailable(err))
	_, err = h.FindRanges(ctx, "text", FindOptions{})
	assert.True(t, model.IsHostUnavailable(err))
	assert.True(t, model.IsHostUnavailable(h.ReplaceRange(ctx, Range{}, "x")))
	_, err = h.ListRevisions(ctx)
	assert.True(t, model.IsHostUnavailable(err))
}

func TestTextHost_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextHost("text").GetAllText(ctx)
	assert.True(t, model.IsHostUnavailable(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "contract.txt")
	require.NoError(t, os.WriteFile(txt, []byte("2.1 RHEI will provide services."), 0o644))
	h, err := OpenFile(txt)
	require.NoError(t, err)
	text, _ := h.GetAllText(context.Background())
	assert.Equal(t, "2.1 RHEI will provide services.", text)

	htmlPath := filepath.Join(dir, "contract.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html><body><p>2.1 RHEI will provide services.</p><script>x()</script></body></html>"), 0o644))
	h, err = OpenFile(htmlPath)
	require.NoError(t, err)
	text, _ = h.GetAllText(context.Background())
	assert.Equal(t, "2.1 RHEI will provide services.\n", text)

	_, err = OpenFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
