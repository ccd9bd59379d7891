package score

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Redline renders a word-level diff from found to suggested text, marking
// deletions as [-text-] and insertions as {+text+}
func Redline(found, suggested string) string {
	if found == suggested {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(splitWords(found), splitWords(suggested))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		text := strings.ReplaceAll(d.Text, "\n", " ")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + strings.TrimSpace(text) + "-] ")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + strings.TrimSpace(text) + "+} ")
		default:
			sb.WriteString(text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// splitWords puts one word per line so the line-mode diff works on words
func splitWords(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, "\n") + "\n"
}
