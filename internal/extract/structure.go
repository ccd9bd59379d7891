package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/clausematrix/internal/model"
)

var (
	clauseLine    = regexp.MustCompile(`^(\d+)\.(\d+)\.?\)?(?:\s+(.*))?$`)
	subClauseLine = regexp.MustCompile(`^(\d+)\.(\d+)\.\d+`)
	articleLine   = regexp.MustCompile(`(?i)^(?:ARTICLE\s+)?(\d+)(?:\.|\s|$)`)
)

// minNoiseLength is the length a stray line outside any clause must exceed
// before it is considered text rather than noise
const minNoiseLength = 10

// StructureExtractor splits document text into articles and numbered clauses.
// It is best-effort: arbitrary prose will not always yield a clean outline.
type StructureExtractor struct{}

// NewStructureExtractor creates a new structure extractor
func NewStructureExtractor() *StructureExtractor {
	return &StructureExtractor{}
}

// Extract scans the text line by line. Each clause records the byte spans of
// its wording so callers can edit the source text in place.
func (e *StructureExtractor) Extract(text string) model.Structure {
	var s model.Structure
	var article *model.Article
	var clause *model.ExtractedClause
	var content []string
	hasBody, hasContent := false, false

	openClause := func(articleNumber, clauseNumber string, offset int) {
		clause = &model.ExtractedClause{
			ArticleNumber: articleNumber,
			ClauseNumber:  clauseNumber,
			Offset:        offset,
		}
		hasBody, hasContent = false, false
	}

	addContent := func(line string, start int) {
		content = append(content, line)
		if !hasContent {
			clause.ContentStart = start
			hasContent = true
		}
		if !hasBody {
			clause.BodyStart = start
			hasBody = true
		}
		clause.End = start + len(line)
	}

	closeClause := func() {
		if clause == nil {
			return
		}
		clause.Content = strings.Join(content, " ")
		if !hasContent {
			clause.ContentStart = clause.End
		}
		if !hasBody {
			clause.BodyStart = clause.End
		}
		if article == nil || (article.Number != "" && article.Number != clause.ArticleNumber) {
			s.Articles = append(s.Articles, model.Article{Number: clause.ArticleNumber})
			article = &s.Articles[len(s.Articles)-1]
		}
		article.Clauses = append(article.Clauses, *clause)
		clause = nil
		content = nil
	}

	offset := 0
	for _, raw := range strings.Split(text, "\n") {
		lineStart := offset
		offset += len(raw) + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		// Byte offset of the trimmed line in text
		start := lineStart + strings.Index(raw, line)

		// Deeper numbering ("2.1.1") belongs to clause 2.1; it would otherwise
		// satisfy the article pattern
		if m := subClauseLine.FindStringSubmatch(line); m != nil {
			if clause == nil || clause.ArticleNumber != m[1] || clause.ClauseNumber != m[2] {
				closeClause()
				openClause(m[1], m[2], lineStart)
				clause.End = start
			}
			addContent(line, start)
			continue
		}

		// Clause numbering is checked first: "2.1 ..." also satisfies the article pattern
		if m := clauseLine.FindStringSubmatchIndex(line); m != nil {
			closeClause()
			openClause(line[m[2]:m[3]], line[m[4]:m[5]], lineStart)
			clause.End = start + len(line)
			if m[6] >= 0 {
				clause.Title = strings.TrimSpace(line[m[6]:m[7]])
				clause.BodyStart = start + m[6]
				hasBody = clause.Title != ""
			}
			continue
		}

		if number, title, ok := matchArticle(line); ok {
			closeClause()
			s.Articles = append(s.Articles, model.Article{Number: number, Title: title})
			article = &s.Articles[len(s.Articles)-1]
			continue
		}

		if clause != nil {
			addContent(line, start)
			continue
		}

		// Outside any clause: short lines are noise; a longer line right under
		// a bare "ARTICLE n" heading is taken as that article's title
		if len(line) <= minNoiseLength {
			continue
		}
		if article != nil && article.Title == "" && len(article.Clauses) == 0 {
			article.Title = line
		}
	}
	closeClause()

	return s
}

// matchArticle recognizes "ARTICLE 3 ...", "3. ..." and all-caps heading lines
func matchArticle(line string) (string, string, bool) {
	if m := articleLine.FindStringSubmatchIndex(line); m != nil {
		number := line[m[2]:m[3]]
		title := strings.TrimSpace(strings.TrimLeft(line[m[1]:], ".-–—: "))
		return number, title, true
	}
	if isHeading(line) {
		return "", line, true
	}
	return "", "", false
}

// isHeading reports whether a line is 3+ characters with letters, all upper-case
func isHeading(line string) bool {
	if len([]rune(line)) < 3 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// Extract runs a default extractor over the text
func Extract(text string) model.Structure {
	return NewStructureExtractor().Extract(text)
}
