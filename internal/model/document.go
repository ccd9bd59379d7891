package model

// Structure is the article/clause outline recovered from document text
type Structure struct {
	Articles []Article `json:"articles"`
}

// Article groups the clauses found under one article heading
type Article struct {
	Number  string            `json:"number"`
	Title   string            `json:"title,omitempty"`
	Clauses []ExtractedClause `json:"clauses"`
}

// ExtractedClause is a numbered clause found in a live document
type ExtractedClause struct {
	ArticleNumber string `json:"article_number"`
	ClauseNumber  string `json:"clause_number"`
	Title         string `json:"title,omitempty"`
	Content       string `json:"content"`
	Offset        int    `json:"offset"`        // Byte offset of the numbering line in the source text
	BodyStart     int    `json:"body_start"`    // Start of the title fragment, or of the content when there is none
	ContentStart  int    `json:"content_start"` // Start of the first content line
	End           int    `json:"end"`           // Just past the last character of the clause
}

// Span is a half-open byte range in document text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Span returns where Text (withTitle) or Content alone sits in the source text
func (c ExtractedClause) Span(withTitle bool) Span {
	if withTitle {
		return Span{Start: c.BodyStart, End: c.End}
	}
	return Span{Start: c.ContentStart, End: c.End}
}

// Key returns the matrix key this clause would be stored under
func (c ExtractedClause) Key() string {
	return c.ArticleNumber + "." + c.ClauseNumber
}

// Text returns the title fragment and content as one string
func (c ExtractedClause) Text() string {
	switch {
	case c.Title == "":
		return c.Content
	case c.Content == "":
		return c.Title
	default:
		return c.Title + " " + c.Content
	}
}

// Clauses flattens the structure into document order
func (s Structure) Clauses() []ExtractedClause {
	var out []ExtractedClause
	for _, a := range s.Articles {
		out = append(out, a.Clauses...)
	}
	return out
}

// Revision is a tracked change reported by the document host
type Revision struct {
	Type       string `json:"type"` // insertion, deletion, replacement
	Text       string `json:"text"`
	Author     string `json:"author,omitempty"`
	Date       string `json:"date,omitempty"`
	RangeStart int    `json:"range_start"`
	RangeEnd   int    `json:"range_end"`
}
