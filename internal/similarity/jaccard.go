// Package similarity scores word overlap between clause texts.
//
// The metric is a Jaccard index over normalized token sets: it has no notion
// of meaning or word order. Callers rely only on a value in [0,1] where
// higher means more similar.
package similarity

import (
	"strings"
	"unicode"
)

// Default thresholds used by the compliance analyzer
const (
	ExactMatchThreshold             = 0.95
	AcceptableModificationThreshold = 0.80
)

// defaultStopwords are dropped from both inputs when stopword filtering is on
var defaultStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "are": true, "was": true, "were": true, "will": true,
	"from": true, "into": true, "such": true, "any": true, "all": true,
	"its": true, "their": true, "which": true, "who": true, "than": true,
	"has": true, "have": true, "had": true, "been": true,
	"upon": true, "unto": true, "herein": true, "thereof": true,
}

// Scorer computes similarity with a fixed tokenization policy
type Scorer struct {
	minTokenLength int
	stopwords      map[string]bool
}

// Options configures tokenization
type Options struct {
	MinTokenLength int  // Tokens shorter than this are dropped; 0 keeps everything
	Stopwords      bool // Drop the built-in stopword list
}

// NewScorer creates a scorer; the same policy is applied to both inputs
func NewScorer(opts Options) *Scorer {
	s := &Scorer{minTokenLength: opts.MinTokenLength}
	if opts.Stopwords {
		s.stopwords = defaultStopwords
	}
	return s
}

// Default returns the scorer used when nothing is configured:
// tokens of length <= 2 and stopwords are dropped.
func Default() *Scorer {
	return NewScorer(Options{MinTokenLength: 3, Stopwords: true})
}

// Similarity returns the Jaccard index of the two token sets.
// Two inputs that are both empty after tokenization score 0.
func (s *Scorer) Similarity(a, b string) float64 {
	setA := s.Tokens(a)
	setB := s.Tokens(b)

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Tokens normalizes text into a token set
func (s *Scorer) Tokens(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalize(text)) {
		if len([]rune(tok)) < s.minTokenLength {
			continue
		}
		if s.stopwords[tok] {
			continue
		}
		set[tok] = true
	}
	return set
}

// Similarity scores two texts with the default scorer
func Similarity(a, b string) float64 {
	return Default().Similarity(a, b)
}

// normalize lower-cases, maps whitespace to spaces and strips everything else
func normalize(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)
}
