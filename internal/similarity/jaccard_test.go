package similarity

import (
	"math"
	"testing"
)

func TestSimilarity_Identity(t *testing.T) {
	inputs := []string{
		"RHEI will provide services.",
		"The Licensee shall pay all fees within thirty (30) days.",
		"Confidential Information excludes publicly available data",
	}
	for _, in := range inputs {
		if got := Similarity(in, in); got != 1.0 {
			t.Errorf("Expected similarity(x,x)=1 for %q, got %f", in, got)
		}
	}
}

func TestSimilarity_EmptyInputs(t *testing.T) {
	if got := Similarity("", ""); got != 0 {
		t.Errorf("Expected 0 for two empty inputs, got %f", got)
	}
	// Only stopwords and short tokens: empty after tokenization
	if got := Similarity("the and of", "to a"); got != 0 {
		t.Errorf("Expected 0 when both inputs tokenize to nothing, got %f", got)
	}
	if got := Similarity("payment terms", ""); got != 0 {
		t.Errorf("Expected 0 against an empty input, got %f", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"RHEI will provide services.", "RHEI shall provide services to Sony."},
		{"Fees are due monthly in arrears", "Fees are due quarterly"},
		{"Governed by the laws of Delaware", "Governed by New York law"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Expected symmetric similarity for %q/%q, got %f vs %f", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	got := Similarity("alpha beta gamma", "delta epsilon")
	if got != 0 {
		t.Errorf("Expected 0 for disjoint texts, got %f", got)
	}

	got = Similarity("RHEI will provide services.", "RHEI shall provide services to Sony.")
	// {rhei provide services} vs {rhei shall provide services sony}
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("Expected 0.6, got %f", got)
	}
}

func TestSimilarity_PunctuationAndCase(t *testing.T) {
	got := Similarity("Term: ONE (1) year!", "term one year")
	if got != 1.0 {
		t.Errorf("Expected punctuation and case to be ignored, got %f", got)
	}
}

func TestScorer_NoFiltering(t *testing.T) {
	s := NewScorer(Options{})
	if got := s.Similarity("to be", "to be"); got != 1.0 {
		t.Errorf("Expected unfiltered scorer to keep short tokens, got %f", got)
	}
	tokens := s.Tokens("The cat and the hat")
	if len(tokens) != 4 {
		t.Errorf("Expected 4 distinct tokens, got %d (%v)", len(tokens), tokens)
	}
}
