package model

// Clause is one baseline clause row of a loaded clause matrix
type Clause struct {
	Key          string               `json:"key"`           // "<article>.<clause_number>"
	Article      string               `json:"article"`       // Article number as written in the source
	ClauseNumber string               `json:"clause_number"` // Clause number within the article
	Title        string               `json:"title,omitempty"`
	Baseline     Baseline             `json:"baseline"`
	Variations   map[string]Variation `json:"variations,omitempty"` // Keyed by party name exactly as in the header row

	AcceptableModifications []Modification `json:"acceptable_modifications,omitempty"` // Derived at build time
}

// Baseline is the reference clause text and where it came from
type Baseline struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"` // Header of the column the text was read from
}

// Variation is a single party's position on a clause
type Variation struct {
	RawValue     string `json:"raw_value"`
	IsUnchanged  bool   `json:"is_unchanged"`           // Cell marked "same as baseline"
	Modification string `json:"modification,omitempty"` // Substituted text when changed
}

// Modification is a party-specific alternative wording accepted for a clause
type Modification struct {
	Party        string `json:"party"`
	Modification string `json:"modification"`
}

// VariationFor returns the changed wording a party negotiated for this clause
func (c *Clause) VariationFor(party string) (string, bool) {
	if party == "" {
		return "", false
	}
	v, ok := c.Variations[party]
	if !ok || v.IsUnchanged || v.Modification == "" {
		return "", false
	}
	return v.Modification, true
}
