package model

import "strings"

// Severity ranks how much a missing clause matters
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity maps a config string onto a Severity, defaulting to low
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical":
		return SeverityHigh
	case "medium", "med":
		return SeverityMedium
	default:
		return SeverityLow
	}
}
