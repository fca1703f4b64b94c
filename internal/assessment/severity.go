package assessment

import "strings"

// SeverityTable maps raw assessor vocabulary to canonical severities. Any raw
// value absent from the table normalizes to SeverityNone and the field is
// dropped: unknown vocabulary degrades to "no damage" rather than failing,
// since this is advisory business data.
type SeverityTable map[string]Severity

func DefaultSeverityTable() SeverityTable {
	return SeverityTable{
		"light":        SeverityMinor,
		"minor":        SeverityMinor,
		"fair":         SeverityMinor,
		"intermittent": SeverityMinor,
		"moderate":     SeverityModerate,
		"poor":         SeverityModerate,
		"severe":       SeveritySevere,
		"not_working":  SeveritySevere,
		"destroyed":    SeverityReplace,
		"failed":       SeverityReplace,
	}
}

// Normalize maps one raw categorical value to a canonical severity.
// Matching is case-insensitive and ignores surrounding whitespace.
func (t SeverityTable) Normalize(raw string) Severity {
	key := strings.ToLower(strings.TrimSpace(raw))
	if sev, ok := t[key]; ok {
		return sev
	}
	return SeverityNone
}

// replacementValues are raw values that force a replacement regardless of the
// severity they map to.
var replacementValues = map[string]struct{}{
	"destroyed": {},
	"failed":    {},
}

func requiresReplacement(raw string, sev Severity) bool {
	if sev == SeverityReplace {
		return true
	}
	_, ok := replacementValues[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

var severityWeights = map[Severity]int{
	SeverityMinor:    1,
	SeverityModerate: 2,
	SeveritySevere:   3,
	SeverityReplace:  4,
}

// Weight returns the ordering weight of a severity; SeverityNone weighs 0.
func Weight(sev Severity) int {
	return severityWeights[sev]
}

// MaxSeverity returns the more severe of a and b; ties keep a.
func MaxSeverity(a, b Severity) Severity {
	if Weight(b) > Weight(a) {
		return b
	}
	return a
}
