package assessment

import (
	"fmt"
	"strings"
)

// Extractor walks a section's schema fields, normalizes each raw value, and
// emits one DamagedPartCandidate per damaged field. It is a pure transform:
// no side effects, and missing sections or unknown vocabulary never error.
type Extractor struct {
	severities SeverityTable
	mappings   PartMappings
	labor      *LaborEstimator
}

func NewExtractor(severities SeverityTable, mappings PartMappings, labor *LaborEstimator) *Extractor {
	if severities == nil {
		severities = DefaultSeverityTable()
	}
	if mappings == nil {
		mappings = DefaultPartMappings()
	}
	if labor == nil {
		labor = NewLaborEstimator(nil)
	}
	return &Extractor{severities: severities, mappings: mappings, labor: labor}
}

// Extract produces candidates for one section report. Fields whose value
// normalizes to "no damage" are dropped; a section type without a schema
// yields nothing.
func (e *Extractor) Extract(report SectionReport) []DamagedPartCandidate {
	schema, ok := e.mappings[report.Section]
	if !ok {
		return nil
	}
	var out []DamagedPartCandidate
	for _, spec := range schema {
		reading, ok := report.reading(spec.Key)
		if !ok {
			continue
		}
		sev := e.severities.Normalize(reading.Value)
		if sev == SeverityNone {
			continue
		}
		out = append(out, DamagedPartCandidate{
			Section:             report.Section,
			FieldKey:            spec.Key,
			PartName:            spec.PartName,
			Category:            spec.Category,
			Severity:            sev,
			Description:         describeDamage(spec.PartName, sev, reading.Value, reading.Notes),
			RequiresReplacement: requiresReplacement(reading.Value, sev),
			LaborHours:          e.labor.Hours(spec.Category, sev),
			Notes:               strings.TrimSpace(reading.Notes),
		})
	}
	return out
}

// ExtractAll runs Extract over every section recorded in the bundle.
func (e *Extractor) ExtractAll(b Bundle) []DamagedPartCandidate {
	var out []DamagedPartCandidate
	for _, report := range b.Sections {
		out = append(out, e.Extract(report)...)
	}
	return out
}

func describeDamage(partName string, sev Severity, raw, notes string) string {
	desc := fmt.Sprintf("%s shows %s damage", partName, sev)
	rawNorm := strings.ToLower(strings.TrimSpace(raw))
	if rawNorm != string(sev) {
		desc += fmt.Sprintf(" (reported as %q)", rawNorm)
	}
	if n := strings.TrimSpace(notes); n != "" {
		desc += ". " + n
	}
	return desc
}
