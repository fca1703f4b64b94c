package assessment

import (
	"encoding/json"
	"sort"
	"strings"
)

// Bundle is the per-assessment input the persistence/web layer hands to the
// pipeline: subsystem sections keyed by section name, each a flat set of
// <field> / <field>_notes pairs.
type Bundle struct {
	AssessmentID string
	Status       AssessmentStatus
	Sections     []SectionReport
}

// Section returns the report for one section, if the assessment recorded it.
func (b Bundle) Section(t SectionType) (SectionReport, bool) {
	for _, s := range b.Sections {
		if s.Section == t {
			return s, true
		}
	}
	return SectionReport{}, false
}

type bundleJSON struct {
	AssessmentID string                       `json:"assessment_id"`
	Status       AssessmentStatus             `json:"status"`
	Sections     map[string]map[string]string `json:"sections"`
}

func (b Bundle) MarshalJSON() ([]byte, error) {
	out := bundleJSON{
		AssessmentID: b.AssessmentID,
		Status:       b.Status,
		Sections:     map[string]map[string]string{},
	}
	for _, s := range b.Sections {
		fields := map[string]string{}
		for _, r := range s.Readings {
			fields[r.Key] = r.Value
			if r.Notes != "" {
				fields[r.Key+"_notes"] = r.Notes
			}
		}
		out.Sections[string(s.Section)] = fields
	}
	return json.Marshal(out)
}

// UnmarshalJSON folds the wire form's <field> / <field>_notes pairs into
// FieldReading values. Notes keys without a matching value key are ignored.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw bundleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.AssessmentID = raw.AssessmentID
	b.Status = raw.Status
	b.Sections = nil

	names := make([]string, 0, len(raw.Sections))
	for name := range raw.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fields := raw.Sections[name]
		report := SectionReport{Section: SectionType(name)}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			if !strings.HasSuffix(k, "_notes") {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			report.Readings = append(report.Readings, FieldReading{
				Key:   k,
				Value: fields[k],
				Notes: fields[k+"_notes"],
			})
		}
		b.Sections = append(b.Sections, report)
	}
	return nil
}
