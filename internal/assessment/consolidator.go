package assessment

import (
	"sort"
	"strings"
)

type partKey struct {
	name     string
	category PartCategory
}

func keyFor(c DamagedPartCandidate) partKey {
	return partKey{
		name:     strings.ToLower(strings.TrimSpace(c.PartName)),
		category: c.Category,
	}
}

// Consolidate merges candidates that denote the same physical part across
// sections into one DamagedPart per distinct (part name, category) key.
// It is a pure fold over the candidate list; output order is not defined
// beyond the dedup guarantee.
//
// Merge rules for two candidates sharing a key:
//   - severity takes the higher weight, ties keep the first-seen value
//   - requires_replacement becomes true if either input was true
//   - estimated labor hours take the max
//   - descriptions and notes are appended only when not already contained
//   - contributing sections accumulate as a set
func Consolidate(candidates []DamagedPartCandidate) []DamagedPart {
	merged := map[partKey]DamagedPart{}
	sections := map[partKey]map[SectionType]struct{}{}
	var order []partKey

	for _, c := range candidates {
		key := keyFor(c)
		part, seen := merged[key]
		if !seen {
			part = DamagedPart{
				PartName:            c.PartName,
				Category:            c.Category,
				Severity:            c.Severity,
				Description:         c.Description,
				RequiresReplacement: c.RequiresReplacement,
				EstimatedLaborHours: c.LaborHours,
				Notes:               c.Notes,
			}
			sections[key] = map[SectionType]struct{}{c.Section: {}}
			order = append(order, key)
			merged[key] = part
			continue
		}

		part.Severity = MaxSeverity(part.Severity, c.Severity)
		part.RequiresReplacement = part.RequiresReplacement || c.RequiresReplacement
		if c.LaborHours > part.EstimatedLaborHours {
			part.EstimatedLaborHours = c.LaborHours
		}
		if c.Description != "" && !strings.Contains(part.Description, c.Description) {
			part.Description += " Also: " + c.Description
		}
		if c.Notes != "" && !strings.Contains(part.Notes, c.Notes) {
			if part.Notes != "" {
				part.Notes += " "
			}
			part.Notes += c.Notes
		}
		sections[key][c.Section] = struct{}{}
		merged[key] = part
	}

	out := make([]DamagedPart, 0, len(order))
	for _, key := range order {
		part := merged[key]
		part.ContributingSections = sectionList(sections[key])
		out = append(out, part)
	}
	return out
}

func sectionList(set map[SectionType]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}
