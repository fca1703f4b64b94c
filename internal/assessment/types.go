package assessment

import "time"

type AssessmentStatus string

const (
	StatusDraft       AssessmentStatus = "draft"
	StatusInProgress  AssessmentStatus = "in_progress"
	StatusCompleted   AssessmentStatus = "completed"
	StatusUnderReview AssessmentStatus = "under_review"
	StatusApproved    AssessmentStatus = "approved"
)

type SectionType string

const (
	SectionExterior   SectionType = "exterior"
	SectionWheels     SectionType = "wheels"
	SectionInterior   SectionType = "interior"
	SectionMechanical SectionType = "mechanical"
	SectionElectrical SectionType = "electrical"
	SectionSafety     SectionType = "safety"
	SectionStructural SectionType = "structural"
	SectionFluids     SectionType = "fluids"
)

type Severity string

const (
	// SeverityNone means the field carries no damage and is dropped
	// during extraction.
	SeverityNone     Severity = ""
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityReplace  Severity = "replace"
)

type PartCategory string

const (
	CategoryBody       PartCategory = "body"
	CategoryMechanical PartCategory = "mechanical"
	CategoryElectrical PartCategory = "electrical"
	CategoryGlass      PartCategory = "glass"
	CategoryInterior   PartCategory = "interior"
	CategoryTrim       PartCategory = "trim"
	CategoryWheels     PartCategory = "wheels"
	CategorySafety     PartCategory = "safety"
	CategoryStructural PartCategory = "structural"
	CategoryFluid      PartCategory = "fluid"
)

// FieldReading is one recorded observation: the raw categorical value an
// assessor entered for a schema field, plus its paired free-text notes.
type FieldReading struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Notes string `json:"notes,omitempty"`
}

// SectionReport holds the readings an assessor recorded for one subsystem.
// Sections an assessment legitimately omits are simply absent from the bundle.
type SectionReport struct {
	Section  SectionType    `json:"section"`
	Readings []FieldReading `json:"readings"`
}

func (r SectionReport) reading(key string) (FieldReading, bool) {
	for _, f := range r.Readings {
		if f.Key == key {
			return f, true
		}
	}
	return FieldReading{}, false
}

// DamagedPartCandidate is the per-field intermediate the extractor emits.
// It is consumed immediately by Consolidate and never persisted.
type DamagedPartCandidate struct {
	Section             SectionType
	FieldKey            string
	PartName            string
	Category            PartCategory
	Severity            Severity
	Description         string
	RequiresReplacement bool
	LaborHours          float64
	Notes               string
}

// DamagedPart is one consolidated physical part identified as damaged.
type DamagedPart struct {
	ID                   string       `json:"id"`
	AssessmentID         string       `json:"assessment_id"`
	PartName             string       `json:"part_name"`
	Category             PartCategory `json:"part_category"`
	Severity             Severity     `json:"severity"`
	Description          string       `json:"description"`
	RequiresReplacement  bool         `json:"requires_replacement"`
	EstimatedLaborHours  float64      `json:"estimated_labor_hours"`
	Notes                string       `json:"notes,omitempty"`
	ContributingSections []string     `json:"contributing_sections"`
	IdentifiedAt         time.Time    `json:"identified_at"`
}
