package assessment

// LaborTable maps (part category, severity) to estimated repair hours.
type LaborTable map[PartCategory]map[Severity]float64

// DefaultLaborHours is the fallback hours value when a severity has no entry.
const DefaultLaborHours = 2.0

func DefaultLaborTable() LaborTable {
	return LaborTable{
		CategoryBody:       {SeverityMinor: 1.5, SeverityModerate: 3.0, SeveritySevere: 6.0, SeverityReplace: 5.0},
		CategoryMechanical: {SeverityMinor: 2.0, SeverityModerate: 4.0, SeveritySevere: 8.0, SeverityReplace: 6.0},
		CategoryElectrical: {SeverityMinor: 1.5, SeverityModerate: 3.0, SeveritySevere: 5.0, SeverityReplace: 4.0},
		CategoryGlass:      {SeverityMinor: 1.0, SeverityModerate: 1.5, SeveritySevere: 2.0, SeverityReplace: 2.0},
		CategoryInterior:   {SeverityMinor: 1.0, SeverityModerate: 2.0, SeveritySevere: 4.0, SeverityReplace: 3.0},
		CategoryTrim:       {SeverityMinor: 0.5, SeverityModerate: 1.0, SeveritySevere: 2.0, SeverityReplace: 1.5},
		CategoryWheels:     {SeverityMinor: 0.5, SeverityModerate: 1.0, SeveritySevere: 1.5, SeverityReplace: 1.0},
		CategorySafety:     {SeverityMinor: 2.0, SeverityModerate: 3.0, SeveritySevere: 5.0, SeverityReplace: 4.0},
		CategoryStructural: {SeverityMinor: 3.0, SeverityModerate: 6.0, SeveritySevere: 12.0, SeverityReplace: 10.0},
		CategoryFluid:      {SeverityMinor: 1.0, SeverityModerate: 2.0, SeveritySevere: 3.0, SeverityReplace: 2.5},
	}
}

func genericLaborHours() map[Severity]float64 {
	return map[Severity]float64{
		SeverityMinor:    1.0,
		SeverityModerate: 2.0,
		SeveritySevere:   4.0,
		SeverityReplace:  3.0,
	}
}

// LaborEstimator is a deterministic (category, severity) -> hours lookup.
// Used both at extraction time and by later recompute/audit passes, so the
// same inputs must always produce the same estimate.
type LaborEstimator struct {
	table   LaborTable
	generic map[Severity]float64
}

func NewLaborEstimator(table LaborTable) *LaborEstimator {
	if table == nil {
		table = DefaultLaborTable()
	}
	return &LaborEstimator{table: table, generic: genericLaborHours()}
}

// Hours returns the estimated labor hours for a category and severity.
// Unknown categories fall back to the generic table; unknown severities fall
// back to DefaultLaborHours.
func (e *LaborEstimator) Hours(category PartCategory, sev Severity) float64 {
	row, ok := e.table[category]
	if !ok {
		row = e.generic
	}
	if hours, ok := row[sev]; ok {
		return hours
	}
	return DefaultLaborHours
}
