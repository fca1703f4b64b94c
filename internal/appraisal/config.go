package appraisal

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clearviewclaims/appraisal/internal/assessment"
	"github.com/clearviewclaims/appraisal/internal/recommend"
)

// FileConfig is the operator-editable YAML shape. Everything is optional;
// omitted sections keep the built-in defaults.
type FileConfig struct {
	// Severities maps raw assessor vocabulary to minor/moderate/severe/replace.
	Severities map[string]string `yaml:"severities"`
	// LaborHours maps part category -> severity -> estimated hours.
	LaborHours map[string]map[string]float64 `yaml:"labor_hours"`

	ExpiryDays int `yaml:"expiry_days"`

	Scoring struct {
		Weights    recommend.Weights     `yaml:"weights"`
		PriceBands []recommend.PriceBand `yaml:"price_bands"`
	} `yaml:"scoring"`
}

var canonicalSeverities = map[string]assessment.Severity{
	"minor":    assessment.SeverityMinor,
	"moderate": assessment.SeverityModerate,
	"severe":   assessment.SeveritySevere,
	"replace":  assessment.SeverityReplace,
}

// LoadConfig reads a YAML tuning file and merges it over the defaults.
func LoadConfig(path string) (ServiceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return ServiceConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc.ServiceConfig()
}

// ServiceConfig converts the file shape to the runtime config, validating
// the severity vocabulary on the way.
func (fc FileConfig) ServiceConfig() (ServiceConfig, error) {
	cfg := ServiceConfig{}

	if len(fc.Severities) > 0 {
		table := DefaultConfig().Severities
		for raw, name := range fc.Severities {
			sev, ok := canonicalSeverities[name]
			if !ok {
				return ServiceConfig{}, fmt.Errorf("severities.%s: unknown severity %q", raw, name)
			}
			table[raw] = sev
		}
		cfg.Severities = table
	}

	if len(fc.LaborHours) > 0 {
		table := DefaultConfig().Labor
		for cat, bySeverity := range fc.LaborHours {
			for name, hours := range bySeverity {
				sev, ok := canonicalSeverities[name]
				if !ok {
					return ServiceConfig{}, fmt.Errorf("labor_hours.%s: unknown severity %q", cat, name)
				}
				if hours <= 0 {
					return ServiceConfig{}, fmt.Errorf("labor_hours.%s.%s: hours must be positive, got %v", cat, name, hours)
				}
				entry := table[assessment.PartCategory(cat)]
				if entry == nil {
					entry = map[assessment.Severity]float64{}
					table[assessment.PartCategory(cat)] = entry
				}
				entry[sev] = hours
			}
		}
		cfg.Labor = table
	}

	if fc.ExpiryDays < 0 {
		return ServiceConfig{}, fmt.Errorf("expiry_days must not be negative, got %d", fc.ExpiryDays)
	}
	if fc.ExpiryDays > 0 {
		cfg.ExpiryHorizon = time.Duration(fc.ExpiryDays) * 24 * time.Hour
	}

	for i, band := range fc.Scoring.PriceBands {
		if i > 0 && band.MaxRatio <= fc.Scoring.PriceBands[i-1].MaxRatio {
			return ServiceConfig{}, fmt.Errorf("scoring.price_bands must have strictly increasing max_ratio")
		}
	}
	cfg.Scoring = recommend.Config{
		Weights:    fc.Scoring.Weights,
		PriceBands: fc.Scoring.PriceBands,
	}
	return cfg, nil
}

// DefaultConfig returns the built-in tables, ready for per-field overriding.
func DefaultConfig() ServiceConfig {
	return ServiceConfig{
		Severities: assessment.DefaultSeverityTable(),
		Mappings:   assessment.DefaultPartMappings(),
		Labor:      assessment.DefaultLaborTable(),
	}
}
