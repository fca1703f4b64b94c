// Package market computes descriptive statistics over the validated quotes
// for one damaged part, used to benchmark individual quotes against the
// competing set.
package market

import (
	"math"
	"time"

	"github.com/clearviewclaims/appraisal/internal/quotes"
)

type VarianceCategory string

const (
	VarianceLow    VarianceCategory = "low"
	VarianceMedium VarianceCategory = "medium"
	VarianceHigh   VarianceCategory = "high"
)

// Bucket boundaries are tunable policy, not a contract.
const (
	lowVarianceMaxPct    = 10.0
	mediumVarianceMaxPct = 25.0
)

// High confidence needs both enough quotes and a high enough level.
const (
	HighConfidenceMinQuotes = 3
	HighConfidenceMinLevel  = 70.0
)

// MarketAverage is derived state: recomputed whenever a validated quote is
// added, with no lifecycle beyond "last computed".
type MarketAverage struct {
	DamagedPartID      string    `json:"damaged_part_id"`
	AverageTotalCost   float64   `json:"average_total_cost"`
	AveragePartCost    float64   `json:"average_part_cost"`
	AverageLaborCost   float64   `json:"average_labor_cost"`
	MinTotalCost       float64   `json:"min_total_cost"`
	MaxTotalCost       float64   `json:"max_total_cost"`
	StandardDeviation  float64   `json:"standard_deviation"`
	VariancePercentage float64   `json:"variance_percentage"`
	QuoteCount         int       `json:"quote_count"`
	ConfidenceLevel    float64   `json:"confidence_level"`
	ComputedAt         time.Time `json:"computed_at"`
}

// Calculate builds the market average for one part from its quotes. Only
// validated quotes feed the statistics; zero validated quotes yield a
// zero-filled result rather than an error so callers can render "no data".
func Calculate(partID string, qs []quotes.Quote) MarketAverage {
	out := MarketAverage{DamagedPartID: partID, ComputedAt: time.Now()}

	var totals, parts, labors []float64
	for _, q := range qs {
		if q.Status != quotes.QuoteValidated {
			continue
		}
		totals = append(totals, q.TotalCost)
		parts = append(parts, q.PartCost)
		labors = append(labors, q.LaborCost)
	}
	out.QuoteCount = len(totals)
	if out.QuoteCount == 0 {
		return out
	}

	out.AverageTotalCost = mean(totals)
	out.AveragePartCost = mean(parts)
	out.AverageLaborCost = mean(labors)
	out.MinTotalCost, out.MaxTotalCost = minMax(totals)
	out.StandardDeviation = populationStdDev(totals, out.AverageTotalCost)
	if out.QuoteCount >= 2 && out.AverageTotalCost != 0 {
		out.VariancePercentage = out.StandardDeviation / out.AverageTotalCost * 100
	}
	out.ConfidenceLevel = confidenceLevel(out.QuoteCount)
	return out
}

// IsHighConfidence requires at least HighConfidenceMinQuotes quotes in
// addition to the level threshold; a high level from two quotes is still not
// high confidence.
func (m MarketAverage) IsHighConfidence() bool {
	return m.QuoteCount >= HighConfidenceMinQuotes && m.ConfidenceLevel >= HighConfidenceMinLevel
}

func (m MarketAverage) VarianceCategory() VarianceCategory {
	switch {
	case m.VariancePercentage < lowVarianceMaxPct:
		return VarianceLow
	case m.VariancePercentage <= mediumVarianceMaxPct:
		return VarianceMedium
	default:
		return VarianceHigh
	}
}

// confidenceLevel grows monotonically with the number of quotes and
// saturates at 90 once five or more quotes compete.
func confidenceLevel(count int) float64 {
	if count <= 0 {
		return 0
	}
	level := 40 + 15*float64(count-1)
	if level > 90 {
		level = 90
	}
	return level
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func minMax(xs []float64) (min, max float64) {
	min, max = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

func populationStdDev(xs []float64, avg float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, x := range xs {
		d := x - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
