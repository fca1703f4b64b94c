package recommend

import "github.com/clearviewclaims/appraisal/internal/quotes"

// Weights blend the best_value component scores. They are normalized before
// use, so callers may supply any positive proportions.
type Weights struct {
	Price    float64 `yaml:"price" json:"price"`
	Timeline float64 `yaml:"timeline" json:"timeline"`
	Quality  float64 `yaml:"quality" json:"quality"`
}

func DefaultWeights() Weights {
	return Weights{Price: 0.5, Timeline: 0.25, Quality: 0.25}
}

// PriceBand maps a cost ratio (quote total / market average) to a score.
// Bands are evaluated in order; the first band whose MaxRatio is not
// exceeded wins.
type PriceBand struct {
	MaxRatio float64 `yaml:"max_ratio" json:"max_ratio"`
	Score    float64 `yaml:"score" json:"score"`
}

// DefaultPriceBands rewards below-average cost and penalizes above-average
// cost through a monotonic step table. The exact thresholds are policy.
func DefaultPriceBands() []PriceBand {
	return []PriceBand{
		{MaxRatio: 0.85, Score: 100},
		{MaxRatio: 0.95, Score: 85},
		{MaxRatio: 1.05, Score: 70},
		{MaxRatio: 1.15, Score: 60},
		{MaxRatio: 1.30, Score: 40},
	}
}

// The score below the last band.
const floorPriceScore = 20

// neutralPriceScore is used when no market average exists to compare against.
const neutralPriceScore = 70

func DefaultQualityScores() map[quotes.PartType]float64 {
	return map[quotes.PartType]float64{
		quotes.PartTypeOEM:           100,
		quotes.PartTypeOEMEquivalent: 75,
		quotes.PartTypeAftermarket:   50,
	}
}

// DefaultProviderRank is the reputation proxy used as a tie-break by the
// highest_quality strategy. Higher ranks win.
func DefaultProviderRank() map[quotes.ProviderType]int {
	return map[quotes.ProviderType]int{
		quotes.ProviderDealer:      4,
		quotes.ProviderAssessor:    3,
		quotes.ProviderNetwork:     2,
		quotes.ProviderIndependent: 1,
	}
}

// Config carries every tunable the engine uses. Zero-valued fields fall back
// to the defaults above.
type Config struct {
	Weights       Weights
	PriceBands    []PriceBand
	QualityScores map[quotes.PartType]float64
	ProviderRank  map[quotes.ProviderType]int
}

func (c Config) withDefaults() Config {
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights()
	}
	if len(c.PriceBands) == 0 {
		c.PriceBands = DefaultPriceBands()
	}
	if len(c.QualityScores) == 0 {
		c.QualityScores = DefaultQualityScores()
	}
	if len(c.ProviderRank) == 0 {
		c.ProviderRank = DefaultProviderRank()
	}
	return c
}
