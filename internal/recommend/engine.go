package recommend

import (
	"fmt"
	"sort"

	"github.com/clearviewclaims/appraisal/internal/market"
	"github.com/clearviewclaims/appraisal/internal/quotes"
)

// Engine ranks a part's validated quotes under a selectable strategy.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Recommend scores and orders the validated quotes for one part. A part with
// no validated quotes is a caller error, not an empty result: the distinction
// keeps "no data yet" and "asked the wrong question" separate.
func (e *Engine) Recommend(partID string, strategy Strategy, qs []quotes.Quote, avg market.MarketAverage) (Recommendation, error) {
	if !strategy.Valid() {
		return Recommendation{}, fmt.Errorf("unknown strategy %q", strategy)
	}

	var pool []quotes.Quote
	for _, q := range qs {
		if q.Status == quotes.QuoteValidated || q.Status == quotes.QuoteAccepted {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return Recommendation{}, fmt.Errorf("part %s has no validated quotes to rank", partID)
	}

	scored := make([]ScoredQuote, 0, len(pool))
	for _, q := range pool {
		scored = append(scored, ScoredQuote{Quote: q, Score: e.score(strategy, q, pool, avg)})
	}
	e.sortRanked(strategy, scored)
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return Recommendation{
		DamagedPartID: partID,
		Strategy:      strategy,
		RankedQuotes:  scored,
		ChosenQuoteID: scored[0].Quote.ID,
	}, nil
}

func (e *Engine) score(strategy Strategy, q quotes.Quote, pool []quotes.Quote, avg market.MarketAverage) float64 {
	switch strategy {
	case StrategyLowestPrice:
		return e.relativePriceScore(q, pool)
	case StrategyFastestCompletion:
		return e.timelineScore(q, pool)
	case StrategyHighestQuality:
		return e.qualityScore(q)
	default:
		w := normalizeWeights(e.cfg.Weights)
		return w.Price*e.marketPriceScore(q, avg) +
			w.Timeline*e.timelineScore(q, pool) +
			w.Quality*e.qualityScore(q)
	}
}

func (e *Engine) sortRanked(strategy Strategy, scored []ScoredQuote) {
	switch strategy {
	case StrategyLowestPrice:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Quote.TotalCost < scored[j].Quote.TotalCost
		})
	case StrategyFastestCompletion:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Quote.EstimatedCompletionDays < scored[j].Quote.EstimatedCompletionDays
		})
	case StrategyHighestQuality:
		sort.SliceStable(scored, func(i, j int) bool {
			a, b := scored[i].Quote, scored[j].Quote
			qa, qb := e.qualityScore(a), e.qualityScore(b)
			if qa != qb {
				return qa > qb
			}
			ra, rb := e.cfg.ProviderRank[a.Provider], e.cfg.ProviderRank[b.Provider]
			if ra != rb {
				return ra > rb
			}
			return a.TotalCost < b.TotalCost
		})
	default:
		sort.SliceStable(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			return scored[i].Quote.TotalCost < scored[j].Quote.TotalCost
		})
	}
}

// marketPriceScore maps the quote's cost ratio against the market average
// onto the configured step table.
func (e *Engine) marketPriceScore(q quotes.Quote, avg market.MarketAverage) float64 {
	if avg.QuoteCount == 0 || avg.AverageTotalCost <= 0 {
		return neutralPriceScore
	}
	ratio := q.TotalCost / avg.AverageTotalCost
	for _, band := range e.cfg.PriceBands {
		if ratio <= band.MaxRatio {
			return band.Score
		}
	}
	return floorPriceScore
}

// relativePriceScore scores against the cheapest quote in the set, so the
// cheapest gets 100.
func (e *Engine) relativePriceScore(q quotes.Quote, pool []quotes.Quote) float64 {
	cheapest := pool[0].TotalCost
	for _, other := range pool[1:] {
		if other.TotalCost < cheapest {
			cheapest = other.TotalCost
		}
	}
	if q.TotalCost <= 0 {
		return 0
	}
	return cheapest / q.TotalCost * 100
}

// timelineScore normalizes the inverse completion time against the fastest
// quote in the set, so the fastest gets 100.
func (e *Engine) timelineScore(q quotes.Quote, pool []quotes.Quote) float64 {
	fastest := 0
	for _, other := range pool {
		if other.EstimatedCompletionDays <= 0 {
			continue
		}
		if fastest == 0 || other.EstimatedCompletionDays < fastest {
			fastest = other.EstimatedCompletionDays
		}
	}
	if fastest == 0 || q.EstimatedCompletionDays <= 0 {
		return 0
	}
	return float64(fastest) / float64(q.EstimatedCompletionDays) * 100
}

func (e *Engine) qualityScore(q quotes.Quote) float64 {
	return e.cfg.QualityScores[q.PartType]
}

func normalizeWeights(w Weights) Weights {
	sum := w.Price + w.Timeline + w.Quality
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{Price: w.Price / sum, Timeline: w.Timeline / sum, Quality: w.Quality / sum}
}
