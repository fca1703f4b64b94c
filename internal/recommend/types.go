package recommend

import "github.com/clearviewclaims/appraisal/internal/quotes"

type Strategy string

const (
	StrategyBestValue         Strategy = "best_value"
	StrategyLowestPrice       Strategy = "lowest_price"
	StrategyFastestCompletion Strategy = "fastest_completion"
	StrategyHighestQuality    Strategy = "highest_quality"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyBestValue, StrategyLowestPrice, StrategyFastestCompletion, StrategyHighestQuality:
		return true
	}
	return false
}

// ScoredQuote is one ranked entry: the quote plus the numeric score that put
// it there. Rank is 1-based.
type ScoredQuote struct {
	Quote quotes.Quote `json:"quote"`
	Score float64      `json:"score"`
	Rank  int          `json:"rank"`
}

// Recommendation is derived on demand; nothing downstream depends on it
// being persisted.
type Recommendation struct {
	DamagedPartID string        `json:"damaged_part_id"`
	Strategy      Strategy      `json:"strategy"`
	RankedQuotes  []ScoredQuote `json:"ranked_quotes"`
	ChosenQuoteID string        `json:"chosen_quote_id"`
}

// ChosenTotal returns the total cost of the top-ranked quote.
func (r Recommendation) ChosenTotal() float64 {
	if len(r.RankedQuotes) == 0 {
		return 0
	}
	return r.RankedQuotes[0].Quote.TotalCost
}

// MaxTotal returns the highest total cost among the ranked quotes, the most
// expensive viable alternative for the part.
func (r Recommendation) MaxTotal() float64 {
	max := 0.0
	for _, sq := range r.RankedQuotes {
		if sq.Quote.TotalCost > max {
			max = sq.Quote.TotalCost
		}
	}
	return max
}
