package recommend

import (
	"testing"
	"time"

	"github.com/clearviewclaims/appraisal/internal/market"
	"github.com/clearviewclaims/appraisal/internal/quotes"
)

func quote(id string, total float64, days int, pt quotes.PartType, provider quotes.ProviderType) quotes.Quote {
	return quotes.Quote{
		ID:                      id,
		DamagedPartID:           "p-1",
		Provider:                provider,
		TotalCost:               total,
		PartCost:                total * 0.6,
		LaborCost:               total * 0.4,
		PartType:                pt,
		EstimatedDeliveryDays:   2,
		EstimatedCompletionDays: days,
		ValidUntil:              time.Now().Add(24 * time.Hour),
		Status:                  quotes.QuoteValidated,
	}
}

func marketFor(qs []quotes.Quote) market.MarketAverage {
	return market.Calculate("p-1", qs)
}

func TestRecommendLowestPrice(t *testing.T) {
	e := NewEngine(Config{})
	qs := []quotes.Quote{
		quote("q-expensive", 900, 3, quotes.PartTypeOEM, quotes.ProviderDealer),
		quote("q-cheap", 400, 7, quotes.PartTypeAftermarket, quotes.ProviderIndependent),
		quote("q-mid", 600, 5, quotes.PartTypeOEMEquivalent, quotes.ProviderNetwork),
	}
	rec, err := e.Recommend("p-1", StrategyLowestPrice, qs, marketFor(qs))
	if err != nil {
		t.Fatal(err)
	}
	if rec.ChosenQuoteID != "q-cheap" {
		t.Fatalf("chosen = %s, want q-cheap", rec.ChosenQuoteID)
	}
	if rec.RankedQuotes[0].Score != 100 {
		t.Fatalf("cheapest quote score = %v, want 100", rec.RankedQuotes[0].Score)
	}
	for i := 1; i < len(rec.RankedQuotes); i++ {
		if rec.RankedQuotes[i].Quote.TotalCost < rec.RankedQuotes[i-1].Quote.TotalCost {
			t.Fatal("lowest_price ranking must be ascending by total cost")
		}
	}
}

func TestRecommendFastestCompletion(t *testing.T) {
	e := NewEngine(Config{})
	qs := []quotes.Quote{
		quote("q-slow", 400, 9, quotes.PartTypeOEM, quotes.ProviderDealer),
		quote("q-fast", 900, 2, quotes.PartTypeAftermarket, quotes.ProviderNetwork),
	}
	rec, err := e.Recommend("p-1", StrategyFastestCompletion, qs, marketFor(qs))
	if err != nil {
		t.Fatal(err)
	}
	if rec.ChosenQuoteID != "q-fast" {
		t.Fatalf("chosen = %s, want q-fast", rec.ChosenQuoteID)
	}
}

func TestRecommendHighestQualityTieBreaks(t *testing.T) {
	e := NewEngine(Config{})
	qs := []quotes.Quote{
		quote("q-aftermarket", 300, 3, quotes.PartTypeAftermarket, quotes.ProviderDealer),
		quote("q-oem-indep", 700, 3, quotes.PartTypeOEM, quotes.ProviderIndependent),
		quote("q-oem-dealer", 800, 3, quotes.PartTypeOEM, quotes.ProviderDealer),
	}
	rec, err := e.Recommend("p-1", StrategyHighestQuality, qs, marketFor(qs))
	if err != nil {
		t.Fatal(err)
	}
	// OEM beats aftermarket; among OEM quotes the dealer outranks the
	// independent even at a higher price.
	if rec.ChosenQuoteID != "q-oem-dealer" {
		t.Fatalf("chosen = %s, want q-oem-dealer", rec.ChosenQuoteID)
	}
	if rec.RankedQuotes[2].Quote.ID != "q-aftermarket" {
		t.Fatalf("aftermarket should rank last, got %s", rec.RankedQuotes[2].Quote.ID)
	}
}

func TestMarketPriceScoreWorkedExamples(t *testing.T) {
	e := NewEngine(Config{})
	avg := market.MarketAverage{QuoteCount: 3, AverageTotalCost: 1000}
	cases := []struct {
		total float64
		want  float64
	}{
		{800, 100}, // ratio 0.80
		{1120, 60}, // ratio 1.12
		{1000, 70}, // at the average
		{2000, 20}, // far above every band
	}
	for _, tc := range cases {
		q := quotes.Quote{TotalCost: tc.total}
		if got := e.marketPriceScore(q, avg); got != tc.want {
			t.Errorf("price score for total %v = %v, want %v", tc.total, got, tc.want)
		}
	}
}

func TestMarketPriceScoreMonotonic(t *testing.T) {
	e := NewEngine(Config{})
	avg := market.MarketAverage{QuoteCount: 3, AverageTotalCost: 1000}
	prev := e.marketPriceScore(quotes.Quote{TotalCost: 100}, avg)
	for total := 200.0; total <= 3000; total += 100 {
		cur := e.marketPriceScore(quotes.Quote{TotalCost: total}, avg)
		if cur > prev {
			t.Fatalf("price score must not increase with cost: %v -> %v at total %v", prev, cur, total)
		}
		prev = cur
	}
}

func TestMarketPriceScoreNoMarketIsNeutral(t *testing.T) {
	e := NewEngine(Config{})
	got := e.marketPriceScore(quotes.Quote{TotalCost: 500}, market.MarketAverage{})
	if got != neutralPriceScore {
		t.Fatalf("score without market = %v, want %v", got, neutralPriceScore)
	}
}

func TestRecommendBestValueFavorsBalancedQuote(t *testing.T) {
	e := NewEngine(Config{})
	qs := []quotes.Quote{
		quote("q-cheap-slow-aftermarket", 500, 10, quotes.PartTypeAftermarket, quotes.ProviderIndependent),
		quote("q-balanced", 550, 3, quotes.PartTypeOEMEquivalent, quotes.ProviderNetwork),
		quote("q-gold-plated", 1400, 4, quotes.PartTypeOEM, quotes.ProviderDealer),
	}
	rec, err := e.Recommend("p-1", StrategyBestValue, qs, marketFor(qs))
	if err != nil {
		t.Fatal(err)
	}
	if rec.ChosenQuoteID != "q-balanced" {
		t.Fatalf("chosen = %s, want q-balanced", rec.ChosenQuoteID)
	}
	for i := 1; i < len(rec.RankedQuotes); i++ {
		if rec.RankedQuotes[i].Score > rec.RankedQuotes[i-1].Score {
			t.Fatal("best_value ranking must be descending by score")
		}
	}
}

func TestRecommendWeightsOverride(t *testing.T) {
	// All weight on timeline turns best_value into fastest-first.
	e := NewEngine(Config{Weights: Weights{Timeline: 1}})
	qs := []quotes.Quote{
		quote("q-slow-cheap", 300, 9, quotes.PartTypeOEM, quotes.ProviderDealer),
		quote("q-fast-pricey", 800, 2, quotes.PartTypeAftermarket, quotes.ProviderNetwork),
	}
	rec, err := e.Recommend("p-1", StrategyBestValue, qs, marketFor(qs))
	if err != nil {
		t.Fatal(err)
	}
	if rec.ChosenQuoteID != "q-fast-pricey" {
		t.Fatalf("chosen = %s, want q-fast-pricey", rec.ChosenQuoteID)
	}
}

func TestRecommendNoValidatedQuotes(t *testing.T) {
	e := NewEngine(Config{})
	qs := []quotes.Quote{
		{ID: "q-1", Status: quotes.QuoteSubmitted, TotalCost: 100},
	}
	if _, err := e.Recommend("p-1", StrategyBestValue, qs, market.MarketAverage{}); err == nil {
		t.Fatal("expected error for part with no validated quotes")
	}
}

func TestRecommendUnknownStrategy(t *testing.T) {
	e := NewEngine(Config{})
	if _, err := e.Recommend("p-1", Strategy("cheapest_mate"), nil, market.MarketAverage{}); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestPotentialSavings(t *testing.T) {
	recs := map[string]Recommendation{
		"p-1": {RankedQuotes: []ScoredQuote{
			{Quote: quotes.Quote{ID: "a", TotalCost: 400}, Rank: 1},
			{Quote: quotes.Quote{ID: "b", TotalCost: 900}, Rank: 2},
		}},
		"p-2": {RankedQuotes: []ScoredQuote{
			{Quote: quotes.Quote{ID: "c", TotalCost: 250}, Rank: 1},
		}},
	}
	if got := PotentialSavings(recs); got != 500 {
		t.Fatalf("savings = %v, want 500", got)
	}
	if got := PotentialSavings(nil); got != 0 {
		t.Fatalf("empty savings = %v", got)
	}
}
