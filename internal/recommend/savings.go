package recommend

// PotentialSavings sums, over every part's recommendation, the gap between
// the most expensive viable quote and the chosen one. It exposes how much the
// chosen strategy saves versus always taking the priciest alternative.
func PotentialSavings(recs map[string]Recommendation) float64 {
	total := 0.0
	for _, rec := range recs {
		if gap := rec.MaxTotal() - rec.ChosenTotal(); gap > 0 {
			total += gap
		}
	}
	return total
}
