package deck

import "github.com/edhtools/deckforge/internal/storage/models"

// Stats aggregates a deck's entries for the stats command and charts.
type Stats struct {
	Cards      int            // total copies
	Distinct   int            // distinct cards
	ManaCurve  map[int]int    // converted cost bucket -> copies (7 = "7+")
	ColorPips  map[string]int // color letter -> copies
	TotalPrice float64
}

// maxCurveBucket groups every cost of seven or more into one bucket.
const maxCurveBucket = 7

// ComputeStats derives deck statistics from its entries. Lands and other
// zero-cost cards land in bucket 0.
func ComputeStats(entries []*models.DeckEntry) *Stats {
	stats := &Stats{
		ManaCurve: make(map[int]int),
		ColorPips: make(map[string]int),
	}

	for _, e := range entries {
		stats.Cards += e.Quantity
		stats.Distinct++

		bucket := int(e.CMC)
		if bucket > maxCurveBucket {
			bucket = maxCurveBucket
		}
		stats.ManaCurve[bucket] += e.Quantity

		for _, color := range e.Colors {
			stats.ColorPips[string(color)] += e.Quantity
		}

		stats.TotalPrice += e.PriceUSD * float64(e.Quantity)
	}

	return stats
}
