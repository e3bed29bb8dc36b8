package engine

import "github.com/pricelens/pricelens/internal/core"

// Normalize converts listing prices into the base unit. Listings priced in
// any currency other than chaos or divine are dropped; the rest keep their
// relative order.
func Normalize(listings []core.Listing, ratio float64) []float64 {
	values := make([]float64, 0, len(listings))
	for _, listing := range listings {
		switch listing.Price.Currency {
		case core.CurrencyChaos:
			values = append(values, listing.Price.Amount)
		case core.CurrencyDivine:
			values = append(values, listing.Price.Amount*ratio)
		}
	}
	return values
}

// Average returns the arithmetic mean of values, or false when there are none.
func Average(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
