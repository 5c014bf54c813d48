package domain

import "math"

// Quote holds the values derived from a catalog, a pair and raw amount text.
// It is recomputed on every read and never mutated independently.
type Quote struct {
	From            *string  // selected source symbol (nil = unset)
	To              *string  // selected destination symbol (nil = unset)
	Amount          string   // raw user text
	Rate            *float64 // units of To per unit of From (nil = unavailable)
	AmountNumber    float64  // parsed Amount, NaN when empty or unparsable
	ConvertedAmount string   // AmountNumber * Rate with 6 fractional digits, "" when unavailable
	USDFrom         *float64 // USD value of the input side
	USDTo           *float64 // USD value of the output side
}

// HasAmount reports whether the raw amount parsed to a number.
func (q Quote) HasAmount() bool {
	return !math.IsNaN(q.AmountNumber)
}

// OutputAmount returns AmountNumber * Rate, or 0 when either is unavailable.
func (q Quote) OutputAmount() float64 {
	if q.Rate == nil || !q.HasAmount() {
		return 0
	}
	return q.AmountNumber * *q.Rate
}
