package domain

// PriceRow is a single row of the external price feed.
// Rows are untrusted: price may be zero, negative or non-finite.
type PriceRow struct {
	Currency string  `json:"currency"` // asset symbol as published by the feed
	Price    float64 `json:"price"`    // USD price
}

// Token is a tradable asset in the active catalog.
// Symbol is unique within a catalog and Price is always finite and > 0.
type Token struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}
