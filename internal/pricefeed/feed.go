// Package pricefeed fetches the external price list and keeps the active
// token catalog together with its loading state.
package pricefeed

import (
	"context"
	"errors"

	"currency-swap/internal/domain"
)

// DefaultURL is the public price feed.
const DefaultURL = "https://interview.switcheo.com/prices.json"

// Source provides raw price rows.
type Source interface {
	// FetchPrices performs one request for the full price list.
	FetchPrices(ctx context.Context) ([]domain.PriceRow, error)
}

// Loader errors
var (
	// ErrLoadInFlight is returned when Load is called while a fetch is pending.
	ErrLoadInFlight = errors.New("price fetch already in flight")

	// ErrClosed is returned once the loader has been torn down. A fetch that
	// completes after Close also reports ErrClosed and its result is dropped.
	ErrClosed = errors.New("price loader closed")
)

// ErrorMessage is the user-facing text shown for any fetch failure.
const ErrorMessage = "Could not load token prices. Please retry."
