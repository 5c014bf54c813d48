package format

import "fmt"

// Digits used by the display helpers.
const (
	RateDigits    = 6
	MessageDigits = 4
)

// Status labels for the price feed.
const (
	StatusFetching = "Fetching prices..."
	StatusError    = "Error"
	StatusLive     = "Live"
)

// RateLine renders "1 FROM ≈ rate TO", or "--" when the pair has no rate.
func RateLine(rate *float64, from, to *string) string {
	if rate == nil || *rate == 0 || from == nil || to == nil {
		return "--"
	}
	return fmt.Sprintf("1 %s ≈ %s %s", *from, Number(*rate, RateDigits), *to)
}

// FeedStatus renders the price feed state.
func FeedStatus(loading bool, priceError string) string {
	switch {
	case loading:
		return StatusFetching
	case priceError != "":
		return StatusError
	default:
		return StatusLive
	}
}

// LastUpdated renders the last refresh time, or Placeholder before the first.
func LastUpdated(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// USDHint renders the USD estimate under an amount field.
func USDHint(usd *float64, valid, readOnly bool) string {
	if valid && usd != nil {
		return "≈ " + Currency(usd)
	}
	if readOnly {
		return "Waiting for amount"
	}
	return "Enter an amount greater than 0"
}

// SwapConfirmation is the success message for a completed swap.
func SwapConfirmation(amountIn float64, from string, amountOut float64, to string) string {
	return fmt.Sprintf("Swapped %s %s for ≈%s %s.",
		Number(amountIn, MessageDigits), from,
		Number(amountOut, MessageDigits), to)
}
