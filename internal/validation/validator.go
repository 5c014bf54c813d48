// Package validation decides whether the swap form may be submitted.
package validation

import "strings"

// User-facing hints shown under the form.
const (
	HintSamePair      = "Choose two different tokens to swap."
	HintInvalidAmount = "Amount must be greater than 0."
)

// Input is everything the submit gate depends on.
type Input struct {
	Amount        string   // raw amount text
	AmountNumber  float64  // parsed amount, NaN when unparsable
	From          *string  // nil = unset
	To            *string  // nil = unset
	Rate          *float64 // nil = unavailable
	LoadingPrices bool
	PriceError    string // "" = no error
	Submitting    bool
}

// Result is the verdict for an Input.
type Result struct {
	IsAmountValid bool     `json:"is_amount_valid"`
	SamePair      bool     `json:"same_pair"`
	DisableSubmit bool     `json:"disable_submit"`
	Hints         []string `json:"hints"`
}

// Evaluate applies the submit rules. It is the only place that decides
// whether a swap can be confirmed.
func Evaluate(in Input) Result {
	// NaN > 0 is false, so unparsable amounts are invalid here.
	isAmountValid := strings.TrimSpace(in.Amount) != "" && in.AmountNumber > 0
	samePair := in.From != nil && in.To != nil && *in.From == *in.To
	priceErr := in.PriceError != ""

	disable := in.Submitting ||
		in.LoadingPrices ||
		priceErr ||
		!isAmountValid ||
		samePair ||
		in.From == nil ||
		in.To == nil ||
		in.Rate == nil

	hints := []string{}
	if priceErr {
		hints = append(hints, in.PriceError)
	} else {
		if samePair {
			hints = append(hints, HintSamePair)
		}
		if !isAmountValid {
			hints = append(hints, HintInvalidAmount)
		}
	}

	return Result{
		IsAmountValid: isAmountValid,
		SamePair:      samePair,
		DisableSubmit: disable,
		Hints:         hints,
	}
}

// Reason returns a short machine-readable label for the first rule that
// blocks submission, or "" when submission is allowed.
func Reason(in Input, r Result) string {
	switch {
	case !r.DisableSubmit:
		return ""
	case in.Submitting:
		return "submitting"
	case in.LoadingPrices:
		return "loading_prices"
	case in.PriceError != "":
		return "price_error"
	case !r.IsAmountValid:
		return "invalid_amount"
	case r.SamePair:
		return "same_pair"
	case in.From == nil || in.To == nil:
		return "pair_unset"
	default:
		return "rate_unavailable"
	}
}
