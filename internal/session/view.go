package session

import (
	"math"

	"currency-swap/internal/domain"
	"currency-swap/internal/format"
	"currency-swap/internal/pricefeed"
	"currency-swap/internal/quote"
	"currency-swap/internal/submission"
	"currency-swap/internal/swapform"
	"currency-swap/internal/validation"
)

// FeedView describes the price feed as shown next to the form.
type FeedView struct {
	Status      string `json:"status"`
	Loading     bool   `json:"loading"`
	Error       string `json:"error,omitempty"`
	LastUpdated string `json:"last_updated"`
	Tokens      int    `json:"tokens"`
}

// View is every value the form displays, recomputed from current inputs.
type View struct {
	From            *string  `json:"from"`
	To              *string  `json:"to"`
	Amount          string   `json:"amount"`
	AmountNumber    *float64 `json:"amount_number"`
	Rate            *float64 `json:"rate"`
	RateLine        string   `json:"rate_line"`
	ConvertedAmount string   `json:"converted_amount"`
	USDFrom         *float64 `json:"usd_from"`
	USDTo           *float64 `json:"usd_to"`
	USDFromHint     string   `json:"usd_from_hint"`
	USDToHint       string   `json:"usd_to_hint"`

	Validation validation.Result     `json:"validation"`
	Feed       FeedView              `json:"feed"`
	Submitting bool                  `json:"submitting"`
	Message    *domain.SubmitMessage `json:"message"`

	Quote domain.Quote `json:"-"`
}

// CanSubmit reports whether the submit action is enabled.
func (v View) CanSubmit() bool {
	return !v.Validation.DisableSubmit
}

// Order builds the order the current view would submit.
func (v View) Order() domain.Order {
	o := domain.Order{Amount: v.Quote.AmountNumber}
	if v.From != nil {
		o.From = *v.From
	}
	if v.To != nil {
		o.To = *v.To
	}
	if v.Rate != nil {
		o.Rate = *v.Rate
	}
	return o
}

// buildView derives a View. It is a pure function of its inputs.
func buildView(state swapform.State, feed pricefeed.Status, sub submission.Status) View {
	q := quote.Compute(feed.Catalog, state.From, state.To, state.Amount)

	verdict := validation.Evaluate(validation.Input{
		Amount:        q.Amount,
		AmountNumber:  q.AmountNumber,
		From:          q.From,
		To:            q.To,
		Rate:          q.Rate,
		LoadingPrices: feed.Loading,
		PriceError:    feed.Error,
		Submitting:    sub.Submitting,
	})

	v := View{
		From:            q.From,
		To:              q.To,
		Amount:          q.Amount,
		Rate:            finite(q.Rate),
		RateLine:        format.RateLine(q.Rate, q.From, q.To),
		ConvertedAmount: q.ConvertedAmount,
		USDFrom:         finite(q.USDFrom),
		USDTo:           finite(q.USDTo),
		USDFromHint:     format.USDHint(q.USDFrom, verdict.IsAmountValid, false),
		USDToHint:       format.USDHint(q.USDTo, verdict.IsAmountValid, true),
		Validation:      verdict,
		Feed: FeedView{
			Status:      format.FeedStatus(feed.Loading, feed.Error),
			Loading:     feed.Loading,
			Error:       feed.Error,
			LastUpdated: format.LastUpdated(feed.LastUpdated),
			Tokens:      feed.Catalog.Len(),
		},
		Submitting: sub.Submitting,
		Message:    sub.Message,
		Quote:      q,
	}
	if !math.IsNaN(q.AmountNumber) {
		n := q.AmountNumber
		v.AmountNumber = &n
	}
	return v
}

// finite drops values JSON cannot carry. Huge amounts can overflow to Inf.
func finite(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	return p
}
