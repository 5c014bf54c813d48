// Package quote derives the rate and converted amounts for a swap form.
package quote

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"currency-swap/internal/catalog"
	"currency-swap/internal/domain"
)

// decimalText is plain decimal notation: optional sign, digits with an
// optional fraction, optional exponent. Hex floats and digit separators
// are not amounts.
var decimalText = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ConvertedDigits is the number of fractional digits in Quote.ConvertedAmount.
const ConvertedDigits = 6

// Compute derives every Quote value from the catalog, the pair and the raw
// amount text. It is pure: the same inputs always give the same Quote.
func Compute(c *catalog.Catalog, from, to *string, rawAmount string) domain.Quote {
	q := domain.Quote{
		From:         from,
		To:           to,
		Amount:       rawAmount,
		AmountNumber: ParseAmount(rawAmount),
	}

	fromTok, fromOK := resolve(c, from)
	toTok, toOK := resolve(c, to)

	if fromOK && toOK {
		q.Rate = Rate(fromTok, toTok)
	}

	if !q.HasAmount() {
		return q
	}

	if q.Rate != nil {
		converted := q.AmountNumber * *q.Rate
		q.ConvertedAmount = strconv.FormatFloat(converted, 'f', ConvertedDigits, 64)
	}

	if fromOK {
		usd := q.AmountNumber * fromTok.Price
		q.USDFrom = &usd
	}

	if q.Rate != nil && toOK {
		usd := q.AmountNumber * *q.Rate * toTok.Price
		q.USDTo = &usd
	}

	return q
}

// Rate returns units of to per unit of from, or nil if to has no price.
func Rate(from, to domain.Token) *float64 {
	if to.Price == 0 {
		return nil
	}
	r := from.Price / to.Price
	return &r
}

// ParseAmount parses user amount text as a decimal number.
// Surrounding whitespace is ignored. Empty, non-decimal and non-finite
// input yields NaN.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if !decimalText.MatchString(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN()
	}
	return v
}

func resolve(c *catalog.Catalog, symbol *string) (domain.Token, bool) {
	if symbol == nil {
		return domain.Token{}, false
	}
	return c.Lookup(*symbol)
}
