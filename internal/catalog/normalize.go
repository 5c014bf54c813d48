// Package catalog turns raw price rows into the canonical token list.
package catalog

import (
	"math"
	"sort"

	"currency-swap/internal/domain"
)

// Normalize converts untrusted price rows into catalog tokens.
//
// Rules, applied in order:
//   - drop rows whose price is non-finite or <= 0
//   - map currency -> symbol
//   - keep the first occurrence of each symbol
//   - sort ascending by symbol (byte-wise)
//
// Dropped rows are not reported. The result is never nil.
func Normalize(rows []domain.PriceRow) []domain.Token {
	tokens, _ := normalize(rows)
	return tokens
}

// normalize returns the tokens and the number of rows that were discarded,
// either as invalid or as duplicates.
func normalize(rows []domain.PriceRow) ([]domain.Token, int) {
	tokens := make([]domain.Token, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	dropped := 0

	for _, r := range rows {
		if !validPrice(r.Price) {
			dropped++
			continue
		}
		if _, dup := seen[r.Currency]; dup {
			dropped++
			continue
		}
		seen[r.Currency] = struct{}{}
		tokens = append(tokens, domain.Token{Symbol: r.Currency, Price: r.Price})
	}

	// Stable so equal keys cannot reorder; symbols are unique here anyway.
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Symbol < tokens[j].Symbol
	})

	return tokens, dropped
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

// ToRows converts tokens back to price rows.
func ToRows(tokens []domain.Token) []domain.PriceRow {
	rows := make([]domain.PriceRow, len(tokens))
	for i, t := range tokens {
		rows[i] = domain.PriceRow{Currency: t.Symbol, Price: t.Price}
	}
	return rows
}
