package catalog

import (
	"strings"

	"currency-swap/internal/domain"
)

// Catalog is an immutable snapshot of normalized tokens.
// A refresh builds a new Catalog; existing snapshots are never modified.
type Catalog struct {
	tokens   []domain.Token
	bySymbol map[string]int // symbol -> index in tokens
}

// Empty is the catalog used before the first successful fetch.
var Empty = New(nil)

// New builds a catalog from tokens, normalizing them first.
func New(tokens []domain.Token) *Catalog {
	normalized, _ := normalize(ToRows(tokens))
	return build(normalized)
}

// FromRows normalizes feed rows into a catalog.
// It also returns how many rows were discarded.
func FromRows(rows []domain.PriceRow) (*Catalog, int) {
	tokens, dropped := normalize(rows)
	return build(tokens), dropped
}

func build(tokens []domain.Token) *Catalog {
	idx := make(map[string]int, len(tokens))
	for i, t := range tokens {
		idx[t.Symbol] = i
	}
	return &Catalog{tokens: tokens, bySymbol: idx}
}

// Len returns the number of tokens.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tokens)
}

// At returns the token at position i in symbol order.
func (c *Catalog) At(i int) domain.Token {
	return c.tokens[i]
}

// Tokens returns a copy of the tokens in symbol order.
func (c *Catalog) Tokens() []domain.Token {
	if c == nil {
		return []domain.Token{}
	}
	out := make([]domain.Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Lookup resolves a symbol.
func (c *Catalog) Lookup(symbol string) (domain.Token, bool) {
	if c == nil {
		return domain.Token{}, false
	}
	i, ok := c.bySymbol[symbol]
	if !ok {
		return domain.Token{}, false
	}
	return c.tokens[i], true
}

// Search returns tokens whose symbol contains query, case-insensitively.
// A blank query matches every token.
func (c *Catalog) Search(query string) []domain.Token {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Tokens()
	}

	out := []domain.Token{}
	if c == nil {
		return out
	}
	for _, t := range c.tokens {
		if strings.Contains(strings.ToLower(t.Symbol), q) {
			out = append(out, t)
		}
	}
	return out
}
