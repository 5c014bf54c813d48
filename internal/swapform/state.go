// Package swapform holds the user's pair selection and amount text.
package swapform

import "currency-swap/internal/catalog"

// DefaultAmount is the amount text a new form starts with.
const DefaultAmount = "100"

// State is the user-editable part of the swap form.
// From and To are nil until chosen or defaulted from a catalog.
// State is not safe for concurrent use.
type State struct {
	From   *string
	To     *string
	Amount string
}

// New creates a form with no pair and the given amount text.
func New(amount string) *State {
	return &State{Amount: amount}
}

// SetFrom selects the source symbol.
func (s *State) SetFrom(symbol string) {
	s.From = &symbol
}

// SetTo selects the destination symbol.
func (s *State) SetTo(symbol string) {
	s.To = &symbol
}

// SetAmount stores raw amount text as typed.
func (s *State) SetAmount(raw string) {
	s.Amount = raw
}

// SwapPair exchanges From and To, nil values included.
func (s *State) SwapPair() {
	s.From, s.To = s.To, s.From
}

// ApplyDefaults runs the one-time default fill for a catalog replacement
// from prev to next. From takes the first token only when the catalog goes
// from empty to non-empty; To takes the second only when it grows from at
// most one token to more. A symbol that is already set is never changed, and
// a refresh that does not cross either threshold changes nothing, so a pair
// left partly unset by SwapPair stays that way.
func (s *State) ApplyDefaults(prev, next *catalog.Catalog) {
	if s.From == nil && prev.Len() == 0 && next.Len() > 0 {
		s.SetFrom(next.At(0).Symbol)
	}
	if s.To == nil && prev.Len() <= 1 && next.Len() > 1 {
		s.SetTo(next.At(1).Symbol)
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() State {
	return State{From: clone(s.From), To: clone(s.To), Amount: s.Amount}
}

func clone(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
