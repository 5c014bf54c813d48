// Package stub provides an in-memory price source for tests.
package stub

import (
	"context"
	"errors"
	"sync"

	"currency-swap/internal/domain"
	"currency-swap/internal/pricefeed"
)

// ErrUnavailable is the default error returned by a failing Source.
var ErrUnavailable = errors.New("price feed unavailable")

// Source implements pricefeed.Source with scripted responses.
// Each FetchPrices call consumes the next queued response; once the queue
// is empty the last response repeats.
type Source struct {
	mu        sync.Mutex
	responses []response
	calls     int

	// Gate, when set, blocks FetchPrices until a value is received or ctx ends.
	Gate chan struct{}
}

type response struct {
	rows []domain.PriceRow
	err  error
}

// NewSource creates a stub that returns rows on every call.
func NewSource(rows []domain.PriceRow) *Source {
	s := &Source{}
	return s.Then(rows)
}

// Then queues a successful response.
func (s *Source) Then(rows []domain.PriceRow) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, response{rows: rows})
	return s
}

// ThenFail queues a failed response. A nil err uses ErrUnavailable.
func (s *Source) ThenFail(err error) *Source {
	if err == nil {
		err = ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, response{err: err})
	return s
}

// Calls returns how many fetches were made.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FetchPrices returns the next scripted response.
func (s *Source) FetchPrices(ctx context.Context) ([]domain.PriceRow, error) {
	if s.Gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.Gate:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.calls
	s.calls++
	if len(s.responses) == 0 {
		return nil, nil
	}
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}

	r := s.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	rows := make([]domain.PriceRow, len(r.rows))
	copy(rows, r.rows)
	return rows, nil
}

var _ pricefeed.Source = (*Source)(nil)
