package submission

import (
	"context"
	"time"

	"currency-swap/internal/domain"
)

// DefaultLatency is how long the simulated executor takes to confirm a swap.
const DefaultLatency = 1100 * time.Millisecond

// Executor carries out a confirmed order.
type Executor interface {
	Execute(ctx context.Context, order domain.Order) (domain.Fill, error)
}

// SimulatedExecutor confirms every order after a fixed delay.
// Nothing leaves the process.
type SimulatedExecutor struct {
	latency time.Duration
	now     func() time.Time
}

// ExecutorOption configures a SimulatedExecutor.
type ExecutorOption func(*SimulatedExecutor)

// WithLatency sets the simulated confirmation delay.
func WithLatency(d time.Duration) ExecutorOption {
	return func(e *SimulatedExecutor) {
		e.latency = d
	}
}

// WithClock sets the clock used for Fill.ExecutedAt.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *SimulatedExecutor) {
		e.now = now
	}
}

// NewSimulatedExecutor creates an executor with DefaultLatency.
func NewSimulatedExecutor(opts ...ExecutorOption) *SimulatedExecutor {
	e := &SimulatedExecutor{
		latency: DefaultLatency,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Latency returns the configured delay.
func (e *SimulatedExecutor) Latency() time.Duration {
	return e.latency
}

// Execute waits for the configured latency and fills the order at its rate.
// It fails only when ctx ends first.
func (e *SimulatedExecutor) Execute(ctx context.Context, order domain.Order) (domain.Fill, error) {
	if e.latency > 0 {
		timer := time.NewTimer(e.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return domain.Fill{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.Fill{}, err
	}

	return domain.Fill{
		AmountOut:  order.Amount * order.Rate,
		ExecutedAt: e.now(),
	}, nil
}

var _ Executor = (*SimulatedExecutor)(nil)
