// Package submission confirms swaps through an Executor and keeps the
// resulting message and receipts.
package submission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"currency-swap/internal/domain"
	"currency-swap/internal/format"
	"currency-swap/internal/observability"
	"currency-swap/internal/storage"
	"currency-swap/internal/storage/memory"
	"currency-swap/internal/validation"
)

// FailureMessage is shown when the executor does not confirm a swap.
const FailureMessage = "Swap failed. Please retry."

// Outcome is the result of an asynchronous submission.
type Outcome struct {
	Receipt *domain.Receipt // nil unless the swap succeeded
	Err     error
}

// Status is a point-in-time view of the simulator.
type Status struct {
	Submitting bool
	Message    *domain.SubmitMessage // nil until the first submission completes
}

// Options contains configuration for creating a Simulator.
type Options struct {
	Executor Executor             // Default: NewSimulatedExecutor()
	Store    storage.ReceiptStore // Default: in-memory store
	Logger   *zap.Logger
	Now      func() time.Time // Default: time.Now
}

// Simulator runs one submission at a time.
//
// The state machine is Idle -> Submitting -> Idle. The message of the
// previous submission is cleared when the next one starts and set when it
// completes. A completion is applied only while its in-flight token is
// current; Close invalidates it.
type Simulator struct {
	executor Executor
	store    storage.ReceiptStore
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.RWMutex
	submitting bool
	message    *domain.SubmitMessage
	inflight   uint64
	nextToken  uint64
	closed     bool

	lifetime context.Context
	cancel   context.CancelFunc
}

// New creates a Simulator.
func New(opts Options) *Simulator {
	executor := opts.Executor
	if executor == nil {
		executor = NewSimulatedExecutor()
	}

	store := opts.Store
	if store == nil {
		store = memory.NewReceiptStore()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	lifetime, cancel := context.WithCancel(context.Background())

	return &Simulator{
		executor: executor,
		store:    store,
		logger:   logger,
		now:      now,
		lifetime: lifetime,
		cancel:   cancel,
	}
}

// Submit runs a submission and waits for it to complete.
func (s *Simulator) Submit(ctx context.Context, order domain.Order, verdict validation.Result) (*domain.Receipt, error) {
	done, err := s.SubmitAsync(ctx, order, verdict)
	if err != nil {
		return nil, err
	}
	out := <-done
	return out.Receipt, out.Err
}

// SubmitAsync starts a submission and returns a channel that receives its
// single Outcome. Refusals are returned directly: ErrClosed after Close,
// ErrSubmitInFlight while another submission is pending, ErrSubmitDisabled
// when the verdict blocks submission and ErrInvalidOrder for an order
// without a pair or rate.
func (s *Simulator) SubmitAsync(ctx context.Context, order domain.Order, verdict validation.Result) (<-chan Outcome, error) {
	token, err := s.begin(order, verdict)
	if err != nil {
		return nil, err
	}

	done := make(chan Outcome, 1)
	go func() {
		receipt, err := s.run(ctx, token, order)
		done <- Outcome{Receipt: receipt, Err: err}
	}()
	return done, nil
}

func (s *Simulator) begin(order domain.Order, verdict validation.Result) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reason string
	var err error
	switch {
	case s.closed:
		return 0, ErrClosed
	case s.inflight != 0:
		reason, err = "in_flight", ErrSubmitInFlight
	case verdict.DisableSubmit:
		reason, err = "disabled", ErrSubmitDisabled
	case order.From == "" || order.To == "" || !(order.Rate > 0) || !(order.Amount > 0):
		reason, err = "invalid_order", ErrInvalidOrder
	}
	if err != nil {
		observability.RecordSubmitRejected(reason)
		return 0, err
	}

	s.nextToken++
	s.inflight = s.nextToken
	s.submitting = true
	s.message = nil
	return s.inflight, nil
}

func (s *Simulator) run(ctx context.Context, token uint64, order domain.Order) (*domain.Receipt, error) {
	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.lifetime, cancel)
	defer stop()

	submittedAt := s.now()
	start := time.Now()
	fill, execErr := s.executor.Execute(execCtx, order)
	elapsed := time.Since(start).Seconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.inflight != token {
		s.logger.Debug("discarding submission result after teardown")
		observability.RecordSubmission(observability.StatusAbandoned, elapsed)
		return nil, ErrClosed
	}

	s.inflight = 0
	s.submitting = false

	if execErr != nil {
		s.message = &domain.SubmitMessage{Kind: domain.MessageError, Text: FailureMessage}
		observability.RecordSubmission(observability.StatusError, elapsed)
		s.logger.Warn("swap submission failed",
			zap.String("from", order.From),
			zap.String("to", order.To),
			zap.Error(execErr),
		)
		return nil, fmt.Errorf("execute order: %w", execErr)
	}

	text := format.SwapConfirmation(order.Amount, order.From, fill.AmountOut, order.To)
	receipt := &domain.Receipt{
		ID:          uuid.NewString(),
		From:        order.From,
		To:          order.To,
		AmountIn:    order.Amount,
		AmountOut:   fill.AmountOut,
		Rate:        order.Rate,
		SubmittedAt: submittedAt,
		CompletedAt: fill.ExecutedAt,
		Message:     text,
	}
	if receipt.CompletedAt.IsZero() {
		receipt.CompletedAt = s.now()
	}

	// The swap went through; a store failure only loses the history entry.
	if err := s.store.Insert(context.Background(), receipt); err != nil {
		s.logger.Error("failed to record receipt", zap.String("id", receipt.ID), zap.Error(err))
	}

	s.message = &domain.SubmitMessage{Kind: domain.MessageSuccess, Text: text}
	observability.RecordSubmission(observability.StatusSuccess, elapsed)
	s.logger.Info("swap confirmed",
		zap.String("id", receipt.ID),
		zap.String("from", order.From),
		zap.String("to", order.To),
		zap.Float64("amount_in", order.Amount),
		zap.Float64("amount_out", fill.AmountOut),
	)
	return receipt, nil
}

// Status returns the current submission state.
func (s *Simulator) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{Submitting: s.submitting}
	if s.message != nil {
		m := *s.message
		st.Message = &m
	}
	return st
}

// Submitting reports whether a submission is pending.
func (s *Simulator) Submitting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitting
}

// Receipt returns one recorded receipt. Returns storage.ErrNotFound for an
// unknown ID.
func (s *Simulator) Receipt(ctx context.Context, id string) (*domain.Receipt, error) {
	return s.store.GetByID(ctx, id)
}

// Receipts returns the receipts recorded so far, oldest first.
func (s *Simulator) Receipts(ctx context.Context) ([]*domain.Receipt, error) {
	return s.store.List(ctx)
}

// Close cancels a pending submission and discards its result.
// Close is idempotent.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.inflight = 0
	s.submitting = false
	s.cancel()
}
