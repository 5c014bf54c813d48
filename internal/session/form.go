// Package session wires the catalog, form state, derived values, validation
// and submission into one swap form instance.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"currency-swap/internal/domain"
	"currency-swap/internal/pricefeed"
	"currency-swap/internal/storage"
	"currency-swap/internal/submission"
	"currency-swap/internal/swapform"
	"currency-swap/internal/validation"
)

// ErrUnknownToken is returned when a symbol is not in the active catalog.
var ErrUnknownToken = errors.New("unknown token")

// Options contains configuration for creating a Form.
type Options struct {
	Source        pricefeed.Source
	Executor      submission.Executor  // Default: simulated, 1100 ms
	Store         storage.ReceiptStore // Default: in-memory
	Logger        *zap.Logger
	DefaultAmount string           // Default: swapform.DefaultAmount
	Now           func() time.Time // Default: time.Now
}

// Form is one swap form. All methods are safe for concurrent use.
type Form struct {
	loader    *pricefeed.Loader
	submitter *submission.Simulator
	logger    *zap.Logger

	mu    sync.RWMutex
	state *swapform.State
}

// New creates a form with an empty catalog. Call Init to load prices.
func New(opts Options) *Form {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	amount := opts.DefaultAmount
	if amount == "" {
		amount = swapform.DefaultAmount
	}

	return &Form{
		loader: pricefeed.NewLoader(pricefeed.LoaderOptions{
			Source: opts.Source,
			Logger: logger.Named("pricefeed"),
			Now:    opts.Now,
		}),
		submitter: submission.New(submission.Options{
			Executor: opts.Executor,
			Store:    opts.Store,
			Logger:   logger.Named("submission"),
			Now:      opts.Now,
		}),
		logger: logger,
		state:  swapform.New(amount),
	}
}

// Init performs the first price fetch and picks the default pair.
func (f *Form) Init(ctx context.Context) error {
	return f.RefreshPrices(ctx)
}

// RefreshPrices fetches prices again. The default pair is filled only when
// the catalog crosses the empty or single-token threshold; chosen symbols
// are kept even if the new catalog lacks them.
func (f *Form) RefreshPrices(ctx context.Context) error {
	t, err := f.loader.Replace(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.state.ApplyDefaults(t.Prev, t.Next)
	f.mu.Unlock()

	return nil
}

// SetFrom selects the source token.
func (f *Form) SetFrom(symbol string) error {
	if _, ok := f.loader.Catalog().Lookup(symbol); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownToken, symbol)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SetFrom(symbol)
	return nil
}

// SetTo selects the destination token.
func (f *Form) SetTo(symbol string) error {
	if _, ok := f.loader.Catalog().Lookup(symbol); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownToken, symbol)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SetTo(symbol)
	return nil
}

// SetAmount stores amount text exactly as entered.
func (f *Form) SetAmount(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SetAmount(raw)
}

// SwapPair exchanges the source and destination tokens.
func (f *Form) SwapPair() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SwapPair()
}

// Tokens returns catalog tokens whose symbol contains query.
func (f *Form) Tokens(query string) []domain.Token {
	return f.loader.Catalog().Search(query)
}

// Snapshot recomputes every displayed value from the current inputs.
func (f *Form) Snapshot() View {
	f.mu.RLock()
	state := f.state.Clone()
	f.mu.RUnlock()

	return buildView(state, f.loader.Status(), f.submitter.Status())
}

// Submit confirms the swap shown by the current snapshot and waits for it.
func (f *Form) Submit(ctx context.Context) (*domain.Receipt, error) {
	done, err := f.SubmitAsync(ctx)
	if err != nil {
		return nil, err
	}
	out := <-done
	return out.Receipt, out.Err
}

// SubmitAsync starts confirming the swap shown by the current snapshot.
// Refusals are returned immediately; see submission.Simulator.SubmitAsync.
func (f *Form) SubmitAsync(ctx context.Context) (<-chan submission.Outcome, error) {
	v := f.Snapshot()
	if reason := f.blockReason(v); reason != "" {
		f.logger.Debug("submit refused", zap.String("reason", reason))
	}
	return f.submitter.SubmitAsync(ctx, v.Order(), v.Validation)
}

func (f *Form) blockReason(v View) string {
	return validation.Reason(validation.Input{
		Amount:        v.Amount,
		AmountNumber:  v.Quote.AmountNumber,
		From:          v.From,
		To:            v.To,
		Rate:          v.Rate,
		LoadingPrices: v.Feed.Loading,
		PriceError:    v.Feed.Error,
		Submitting:    v.Submitting,
	}, v.Validation)
}

// Receipt returns one confirmed swap by ID.
func (f *Form) Receipt(ctx context.Context, id string) (*domain.Receipt, error) {
	return f.submitter.Receipt(ctx, id)
}

// Receipts returns the swaps confirmed in this session, oldest first.
func (f *Form) Receipts(ctx context.Context) ([]*domain.Receipt, error) {
	return f.submitter.Receipts(ctx)
}

// Close tears the form down. Pending fetches and submissions are cancelled
// and their results discarded.
func (f *Form) Close() {
	f.loader.Close()
	f.submitter.Close()
	f.logger.Debug("form closed")
}
