package submission_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-swap/internal/domain"
	"currency-swap/internal/storage/memory"
	"currency-swap/internal/submission"
	"currency-swap/internal/validation"
)

var (
	ethToUsdc = domain.Order{From: "ETH", To: "USDC", Amount: 100, Rate: 3000}
	allowed   = validation.Result{IsAmountValid: true}
	blocked   = validation.Result{DisableSubmit: true}
)

// gatedExecutor blocks until release yields, then answers with err.
type gatedExecutor struct {
	release chan struct{}
	err     error

	mu    sync.Mutex
	calls int
}

func newGatedExecutor() *gatedExecutor {
	return &gatedExecutor{release: make(chan struct{})}
}

func (g *gatedExecutor) Execute(ctx context.Context, order domain.Order) (domain.Fill, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	select {
	case <-ctx.Done():
		return domain.Fill{}, ctx.Err()
	case <-g.release:
	}
	if g.err != nil {
		return domain.Fill{}, g.err
	}
	return domain.Fill{AmountOut: order.Amount * order.Rate, ExecutedAt: time.Now()}, nil
}

func (g *gatedExecutor) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func instant() submission.Executor {
	return submission.NewSimulatedExecutor(submission.WithLatency(0))
}

func TestSimulator_SubmitSuccess(t *testing.T) {
	store := memory.NewReceiptStore()
	sim := submission.New(submission.Options{Executor: instant(), Store: store})
	defer sim.Close()

	receipt, err := sim.Submit(context.Background(), ethToUsdc, allowed)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, 300000.0, receipt.AmountOut)
	assert.Equal(t, "Swapped 100.00 ETH for ≈300,000.00 USDC.", receipt.Message)

	status := sim.Status()
	assert.False(t, status.Submitting)
	require.NotNil(t, status.Message)
	assert.Equal(t, domain.MessageSuccess, status.Message.Kind)
	assert.Equal(t, "Swapped 100.00 ETH for ≈300,000.00 USDC.", status.Message.Text)

	stored, err := store.GetByID(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "ETH", stored.From)

	list, err := sim.Receipts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSimulator_Refusals(t *testing.T) {
	sim := submission.New(submission.Options{Executor: instant()})
	defer sim.Close()

	_, err := sim.Submit(context.Background(), ethToUsdc, blocked)
	assert.ErrorIs(t, err, submission.ErrSubmitDisabled)

	_, err = sim.Submit(context.Background(), domain.Order{From: "ETH", To: "USDC", Amount: 1}, allowed)
	assert.ErrorIs(t, err, submission.ErrInvalidOrder)

	status := sim.Status()
	assert.False(t, status.Submitting)
	assert.Nil(t, status.Message)
}

func TestSimulator_SingleFlight(t *testing.T) {
	exec := newGatedExecutor()
	sim := submission.New(submission.Options{Executor: exec})
	defer sim.Close()

	done, err := sim.SubmitAsync(context.Background(), ethToUsdc, allowed)
	require.NoError(t, err)
	assert.True(t, sim.Submitting())

	_, err = sim.SubmitAsync(context.Background(), ethToUsdc, allowed)
	assert.ErrorIs(t, err, submission.ErrSubmitInFlight)

	close(exec.release)
	out := <-done
	require.NoError(t, out.Err)
	assert.False(t, sim.Submitting())
	assert.Equal(t, 1, exec.Calls())
}

func TestSimulator_MessageClearedOnNextSubmit(t *testing.T) {
	exec := newGatedExecutor()
	sim := submission.New(submission.Options{Executor: exec})
	defer sim.Close()

	first, err := sim.SubmitAsync(context.Background(), ethToUsdc, allowed)
	require.NoError(t, err)
	exec.release <- struct{}{}
	require.NoError(t, (<-first).Err)
	require.NotNil(t, sim.Status().Message)

	second, err := sim.SubmitAsync(context.Background(), ethToUsdc, allowed)
	require.NoError(t, err)

	status := sim.Status()
	assert.True(t, status.Submitting)
	assert.Nil(t, status.Message)

	exec.release <- struct{}{}
	require.NoError(t, (<-second).Err)
	assert.NotNil(t, sim.Status().Message)
}

func TestSimulator_ExecutorFailure(t *testing.T) {
	exec := newGatedExecutor()
	exec.err = errors.New("venue down")
	close(exec.release)

	store := memory.NewReceiptStore()
	sim := submission.New(submission.Options{Executor: exec, Store: store})
	defer sim.Close()

	receipt, err := sim.Submit(context.Background(), ethToUsdc, allowed)
	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Contains(t, err.Error(), "venue down")

	status := sim.Status()
	assert.False(t, status.Submitting)
	require.NotNil(t, status.Message)
	assert.Equal(t, domain.MessageError, status.Message.Kind)
	assert.Equal(t, submission.FailureMessage, status.Message.Text)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSimulator_CloseDiscardsPending(t *testing.T) {
	exec := newGatedExecutor()
	sim := submission.New(submission.Options{Executor: exec})

	done, err := sim.SubmitAsync(context.Background(), ethToUsdc, allowed)
	require.NoError(t, err)

	sim.Close()

	select {
	case out := <-done:
		assert.ErrorIs(t, out.Err, submission.ErrClosed)
		assert.Nil(t, out.Receipt)
	case <-time.After(time.Second):
		t.Fatal("submission did not return after Close")
	}

	status := sim.Status()
	assert.False(t, status.Submitting)
	assert.Nil(t, status.Message)

	_, err = sim.Submit(context.Background(), ethToUsdc, allowed)
	assert.ErrorIs(t, err, submission.ErrClosed)
}
