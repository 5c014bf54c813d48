package pricefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"currency-swap/internal/catalog"
	"currency-swap/internal/observability"
)

// LastUpdatedLayout formats the time of the last successful fetch.
const LastUpdatedLayout = "3:04:05 PM"

// Status is a point-in-time view of the loader.
type Status struct {
	Catalog       *catalog.Catalog
	Loading       bool
	Error         string // user-facing message, "" when the last fetch succeeded
	LastUpdated   string // "" until the first successful fetch
	LastUpdatedAt time.Time
}

// Loader owns the active catalog and the state of the fetch that fills it.
//
// At most one fetch runs at a time. Load takes an in-flight token before
// calling the source and only applies the result if the token is still
// current when the fetch returns. Close invalidates the token, so results
// arriving after teardown are discarded.
type Loader struct {
	source Source
	logger *zap.Logger
	now    func() time.Time

	mu          sync.RWMutex
	catalog     *catalog.Catalog
	loading     bool
	errMsg      string
	lastUpdated time.Time
	inflight    uint64 // token of the running fetch, 0 when idle
	nextToken   uint64
	closed      bool

	// lifetime ends on Close and cancels any running fetch
	lifetime context.Context
	cancel   context.CancelFunc
}

// LoaderOptions contains configuration for creating a Loader.
type LoaderOptions struct {
	Source Source // Default: NewHTTPClient(DefaultURL)
	Logger *zap.Logger
	Now    func() time.Time // Default: time.Now
}

// NewLoader creates a loader with an empty catalog.
func NewLoader(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	source := opts.Source
	if source == nil {
		source = NewHTTPClient(DefaultURL)
	}

	lifetime, cancel := context.WithCancel(context.Background())

	return &Loader{
		source:   source,
		logger:   logger,
		now:      now,
		catalog:  catalog.Empty,
		lifetime: lifetime,
		cancel:   cancel,
	}
}

// Load fetches the feed once and replaces the catalog on success.
//
// On failure the previous catalog is kept, Status().Error carries the
// generic user-facing message and the wrapped cause is returned.
// Returns ErrLoadInFlight if another fetch is pending and ErrClosed after
// Close, including when Close happens while this fetch is outstanding.
func (l *Loader) Load(ctx context.Context) error {
	_, err := l.Replace(ctx)
	return err
}

// Transition is the catalog swap performed by one successful fetch.
type Transition struct {
	Prev *catalog.Catalog
	Next *catalog.Catalog
}

// Replace is Load that also reports which catalog the fetch replaced.
// The Transition is zero unless the fetch succeeded.
func (l *Loader) Replace(ctx context.Context) (Transition, error) {
	token, err := l.begin()
	if err != nil {
		return Transition{}, err
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(l.lifetime, cancel)
	defer stop()

	start := time.Now()
	rows, fetchErr := l.source.FetchPrices(fetchCtx)
	elapsed := time.Since(start).Seconds()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.inflight != token {
		l.logger.Debug("discarding price fetch result after teardown")
		observability.RecordPriceFetch(observability.StatusAbandoned, elapsed)
		return Transition{}, ErrClosed
	}

	l.inflight = 0
	l.loading = false

	if fetchErr != nil {
		l.errMsg = ErrorMessage
		observability.RecordPriceFetch(observability.StatusError, elapsed)
		l.logger.Warn("price fetch failed",
			zap.Error(fetchErr),
			zap.Int("catalog_tokens", l.catalog.Len()),
		)
		return Transition{}, fmt.Errorf("fetch prices: %w", fetchErr)
	}

	next, dropped := catalog.FromRows(rows)
	t := Transition{Prev: l.catalog, Next: next}
	l.catalog = next
	l.lastUpdated = l.now()

	observability.RecordPriceFetch(observability.StatusSuccess, elapsed)
	observability.RecordCatalogReplaced(next.Len(), dropped, l.lastUpdated)
	l.logger.Info("price catalog replaced",
		zap.Int("rows", len(rows)),
		zap.Int("tokens", next.Len()),
		zap.Int("dropped", dropped),
	)
	return t, nil
}

// begin takes the in-flight token and marks the loader as loading.
func (l *Loader) begin() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, ErrClosed
	}
	if l.inflight != 0 {
		return 0, ErrLoadInFlight
	}

	l.nextToken++
	l.inflight = l.nextToken
	l.loading = true
	l.errMsg = ""
	return l.inflight, nil
}

// Status returns the current catalog and fetch state.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Status{
		Catalog:       l.catalog,
		Loading:       l.loading,
		Error:         l.errMsg,
		LastUpdatedAt: l.lastUpdated,
	}
	if !l.lastUpdated.IsZero() {
		s.LastUpdated = l.lastUpdated.Format(LastUpdatedLayout)
	}
	return s
}

// Catalog returns the active catalog snapshot.
func (l *Loader) Catalog() *catalog.Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog
}

// Close tears the loader down. A pending fetch is cancelled and its result
// discarded. Close is idempotent.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.inflight = 0
	l.loading = false
	l.cancel()
}
