// Package httpapi exposes one swap form over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"currency-swap/internal/domain"
	"currency-swap/internal/observability"
	"currency-swap/internal/pricefeed"
	"currency-swap/internal/session"
	"currency-swap/internal/submission"
)

// Form is the swap form the API drives.
type Form interface {
	Snapshot() session.View
	Tokens(query string) []domain.Token
	RefreshPrices(ctx context.Context) error
	SetFrom(symbol string) error
	SetTo(symbol string) error
	SetAmount(raw string)
	SwapPair()
	SubmitAsync(ctx context.Context) (<-chan submission.Outcome, error)
	Receipt(ctx context.Context, id string) (*domain.Receipt, error)
	Receipts(ctx context.Context) ([]*domain.Receipt, error)
}

var _ Form = (*session.Form)(nil)

// Options contains configuration for creating the API handler.
type Options struct {
	Form         Form
	Logger       *zap.Logger
	RefreshLimit RateLimit
}

// Server holds the API dependencies.
type Server struct {
	form   Form
	logger *zap.Logger
}

// NewHandler builds the API router.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{form: opts.Form, logger: logger}
	limiter := NewRateLimiter(opts.RefreshLimit, logger.Named("ratelimit"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tokens", s.handleTokens)
		r.Get("/state", s.handleState)
		r.Get("/receipts", s.handleReceipts)
		r.Get("/receipts/{id}", s.handleReceipt)
		r.With(limiter.Middleware).Post("/prices/refresh", s.handleRefresh)
		r.Put("/pair", s.handleSetPair)
		r.Post("/pair/swap", s.handleSwapPair)
		r.Put("/amount", s.handleSetAmount)
		r.Post("/submit", s.handleSubmit)
	})

	return r
}

// observe records per-route request counts and logs each request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}

		observability.RecordHTTPRequest(route, code)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", code),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string        `json:"error"`
	State *session.View `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeErrorState(w http.ResponseWriter, status int, msg string, v session.View) {
	writeJSON(w, status, ErrorResponse{Error: msg, State: &v})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// isClosed reports whether err means the form was torn down.
func isClosed(err error) bool {
	return errors.Is(err, submission.ErrClosed) || errors.Is(err, pricefeed.ErrClosed)
}
