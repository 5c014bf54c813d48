package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"currency-swap/internal/pricefeed"
	"currency-swap/internal/storage"
	"currency-swap/internal/submission"
)

// PairRequest selects tokens. Omitted fields are left unchanged.
type PairRequest struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// AmountRequest sets the raw amount text.
type AmountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.form.Tokens(r.URL.Query().Get("q")))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.form.Snapshot())
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.form.Receipts(r.Context())
	if err != nil {
		s.logger.Error("list receipts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list receipts")
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.form.Receipt(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, receipt)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "receipt not found")
	default:
		s.logger.Error("get receipt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load receipt")
	}
}

// handleRefresh runs the fetch detached from the request so a client that
// disconnects does not fail the shared catalog for everyone.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.form.RefreshPrices(context.WithoutCancel(r.Context()))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.form.Snapshot())
	case errors.Is(err, pricefeed.ErrLoadInFlight):
		writeErrorState(w, http.StatusConflict, err.Error(), s.form.Snapshot())
	case isClosed(err):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Warn("price refresh failed", zap.Error(err))
		writeErrorState(w, http.StatusBadGateway, pricefeed.ErrorMessage, s.form.Snapshot())
	}
}

func (s *Server) handleSetPair(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.From != nil {
		if err := s.form.SetFrom(*req.From); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.To != nil {
		if err := s.form.SetTo(*req.To); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, s.form.Snapshot())
}

func (s *Server) handleSwapPair(w http.ResponseWriter, r *http.Request) {
	s.form.SwapPair()
	writeJSON(w, http.StatusOK, s.form.Snapshot())
}

func (s *Server) handleSetAmount(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.form.SetAmount(req.Amount)
	writeJSON(w, http.StatusOK, s.form.Snapshot())
}

// handleSubmit starts a submission and answers before it completes.
// The outcome shows up in /api/state once the executor returns.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	done, err := s.form.SubmitAsync(context.WithoutCancel(r.Context()))
	switch {
	case err == nil:
	case errors.Is(err, submission.ErrSubmitInFlight):
		writeErrorState(w, http.StatusConflict, err.Error(), s.form.Snapshot())
		return
	case errors.Is(err, submission.ErrSubmitDisabled), errors.Is(err, submission.ErrInvalidOrder):
		writeErrorState(w, http.StatusUnprocessableEntity, err.Error(), s.form.Snapshot())
		return
	case isClosed(err):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	default:
		s.logger.Error("submit", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not submit")
		return
	}

	go s.awaitOutcome(done)
	writeJSON(w, http.StatusAccepted, s.form.Snapshot())
}

func (s *Server) awaitOutcome(done <-chan submission.Outcome) {
	out := <-done
	switch {
	case out.Err == nil:
		s.logger.Info("background submission completed", zap.String("receipt_id", out.Receipt.ID))
	case isClosed(out.Err):
		s.logger.Debug("background submission dropped on shutdown")
	default:
		s.logger.Warn("background submission failed", zap.Error(out.Err))
	}
}

