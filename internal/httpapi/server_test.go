package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-swap/internal/domain"
	"currency-swap/internal/pricefeed"
	"currency-swap/internal/pricefeed/stub"
	"currency-swap/internal/session"
	"currency-swap/internal/submission"
)

var ethUsdc = []domain.PriceRow{
	{Currency: "USDC", Price: 1},
	{Currency: "ETH", Price: 3000},
}

func newTestServer(t *testing.T, source pricefeed.Source, limit RateLimit) (*httptest.Server, *session.Form) {
	t.Helper()

	form := session.New(session.Options{
		Source:   source,
		Executor: submission.NewSimulatedExecutor(submission.WithLatency(0)),
	})
	t.Cleanup(form.Close)
	require.NoError(t, form.Init(context.Background()))

	if limit.RequestsPerMinute == 0 {
		limit = RateLimit{RequestsPerMinute: 600, Burst: 10}
	}
	srv := httptest.NewServer(NewHandler(Options{Form: form, RefreshLimit: limit}))
	t.Cleanup(srv.Close)
	return srv, form
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeView(t *testing.T, resp *http.Response) session.View {
	t.Helper()
	var v session.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokens(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodGet, srv.URL+"/api/tokens?q=et", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens []domain.Token
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	require.Len(t, tokens, 1)
	assert.Equal(t, "ETH", tokens[0].Symbol)
}

func TestState(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodGet, srv.URL+"/api/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	v := decodeView(t, resp)
	require.NotNil(t, v.From)
	assert.Equal(t, "ETH", *v.From)
	assert.Equal(t, "300000.000000", v.ConvertedAmount)
	assert.Equal(t, "Live", v.Feed.Status)
	assert.False(t, v.Validation.DisableSubmit)
}

func TestSetPairAndAmount(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodPut, srv.URL+"/api/pair", `{"to":"ETH"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, resp)
	assert.True(t, v.Validation.SamePair)
	assert.Equal(t, []string{"Choose two different tokens to swap."}, v.Validation.Hints)

	resp = do(t, http.MethodPut, srv.URL+"/api/pair", `{"from":"USDC"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/amount", `{"amount":"0"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decodeView(t, resp)
	assert.False(t, v.Validation.IsAmountValid)
	assert.Equal(t, []string{"Amount must be greater than 0."}, v.Validation.Hints)
}

func TestSetPair_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodPut, srv.URL+"/api/pair", `{"from":"DOGE"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/pair", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/amount", `{"value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSwapPair(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodPost, srv.URL+"/api/pair/swap", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, resp)
	assert.Equal(t, "USDC", *v.From)
	assert.Equal(t, "ETH", *v.To)
}

func TestRefresh(t *testing.T) {
	source := stub.NewSource(ethUsdc).ThenFail(nil)
	srv, _ := newTestServer(t, source, RateLimit{})

	resp := do(t, http.MethodPost, srv.URL+"/api/prices/refresh", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, pricefeed.ErrorMessage, body.Error)
	require.NotNil(t, body.State)
	assert.Equal(t, "Error", body.State.Feed.Status)
	assert.Equal(t, 2, body.State.Feed.Tokens)
}

func TestRefresh_RateLimited(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{RequestsPerMinute: 1, Burst: 1})

	resp := do(t, http.MethodPost, srv.URL+"/api/prices/refresh", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/prices/refresh", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// other routes are not limited
	resp = do(t, http.MethodGet, srv.URL+"/api/state", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmit(t *testing.T) {
	srv, form := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodPost, srv.URL+"/api/submit", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		v := form.Snapshot()
		return !v.Submitting && v.Message != nil
	}, time.Second, 5*time.Millisecond)

	resp = do(t, http.MethodGet, srv.URL+"/api/state", "")
	v := decodeView(t, resp)
	require.NotNil(t, v.Message)
	assert.Equal(t, domain.MessageSuccess, v.Message.Kind)
	assert.Equal(t, "Swapped 100.00 ETH for ≈300,000.00 USDC.", v.Message.Text)

	resp = do(t, http.MethodGet, srv.URL+"/api/receipts", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipts []domain.Receipt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipts))
	require.Len(t, receipts, 1)

	resp = do(t, http.MethodGet, srv.URL+"/api/receipts/"+receipts[0].ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipt domain.Receipt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	assert.Equal(t, "ETH", receipt.From)
	assert.Equal(t, 300000.0, receipt.AmountOut)
}

func TestReceipt_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})

	resp := do(t, http.MethodGet, srv.URL+"/api/receipts/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmit_Disabled(t *testing.T) {
	srv, form := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})
	form.SetAmount("-5")

	resp := do(t, http.MethodPost, srv.URL+"/api/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.State)
	assert.Equal(t, []string{"Amount must be greater than 0."}, body.State.Validation.Hints)
}

func TestSubmit_Closed(t *testing.T) {
	srv, form := newTestServer(t, stub.NewSource(ethUsdc), RateLimit{})
	form.Close()

	resp := do(t, http.MethodPost, srv.URL+"/api/submit", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientID(req))

	req.Header.Set("X-Forwarded-For", "192.168.1.2, 10.0.0.1")
	assert.Equal(t, "192.168.1.2", clientID(req))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	assert.Equal(t, "172.16.0.9", clientID(req))
}

// ctxSource fails as soon as its context is done.
type ctxSource struct{}

func (ctxSource) FetchPrices(ctx context.Context) ([]domain.PriceRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ethUsdc, nil
}

func TestRefresh_DetachedFromRequest(t *testing.T) {
	form := session.New(session.Options{Source: ctxSource{}})
	t.Cleanup(form.Close)
	handler := NewHandler(Options{Form: form, RefreshLimit: RateLimit{RequestsPerMinute: 600, Burst: 10}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/prices/refresh", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	v := form.Snapshot()
	assert.Empty(t, v.Feed.Error)
	assert.Equal(t, 2, v.Feed.Tokens)
}
