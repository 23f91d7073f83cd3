package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validRequest() TradeRequest {
	return TradeRequest{
		PublicKey:        "GkX3mB6T11iGmKedGkWaFejNGCy1Tp8zJnW5W5mNcPsu",
		Action:           "buy",
		Mint:             "8VfUQdY8S5DFnCPXUbP8hTxdEM1wWYbYoU9p1aoPpump",
		Amount:           0.5,
		DenominatedInSol: true,
		SlippagePercent:  1.0,
		PriorityFee:      0.00005,
	}
}

func TestClient_BuildTrade(t *testing.T) {
	rawTx := []byte{0x01, 0x02, 0x03, 0x04}
	var gotReq TradeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trade-local", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write(rawTx)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", zap.NewNop())
	tx, err := c.BuildTrade(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, base64.StdEncoding.EncodeToString(rawTx), tx)
	assert.Equal(t, "buy", gotReq.Action)
	assert.True(t, gotReq.DenominatedInSol)
}

func TestClient_BuildTrade_RetriesTransient(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte{0xAA})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", zap.NewNop())
	tx, err := c.BuildTrade(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, tx)
	assert.Equal(t, int64(2), calls.Load())
}

func TestClient_BuildTrade_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"insufficient balance"}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", zap.NewNop())
	_, err := c.BuildTrade(context.Background(), validRequest())
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	// 4xx не ретраится.
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_BuildTrade_Validation(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", zap.NewNop())

	req := validRequest()
	req.Amount = 0
	_, err := c.BuildTrade(context.Background(), req)
	assert.ErrorContains(t, err, "amount")

	req = validRequest()
	req.Action = "hold"
	_, err = c.BuildTrade(context.Background(), req)
	assert.ErrorContains(t, err, "action")
}

func TestClient_APIKeyInQuery(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api-key")
		_, _ = w.Write([]byte{0x01})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "secret-key", zap.NewNop())
	_, err := c.BuildTrade(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "secret-key", gotKey)
}
