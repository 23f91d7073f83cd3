package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func jsonServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestFetcher_Fetch_FallbackOrder(t *testing.T) {
	failing, failCalls := jsonServer(t, http.StatusInternalServerError, `{"error":"boom"}`)
	good, goodCalls := jsonServer(t, http.StatusOK, `{"mint":"abc"}`)
	never, neverCalls := jsonServer(t, http.StatusOK, `{"mint":"xyz"}`)

	f := NewFetcher([]Provider{
		{Name: "api-v3", BaseURL: failing.URL},
		{Name: "api-v2", BaseURL: good.URL},
		{Name: "api-v1", BaseURL: never.URL},
	}, zap.NewNop())

	payload, failures, err := f.Fetch(context.Background(), "coins/abc", nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"mint":"abc"}`, string(payload))
	// Первый успех замыкает цепочку: третий провайдер не трогается.
	assert.Equal(t, int64(1), failCalls.Load())
	assert.Equal(t, int64(1), goodCalls.Load())
	assert.Equal(t, int64(0), neverCalls.Load())

	require.Len(t, failures, 1)
	assert.Equal(t, "api-v3", failures[0].Provider)
	assert.Contains(t, failures[0].Reason, "500")
}

func TestFetcher_Fetch_AllProvidersExhausted(t *testing.T) {
	a, _ := jsonServer(t, http.StatusBadGateway, "")
	b, _ := jsonServer(t, http.StatusNotFound, `{"error":"nope"}`)

	f := NewFetcher([]Provider{
		{Name: "api-v3", BaseURL: a.URL},
		{Name: "pumpportal", BaseURL: b.URL},
	}, zap.NewNop())

	payload, failures, err := f.Fetch(context.Background(), "coins/abc", nil)
	assert.Nil(t, payload)
	require.ErrorIs(t, err, ErrAllProvidersExhausted)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Failures, 2)
	assert.Equal(t, "api-v3", exhausted.Failures[0].Provider)
	assert.Equal(t, "pumpportal", exhausted.Failures[1].Provider)
	assert.NotEmpty(t, exhausted.Failures[0].Reason)
	assert.NotEmpty(t, exhausted.Failures[1].Reason)
	assert.Equal(t, exhausted.Failures, failures)
}

func TestFetcher_Fetch_EmptyBodyIsFailure(t *testing.T) {
	empty, _ := jsonServer(t, http.StatusOK, "")
	good, _ := jsonServer(t, http.StatusOK, `{"ok":true}`)

	f := NewFetcher([]Provider{
		{Name: "empty", BaseURL: empty.URL},
		{Name: "good", BaseURL: good.URL},
	}, zap.NewNop())

	payload, failures, err := f.Fetch(context.Background(), "coins/abc", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(payload))
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "empty response body")
}

func TestFetcher_Fetch_TimeoutAdvancesToNext(t *testing.T) {
	hung := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(hung.Close)
	good, _ := jsonServer(t, http.StatusOK, `{"ok":true}`)

	f := NewFetcher([]Provider{
		{Name: "hung", BaseURL: hung.URL, Timeout: 50 * time.Millisecond},
		{Name: "good", BaseURL: good.URL},
	}, zap.NewNop())

	start := time.Now()
	payload, failures, err := f.Fetch(context.Background(), "coins/abc", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(payload))
	require.Len(t, failures, 1)
	assert.Equal(t, "hung", failures[0].Provider)
	// Зависший провайдер отсекается своим таймаутом, а не общим.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetcher_Fetch_QueryParamsAndHeaders(t *testing.T) {
	var gotQuery, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("limit")
		gotHeader = r.Header.Get("X-Api-Key")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher([]Provider{{
		Name:    "api-v3",
		BaseURL: srv.URL,
		Headers: map[string]string{"X-Api-Key": "secret"},
	}}, zap.NewNop())

	_, _, err := f.Fetch(context.Background(), "coins", map[string]string{"limit": "50"})
	require.NoError(t, err)
	assert.Equal(t, "50", gotQuery)
	assert.Equal(t, "secret", gotHeader)
}

func TestFetcher_Fetch_NoProviders(t *testing.T) {
	f := NewFetcher(nil, zap.NewNop())
	_, _, err := f.Fetch(context.Background(), "coins/abc", nil)
	assert.ErrorIs(t, err, ErrAllProvidersExhausted)
}

func TestProvider_URL(t *testing.T) {
	p := Provider{BaseURL: "https://frontend-api.pump.fun/"}
	assert.Equal(t, "https://frontend-api.pump.fun/coins/abc", p.URL("/coins/abc"))
	assert.Equal(t, "https://frontend-api.pump.fun", p.URL(""))
}
