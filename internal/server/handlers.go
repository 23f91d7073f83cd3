package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-gateway/internal/provider"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/quote"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/relay"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/token"
)

// TokenReader is the token-data dependency of the handlers.
type TokenReader interface {
	GetToken(ctx context.Context, mint string) (*token.Info, error)
	ListTrending(ctx context.Context, limit int) (json.RawMessage, error)
}

// HealthChecker probes the configured provider classes.
type HealthChecker interface {
	CheckHealth(ctx context.Context, classes []provider.Provider) provider.Health
}

// TradeBuilder forwards a trade intent to the external relayer.
type TradeBuilder interface {
	BuildTrade(ctx context.Context, req relay.TradeRequest) (string, error)
}

// Handlers contains all dependencies for API endpoint handlers.
// Everything is injected explicitly; there is no package-level state.
type Handlers struct {
	Tokens        TokenReader
	Engine        *quote.Engine
	Health        HealthChecker
	HealthClasses []provider.Provider
	Relay         TradeBuilder
	Cache         *TokenCache
	Logger        *zap.Logger
	DevMode       bool
}

// err returns a standardized JSON error response.
// In dev mode, includes additional error details for debugging.
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds.
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// HealthStatus aggregates reachability of the provider classes.
// Status mapping: every class reachable -> ok, some -> degraded, none -> error.
func (h *Handlers) HealthStatus(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	health := h.Health.CheckHealth(ctx, h.HealthClasses)
	code := http.StatusOK
	if health.Status == provider.StatusError {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, health)
}

// GetToken returns token metadata and the current reserve snapshot.
// Metadata reads go through the TTL cache; the reserve snapshot inside a
// cached entry is for display only.
func (h *Handlers) GetToken(c echo.Context) error {
	mint := strings.TrimSpace(c.Param("mint"))
	if mint == "" {
		return h.err(c, http.StatusBadRequest, "invalid mint", nil)
	}

	if h.Cache != nil {
		if info, ok := h.Cache.Get(mint); ok {
			return c.JSON(http.StatusOK, info)
		}
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	info, err := h.Tokens.GetToken(ctx, mint)
	if err != nil {
		return h.mapFetchError(c, err)
	}
	if h.Cache != nil {
		h.Cache.Set(mint, info)
	}
	return c.JSON(http.StatusOK, info)
}

// ListTokens proxies the aggregate token listing.
// Accepts limit query parameter (default: 50, range: 1-200).
func (h *Handlers) ListTokens(c echo.Context) error {
	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	payload, err := h.Tokens.ListTrending(ctx, limit)
	if err != nil {
		return h.mapFetchError(c, err)
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// Quote validates the trade intent, fetches a fresh reserve snapshot and
// runs the quote engine. Reserves are never served from cache here: a quote
// is only valid for the instant its reserves were read.
func (h *Handlers) Quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	intent := quote.TradeIntent{Mint: req.Mint, Direction: req.Direction, Amount: req.Amount}
	// Intent validation happens before any network call.
	if err := intent.Validate(); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid trade intent", map[string]any{
			"amount":    "must be positive",
			"direction": "buy or sell",
			"mint":      "required",
		})
	}
	if req.Slippage != nil && !req.Slippage.Valid() {
		return h.err(c, http.StatusBadRequest, "invalid slippage policy", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	info, err := h.Tokens.GetToken(ctx, req.Mint)
	if err != nil {
		return h.mapFetchError(c, err)
	}
	if info.Reserves == nil {
		return h.err(c, http.StatusBadGateway, "quote unavailable", map[string]any{"mint": req.Mint})
	}

	q, err := h.Engine.Compute(info.Reserves, intent)
	if err != nil {
		if errors.Is(err, quote.ErrInvalidIntent) {
			return h.err(c, http.StatusBadRequest, "invalid trade intent", nil)
		}
		return h.err(c, http.StatusBadGateway, "quote unavailable", nil)
	}

	resp := QuoteResponse{Success: true, Quote: q}
	if req.Slippage != nil {
		// Min-out bounds the quote's output side: tokens for a buy,
		// SOL for a sell.
		expected := q.EstimatedTokenAmount
		if intent.Direction == quote.DirectionSell {
			expected = q.EstimatedSolAmount
		}
		resp.MinAmountOut = quote.MinAmountOut(expected, *req.Slippage)
	}

	h.Logger.Debug("quote computed",
		zap.String("mint", q.Mint),
		zap.String("direction", string(q.Direction)),
		zap.Float64("price", q.EstimatedPrice),
		zap.Float64("min_amount_out", resp.MinAmountOut))
	return c.JSON(http.StatusOK, resp)
}

// Trade forwards the intent to the relayer and returns the unsigned
// transaction. Signing stays with the browser wallet extension.
func (h *Handlers) Trade(c echo.Context) error {
	if h.Relay == nil {
		return h.err(c, http.StatusNotImplemented, "relayer not configured", nil)
	}

	var req TradeGatewayRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	intent := quote.TradeIntent{Mint: req.Mint, Direction: req.Direction, Amount: req.Amount}
	if err := intent.Validate(); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid trade intent", nil)
	}
	if strings.TrimSpace(req.PublicKey) == "" {
		return h.err(c, http.StatusBadRequest, "invalid publicKey", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	tx, err := h.Relay.BuildTrade(ctx, relay.TradeRequest{
		PublicKey: req.PublicKey,
		Action:    string(req.Direction),
		Mint:      req.Mint,
		Amount:    req.Amount,
		// buy amounts are denominated in SOL, sell amounts in tokens
		DenominatedInSol: req.Direction == quote.DirectionBuy,
		SlippagePercent:  req.SlippagePercent,
		PriorityFee:      req.PriorityFee,
		Pool:             req.Pool,
	})
	if err != nil {
		var httpErr *relay.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
			return h.err(c, http.StatusBadRequest, "relayer rejected trade", httpErr.Error())
		}
		return h.err(c, http.StatusBadGateway, "relayer unavailable", nil)
	}

	return c.JSON(http.StatusOK, TradeGatewayResponse{Success: true, UnsignedTxB64: tx})
}

// mapFetchError translates data-layer failures into HTTP responses.
func (h *Handlers) mapFetchError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, provider.ErrAllProvidersExhausted):
		var exhausted *provider.ExhaustedError
		var details any
		if errors.As(err, &exhausted) {
			details = exhausted.Failures
		}
		return h.err(c, http.StatusServiceUnavailable, "service unavailable", details)
	case errors.Is(err, quote.ErrMissingReserves):
		return h.err(c, http.StatusBadGateway, "quote unavailable", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return h.err(c, http.StatusGatewayTimeout, "upstream timeout", nil)
	default:
		return h.err(c, http.StatusBadRequest, "invalid request", err.Error())
	}
}
