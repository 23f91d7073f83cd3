// =============================
// File: internal/relay/client.go
// =============================
package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://pumpportal.fun"

// Client — тонкий клиент релеера PumpPortal. Гейтвей не строит и не
// подписывает транзакции сам: релеер возвращает сериализованную
// неподписанную транзакцию, которую подписывает кошелек в браузере.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient создает клиента релеера. Пустой baseURL заменяется продовым.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{Timeout: 12 * time.Second},
		logger:  logger.Named("relay"),
	}
}

// HTTPError — не-2xx ответ релеера.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("relayer http %d", e.StatusCode)
	}
	return fmt.Sprintf("relayer http %d: %s", e.StatusCode, b)
}

// TradeRequest — параметры сделки в формате PumpPortal trade-local.
type TradeRequest struct {
	PublicKey        string  `json:"publicKey"`
	Action           string  `json:"action"` // "buy" | "sell"
	Mint             string  `json:"mint"`
	Amount           float64 `json:"amount"`
	DenominatedInSol bool    `json:"denominatedInSol"`
	SlippagePercent  float64 `json:"slippage"`
	PriorityFee      float64 `json:"priorityFee"`
	Pool             string  `json:"pool,omitempty"`
}

func (r TradeRequest) validate() error {
	if strings.TrimSpace(r.PublicKey) == "" {
		return fmt.Errorf("publicKey is required")
	}
	if r.Action != "buy" && r.Action != "sell" {
		return fmt.Errorf("action must be buy or sell")
	}
	if strings.TrimSpace(r.Mint) == "" {
		return fmt.Errorf("mint is required")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// BuildTrade просит релеер собрать транзакцию и возвращает её в base64.
// Транзиентные сбои (сеть, 5xx) ретраятся с экспоненциальным backoff;
// ошибки запроса (4xx) — постоянные и не ретраятся.
func (c *Client) BuildTrade(ctx context.Context, req TradeRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode trade request: %w", err)
	}

	endpoint := c.baseURL + "/api/trade-local"
	if c.apiKey != "" {
		endpoint += "?" + url.Values{"api-key": {c.apiKey}}.Encode()
	}

	op := func() ([]byte, error) {
		return c.post(ctx, endpoint, body)
	}

	start := time.Now()
	raw, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(20*time.Second),
	)
	if err != nil {
		c.logger.Warn("relayer trade build failed",
			zap.String("action", req.Action),
			zap.String("mint", req.Mint),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	c.logger.Info("relayer returned unsigned transaction",
		zap.String("action", req.Action),
		zap.String("mint", req.Mint),
		zap.Int("tx_bytes", len(raw)),
		zap.Duration("latency", time.Since(start)))
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: raw}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backoff.Permanent(&HTTPError{StatusCode: resp.StatusCode, Body: raw})
	}
	if len(raw) == 0 {
		return nil, backoff.Permanent(fmt.Errorf("relayer returned empty transaction"))
	}
	return raw, nil
}
