package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"veaxAgent/internal/metrics"
)

const (
	jsonRPCVersion = "2.0"
	maxErrorBody   = 512
)

// ErrEmptyResult is returned when a call succeeds without a result payload.
var ErrEmptyResult = errors.New("empty rpc result")

// Error is a JSON-RPC error object returned by the remote service.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Caller is implemented by Client; service clients depend on it so tests can
// substitute an in-memory fake.
type Caller interface {
	Call(ctx context.Context, method string, params any, result any) error
}

// Config controls a single upstream JSON-RPC endpoint.
type Config struct {
	Service      string
	URL          string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Client speaks JSON-RPC 2.0 over HTTP POST with named params.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
	nextID  atomic.Uint64
}

// NewClient creates a client for one upstream service.
func NewClient(cfg Config, logger *zap.Logger, m *metrics.Metrics) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%s rpc url is required", cfg.Service)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		logger:  logger.Named("rpc").With(zap.String("service", cfg.Service)),
		metrics: m,
	}, nil
}

// Service returns the logical upstream name used in logs and metrics.
func (c *Client) Service() string {
	return c.cfg.Service
}

// Call invokes method with params and decodes the result into result.
// Transport failures and 5xx responses are retried up to MaxRetries times;
// JSON-RPC errors are returned immediately.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(request{
		JSONRPC: jsonRPCVersion,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	raw, err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) (json.RawMessage, error) {
		return c.do(ctx, method, body)
	}, func(err error, next time.Duration) {
		c.logger.Warn("rpc call retry",
			zap.String("method", method),
			zap.Duration("backoff", next),
			zap.Error(err))
	})
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		c.metrics.ObserveRPC(c.cfg.Service, method, metrics.OutcomeDecode, 0)
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, body []byte) (json.RawMessage, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRPC(c.cfg.Service, method, metrics.OutcomeTransport, time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", c.cfg.Service, method, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.logger.Debug("rpc call completed",
		zap.String("method", method),
		zap.Duration("duration", elapsed),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveRPC(c.cfg.Service, method, metrics.OutcomeHTTPError, elapsed)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
		if resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, permanent(statusErr)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.metrics.ObserveRPC(c.cfg.Service, method, metrics.OutcomeDecode, elapsed)
		return nil, permanent(fmt.Errorf("decode %s response: %w", method, err))
	}
	if decoded.Error != nil {
		c.metrics.ObserveRPC(c.cfg.Service, method, metrics.OutcomeRPCError, elapsed)
		return nil, permanent(decoded.Error)
	}
	if len(decoded.Result) == 0 || string(decoded.Result) == "null" {
		c.metrics.ObserveRPC(c.cfg.Service, method, metrics.OutcomeRPCError, elapsed)
		return nil, permanent(fmt.Errorf("%s %s: %w", c.cfg.Service, method, ErrEmptyResult))
	}

	c.metrics.ObserveRPC(c.cfg.Service, method, metrics.OutcomeOK, elapsed)
	return decoded.Result, nil
}
