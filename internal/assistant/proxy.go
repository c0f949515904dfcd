package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"veaxAgent/internal/metrics"
)

const (
	serviceName = "assistant"
	maxBody     = 1 << 20
)

// Config points the proxy at the assistant upstream.
type Config struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Proxy forwards chat and history requests to the assistant upstream with
// the configured bearer key. Responses are passed through unchanged.
type Proxy struct {
	base    string
	key     string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) (*Proxy, error) {
	if cfg.URL == "" {
		return nil, errors.New("assistant url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parse assistant url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Proxy{
		base:    strings.TrimRight(cfg.URL, "/"),
		key:     cfg.APIKey,
		timeout: cfg.Timeout,
		http:    client,
		logger:  logger.Named("assistant"),
		metrics: m,
	}, nil
}

// Chat relays the request body to POST {base}/chat and streams the upstream
// response back, dropping Content-Encoding since the body is relayed as
// decoded bytes.
func (p *Proxy) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		p.fail(w, "chat", start, fmt.Errorf("read request body: %w", err))
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.base+"/chat", bytes.NewReader(body))
	if err != nil {
		p.fail(w, "chat", start, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.http.Do(req)
	if err != nil {
		p.fail(w, "chat", start, err)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if strings.EqualFold(key, "Content-Encoding") || strings.EqualFold(key, "Content-Length") {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	p.metrics.ObserveRPC(serviceName, "chat", outcomeFor(resp.StatusCode), time.Since(start))

	if err := stream(w, resp.Body); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("chat stream interrupted", zap.Error(err))
	}
}

// History fetches GET {base}/history?id=. Upstream errors keep their status
// with the upstream text as the error message.
func (p *Proxy) History(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing id parameter"})
		return
	}

	ctx := r.Context()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/history?id="+url.QueryEscape(id), nil)
	if err != nil {
		p.fail(w, "history", start, err)
		return
	}
	p.authorize(req)

	resp, err := p.http.Do(req)
	if err != nil {
		p.fail(w, "history", start, err)
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		p.fail(w, "history", start, fmt.Errorf("read history: %w", err))
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.metrics.ObserveRPC(serviceName, "history", metrics.OutcomeHTTPError, time.Since(start))
		writeJSON(w, resp.StatusCode, errorBody{Error: string(raw)})
		return
	}
	if !json.Valid(raw) {
		p.fail(w, "history", start, errors.New("history response is not json"))
		return
	}

	p.metrics.ObserveRPC(serviceName, "history", metrics.OutcomeOK, time.Since(start))
	writeJSON(w, http.StatusOK, json.RawMessage(raw))
}

func (p *Proxy) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.key)
}

func (p *Proxy) fail(w http.ResponseWriter, method string, start time.Time, err error) {
	p.metrics.ObserveRPC(serviceName, method, metrics.OutcomeTransport, time.Since(start))
	p.logger.Error("assistant request failed", zap.String("method", method), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func outcomeFor(status int) string {
	if status >= 200 && status < 300 {
		return metrics.OutcomeOK
	}
	return metrics.OutcomeHTTPError
}

// stream copies src to w, flushing after every chunk so server-sent events
// reach the client as they arrive.
func stream(w http.ResponseWriter, src io.Reader) error {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
