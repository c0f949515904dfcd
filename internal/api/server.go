package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"veaxAgent/internal/assistant"
	"veaxAgent/internal/metrics"
	"veaxAgent/internal/model"
	"veaxAgent/internal/pools"
	"veaxAgent/internal/service"
)

// Backend is the request pipeline the handlers call into.
type Backend interface {
	Tokens(ctx context.Context, req service.TokensRequest) (service.TokenList, error)
	TokenPrice(ctx context.Context, address string) (json.RawMessage, error)
	HistoricalPrice(ctx context.Context, address, timestamp string) (json.RawMessage, error)
	LiquidityPaired(ctx context.Context, address string) (json.RawMessage, error)
	Pools(ctx context.Context) (json.RawMessage, error)
	RankedPools(ctx context.Context) (pools.Ranked, error)
	LastPoolUpdate(ctx context.Context) (json.RawMessage, error)
	SpotPrice(ctx context.Context, tokenA, tokenB string) (json.RawMessage, error)
	PoolByTokens(ctx context.Context, tokenA, tokenB string) (json.RawMessage, error)
	AddLiquidity(ctx context.Context, req service.AddLiquidityRequest) (service.Plan, error)
	PlanRange(ctx context.Context, req service.RangeRequest) (service.RangePreview, error)
	Swap(ctx context.Context, req service.SwapRequest) (service.Plan, error)
	DoubleSwap(ctx context.Context, req service.DoubleSwapRequest) (service.Plan, error)
	Positions(ctx context.Context, wallet, page string) (model.PositionPage, error)
	Position(ctx context.Context, id string) (model.Position, error)
	Balance(ctx context.Context, symbol, wallet string) (service.Balance, error)
}

// Options configures the optional parts of the router.
type Options struct {
	CORSOrigins []string
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Assistant   *assistant.Proxy
}

// Server bundles dependencies for the HTTP API.
type Server struct {
	router  chi.Router
	backend Backend
	metrics *metrics.Metrics
	logger  *zap.Logger
	started time.Time
}

// NewServer constructs a Server with registered routes.
func NewServer(backend Backend, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		router:  chi.NewRouter(),
		backend: backend,
		metrics: opts.Metrics,
		logger:  logger.Named("api"),
		started: time.Now(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.healthzHandler)
	if opts.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/tokens", func(r chi.Router) {
			r.Get("/", s.handle(s.tokens))
			r.Get("/price", s.handle(s.tokenPrice))
			r.Get("/historical-price", s.handle(s.historicalPrice))
			r.Get("/liquidity-paired", s.handle(s.liquidityPaired))
		})
		r.Route("/pools", func(r chi.Router) {
			r.Get("/", s.handle(s.pools))
			r.Get("/best-pools", s.handle(s.bestPools))
			r.Get("/risky-pools", s.handle(s.riskyPools))
			r.Get("/last-update", s.handle(s.lastUpdate))
			r.Get("/spot-price", s.handle(s.spotPrice))
			r.Get("/by-tokens", s.handle(s.poolByTokens))
		})
		r.Get("/add-liquidity", s.handle(s.addLiquidity))
		r.Get("/add-liquidity/range", s.handle(s.planRange))
		r.Get("/swap", s.handle(s.swap))
		r.Get("/double-swap", s.handle(s.doubleSwap))
		r.Get("/positions", s.handle(s.positions))
		r.Get("/positions/position", s.handle(s.position))
		r.Get("/balance", s.handle(s.balance))

		if opts.Assistant != nil {
			r.Post("/assistant/chat", opts.Assistant.Chat)
			r.Get("/assistant/history", opts.Assistant.History)
		}
	})

	return s
}

// Handler exposes the underlying router.
func (s *Server) Handler() http.Handler {
	return s.router
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Millisecond).String(),
	})
}

// observe records request counts and latency by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(route, status, time.Since(start))
	})
}
