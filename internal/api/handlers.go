package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"veaxAgent/internal/service"
)

const internalError = "Internal Server Error"

type errorResponse struct {
	Error string `json:"error"`
}

// handlerFunc produces the JSON body for a request or an error from the
// service taxonomy.
type handlerFunc func(r *http.Request) (any, error)

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := fn(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// writeError maps client errors to 400 with their message. Everything else
// is logged and reported as a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if service.IsClientError(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalError})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) tokens(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.Tokens(r.Context(), service.TokensRequest{
		Page:   q.Get("pageNo"),
		Search: q.Get("searchText"),
	})
}

func (s *Server) tokenPrice(r *http.Request) (any, error) {
	return s.backend.TokenPrice(r.Context(), r.URL.Query().Get("tokenAddress"))
}

func (s *Server) historicalPrice(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.HistoricalPrice(r.Context(), q.Get("tokenAddress"), q.Get("timestamp"))
}

func (s *Server) liquidityPaired(r *http.Request) (any, error) {
	return s.backend.LiquidityPaired(r.Context(), r.URL.Query().Get("tokenAddress"))
}

func (s *Server) pools(r *http.Request) (any, error) {
	return s.backend.Pools(r.Context())
}

func (s *Server) bestPools(r *http.Request) (any, error) {
	ranked, err := s.backend.RankedPools(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]any{"bestPools": ranked.Best}, nil
}

func (s *Server) riskyPools(r *http.Request) (any, error) {
	ranked, err := s.backend.RankedPools(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]any{"riskyPools": ranked.Risky}, nil
}

func (s *Server) lastUpdate(r *http.Request) (any, error) {
	return s.backend.LastPoolUpdate(r.Context())
}

func (s *Server) spotPrice(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.SpotPrice(r.Context(), q.Get("tokenA"), q.Get("tokenB"))
}

func (s *Server) poolByTokens(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.PoolByTokens(r.Context(), q.Get("tokenA"), q.Get("tokenB"))
}

func (s *Server) addLiquidity(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.AddLiquidity(r.Context(), service.AddLiquidityRequest{
		SymbolA: q.Get("tokenSymbolA"),
		SymbolB: q.Get("tokenSymbolB"),
		Wallet:  q.Get("walletAddress"),
		Amount:  q.Get("amount"),
		FeeTier: q.Get("feeTier"),
	})
}

func (s *Server) planRange(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.PlanRange(r.Context(), service.RangeRequest{
		SymbolA: q.Get("tokenSymbolA"),
		SymbolB: q.Get("tokenSymbolB"),
		FeeTier: q.Get("feeTier"),
	})
}

func (s *Server) swap(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.Swap(r.Context(), service.SwapRequest{
		FromSymbol: q.Get("fromTokenSymbol"),
		ToSymbol:   q.Get("toTokenSymbol"),
		Wallet:     q.Get("walletAddress"),
		Amount:     q.Get("amount"),
		Slippage:   q.Get("slippage"),
	})
}

func (s *Server) doubleSwap(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.DoubleSwap(r.Context(), service.DoubleSwapRequest{
		FromSymbol: q.Get("fromTokenSymbol"),
		MidSymbol:  q.Get("midTokenSymbol"),
		ToSymbol:   q.Get("toTokenSymbol"),
		Wallet:     q.Get("walletAddress"),
		Amount:     q.Get("amount"),
		Slippage:   q.Get("slippage"),
	})
}

func (s *Server) positions(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.Positions(r.Context(), q.Get("walletAddress"), q.Get("pageNo"))
}

func (s *Server) position(r *http.Request) (any, error) {
	return s.backend.Position(r.Context(), r.URL.Query().Get("positionId"))
}

func (s *Server) balance(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.backend.Balance(r.Context(), q.Get("tokenSymbol"), q.Get("walletAddress"))
}
