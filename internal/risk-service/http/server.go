package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/matka-risk-platform/internal/jantri"
	"github.com/radieske/matka-risk-platform/internal/odds"
	"github.com/radieske/matka-risk-platform/internal/risk-service/repo"
)

type BetReader interface {
	ListMarkets(ctx context.Context) ([]jantri.Market, error)
	ListOpenBets(ctx context.Context, marketID string, mode jantri.GameMode) ([]jantri.Bet, error)
}

type OddsStore interface {
	GetMultiplier(ctx context.Context, key string) (odds.Multiplier, error)
	UpsertMultiplier(ctx context.Context, key string, m odds.Multiplier) error
}

type Cache interface {
	GetMultiplier(ctx context.Context, key string) (odds.Multiplier, bool, error)
	SetMultiplier(ctx context.Context, key string, m odds.Multiplier, ttl time.Duration) error
	DeleteMultiplier(ctx context.Context, key string) error
	GetThresholds(ctx context.Context, session string) (jantri.Thresholds, bool, error)
	SetThresholds(ctx context.Context, session string, t jantri.Thresholds, ttl time.Duration) error
}

type Snapshotter interface {
	Put(ctx context.Context, b jantri.Board, operator string) (string, error)
}

// API expõe as grades de jantri, os limites por sessão e os multiplicadores
type API struct {
	Log     *zap.Logger
	Bets    BetReader
	Odds    OddsStore
	Cache   Cache
	Archive Snapshotter      // nil => snapshots desabilitados
	WS      http.HandlerFunc // nil => sem /ws

	Defaults        jantri.Thresholds
	FixedMultiplier int64
	ThresholdTTL    time.Duration
	OddsTTL         time.Duration

	// ObserveBoard recebe a latência de montagem de cada grade
	ObserveBoard func(view string, d time.Duration)
	Now          func() time.Time
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Get("/v1/markets", a.listMarkets)
	r.Get("/v1/jantri/{view}", a.getBoard)
	r.Post("/v1/jantri/{view}/snapshot", a.snapshot)
	r.Get("/v1/thresholds", a.getThresholds)
	r.Put("/v1/thresholds", a.putThresholds)
	r.Get("/v1/odds/{gameType}/{mode}", a.getOdds)
	r.Put("/v1/odds/{gameType}/{mode}", a.putOdds)
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if a.Log == nil {
			return
		}
		a.Log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, jantri.ErrInvalidThresholds),
		errors.Is(err, odds.ErrUnknownScale),
		errors.Is(err, odds.ErrNegative):
		return http.StatusBadRequest
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *API) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}
