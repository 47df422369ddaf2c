package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/matka-risk-platform/internal/jantri"
	"github.com/radieske/matka-risk-platform/internal/odds"
	"github.com/radieske/matka-risk-platform/internal/risk-service/dto"
)

// sessionOf: ?session= tem precedência sobre o header
func sessionOf(r *http.Request) string {
	if s := strings.TrimSpace(r.URL.Query().Get("session")); s != "" {
		return s
	}
	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

func (a *API) listMarkets(w http.ResponseWriter, r *http.Request) {
	mk, err := a.Bets.ListMarkets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mk)
}

func (a *API) getBoard(w http.ResponseWriter, r *http.Request) {
	resp, err := a.buildBoard(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) snapshot(w http.ResponseWriter, r *http.Request) {
	if a.Archive == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "archive disabled"})
		return
	}
	resp, err := a.buildBoard(r)
	if err != nil {
		writeError(w, err)
		return
	}
	key, err := a.Archive.Put(r.Context(), resp.Board, resp.Session)
	if err != nil {
		a.logger().Error("snapshot failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.SnapshotResponse{ObjectKey: key})
}

func (a *API) buildBoard(r *http.Request) (dto.BoardResponse, error) {
	start := a.now()
	ctx := r.Context()

	v, err := jantri.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		return dto.BoardResponse{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	q := r.URL.Query()
	market := strings.TrimSpace(q.Get("market"))

	var showEmpty *bool
	if s := q.Get("show_empty"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return dto.BoardResponse{}, fmt.Errorf("%w: show_empty=%q", errBadRequest, s)
		}
		showEmpty = &b
	}

	session := sessionOf(r)
	th, _ := a.thresholdsFor(ctx, session)

	m, err := a.multiplierFor(ctx, v)
	if err != nil {
		return dto.BoardResponse{}, err
	}
	bets, err := a.Bets.ListOpenBets(ctx, market, v.Mode())
	if err != nil {
		return dto.BoardResponse{}, err
	}

	board := jantri.BuildBoard(bets, jantri.BoardOptions{
		View:       v,
		MarketID:   market,
		Multiplier: m,
		Thresholds: th,
		ShowEmpty:  showEmpty,
	})
	now := a.now()
	if a.ObserveBoard != nil {
		a.ObserveBoard(string(v), now.Sub(start))
	}
	return dto.BoardResponse{Board: board, Session: session, GeneratedAt: now.UTC()}, nil
}

// multiplierFor: settings da modalidade; sem settings, Jodi/Harf usam o fixo
// e Odd/Even fica sem pagamento.
func (a *API) multiplierFor(ctx context.Context, v jantri.View) (odds.Multiplier, error) {
	m, err := a.lookupMultiplier(ctx, odds.Key(jantri.GameTypeSatamatka, string(v.Mode())))
	if errors.Is(err, odds.ErrNotConfigured) {
		if v == jantri.ViewOddEven {
			return odds.Multiplier{}, nil
		}
		fixed := a.FixedMultiplier
		if fixed <= 0 {
			fixed = odds.FixedJodiHarf
		}
		return odds.Fixed(fixed), nil
	}
	return m, err
}

func (a *API) lookupMultiplier(ctx context.Context, key string) (odds.Multiplier, error) {
	if m, ok, err := a.Cache.GetMultiplier(ctx, key); err == nil && ok {
		return m, nil
	} else if err != nil {
		a.logger().Warn("odds cache read failed", zap.String("key", key), zap.Error(err))
	}
	m, err := a.Odds.GetMultiplier(ctx, key)
	if err != nil {
		return odds.Multiplier{}, err
	}
	if err := a.Cache.SetMultiplier(ctx, key, m, a.OddsTTL); err != nil {
		a.logger().Warn("odds cache write failed", zap.String("key", key), zap.Error(err))
	}
	return m, nil
}

// thresholdsFor devolve os limites da sessão ou os padrões do serviço
func (a *API) thresholdsFor(ctx context.Context, session string) (jantri.Thresholds, string) {
	if session == "" {
		return a.Defaults, "default"
	}
	t, ok, err := a.Cache.GetThresholds(ctx, session)
	if err != nil {
		a.logger().Warn("thresholds cache read failed", zap.String("session", session), zap.Error(err))
		return a.Defaults, "default"
	}
	if !ok || t.Validate() != nil {
		return a.Defaults, "default"
	}
	return t, "session"
}

func (a *API) getThresholds(w http.ResponseWriter, r *http.Request) {
	session := sessionOf(r)
	t, src := a.thresholdsFor(r.Context(), session)
	writeJSON(w, http.StatusOK, dto.ThresholdsResponse{Session: session, Source: src, Thresholds: t})
}

func (a *API) putThresholds(w http.ResponseWriter, r *http.Request) {
	session := sessionOf(r)
	if session == "" {
		writeError(w, fmt.Errorf("%w: session is required", errBadRequest))
		return
	}
	var req dto.ThresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	t, err := jantri.NewThresholds(req.High, req.Medium, req.Low)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.Cache.SetThresholds(r.Context(), session, t, a.ThresholdTTL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ThresholdsResponse{Session: session, Source: "session", Thresholds: t})
}

func oddsKey(r *http.Request) string {
	return odds.Key(chi.URLParam(r, "gameType"), chi.URLParam(r, "mode"))
}

func oddsResponse(key string, m odds.Multiplier) dto.OddsResponse {
	return dto.OddsResponse{Key: key, Raw: m.Raw.String(), Scale: string(m.Scale), Value: m.String()}
}

func (a *API) getOdds(w http.ResponseWriter, r *http.Request) {
	key := oddsKey(r)
	m, err := a.lookupMultiplier(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, oddsResponse(key, m))
}

func (a *API) putOdds(w http.ResponseWriter, r *http.Request) {
	key := oddsKey(r)
	var req dto.OddsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sc, err := odds.ParseScale(req.Scale)
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := odds.New(req.Raw, sc)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.Odds.UpsertMultiplier(r.Context(), key, m); err != nil {
		writeError(w, err)
		return
	}
	if err := a.Cache.DeleteMultiplier(r.Context(), key); err != nil {
		a.logger().Warn("odds cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, oddsResponse(key, m))
}
