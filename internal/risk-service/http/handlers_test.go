package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/radieske/matka-risk-platform/internal/jantri"
	"github.com/radieske/matka-risk-platform/internal/odds"
	"github.com/radieske/matka-risk-platform/internal/risk-service/dto"
	"github.com/radieske/matka-risk-platform/internal/risk-service/repo"
)

type fakeBets struct {
	markets []jantri.Market
	bets    []jantri.Bet
	err     error
}

func (f *fakeBets) ListMarkets(context.Context) ([]jantri.Market, error) { return f.markets, f.err }

// ListOpenBets devolve tudo: o filtro de mercado/modalidade fica com o jantri
func (f *fakeBets) ListOpenBets(context.Context, string, jantri.GameMode) ([]jantri.Bet, error) {
	return f.bets, f.err
}

type fakeOdds struct {
	m     map[string]odds.Multiplier
	reads int
}

func (f *fakeOdds) GetMultiplier(_ context.Context, key string) (odds.Multiplier, error) {
	f.reads++
	m, ok := f.m[key]
	if !ok {
		return odds.Multiplier{}, fmt.Errorf("%w: %w: %s", repo.ErrNotFound, odds.ErrNotConfigured, key)
	}
	return m, nil
}

func (f *fakeOdds) UpsertMultiplier(_ context.Context, key string, m odds.Multiplier) error {
	f.m[key] = m
	return nil
}

type fakeCache struct {
	setErr error
	mult   map[string]odds.Multiplier
	th     map[string]jantri.Thresholds
	ttl    time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{mult: map[string]odds.Multiplier{}, th: map[string]jantri.Thresholds{}}
}

func (c *fakeCache) GetMultiplier(_ context.Context, key string) (odds.Multiplier, bool, error) {
	m, ok := c.mult[key]
	return m, ok, nil
}

func (c *fakeCache) SetMultiplier(_ context.Context, key string, m odds.Multiplier, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mult[key] = m
	return nil
}

func (c *fakeCache) DeleteMultiplier(_ context.Context, key string) error {
	delete(c.mult, key)
	return nil
}

func (c *fakeCache) GetThresholds(_ context.Context, s string) (jantri.Thresholds, bool, error) {
	t, ok := c.th[s]
	return t, ok, nil
}

func (c *fakeCache) SetThresholds(_ context.Context, s string, t jantri.Thresholds, ttl time.Duration) error {
	c.th[s] = t
	c.ttl = ttl
	return nil
}

type fakeArchive struct {
	board    jantri.Board
	operator string
	err      error
}

func (f *fakeArchive) Put(_ context.Context, b jantri.Board, operator string) (string, error) {
	f.board, f.operator = b, operator
	if f.err != nil {
		return "", f.err
	}
	return "jantri/kalyan/jodi/2024-03-09/x.json.zst", nil
}

func sampleBets() []jantri.Bet {
	return []jantri.Bet{
		{ID: "1", MarketID: "kalyan", GameType: "satamatka", GameMode: jantri.ModeJodi, Prediction: "05", BetAmount: 200},
		{ID: "2", MarketID: "kalyan", GameType: "satamatka", GameMode: jantri.ModeJodi, Prediction: "05", BetAmount: 100, Result: "won"},
		{ID: "3", MarketID: "milan", GameType: "satamatka", GameMode: jantri.ModeJodi, Prediction: "42", BetAmount: 700},
		{ID: "4", MarketID: "kalyan", GameType: "satamatka", GameMode: jantri.ModeOddEven, Prediction: "odd", BetAmount: 1000},
		{ID: "5", MarketID: "kalyan", GameType: "satamatka", GameMode: jantri.ModeHarf, Prediction: "a3", BetAmount: 50},
	}
}

func newTestAPI() (*API, *fakeOdds, *fakeCache) {
	o := &fakeOdds{m: map[string]odds.Multiplier{}}
	c := newFakeCache()
	return &API{
		Bets:         &fakeBets{bets: sampleBets(), markets: []jantri.Market{{ID: "kalyan", Name: "Kalyan"}}},
		Odds:         o,
		Cache:        c,
		Defaults:     jantri.Thresholds{High: 1500, Medium: 750, Low: 100},
		ThresholdTTL: time.Hour,
		OddsTTL:      time.Minute,
	}, o, c
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestJodiBoardUsesFixedMultiplier(t *testing.T) {
	api, _, _ := newTestAPI()
	var observed string
	api.ObserveBoard = func(view string, _ time.Duration) { observed = view }

	rec := do(t, api.Router(), http.MethodGet, "/v1/jantri/jodi?market=kalyan", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[dto.BoardResponse](t, rec)
	if len(got.Cells) != 1 {
		t.Fatalf("want only the non-empty jodi bucket, got %d cells", len(got.Cells))
	}
	c := got.Cells[0]
	if c.Key != "05" || c.Count != 1 || c.TotalAmount != 200 || c.PotentialPayout != 18000 {
		t.Fatalf("unexpected cell %+v", c)
	}
	if got.Multiplier != "90" || c.Band != jantri.BandLow {
		t.Fatalf("multiplier=%s band=%s", got.Multiplier, c.Band)
	}
	if observed != "jodi" {
		t.Fatalf("board latency not observed: %q", observed)
	}
}

func TestBoardShowEmptyAndAllMarkets(t *testing.T) {
	api, _, _ := newTestAPI()
	rec := do(t, api.Router(), http.MethodGet, "/v1/jantri/jodi?show_empty=true", "")
	got := decode[dto.BoardResponse](t, rec)
	if len(got.Cells) != 100 {
		t.Fatalf("show_empty=true should render 100 cells, got %d", len(got.Cells))
	}
	if got.Total.Count != 2 || got.Total.TotalAmount != 900 {
		t.Fatalf("all-markets total %+v", got.Total)
	}
	if got.Cells[42].Band != jantri.BandLow {
		t.Fatalf("cell 42 band %s", got.Cells[42].Band)
	}

	if rec := do(t, api.Router(), http.MethodGet, "/v1/jantri/jodi?show_empty=maybe", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad show_empty: status %d", rec.Code)
	}
	if rec := do(t, api.Router(), http.MethodGet, "/v1/jantri/crossing", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown view: status %d", rec.Code)
	}
}

func TestOddEvenBoardUsesConfiguredOdds(t *testing.T) {
	api, o, _ := newTestAPI()
	rec := do(t, api.Router(), http.MethodGet, "/v1/jantri/odd_even?market=kalyan", "")
	got := decode[dto.BoardResponse](t, rec)
	if len(got.Cells) != 2 || got.Cells[0].PotentialPayout != 0 {
		t.Fatalf("unconfigured odd/even should have zero payout: %+v", got.Cells)
	}

	o.m["satamatka_odd_even"] = odds.FromLegacy(19000)
	rec = do(t, api.Router(), http.MethodGet, "/v1/jantri/odd_even?market=kalyan", "")
	got = decode[dto.BoardResponse](t, rec)
	odd := got.Cells[0]
	if odd.Key != "odd" || odd.PotentialPayout != 1900 || odd.Band != jantri.BandMedium {
		t.Fatalf("odd cell %+v", odd)
	}
	if got.Multiplier != "1.9" {
		t.Fatalf("multiplier %s", got.Multiplier)
	}
}

func TestMultiplierIsCached(t *testing.T) {
	api, o, _ := newTestAPI()
	o.m["satamatka_odd_even"] = odds.FromLegacy(19)
	for i := 0; i < 3; i++ {
		do(t, api.Router(), http.MethodGet, "/v1/jantri/odd_even", "")
	}
	if o.reads != 1 {
		t.Fatalf("settings read %d times, want 1", o.reads)
	}
}

func TestSessionThresholds(t *testing.T) {
	api, _, c := newTestAPI()
	h := api.Router()

	rec := do(t, h, http.MethodGet, "/v1/thresholds", "")
	got := decode[dto.ThresholdsResponse](t, rec)
	if got.Source != "default" || got.Thresholds != api.Defaults {
		t.Fatalf("defaults: %+v", got)
	}

	rec = do(t, h, http.MethodPut, "/v1/thresholds?session=op1", `{"high":300,"medium":150,"low":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: %d %s", rec.Code, rec.Body.String())
	}
	if c.ttl != time.Hour {
		t.Fatalf("thresholds stored with ttl %v", c.ttl)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/jantri/jodi?market=kalyan", nil)
	req.Header.Set("X-Session-ID", "op1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	board := decode[dto.BoardResponse](t, rr)
	if board.Session != "op1" || board.Cells[0].Band != jantri.BandMedium {
		t.Fatalf("session thresholds not applied: session=%q band=%s", board.Session, board.Cells[0].Band)
	}

	// outras sessões continuam com o padrão
	rec = do(t, h, http.MethodGet, "/v1/jantri/jodi?market=kalyan&session=op2", "")
	if b := decode[dto.BoardResponse](t, rec); b.Cells[0].Band != jantri.BandLow {
		t.Fatalf("op2 band %s", b.Cells[0].Band)
	}
}

func TestPutThresholdsRejectsInvalid(t *testing.T) {
	api, _, _ := newTestAPI()
	h := api.Router()
	cases := []struct {
		name, target, body string
	}{
		{"no session", "/v1/thresholds", `{"high":3,"medium":2,"low":1}`},
		{"not monotonic", "/v1/thresholds?session=s", `{"high":100,"medium":200,"low":10}`},
		{"zero low", "/v1/thresholds?session=s", `{"high":3,"medium":2,"low":0}`},
		{"bad json", "/v1/thresholds?session=s", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, tc.target, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOddsEndpoints(t *testing.T) {
	api, o, c := newTestAPI()
	h := api.Router()

	if rec := do(t, h, http.MethodGet, "/v1/odds/satamatka/odd_even", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing odds: status %d", rec.Code)
	}

	c.mult["satamatka_odd_even"] = odds.FromLegacy(1.5)
	rec := do(t, h, http.MethodPut, "/v1/odds/Satamatka/odd_even", `{"raw":"19000","scale":"basis_points_e4"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put odds: %d %s", rec.Code, rec.Body.String())
	}
	if _, ok := c.mult["satamatka_odd_even"]; ok {
		t.Fatal("cache not invalidated on write")
	}
	if m := o.m["satamatka_odd_even"]; m.Scale != odds.ScaleBasisPointsE4 || !m.Raw.Equal(decimal.NewFromInt(19000)) {
		t.Fatalf("stored %+v", m)
	}

	rec = do(t, h, http.MethodGet, "/v1/odds/satamatka/odd_even", "")
	got := decode[dto.OddsResponse](t, rec)
	if got.Value != "1.9" || got.Scale != "basis_points_e4" || got.Key != "satamatka_odd_even" {
		t.Fatalf("odds response %+v", got)
	}

	for _, body := range []string{`{"raw":19,"scale":"percent"}`, `{"raw":-1,"scale":"decimal"}`} {
		if rec := do(t, h, http.MethodPut, "/v1/odds/satamatka/odd_even", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", body, rec.Code)
		}
	}
}

func TestSnapshot(t *testing.T) {
	api, _, _ := newTestAPI()
	if rec := do(t, api.Router(), http.MethodPost, "/v1/jantri/jodi/snapshot", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("disabled archive: status %d", rec.Code)
	}

	arch := &fakeArchive{}
	api.Archive = arch
	rec := do(t, api.Router(), http.MethodPost, "/v1/jantri/jodi/snapshot?market=kalyan&session=op1", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("snapshot: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[dto.SnapshotResponse](t, rec); got.ObjectKey == "" {
		t.Fatal("empty object key")
	}
	if arch.operator != "op1" || arch.board.MarketID != "kalyan" || len(arch.board.Cells) != 1 {
		t.Fatalf("archived %+v by %q", arch.board, arch.operator)
	}

	arch.err = errors.New("s3 down")
	if rec := do(t, api.Router(), http.MethodPost, "/v1/jantri/jodi/snapshot", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("archive failure: status %d", rec.Code)
	}
}

func TestListMarkets(t *testing.T) {
	api, _, _ := newTestAPI()
	rec := do(t, api.Router(), http.MethodGet, "/v1/markets", "")
	got := decode[[]jantri.Market](t, rec)
	if len(got) != 1 || got[0].ID != "kalyan" {
		t.Fatalf("markets %+v", got)
	}

	api.Bets = &fakeBets{err: errors.New("db down")}
	if rec := do(t, api.Router(), http.MethodGet, "/v1/markets", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestOddsCacheWriteFailureIsLogged(t *testing.T) {
	api, o, c := newTestAPI()
	core, logs := observer.New(zap.WarnLevel)
	api.Log = zap.New(core)
	c.setErr = errors.New("redis down")
	o.m["satamatka_odd_even"] = odds.FromLegacy(19)

	rec := do(t, api.Router(), http.MethodGet, "/v1/odds/satamatka/odd_even", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cache failure should not fail the read: %d", rec.Code)
	}
	entries := logs.FilterMessage("odds cache write failed").All()
	if len(entries) != 1 {
		t.Fatalf("want one warning, got %d", len(entries))
	}
	if key := entries[0].ContextMap()["key"]; key != "satamatka_odd_even" {
		t.Fatalf("logged key = %v", key)
	}
}
