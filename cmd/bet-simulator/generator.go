package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/matka-risk-platform/internal/jantri"
	"github.com/radieske/matka-risk-platform/pkg/contracts/events"
)

const maxOpen = 1000

// generator produz apostas sintéticas e liquida parte das que ficaram abertas
type generator struct {
	rnd     *rand.Rand
	markets []string
	users   int
	open    []events.BetPlaced
}

func newGenerator(seed int64, markets []string) *generator {
	if len(markets) == 0 {
		markets = []string{"kalyan"}
	}
	return &generator{rnd: rand.New(rand.NewSource(seed)), markets: markets, users: 50}
}

func (g *generator) pickMode() jantri.GameMode {
	switch n := g.rnd.Intn(10); {
	case n < 5:
		return jantri.ModeJodi
	case n < 8:
		return jantri.ModeHarf
	default:
		return jantri.ModeOddEven
	}
}

func (g *generator) prediction(m jantri.GameMode) string {
	switch m {
	case jantri.ModeHarf:
		side := "A"
		if g.rnd.Intn(2) == 1 {
			side = "B"
		}
		return fmt.Sprintf("%s%d", side, g.rnd.Intn(10))
	case jantri.ModeOddEven:
		if g.rnd.Intn(2) == 0 {
			return "odd"
		}
		return "even"
	default:
		return fmt.Sprintf("%02d", g.rnd.Intn(100))
	}
}

func (g *generator) nextBet(now time.Time) events.BetPlaced {
	mode := g.pickMode()
	ev := events.BetPlaced{
		BetID:       uuid.NewString(),
		UserID:      fmt.Sprintf("user-%03d", g.rnd.Intn(g.users)),
		MarketID:    g.markets[g.rnd.Intn(len(g.markets))],
		GameType:    jantri.GameTypeSatamatka,
		GameMode:    string(mode),
		Prediction:  g.prediction(mode),
		AmountPaise: int64(1+g.rnd.Intn(50)) * 1000, // ₹10 .. ₹500
		TsUnixMs:    now.UnixMilli(),
	}
	g.open = append(g.open, ev)
	if len(g.open) > maxOpen {
		g.open = g.open[len(g.open)-maxOpen:]
	}
	return ev
}

// maybeSettle liquida uma aposta aberta em ~30% das chamadas
func (g *generator) maybeSettle(now time.Time) (events.BetSettled, bool) {
	if len(g.open) == 0 || g.rnd.Intn(10) >= 3 {
		return events.BetSettled{}, false
	}
	i := g.rnd.Intn(len(g.open))
	b := g.open[i]
	g.open = append(g.open[:i], g.open[i+1:]...)
	result := "lost"
	if g.rnd.Intn(10) == 0 {
		result = "won"
	}
	return events.BetSettled{BetID: b.BetID, MarketID: b.MarketID, Result: result, Ts: now.UTC()}, true
}
