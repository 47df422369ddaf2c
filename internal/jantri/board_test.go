package jantri

import (
	"testing"

	"github.com/radieske/matka-risk-platform/internal/odds"
)

func TestDomains(t *testing.T) {
	jodi := ViewJodi.Domain()
	if len(jodi) != 100 || jodi[0] != "00" || jodi[99] != "99" {
		t.Fatalf("jodi domain: len=%d first=%s last=%s", len(jodi), jodi[0], jodi[len(jodi)-1])
	}
	harf := ViewHarf.Domain()
	if len(harf) != 20 || harf[0] != "A0" || harf[10] != "B0" || harf[19] != "B9" {
		t.Fatalf("harf domain: %v", harf)
	}
	if oe := ViewOddEven.Domain(); len(oe) != 2 || oe[0] != "odd" || oe[1] != "even" {
		t.Fatalf("odd/even domain: %v", oe)
	}
	jodi[0] = "xx"
	if ViewJodi.Domain()[0] != "00" {
		t.Fatal("Domain returned a shared slice")
	}
}

func TestParseView(t *testing.T) {
	if v, err := ParseView(" Harf "); err != nil || v != ViewHarf {
		t.Fatalf("ParseView = %q, %v", v, err)
	}
	if _, err := ParseView("crossing"); err == nil {
		t.Fatal("ParseView accepted crossing")
	}
}

func TestBuildBoardEmptyBucketDefaults(t *testing.T) {
	bets := []Bet{
		{ID: "1", MarketID: "m1", GameMode: ModeJodi, Prediction: "05", BetAmount: 200},
		{ID: "2", MarketID: "m1", GameMode: ModeJodi, Prediction: "5", BetAmount: 100},
		{ID: "3", MarketID: "m1", GameMode: ModeHarf, Prediction: "a3", BetAmount: 400},
		{ID: "4", MarketID: "m1", GameMode: ModeOddEven, Prediction: "odd", BetAmount: 1000},
	}
	th := Thresholds{High: 1000, Medium: 500, Low: 100}

	jodi := BuildBoard(bets, BoardOptions{View: ViewJodi, MarketID: "m1", Thresholds: th})
	if len(jodi.Cells) != 1 {
		t.Fatalf("jodi cells = %d, want 1", len(jodi.Cells))
	}
	c := jodi.Cells[0]
	if c.Key != "05" || c.Count != 2 || c.TotalAmount != 300 || c.PotentialPayout != 27000 || c.Band != BandLow {
		t.Errorf("jodi cell = %+v", c)
	}
	if jodi.Multiplier != "90" {
		t.Errorf("jodi multiplier = %s, want 90", jodi.Multiplier)
	}

	harf := BuildBoard(bets, BoardOptions{View: ViewHarf, MarketID: "m1", Thresholds: th})
	if len(harf.Cells) != 20 {
		t.Fatalf("harf cells = %d, want 20", len(harf.Cells))
	}
	if harf.Cells[3].Key != "A3" || harf.Cells[3].TotalAmount != 400 {
		t.Errorf("harf A3 = %+v", harf.Cells[3])
	}
	if harf.Cells[0].AmountDisplay != "-" || harf.Cells[0].Band != BandNone {
		t.Errorf("empty harf cell = %+v", harf.Cells[0])
	}

	oe := BuildBoard(bets, BoardOptions{View: ViewOddEven, MarketID: "m1", Thresholds: th, Multiplier: odds.FromLegacy(19000)})
	if len(oe.Cells) != 2 {
		t.Fatalf("odd/even cells = %d, want 2", len(oe.Cells))
	}
	if oe.Cells[0].PotentialPayout != 1900 || oe.Cells[0].Band != BandMedium {
		t.Errorf("odd cell = %+v", oe.Cells[0])
	}
	if oe.Highest != BandMedium {
		t.Errorf("highest = %s", oe.Highest)
	}
}

func TestBuildBoardShowEmptyOverride(t *testing.T) {
	show, hide := true, false
	jodi := BuildBoard(nil, BoardOptions{View: ViewJodi, Thresholds: DefaultThresholds(), ShowEmpty: &show})
	if len(jodi.Cells) != 100 {
		t.Errorf("jodi with ShowEmpty = %d cells", len(jodi.Cells))
	}
	harf := BuildBoard(nil, BoardOptions{View: ViewHarf, Thresholds: DefaultThresholds(), ShowEmpty: &hide})
	if len(harf.Cells) != 0 {
		t.Errorf("harf without ShowEmpty = %d cells", len(harf.Cells))
	}
}

func TestBuildBoardMarketScope(t *testing.T) {
	bets := []Bet{
		{ID: "1", MarketID: "m1", GameMode: ModeJodi, Prediction: "10", BetAmount: 100},
		{ID: "2", MarketID: "m2", GameMode: ModeJodi, Prediction: "10", BetAmount: 100},
		{ID: "3", MarketID: "m2", GameMode: ModeJodi, Prediction: "10", BetAmount: 100, Result: "10"},
	}
	all := BuildBoard(bets, BoardOptions{View: ViewJodi, Thresholds: DefaultThresholds()})
	if all.Total.Count != 2 {
		t.Errorf("all markets count = %d, want 2", all.Total.Count)
	}
	m2 := BuildBoard(bets, BoardOptions{View: ViewJodi, MarketID: "m2", Thresholds: DefaultThresholds()})
	if m2.Total.Count != 1 || m2.Cells[0].TotalAmount != 100 {
		t.Errorf("m2 board = %+v", m2)
	}
}

func TestOddEvenWithoutMultiplier(t *testing.T) {
	bets := []Bet{{ID: "1", GameMode: ModeOddEven, Prediction: "even", BetAmount: 100}}
	b := BuildBoard(bets, BoardOptions{View: ViewOddEven, Thresholds: DefaultThresholds()})
	if b.Cells[1].PotentialPayout != 0 || b.Cells[1].TotalAmount != 100 {
		t.Errorf("even cell = %+v", b.Cells[1])
	}
}

func TestBuildBoardTotalMatchesCells(t *testing.T) {
	bets := []Bet{
		{ID: "1", GameMode: ModeJodi, Prediction: "05", BetAmount: 100},
		{ID: "2", GameMode: ModeJodi, Prediction: "100", BetAmount: 5000},
		{ID: "3", GameMode: ModeHarf, Prediction: "A10", BetAmount: 700},
		{ID: "4", GameMode: ModeHarf, Prediction: "b2", BetAmount: 300},
	}
	for _, v := range []View{ViewJodi, ViewHarf} {
		b := BuildBoard(bets, BoardOptions{View: v, Thresholds: DefaultThresholds()})
		var count int
		var amount int64
		for _, c := range b.Cells {
			count += c.Count
			amount += c.TotalAmount
		}
		if b.Total.Count != count || b.Total.TotalAmount != amount {
			t.Errorf("%s: total %+v, cells count=%d amount=%d", v, b.Total, count, amount)
		}
		if b.Unmatched.Count != 1 {
			t.Errorf("%s: unmatched = %+v, want 1 bet", v, b.Unmatched)
		}
	}

	jodi := BuildBoard(bets, BoardOptions{View: ViewJodi, Thresholds: DefaultThresholds()})
	if jodi.Total.TotalAmount != 100 || jodi.Unmatched.TotalAmount != 5000 || jodi.Unmatched.PotentialPayout != 450000 {
		t.Errorf("jodi total=%+v unmatched=%+v", jodi.Total, jodi.Unmatched)
	}
}
