package jantri

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatRupees converte paise para exibição; zero vira "-".
func FormatRupees(paise int64) string {
	if paise == 0 {
		return "-"
	}
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return sign + inr.Sprintf("₹%.2f", float64(paise)/100)
}

func DisplayResult(r string) string {
	if IsOpen(Bet{Result: r}) {
		return "Pending"
	}
	return strings.TrimSpace(r)
}

func DisplayMode(m GameMode) string {
	if strings.TrimSpace(string(m)) == "" {
		return "-"
	}
	return string(m)
}

func DisplayMarket(id string) string {
	if strings.TrimSpace(id) == "" {
		return "-"
	}
	return id
}
