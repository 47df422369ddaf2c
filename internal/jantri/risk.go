package jantri

import (
	"errors"
	"fmt"
)

// Band é a faixa de risco de um balde, em ordem crescente.
type Band string

const (
	BandNone   Band = "none"
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

var ErrInvalidThresholds = errors.New("jantri: thresholds must satisfy high > medium > low > 0")

// Thresholds são os limites em paise que separam as faixas.
type Thresholds struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

// DefaultThresholds: ₹10.000 / ₹5.000 / ₹1.000.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 1_000_000, Medium: 500_000, Low: 100_000}
}

// NewThresholds só aceita uma escala monotônica.
func NewThresholds(high, medium, low int64) (Thresholds, error) {
	t := Thresholds{High: high, Medium: medium, Low: low}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

func (t Thresholds) Validate() error {
	if !(t.High > t.Medium && t.Medium > t.Low && t.Low > 0) {
		return fmt.Errorf("%w (got high=%d medium=%d low=%d)", ErrInvalidThresholds, t.High, t.Medium, t.Low)
	}
	return nil
}

// Classify compara estritamente com High e Medium; qualquer valor positivo
// abaixo disso é Low. O limite Low não separa faixas, só valida a escala.
func Classify(total int64, t Thresholds) Band {
	switch {
	case total > t.High:
		return BandHigh
	case total > t.Medium:
		return BandMedium
	case total > 0:
		return BandLow
	default:
		return BandNone
	}
}

func (b Band) rank() int {
	switch b {
	case BandHigh:
		return 3
	case BandMedium:
		return 2
	case BandLow:
		return 1
	default:
		return 0
	}
}

// Colour é a classe CSS usada pelo dashboard.
func (b Band) Colour() string {
	switch b {
	case BandHigh:
		return "risk-high"
	case BandMedium:
		return "risk-medium"
	case BandLow:
		return "risk-low"
	default:
		return "risk-none"
	}
}
