// Package odds representa os multiplicadores de pagamento configurados por
// modalidade (gameType + gameMode) e a aritmética de pagamento em paise.
package odds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale indica como o valor bruto foi gravado no settings.
type Scale string

const (
	ScaleBasisPointsE4 Scale = "basis_points_e4" // 19000 => 1.9
	ScaleBasisPointsE1 Scale = "basis_points_e1" // 19    => 1.9
	ScaleDecimal       Scale = "decimal"         // 1.9   => 1.9
)

// FixedJodiHarf é o multiplicador fixo usado para Jodi e Harf quando não há settings.
const FixedJodiHarf = 90

var (
	ErrUnknownScale  = errors.New("odds: unknown scale")
	ErrNotConfigured = errors.New("odds: multiplier not configured")
	ErrNegative      = errors.New("odds: negative multiplier")
)

var (
	tenThousand = decimal.NewFromInt(10000)
	ten         = decimal.NewFromInt(10)
)

// ParseScale valida o nome de escala vindo do banco ou da API.
func ParseScale(s string) (Scale, error) {
	switch sc := Scale(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScaleBasisPointsE4, ScaleBasisPointsE1, ScaleDecimal:
		return sc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScale, s)
	}
}

func (s Scale) divisor() decimal.Decimal {
	switch s {
	case ScaleBasisPointsE4:
		return tenThousand
	case ScaleBasisPointsE1:
		return ten
	default:
		return decimal.NewFromInt(1)
	}
}

// Multiplier é um valor de odd com a escala explícita.
type Multiplier struct {
	Raw   decimal.Decimal `json:"raw"`
	Scale Scale           `json:"scale"`
}

// New cria um multiplicador já etiquetado.
func New(raw decimal.Decimal, scale Scale) (Multiplier, error) {
	if _, err := ParseScale(string(scale)); err != nil {
		return Multiplier{}, err
	}
	if raw.IsNegative() {
		return Multiplier{}, fmt.Errorf("%w: %s", ErrNegative, raw)
	}
	return Multiplier{Raw: raw, Scale: scale}, nil
}

// Fixed devolve um multiplicador decimal constante (ex.: 90 para Jodi/Harf).
func Fixed(v int64) Multiplier {
	return Multiplier{Raw: decimal.NewFromInt(v), Scale: ScaleDecimal}
}

// GuessScale reproduz a detecção legada por magnitude: >= 10000 => e4,
// >= 10 => e1, senão decimal. Só deve ser usada para valores sem etiqueta.
// Um 90 legado vira 9 aqui; por isso novos registros sempre gravam a escala.
func GuessScale(raw decimal.Decimal) Scale {
	switch {
	case raw.GreaterThanOrEqual(tenThousand):
		return ScaleBasisPointsE4
	case raw.GreaterThanOrEqual(ten):
		return ScaleBasisPointsE1
	default:
		return ScaleDecimal
	}
}

// FromLegacy etiqueta um valor antigo sem escala.
func FromLegacy(raw float64) Multiplier {
	d := decimal.NewFromFloat(raw)
	return Multiplier{Raw: d, Scale: GuessScale(d)}
}

// Value devolve o multiplicador de exibição (ex.: 1.9).
func (m Multiplier) Value() decimal.Decimal {
	return m.Raw.Div(m.Scale.divisor())
}

func (m Multiplier) IsZero() bool { return m.Raw.IsZero() }

func (m Multiplier) String() string { return m.Value().String() }

// Payout calcula amount × multiplicador em paise, arredondando para o paisa mais próximo.
func (m Multiplier) Payout(amountPaise int64) int64 {
	return decimal.NewFromInt(amountPaise).Mul(m.Value()).Round(0).IntPart()
}

// Key monta a chave composta usada no settings, ex.: "satamatka_odd_even".
func Key(gameType, gameMode string) string {
	gameType = strings.ToLower(strings.TrimSpace(gameType))
	gameMode = strings.ToLower(strings.TrimSpace(gameMode))
	if gameMode == "" {
		return gameType
	}
	return gameType + "_" + gameMode
}
