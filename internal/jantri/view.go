package jantri

import (
	"fmt"
	"strings"
)

// View é uma das grades do dashboard de jantri.
type View string

const (
	ViewJodi    View = "jodi"
	ViewHarf    View = "harf"
	ViewOddEven View = "odd_even"
)

var (
	jodiDomain    = buildJodiDomain()
	harfDomain    = buildHarfDomain()
	oddEvenDomain = []string{"odd", "even"}
)

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewJodi, ViewHarf, ViewOddEven:
		return v, nil
	default:
		return "", fmt.Errorf("jantri: unknown view %q", s)
	}
}

// Mode é a modalidade de aposta agregada pela grade.
func (v View) Mode() GameMode {
	switch v {
	case ViewHarf:
		return ModeHarf
	case ViewOddEven:
		return ModeOddEven
	default:
		return ModeJodi
	}
}

// Domain devolve as chaves fixas da grade (cópia).
func (v View) Domain() []string {
	var src []string
	switch v {
	case ViewHarf:
		src = harfDomain
	case ViewOddEven:
		src = oddEvenDomain
	default:
		src = jodiDomain
	}
	return append([]string(nil), src...)
}

// ShowsEmptyByDefault: a tabela Jodi esconde números sem aposta; Harf e
// Par/Ímpar sempre mostram todos os baldes.
func (v View) ShowsEmptyByDefault() bool { return v != ViewJodi }

// normalizeKey leva a prediction para o formato da chave da grade.
func (v View) normalizeKey(p string) string {
	p = strings.TrimSpace(p)
	switch v {
	case ViewJodi:
		if len(p) == 1 && p[0] >= '0' && p[0] <= '9' {
			return "0" + p
		}
		return p
	case ViewHarf:
		return strings.ToUpper(p)
	default:
		return strings.ToLower(p)
	}
}

func buildJodiDomain() []string {
	out := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		out = append(out, fmt.Sprintf("%02d", i))
	}
	return out
}

func buildHarfDomain() []string {
	out := make([]string, 0, 20)
	for _, side := range []string{"A", "B"} {
		for d := 0; d < 10; d++ {
			out = append(out, fmt.Sprintf("%s%d", side, d))
		}
	}
	return out
}
