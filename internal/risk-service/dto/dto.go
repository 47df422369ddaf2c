package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/matka-risk-platform/internal/jantri"
)

// BoardResponse é a grade do jantri pronta para o dashboard
type BoardResponse struct {
	jantri.Board
	Session     string    `json:"session,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ThresholdsRequest: valores em paise
type ThresholdsRequest struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

type ThresholdsResponse struct {
	Session    string            `json:"session,omitempty"`
	Source     string            `json:"source"` // session | default
	Thresholds jantri.Thresholds `json:"thresholds"`
}

// OddsRequest aceita raw como número ou string ("19000" ou 19000)
type OddsRequest struct {
	Raw   decimal.Decimal `json:"raw"`
	Scale string          `json:"scale"`
}

type OddsResponse struct {
	Key   string `json:"key"`
	Raw   string `json:"raw"`
	Scale string `json:"scale"`
	Value string `json:"value"`
}

type SnapshotResponse struct {
	ObjectKey string `json:"objectKey"`
}
