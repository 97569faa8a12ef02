package models

// Requests for the risk HTTP endpoints.

type RiskRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"600" validate:"gte=2,lte=5000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

type GateRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}
