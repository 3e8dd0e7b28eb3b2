package models

import "time"

// Requests and responses for the /api surface. Defined in domain for
// consistency and reuse. The wire shapes are a compatibility contract and
// must not change.

type TokenRequest struct {
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
	Mode      string `json:"mode" validate:"omitempty,oneof=real virtual"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type DailyQuotesRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Start  string `query:"start"`
	End    string `query:"end"`
}

type DailyQuotesResponse struct {
	Symbol string       `json:"symbol"`
	Prices []PriceQuote `json:"prices"`
}

type WeightsRequest struct {
	TotalCash       float64         `json:"total_cash" validate:"required,gt=0"`
	Items           []PortfolioItem `json:"items" validate:"required,min=1,dive"`
	InitialBuyRatio float64         `json:"initial_buy_ratio" default:"0.5" validate:"gt=0,lt=1"`
	DiscountRate    float64         `json:"discount_rate" default:"0.03" validate:"gte=0,lt=1"`
}

type WeightsResponse struct {
	Results []AllocationItem `json:"results"`
}

type OrderPreviewRequest struct {
	TotalCash float64          `json:"total_cash" validate:"required,gt=0"`
	Results   []AllocationItem `json:"results" validate:"required,min=1,dive"`
}

type OrderPreviewResponse struct {
	Items           []PreviewItem `json:"items"`
	TotalCashNeeded float64       `json:"total_cash_needed"`
}

type OrderExecuteRequest struct {
	Items           []PreviewItem `json:"items" validate:"required,min=1,dive"`
	TotalCashNeeded float64       `json:"total_cash_needed"`
}

type OrderExecuteResponse struct {
	Results []OrderResult `json:"results"`
}

type HealthResponse struct {
	Mode    string `json:"mode"`
	BaseURL string `json:"base_url"`
}

type StreamRequest struct {
	Symbol string `query:"symbol" validate:"required"`
}
