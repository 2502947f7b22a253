package model

import "time"

// Portfolio represents a client investment portfolio from the database.
type Portfolio struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"clientId,omitempty"`
	Name          string    `json:"name"`
	PortfolioType string    `json:"portfolioType,omitempty"`
	BaseCurrency  string    `json:"baseCurrency"`
	Benchmark     string    `json:"benchmark,omitempty"`
	InceptionDate time.Time `json:"inceptionDate,omitempty"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
}

// Position represents the current market snapshot of a security holding.
// The quantity here reflects what the upstream custodian reports; the
// cost-basis engine reconciles it against the sum of open tax lots.
type Position struct {
	ID              string    `json:"id"`
	PortfolioID     string    `json:"portfolioId"`
	SecurityID      string    `json:"securityId"`
	SecurityName    string    `json:"securityName"`
	SecurityType    string    `json:"securityType,omitempty"`
	Exchange        string    `json:"exchange,omitempty"`
	Quantity        float64   `json:"quantity"`
	AverageCost     float64   `json:"averageCost"`
	CurrentPrice    float64   `json:"currentPrice"`
	MarketValue     float64   `json:"marketValue"`
	LastPriceUpdate time.Time `json:"lastPriceUpdate,omitempty"`
}
