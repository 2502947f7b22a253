package model

import "time"

// Security represents a tradable instrument referenced by transactions and
// positions.
type Security struct {
	ID              string     `json:"id"`
	Symbol          string     `json:"symbol"`
	Name            string     `json:"name"`
	Type            string     `json:"type,omitempty"`
	Exchange        string     `json:"exchange,omitempty"`
	Currency        string     `json:"currency"`
	LastPrice       *float64   `json:"lastPrice,omitempty"`
	LastPriceUpdate *time.Time `json:"lastPriceUpdate,omitempty"`
}
