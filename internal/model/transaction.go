package model

import "time"

// Transaction represents a single trade or corporate action recorded against
// a portfolio. Only buy and sell transactions affect cost basis; the other
// types are carried through reporting untouched.
type Transaction struct {
	ID             string     `json:"id"`
	PortfolioID    string     `json:"portfolioId"`
	SecurityID     string     `json:"securityId"`
	SecurityName   string     `json:"securityName"`
	Type           string     `json:"type"` // buy, sell, dividend, fee, split, transfer
	Quantity       float64    `json:"quantity"`
	Price          float64    `json:"price"`
	TotalAmount    float64    `json:"totalAmount"`
	Fees           float64    `json:"fees"`
	TradeDate      time.Time  `json:"tradeDate"`
	SettlementDate *time.Time `json:"settlementDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
	// LotIDs designates the tax lots a sell should draw from when the
	// specific-identification method is selected. Ignored for other methods.
	LotIDs    []string  `json:"lotIds,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// IsBuy reports whether the transaction creates a tax lot.
func (t Transaction) IsBuy() bool { return t.Type == "buy" }

// IsSell reports whether the transaction consumes tax lots.
func (t Transaction) IsSell() bool { return t.Type == "sell" }

// TransactionResponse represents a transaction with enriched data for API
// responses.
type TransactionResponse struct {
	ID             string     `json:"id"`
	PortfolioID    string     `json:"portfolioId"`
	PortfolioName  string     `json:"portfolioName"`
	SecurityID     string     `json:"securityId"`
	SecurityName   string     `json:"securityName"`
	Type           string     `json:"type"`
	Quantity       float64    `json:"quantity"`
	Price          float64    `json:"price"`
	TotalAmount    float64    `json:"totalAmount"`
	Fees           float64    `json:"fees"`
	TradeDate      time.Time  `json:"tradeDate"`
	SettlementDate *time.Time `json:"settlementDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
}
