package request

type CreateTransactionRequest struct {
	PortfolioID    string   `json:"portfolioId"`
	SecurityID     string   `json:"securityId"`
	TradeDate      string   `json:"tradeDate"`
	SettlementDate string   `json:"settlementDate,omitempty"`
	Type           string   `json:"type"`
	Quantity       float64  `json:"quantity"`
	Price          float64  `json:"price"`
	Fees           float64  `json:"fees"`
	Notes          string   `json:"notes,omitempty"`
	LotIDs         []string `json:"lotIds,omitempty"`
}

type UpdateTransactionRequest struct {
	TradeDate      *string  `json:"tradeDate,omitempty"`
	SettlementDate *string  `json:"settlementDate,omitempty"`
	Type           *string  `json:"type,omitempty"`
	Quantity       *float64 `json:"quantity,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Fees           *float64 `json:"fees,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Status         *string  `json:"status,omitempty"`
	LotIDs         []string `json:"lotIds,omitempty"`
}
