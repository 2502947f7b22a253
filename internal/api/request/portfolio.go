package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name          string `json:"name"`
	ClientID      string `json:"clientId,omitempty"`
	PortfolioType string `json:"portfolioType,omitempty"`
	BaseCurrency  string `json:"baseCurrency,omitempty"`
	Benchmark     string `json:"benchmark,omitempty"`
	InceptionDate string `json:"inceptionDate,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type UpdatePortfolioRequest struct {
	Name      *string `json:"name,omitempty"`
	Benchmark *string `json:"benchmark,omitempty"`
	Status    *string `json:"status,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}
