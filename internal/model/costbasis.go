package model

import "time"

// CostBasisMethod selects the lot-consumption convention used when a sell
// transaction is applied against open tax lots.
type CostBasisMethod string

// Supported accounting methods.
const (
	MethodFIFO     CostBasisMethod = "fifo"
	MethodLIFO     CostBasisMethod = "lifo"
	MethodAverage  CostBasisMethod = "average"
	MethodSpecific CostBasisMethod = "specific"
)

// Valid reports whether the method is one of the supported conventions.
func (m CostBasisMethod) Valid() bool {
	switch m {
	case MethodFIFO, MethodLIFO, MethodAverage, MethodSpecific:
		return true
	}
	return false
}

// AllMethods lists every supported method, in the order used for
// method-comparison reports.
func AllMethods() []CostBasisMethod {
	return []CostBasisMethod{MethodFIFO, MethodLIFO, MethodAverage, MethodSpecific}
}

// TaxLot is a discrete batch of units of one security acquired by a single
// buy transaction. Lots are owned by the lot book that created them; the
// remaining quantity only ever decreases and a lot is dropped from the open
// set once it reaches zero.
type TaxLot struct {
	ID                string    `json:"id"`
	PortfolioID       string    `json:"portfolioId"`
	SecurityID        string    `json:"securityId"`
	PurchaseDate      time.Time `json:"purchaseDate"`
	OriginalQuantity  float64   `json:"originalQuantity"`
	RemainingQuantity float64   `json:"remainingQuantity"`
	CostPerUnit       float64   `json:"costPerUnit"`
}

// ConsumptionEvent records one (sell transaction, lot) pairing. A sell that
// spans several lots emits one event per lot touched; the event quantities
// sum to the sell quantity.
type ConsumptionEvent struct {
	LotID            string    `json:"lotId"`
	PortfolioID      string    `json:"portfolioId"`
	SecurityID       string    `json:"securityId"`
	SecurityName     string    `json:"securityName"`
	PurchaseDate     time.Time `json:"purchaseDate"`
	SellDate         time.Time `json:"sellDate"`
	Quantity         float64   `json:"quantity"`
	CostPerUnit      float64   `json:"costPerUnit"`
	SellPricePerUnit float64   `json:"sellPricePerUnit"`
}

// RealizedGainRecord is the classified result of one consumption event.
type RealizedGainRecord struct {
	PortfolioID       string    `json:"portfolioId"`
	SecurityID        string    `json:"securityId"`
	SecurityName      string    `json:"securityName"`
	PurchaseDate      time.Time `json:"purchaseDate"`
	SellDate          time.Time `json:"sellDate"`
	Quantity          float64   `json:"quantity"`
	CostBasis         float64   `json:"costBasis"`
	Proceeds          float64   `json:"proceeds"`
	GainLoss          float64   `json:"gainLoss"`
	HoldingPeriodDays int       `json:"holdingPeriodDays"`
	IsLongTerm        bool      `json:"isLongTerm"`
}

// UnrealizedDetail is the paper gain/loss on a lot still open at report time,
// valued at the security's current market price.
type UnrealizedDetail struct {
	LotID             string    `json:"lotId"`
	PortfolioID       string    `json:"portfolioId"`
	SecurityID        string    `json:"securityId"`
	PurchaseDate      time.Time `json:"purchaseDate"`
	Quantity          float64   `json:"quantity"`
	CostBasis         float64   `json:"costBasis"`
	MarketValue       float64   `json:"marketValue"`
	GainLoss          float64   `json:"gainLoss"`
	HoldingPeriodDays int       `json:"holdingPeriodDays"`
	IsLongTerm        bool      `json:"isLongTerm"`
}

// PositionCostBasis aggregates the open lots for one (portfolio, security)
// pair. Positions with no remaining quantity are excluded from reports.
type PositionCostBasis struct {
	PortfolioID       string             `json:"portfolioId"`
	SecurityID        string             `json:"securityId"`
	SecurityName      string             `json:"securityName"`
	TotalQuantity     float64            `json:"totalQuantity"`
	AverageCost       float64            `json:"averageCost"`
	TotalCostBasis    float64            `json:"totalCostBasis"`
	CurrentPrice      float64            `json:"currentPrice"`
	CurrentValue      float64            `json:"currentValue"`
	UnrealizedGL      float64            `json:"unrealizedGL"`
	UnrealizedGLPct   *float64           `json:"unrealizedGLPct,omitempty"` // nil when cost basis is zero
	TaxLots           []TaxLot           `json:"taxLots"`
	UnrealizedDetails []UnrealizedDetail `json:"unrealizedDetails"`
}

// GroupError reports a (portfolio, security) group whose transaction history
// could not be processed. A failed group never contributes partial numbers;
// the rest of the report is still produced.
type GroupError struct {
	PortfolioID string `json:"portfolioId"`
	SecurityID  string `json:"securityId"`
	Error       string `json:"error"`
}

// ReconciliationWarning flags a divergence between the sum of open-lot
// quantities and the quantity the custodian reports for the position.
type ReconciliationWarning struct {
	PortfolioID      string  `json:"portfolioId"`
	SecurityID       string  `json:"securityId"`
	LotQuantity      float64 `json:"lotQuantity"`
	PositionQuantity float64 `json:"positionQuantity"`
}

// ReportFilters carries the validated query parameters of a report request.
type ReportFilters struct {
	Method      CostBasisMethod
	AsOf        time.Time
	PortfolioID string
}

// CostBasisReport is the top-level engine output: per-security position
// summaries, the realized-gain ledger, and grand totals split by term.
type CostBasisReport struct {
	Method                 CostBasisMethod         `json:"method"`
	AsOf                   time.Time               `json:"asOf"`
	Positions              []PositionCostBasis     `json:"positions"`
	RealizedGains          []RealizedGainRecord    `json:"realizedGains"`
	TotalRealizedGL        float64                 `json:"totalRealizedGL"`
	TotalRealizedLongTerm  float64                 `json:"totalRealizedLongTerm"`
	TotalRealizedShortTerm float64                 `json:"totalRealizedShortTerm"`
	TotalUnrealizedGL      float64                 `json:"totalUnrealizedGL"`
	TotalUnrealizedLong    float64                 `json:"totalUnrealizedLongTerm"`
	TotalUnrealizedShort   float64                 `json:"totalUnrealizedShortTerm"`
	GroupErrors            []GroupError            `json:"groupErrors,omitempty"`
	Warnings               []ReconciliationWarning `json:"warnings,omitempty"`
}
