package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    Closed().
//	    Build(t, db)
type PortfolioBuilder struct {
	ID           string
	ClientID     string
	Name         string
	BaseCurrency string
	Status       string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:           MakeID(),
		ClientID:     MakeID(),
		Name:         MakePortfolioName("Test Portfolio"),
		BaseCurrency: "INR",
		Status:       "active",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithBaseCurrency sets a custom base currency.
func (b *PortfolioBuilder) WithBaseCurrency(currency string) *PortfolioBuilder {
	b.BaseCurrency = currency
	return b
}

// Closed marks the portfolio as closed.
func (b *PortfolioBuilder) Closed() *PortfolioBuilder {
	b.Status = "closed"
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, client_id, name, base_currency, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.ClientID, b.Name, b.BaseCurrency, b.Status, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:           b.ID,
		ClientID:     b.ClientID,
		Name:         b.Name,
		BaseCurrency: b.BaseCurrency,
		Status:       b.Status,
	}
}

// SecurityBuilder provides a fluent interface for creating test securities.
type SecurityBuilder struct {
	ID       string
	Symbol   string
	Name     string
	Exchange string
	Currency string
}

// NewSecurity creates a SecurityBuilder with sensible defaults.
func NewSecurity() *SecurityBuilder {
	return &SecurityBuilder{
		ID:       MakeID(),
		Symbol:   MakeSymbol("TEST"),
		Name:     MakeSecurityName("Test Security"),
		Exchange: "NSE",
		Currency: "INR",
	}
}

// WithID sets a custom ID.
func (b *SecurityBuilder) WithID(id string) *SecurityBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom ticker symbol.
func (b *SecurityBuilder) WithSymbol(symbol string) *SecurityBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom name.
func (b *SecurityBuilder) WithName(name string) *SecurityBuilder {
	b.Name = name
	return b
}

// Build creates the security in the database and returns it.
func (b *SecurityBuilder) Build(t *testing.T, db *sql.DB) model.Security {
	t.Helper()

	query := `
		INSERT INTO security (id, symbol, name, exchange, currency)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, b.Name, b.Exchange, b.Currency)
	if err != nil {
		t.Fatalf("Failed to create test security: %v", err)
	}

	return model.Security{
		ID:       b.ID,
		Symbol:   b.Symbol,
		Name:     b.Name,
		Exchange: b.Exchange,
		Currency: b.Currency,
	}
}

// TransactionBuilder provides a fluent interface for creating test transactions.
type TransactionBuilder struct {
	ID          string
	PortfolioID string
	SecurityID  string
	TradeDate   time.Time
	Type        string
	Quantity    float64
	Price       float64
	Fees        float64
	LotIDs      []string
}

// NewTransaction creates a TransactionBuilder for the given portfolio and security.
func NewTransaction(portfolioID, securityID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		SecurityID:  securityID,
		TradeDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:        "buy",
		Quantity:    100,
		Price:       10,
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// OnDate sets the trade date.
func (b *TransactionBuilder) OnDate(date time.Time) *TransactionBuilder {
	b.TradeDate = date
	return b
}

// Buy marks the transaction as a purchase of the given quantity at the given price.
func (b *TransactionBuilder) Buy(quantity, price float64) *TransactionBuilder {
	b.Type = "buy"
	b.Quantity = quantity
	b.Price = price
	return b
}

// Sell marks the transaction as a sale of the given quantity at the given price.
func (b *TransactionBuilder) Sell(quantity, price float64) *TransactionBuilder {
	b.Type = "sell"
	b.Quantity = quantity
	b.Price = price
	return b
}

// WithFees sets the transaction fees.
func (b *TransactionBuilder) WithFees(fees float64) *TransactionBuilder {
	b.Fees = fees
	return b
}

// FromLots designates the tax lots a specific-identification sell draws from.
func (b *TransactionBuilder) FromLots(lotIDs ...string) *TransactionBuilder {
	b.LotIDs = lotIDs
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	total := b.Quantity * b.Price
	switch b.Type {
	case "buy":
		total += b.Fees
	case "sell":
		total -= b.Fees
	}

	query := `
		INSERT INTO "transaction"
			(id, portfolio_id, security_id, trade_date, type, quantity, price, total_amount, fees, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'settled', ?)
	`

	_, err := db.Exec(query,
		b.ID, b.PortfolioID, b.SecurityID,
		b.TradeDate.Format("2006-01-02"),
		b.Type, b.Quantity, b.Price, total, b.Fees,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	for _, lotID := range b.LotIDs {
		_, err := db.Exec(`INSERT INTO transaction_lot (transaction_id, lot_id) VALUES (?, ?)`, b.ID, lotID)
		if err != nil {
			t.Fatalf("Failed to create test transaction_lot: %v", err)
		}
	}

	return model.Transaction{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		SecurityID:  b.SecurityID,
		Type:        b.Type,
		Quantity:    b.Quantity,
		Price:       b.Price,
		TotalAmount: total,
		Fees:        b.Fees,
		TradeDate:   b.TradeDate,
		Status:      "settled",
		LotIDs:      b.LotIDs,
	}
}

// CreatePosition inserts a custodian position snapshot for the given holding.
func CreatePosition(t *testing.T, db *sql.DB, portfolioID, securityID string, quantity, averageCost, currentPrice float64) model.Position {
	t.Helper()

	position := model.Position{
		ID:           MakeID(),
		PortfolioID:  portfolioID,
		SecurityID:   securityID,
		Quantity:     quantity,
		AverageCost:  averageCost,
		CurrentPrice: currentPrice,
		MarketValue:  quantity * currentPrice,
	}

	query := `
		INSERT INTO position (id, portfolio_id, security_id, quantity, average_cost, current_price, market_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		position.ID, position.PortfolioID, position.SecurityID,
		position.Quantity, position.AverageCost, position.CurrentPrice, position.MarketValue,
	)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return position
}

// Convenience functions

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with unique names.
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := 0; i < count; i++ {
		portfolios[i] = NewPortfolio().Build(t, db)
	}
	return portfolios
}

// CreateClosedPortfolio creates a closed portfolio.
func CreateClosedPortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Closed().Build(t, db)
}

// CreateSecurity creates a security with the given symbol and default values.
func CreateSecurity(t *testing.T, db *sql.DB, symbol string) model.Security {
	t.Helper()
	return NewSecurity().WithSymbol(symbol).Build(t, db)
}
