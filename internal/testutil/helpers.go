package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/advisordesk/costbasis-backend/internal/costbasis"
	"github.com/advisordesk/costbasis-backend/internal/repository"
	"github.com/advisordesk/costbasis-backend/internal/service"
)

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	positionRepo := repository.NewPositionRepository(db)

	return service.NewPortfolioService(
		portfolioRepo,
		positionRepo,
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewTransactionService(
		transactionRepo,
	)
}

func NewTestReportService(t *testing.T, db *sql.DB) *service.ReportService {
	t.Helper()

	engine := costbasis.NewEngine(costbasis.DefaultHoldingPeriodDays)
	transactionService := NewTestTransactionService(t, db)
	portfolioService := NewTestPortfolioService(t, db)

	return service.NewReportService(
		engine,
		transactionService,
		portfolioService,
	)
}

// NewTestPriceService creates a PriceService pointed at the given quote
// endpoint. Pass an httptest.Server URL to test price refresh operations
// without making real API calls.
func NewTestPriceService(t *testing.T, db *sql.DB, quoteBaseURL string) *service.PriceService {
	t.Helper()

	positionRepo := repository.NewPositionRepository(db)
	settingRepo := repository.NewSettingRepository(db, nil)

	return service.NewPriceService(
		positionRepo,
		settingRepo,
		quoteBaseURL,
	)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("INFY")
//	// Returns: "INFY1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeSecurityName generates a unique security name for testing.
//
// Example usage:
//
//	name := testutil.MakeSecurityName("Acme Industries")
//	// Returns: "Acme Industries XYZ789"
func MakeSecurityName(base string) string {
	if base == "" {
		base = "Security"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Common test constants

var (
	// CommonCurrencies contains frequently used currency codes
	CommonCurrencies = []string{"INR", "USD", "EUR", "GBP", "SGD"}

	// CommonExchanges contains frequently used stock exchanges
	CommonExchanges = []string{"NSE", "BSE", "NASDAQ", "NYSE", "LSE"}
)

// RandomCurrency returns a random currency from CommonCurrencies.
func RandomCurrency() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonCurrencies[rand.Intn(len(CommonCurrencies))]
}

// RandomExchange returns a random exchange from CommonExchanges.
func RandomExchange() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonExchanges[rand.Intn(len(CommonExchanges))]
}
