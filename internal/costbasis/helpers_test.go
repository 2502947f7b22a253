package costbasis_test

import (
	"fmt"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/model"
)

var txCounter int

// day returns midnight UTC n days after the fixed test epoch (2024-01-01).
func day(n int) time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func newTx(portfolioID, securityID, txType string, quantity, price float64, tradeDate time.Time) model.Transaction {
	txCounter++
	return model.Transaction{
		ID:           fmt.Sprintf("tx-%04d", txCounter),
		PortfolioID:  portfolioID,
		SecurityID:   securityID,
		SecurityName: securityID,
		Type:         txType,
		Quantity:     quantity,
		Price:        price,
		TotalAmount:  quantity * price,
		TradeDate:    tradeDate,
		Status:       "executed",
	}
}

func buy(portfolioID, securityID string, quantity, price float64, tradeDate time.Time) model.Transaction {
	return newTx(portfolioID, securityID, "buy", quantity, price, tradeDate)
}

func sell(portfolioID, securityID string, quantity, price float64, tradeDate time.Time) model.Transaction {
	return newTx(portfolioID, securityID, "sell", quantity, price, tradeDate)
}

func position(portfolioID, securityID string, quantity, currentPrice float64) model.Position {
	return model.Position{
		ID:           fmt.Sprintf("pos-%s-%s", portfolioID, securityID),
		PortfolioID:  portfolioID,
		SecurityID:   securityID,
		SecurityName: securityID,
		Quantity:     quantity,
		CurrentPrice: currentPrice,
		MarketValue:  quantity * currentPrice,
	}
}

// approxEqual compares floats with a tolerance suitable for monetary values.
func approxEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-6
}
