package costbasis

import (
	"time"

	"github.com/advisordesk/costbasis-backend/internal/model"
)

// DefaultHoldingPeriodDays is the long-term cutoff used when no threshold is
// configured. Jurisdictions with a different cutoff override it through
// configuration, not through code.
const DefaultHoldingPeriodDays = 365

// Classify turns one consumption event into a realized gain record.
// A gain is long-term only when the holding period strictly exceeds the
// threshold; a lot held exactly thresholdDays is still short-term.
func Classify(ev model.ConsumptionEvent, thresholdDays int) model.RealizedGainRecord {
	costBasis := ev.Quantity * ev.CostPerUnit
	proceeds := ev.Quantity * ev.SellPricePerUnit
	days := holdingPeriodDays(ev.PurchaseDate, ev.SellDate)

	return model.RealizedGainRecord{
		PortfolioID:       ev.PortfolioID,
		SecurityID:        ev.SecurityID,
		SecurityName:      ev.SecurityName,
		PurchaseDate:      ev.PurchaseDate,
		SellDate:          ev.SellDate,
		Quantity:          ev.Quantity,
		CostBasis:         costBasis,
		Proceeds:          proceeds,
		GainLoss:          proceeds - costBasis,
		HoldingPeriodDays: days,
		IsLongTerm:        days > thresholdDays,
	}
}

// ClassifyOpenLot values a lot still open at report time at the security's
// current market price, with the as-of date standing in for the sell date.
func ClassifyOpenLot(lot model.TaxLot, asOf time.Time, currentPrice float64, thresholdDays int) model.UnrealizedDetail {
	costBasis := lot.RemainingQuantity * lot.CostPerUnit
	marketValue := lot.RemainingQuantity * currentPrice
	days := holdingPeriodDays(lot.PurchaseDate, asOf)

	return model.UnrealizedDetail{
		LotID:             lot.ID,
		PortfolioID:       lot.PortfolioID,
		SecurityID:        lot.SecurityID,
		PurchaseDate:      lot.PurchaseDate,
		Quantity:          lot.RemainingQuantity,
		CostBasis:         costBasis,
		MarketValue:       marketValue,
		GainLoss:          marketValue - costBasis,
		HoldingPeriodDays: days,
		IsLongTerm:        days > thresholdDays,
	}
}

// holdingPeriodDays counts whole calendar days between purchase and sale.
// Both dates are truncated to midnight UTC so intraday timestamps cannot
// shift the fencepost.
func holdingPeriodDays(purchase, sell time.Time) int {
	p := time.Date(purchase.Year(), purchase.Month(), purchase.Day(), 0, 0, 0, 0, time.UTC)
	s := time.Date(sell.Year(), sell.Month(), sell.Day(), 0, 0, 0, 0, time.UTC)
	return int(s.Sub(p).Hours() / 24)
}
