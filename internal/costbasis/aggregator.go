package costbasis

import (
	"math"
	"sort"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/model"
)

// roundingPrecision is the scale used when rounding monetary aggregates for
// report output (two decimal places).
const roundingPrecision = 100

// round rounds a monetary value to two decimal places. Per-record values
// stay unrounded so conservation holds exactly; only aggregates are rounded.
func round(value float64) float64 {
	return math.Round(value*roundingPrecision) / roundingPrecision
}

// groupResult carries one (portfolio, security) group's lot-book output
// through to aggregation.
type groupResult struct {
	key          GroupKey
	securityName string
	openLots     []model.TaxLot
	realized     []model.RealizedGainRecord
	unrealized   []model.UnrealizedDetail
}

// aggregate rolls per-group results into the top-level report: one
// PositionCostBasis per security still holding units, the flat realized-gain
// ledger, grand totals split by term, and any reconciliation warnings
// against the position snapshot.
func aggregate(
	method model.CostBasisMethod,
	asOf time.Time,
	results []groupResult,
	positions map[GroupKey]model.Position,
	failures map[GroupKey]error,
) *model.CostBasisReport {

	report := &model.CostBasisReport{
		Method:        method,
		AsOf:          asOf,
		Positions:     []model.PositionCostBasis{},
		RealizedGains: []model.RealizedGainRecord{},
	}

	for _, res := range results {
		report.RealizedGains = append(report.RealizedGains, res.realized...)

		for _, rec := range res.realized {
			report.TotalRealizedGL += rec.GainLoss
			if rec.IsLongTerm {
				report.TotalRealizedLongTerm += rec.GainLoss
			} else {
				report.TotalRealizedShortTerm += rec.GainLoss
			}
		}
		for _, det := range res.unrealized {
			report.TotalUnrealizedGL += det.GainLoss
			if det.IsLongTerm {
				report.TotalUnrealizedLong += det.GainLoss
			} else {
				report.TotalUnrealizedShort += det.GainLoss
			}
		}

		pos, hasPosition := positions[res.key]
		if warning, diverged := reconcile(res.key, res.openLots, pos, hasPosition); diverged {
			report.Warnings = append(report.Warnings, warning)
		}

		if position, ok := buildPosition(res, pos); ok {
			report.Positions = append(report.Positions, position)
		}
	}

	report.Warnings = append(report.Warnings, orphanedPositionWarnings(results, positions, failures)...)

	report.TotalRealizedGL = round(report.TotalRealizedGL)
	report.TotalRealizedLongTerm = round(report.TotalRealizedLongTerm)
	report.TotalRealizedShortTerm = round(report.TotalRealizedShortTerm)
	report.TotalUnrealizedGL = round(report.TotalUnrealizedGL)
	report.TotalUnrealizedLong = round(report.TotalUnrealizedLong)
	report.TotalUnrealizedShort = round(report.TotalUnrealizedShort)

	for key, err := range failures {
		report.GroupErrors = append(report.GroupErrors, model.GroupError{
			PortfolioID: key.PortfolioID,
			SecurityID:  key.SecurityID,
			Error:       err.Error(),
		})
	}
	sort.Slice(report.GroupErrors, func(i, j int) bool {
		a, b := report.GroupErrors[i], report.GroupErrors[j]
		if a.PortfolioID != b.PortfolioID {
			return a.PortfolioID < b.PortfolioID
		}
		return a.SecurityID < b.SecurityID
	})

	return report
}

// buildPosition aggregates one group's open lots into a PositionCostBasis.
// Groups with no remaining quantity are excluded from the report, which also
// guards every ratio below against division by zero.
func buildPosition(res groupResult, pos model.Position) (model.PositionCostBasis, bool) {
	var totalQuantity, totalCostBasis float64
	for _, lot := range res.openLots {
		totalQuantity += lot.RemainingQuantity
		totalCostBasis += lot.RemainingQuantity * lot.CostPerUnit
	}
	if totalQuantity <= quantityEpsilon {
		return model.PositionCostBasis{}, false
	}

	currentValue := totalQuantity * pos.CurrentPrice

	position := model.PositionCostBasis{
		PortfolioID:       res.key.PortfolioID,
		SecurityID:        res.key.SecurityID,
		SecurityName:      res.securityName,
		TotalQuantity:     totalQuantity,
		AverageCost:       round(totalCostBasis / totalQuantity),
		TotalCostBasis:    round(totalCostBasis),
		CurrentPrice:      pos.CurrentPrice,
		CurrentValue:      round(currentValue),
		UnrealizedGL:      round(currentValue - totalCostBasis),
		TaxLots:           res.openLots,
		UnrealizedDetails: res.unrealized,
	}
	if totalCostBasis != 0 {
		pct := round((currentValue - totalCostBasis) / totalCostBasis * 100)
		position.UnrealizedGLPct = &pct
	}
	return position, true
}

// orphanedPositionWarnings flags custodian positions whose (portfolio,
// security) key has no transaction history at all. The snapshot claims units
// the log cannot account for, which is the same divergence reconcile catches,
// with a lot quantity of zero. Groups that failed processing are skipped;
// their GroupError already flags them.
func orphanedPositionWarnings(
	results []groupResult,
	positions map[GroupKey]model.Position,
	failures map[GroupKey]error,
) []model.ReconciliationWarning {

	seen := make(map[GroupKey]bool, len(results)+len(failures))
	for _, res := range results {
		seen[res.key] = true
	}
	for key := range failures {
		seen[key] = true
	}

	var orphaned []GroupKey
	for key, pos := range positions {
		if !seen[key] && math.Abs(pos.Quantity) > quantityEpsilon {
			orphaned = append(orphaned, key)
		}
	}
	sort.Slice(orphaned, func(i, j int) bool {
		if orphaned[i].PortfolioID != orphaned[j].PortfolioID {
			return orphaned[i].PortfolioID < orphaned[j].PortfolioID
		}
		return orphaned[i].SecurityID < orphaned[j].SecurityID
	})

	warnings := make([]model.ReconciliationWarning, 0, len(orphaned))
	for _, key := range orphaned {
		warnings = append(warnings, model.ReconciliationWarning{
			PortfolioID:      key.PortfolioID,
			SecurityID:       key.SecurityID,
			LotQuantity:      0,
			PositionQuantity: positions[key].Quantity,
		})
	}
	return warnings
}

// reconcile compares the open-lot quantity derived from the transaction log
// with the quantity the position snapshot reports. Divergence indicates an
// upstream data inconsistency and is surfaced as a warning rather than
// silently resolved in either direction.
func reconcile(key GroupKey, openLots []model.TaxLot, pos model.Position, hasPosition bool) (model.ReconciliationWarning, bool) {
	var lotQuantity float64
	for _, lot := range openLots {
		lotQuantity += lot.RemainingQuantity
	}

	positionQuantity := 0.0
	if hasPosition {
		positionQuantity = pos.Quantity
	}
	if !hasPosition && lotQuantity <= quantityEpsilon {
		return model.ReconciliationWarning{}, false
	}
	if math.Abs(lotQuantity-positionQuantity) <= quantityEpsilon {
		return model.ReconciliationWarning{}, false
	}
	return model.ReconciliationWarning{
		PortfolioID:      key.PortfolioID,
		SecurityID:       key.SecurityID,
		LotQuantity:      lotQuantity,
		PositionQuantity: positionQuantity,
	}, true
}
