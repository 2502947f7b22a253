package costbasis_test

import (
	"reflect"
	"testing"

	"github.com/advisordesk/costbasis-backend/internal/costbasis"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// TestEngine_GenerateReport_Scenario walks the canonical two-buys-one-sell
// history under each method and checks the exact numbers.
//
// WHY: This scenario pins the whole pipeline end to end: lot ordering,
// partial consumption, holding-period classification and aggregation. If any
// stage drifts, these totals move.
func TestEngine_GenerateReport_Scenario(t *testing.T) {
	engine := costbasis.NewEngine(365)

	history := func() []model.Transaction {
		return []model.Transaction{
			buy("p1", "INFY", 100, 10, day(0)),
			buy("p1", "INFY", 50, 14, day(10)),
			sell("p1", "INFY", 120, 20, day(400)),
		}
	}
	positions := []model.Position{position("p1", "INFY", 30, 22)}

	t.Run("fifo", func(t *testing.T) {
		report, err := engine.GenerateReport(history(), positions, model.MethodFIFO, "", day(400))
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}

		if len(report.RealizedGains) != 2 {
			t.Fatalf("Expected 2 realized records, got %d", len(report.RealizedGains))
		}
		if !approxEqual(report.TotalRealizedGL, 1120) {
			t.Errorf("Expected FIFO realized gain 1120, got %v", report.TotalRealizedGL)
		}
		if !approxEqual(report.TotalRealizedLongTerm, 1120) || !approxEqual(report.TotalRealizedShortTerm, 0) {
			t.Errorf("Both consumptions held over a year; expected all long-term, got long=%v short=%v",
				report.TotalRealizedLongTerm, report.TotalRealizedShortTerm)
		}

		if len(report.Positions) != 1 {
			t.Fatalf("Expected 1 open position, got %d", len(report.Positions))
		}
		pos := report.Positions[0]
		if !approxEqual(pos.TotalQuantity, 30) {
			t.Errorf("Expected 30 units open, got %v", pos.TotalQuantity)
		}
		if !approxEqual(pos.TotalCostBasis, 420) { // 30 remaining of the 14-cost lot
			t.Errorf("Expected open cost basis 420, got %v", pos.TotalCostBasis)
		}
		if !approxEqual(pos.CurrentValue, 660) { // 30 * 22
			t.Errorf("Expected current value 660, got %v", pos.CurrentValue)
		}
		if len(report.Warnings) != 0 {
			t.Errorf("Lots reconcile with the position; expected no warnings, got %+v", report.Warnings)
		}
	})

	t.Run("lifo", func(t *testing.T) {
		report, err := engine.GenerateReport(history(), positions, model.MethodLIFO, "", day(400))
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}
		// LIFO drains the day-10 lot (50 @ 14) then 70 from the day-0 lot
		// (@ 10): basis 1400 against proceeds 2400.
		if !approxEqual(report.TotalRealizedGL, 1000) {
			t.Errorf("Expected LIFO realized gain 1000, got %v", report.TotalRealizedGL)
		}
		if !approxEqual(report.Positions[0].TotalQuantity, 30) {
			t.Errorf("Expected 30 units open under LIFO too, got %v", report.Positions[0].TotalQuantity)
		}
	})

	t.Run("average sits strictly between fifo and lifo", func(t *testing.T) {
		report, err := engine.GenerateReport(history(), positions, model.MethodAverage, "", day(400))
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}
		// Pool basis 1360 -> gain 1040, between LIFO's 1000 and FIFO's 1120.
		if !approxEqual(report.TotalRealizedGL, 1040) {
			t.Errorf("Expected average realized gain 1040, got %v", report.TotalRealizedGL)
		}
		rec := report.RealizedGains[0]
		perUnit := rec.CostBasis / rec.Quantity
		if perUnit <= 10 || perUnit >= 14 {
			t.Errorf("Average cost per unit must sit strictly between the buy prices, got %v", perUnit)
		}
	})
}

// TestEngine_GenerateReport_MethodDivergence tests that FIFO and LIFO
// produce different cost bases when buy prices differ.
func TestEngine_GenerateReport_MethodDivergence(t *testing.T) {
	engine := costbasis.NewEngine(365)

	history := []model.Transaction{
		buy("p1", "TCS", 10, 100, day(0)),
		buy("p1", "TCS", 10, 150, day(5)),
		sell("p1", "TCS", 5, 200, day(100)),
	}

	fifoReport, err := engine.GenerateReport(history, nil, model.MethodFIFO, "", day(100))
	if err != nil {
		t.Fatalf("FIFO GenerateReport() error: %v", err)
	}
	lifoReport, err := engine.GenerateReport(history, nil, model.MethodLIFO, "", day(100))
	if err != nil {
		t.Fatalf("LIFO GenerateReport() error: %v", err)
	}

	fifoBasis := fifoReport.RealizedGains[0].CostBasis
	lifoBasis := lifoReport.RealizedGains[0].CostBasis
	if approxEqual(fifoBasis, lifoBasis) {
		t.Errorf("FIFO and LIFO bases must diverge for unequal buy prices, both %v", fifoBasis)
	}
	if !approxEqual(fifoBasis, 500) || !approxEqual(lifoBasis, 750) {
		t.Errorf("Expected bases 500 (FIFO) and 750 (LIFO), got %v and %v", fifoBasis, lifoBasis)
	}
}

// TestEngine_GenerateReport_Determinism tests idempotent recomputation.
//
// WHY: The engine is documented as a pure function; callers cache and diff
// reports, so two runs over the same snapshot must match exactly.
func TestEngine_GenerateReport_Determinism(t *testing.T) {
	engine := costbasis.NewEngine(365)

	history := []model.Transaction{
		buy("p2", "HDFC", 40, 50, day(0)),
		buy("p1", "INFY", 100, 10, day(0)),
		sell("p1", "INFY", 60, 12, day(50)),
		buy("p1", "TCS", 20, 200, day(3)),
		sell("p2", "HDFC", 10, 55, day(90)),
	}
	positions := []model.Position{
		position("p1", "INFY", 40, 13),
		position("p1", "TCS", 20, 210),
		position("p2", "HDFC", 30, 60),
	}

	first, err := engine.GenerateReport(history, positions, model.MethodFIFO, "", day(100))
	if err != nil {
		t.Fatalf("GenerateReport() returned unexpected error: %v", err)
	}
	second, err := engine.GenerateReport(history, positions, model.MethodFIFO, "", day(100))
	if err != nil {
		t.Fatalf("GenerateReport() returned unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Two runs over identical inputs produced different reports")
	}
}

// TestEngine_GenerateReport_GroupIsolation tests that one bad security's
// history does not block reporting for the rest.
func TestEngine_GenerateReport_GroupIsolation(t *testing.T) {
	engine := costbasis.NewEngine(365)

	history := []model.Transaction{
		buy("p1", "INFY", 10, 10, day(0)),
		sell("p1", "INFY", 50, 12, day(30)), // oversell
		buy("p1", "TCS", 20, 200, day(0)),
	}

	report, err := engine.GenerateReport(history, nil, model.MethodFIFO, "", day(100))
	if err != nil {
		t.Fatalf("A group failure must not fail the call: %v", err)
	}

	if len(report.GroupErrors) != 1 {
		t.Fatalf("Expected 1 group error, got %d", len(report.GroupErrors))
	}
	ge := report.GroupErrors[0]
	if ge.SecurityID != "INFY" {
		t.Errorf("Expected the INFY group to fail, got %s", ge.SecurityID)
	}

	if len(report.Positions) != 1 || report.Positions[0].SecurityID != "TCS" {
		t.Errorf("Healthy TCS group should still report, got %+v", report.Positions)
	}
	for _, rec := range report.RealizedGains {
		if rec.SecurityID == "INFY" {
			t.Error("Failed group must not contribute partial realized records")
		}
	}
}

// TestEngine_GenerateReport_Reconciliation tests that lot/position quantity
// divergence is surfaced, not resolved.
func TestEngine_GenerateReport_Reconciliation(t *testing.T) {
	engine := costbasis.NewEngine(365)

	t.Run("quantity mismatch is surfaced, not resolved", func(t *testing.T) {
		history := []model.Transaction{
			buy("p1", "INFY", 100, 10, day(0)),
		}
		// Custodian says 90 units; the log says 100.
		positions := []model.Position{position("p1", "INFY", 90, 12)}

		report, err := engine.GenerateReport(history, positions, model.MethodFIFO, "", day(100))
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}

		if len(report.Warnings) != 1 {
			t.Fatalf("Expected 1 reconciliation warning, got %d", len(report.Warnings))
		}
		w := report.Warnings[0]
		if !approxEqual(w.LotQuantity, 100) || !approxEqual(w.PositionQuantity, 90) {
			t.Errorf("Warning should carry both quantities, got %+v", w)
		}
		// The report still uses the lot-derived quantity.
		if !approxEqual(report.Positions[0].TotalQuantity, 100) {
			t.Errorf("Report quantity must come from the lots, got %v", report.Positions[0].TotalQuantity)
		}
	})

	t.Run("position with no transaction history warns with zero lots", func(t *testing.T) {
		history := []model.Transaction{
			buy("p1", "INFY", 100, 10, day(0)),
		}
		// The custodian reports WIPRO units, but the log has never seen the
		// security.
		positions := []model.Position{
			position("p1", "INFY", 100, 12),
			position("p1", "WIPRO", 50, 9),
		}

		report, err := engine.GenerateReport(history, positions, model.MethodFIFO, "", day(100))
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}

		if len(report.Warnings) != 1 {
			t.Fatalf("Expected 1 reconciliation warning, got %d", len(report.Warnings))
		}
		w := report.Warnings[0]
		if w.SecurityID != "WIPRO" {
			t.Fatalf("Expected the WIPRO position to warn, got %+v", w)
		}
		if !approxEqual(w.LotQuantity, 0) || !approxEqual(w.PositionQuantity, 50) {
			t.Errorf("Expected lot quantity 0 against position quantity 50, got %+v", w)
		}
		// The unsupported position must not materialize as a holding either.
		for _, pos := range report.Positions {
			if pos.SecurityID == "WIPRO" {
				t.Error("A position without lots must not appear in the report")
			}
		}
	})
}

// TestEngine_GenerateReport_ScopeAndMethodValidation covers the remaining
// entry-point checks.
func TestEngine_GenerateReport_ScopeAndMethodValidation(t *testing.T) {
	engine := costbasis.NewEngine(0) // falls back to the default threshold

	if engine.HoldingPeriodDays() != costbasis.DefaultHoldingPeriodDays {
		t.Errorf("Expected default threshold, got %d", engine.HoldingPeriodDays())
	}

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := engine.GenerateReport(nil, nil, "hifo", "", day(0))
		if err == nil {
			t.Fatal("Expected an error for an unknown method")
		}
	})

	t.Run("scopes to one portfolio", func(t *testing.T) {
		history := []model.Transaction{
			buy("p1", "INFY", 10, 10, day(0)),
			buy("p2", "INFY", 20, 10, day(0)),
		}

		report, err := engine.GenerateReport(history, nil, model.MethodFIFO, "p1", day(10))
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}
		if len(report.Positions) != 1 || report.Positions[0].PortfolioID != "p1" {
			t.Errorf("Expected only p1 positions, got %+v", report.Positions)
		}
	})

	t.Run("zero-quantity positions are excluded", func(t *testing.T) {
		history := []model.Transaction{
			buy("p1", "INFY", 10, 10, day(0)),
			sell("p1", "INFY", 10, 12, day(30)),
		}

		report, err := engine.GenerateReport(history, nil, model.MethodFIFO, "", day(100))
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}
		if len(report.Positions) != 0 {
			t.Errorf("Fully sold security must not appear as a position, got %+v", report.Positions)
		}
		if !approxEqual(report.TotalRealizedGL, 20) {
			t.Errorf("Realized gain should still be reported, got %v", report.TotalRealizedGL)
		}
	})
}
