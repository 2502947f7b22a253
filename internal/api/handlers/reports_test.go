package handlers_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/api/handlers"
	"github.com/advisordesk/costbasis-backend/internal/model"
	"github.com/advisordesk/costbasis-backend/internal/testutil"
)

func setupReportHandler(t *testing.T) (*handlers.ReportHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestReportService(t, db)
	return handlers.NewReportHandler(svc), db
}

// seedReportData creates one portfolio holding a security bought in two lots
// with a partial sell, plus the matching custodian position.
func seedReportData(t *testing.T, db *sql.DB) (model.Portfolio, model.Security) {
	t.Helper()

	portfolio := testutil.CreatePortfolio(t, db, "Report Portfolio")
	security := testutil.CreateSecurity(t, db, "INFY")

	testutil.NewTransaction(portfolio.ID, security.ID).
		OnDate(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).
		Buy(100, 10).
		Build(t, db)
	testutil.NewTransaction(portfolio.ID, security.ID).
		OnDate(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)).
		Buy(50, 14).
		Build(t, db)
	testutil.NewTransaction(portfolio.ID, security.ID).
		OnDate(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)).
		Sell(40, 20).
		Build(t, db)

	// 110 units remain open after the sell
	testutil.CreatePosition(t, db, portfolio.ID, security.ID, 110, 11, 22)

	return portfolio, security
}

// TestReportHandler_GetReport tests the GET /api/report endpoint.
//
// WHY: This is the core deliverable of the service. The report must realize
// gains under the requested method, classify the term from the holding
// period, and keep per-group failures inside the body instead of failing the
// whole request.
func TestReportHandler_GetReport(t *testing.T) {
	t.Run("generates a FIFO report with realized and unrealized gains", func(t *testing.T) {
		handler, db := setupReportHandler(t)
		portfolio, security := seedReportData(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/", map[string]string{
			"method":      "fifo",
			"asOf":        "2025-01-01",
			"portfolioId": portfolio.ID,
		})
		w := httptest.NewRecorder()

		handler.GetReport(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var report model.CostBasisReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if report.Method != model.MethodFIFO {
			t.Errorf("Expected method fifo, got %s", report.Method)
		}

		// FIFO consumes the oldest lot: 40 units bought at 10, sold at 20,
		// held well past a year.
		if len(report.RealizedGains) != 1 {
			t.Fatalf("Expected 1 realized gain record, got %d", len(report.RealizedGains))
		}
		gain := report.RealizedGains[0]
		if gain.SecurityID != security.ID {
			t.Errorf("Expected security ID %s, got %s", security.ID, gain.SecurityID)
		}
		if gain.GainLoss != 400 {
			t.Errorf("Expected realized gain 400, got %v", gain.GainLoss)
		}
		if !gain.IsLongTerm {
			t.Error("Expected the gain to be long-term")
		}
		if report.TotalRealizedLongTerm != 400 {
			t.Errorf("Expected long-term total 400, got %v", report.TotalRealizedLongTerm)
		}
		if report.TotalRealizedShortTerm != 0 {
			t.Errorf("Expected short-term total 0, got %v", report.TotalRealizedShortTerm)
		}

		if len(report.Positions) != 1 {
			t.Fatalf("Expected 1 position summary, got %d", len(report.Positions))
		}
		if report.Positions[0].TotalQuantity != 110 {
			t.Errorf("Expected 110 open units, got %v", report.Positions[0].TotalQuantity)
		}
		if len(report.Warnings) != 0 {
			t.Errorf("Expected no reconciliation warnings, got %+v", report.Warnings)
		}
	})

	t.Run("flags a custodian quantity mismatch without failing", func(t *testing.T) {
		handler, db := setupReportHandler(t)

		portfolio := testutil.CreatePortfolio(t, db, "Mismatch Portfolio")
		security := testutil.CreateSecurity(t, db, "TCS")
		testutil.NewTransaction(portfolio.ID, security.ID).
			OnDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
			Buy(100, 10).
			Build(t, db)
		// Custodian reports 90 units against 100 open lot units
		testutil.CreatePosition(t, db, portfolio.ID, security.ID, 90, 10, 12)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/", map[string]string{
			"portfolioId": portfolio.ID,
		})
		w := httptest.NewRecorder()

		handler.GetReport(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var report model.CostBasisReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if len(report.Warnings) != 1 {
			t.Fatalf("Expected 1 reconciliation warning, got %d", len(report.Warnings))
		}
		if report.Warnings[0].LotQuantity != 100 || report.Warnings[0].PositionQuantity != 90 {
			t.Errorf("Unexpected warning quantities: %+v", report.Warnings[0])
		}
	})

	t.Run("isolates an overselling group inside the report", func(t *testing.T) {
		handler, db := setupReportHandler(t)

		portfolio := testutil.CreatePortfolio(t, db, "Oversell Portfolio")
		good := testutil.CreateSecurity(t, db, "INFY")
		bad := testutil.CreateSecurity(t, db, "TCS")

		testutil.NewTransaction(portfolio.ID, good.ID).
			OnDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
			Buy(100, 10).
			Build(t, db)

		// Sells more than was ever bought
		testutil.NewTransaction(portfolio.ID, bad.ID).
			OnDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
			Buy(10, 5).
			Build(t, db)
		testutil.NewTransaction(portfolio.ID, bad.ID).
			OnDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)).
			Sell(20, 6).
			Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/", map[string]string{
			"portfolioId": portfolio.ID,
		})
		w := httptest.NewRecorder()

		handler.GetReport(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var report model.CostBasisReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if len(report.GroupErrors) != 1 {
			t.Fatalf("Expected 1 group error, got %d", len(report.GroupErrors))
		}
		if report.GroupErrors[0].SecurityID != bad.ID {
			t.Errorf("Expected failing security %s, got %s", bad.ID, report.GroupErrors[0].SecurityID)
		}

		// The healthy group still reports
		if len(report.Positions) != 1 {
			t.Fatalf("Expected 1 position from the healthy group, got %d", len(report.Positions))
		}
		if report.Positions[0].SecurityID != good.ID {
			t.Errorf("Expected position for %s, got %s", good.ID, report.Positions[0].SecurityID)
		}
	})

	t.Run("returns 400 for an unknown method", func(t *testing.T) {
		handler, _ := setupReportHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/", map[string]string{
			"method": "hifo",
		})
		w := httptest.NewRecorder()

		handler.GetReport(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

// TestReportHandler_CompareMethods tests the GET /api/report/compare endpoint.
//
// WHY: Method comparison drives the advisor's election decision; every
// supported method must appear, computed from the same transaction log.
func TestReportHandler_CompareMethods(t *testing.T) {
	t.Run("returns one report per supported method", func(t *testing.T) {
		handler, db := setupReportHandler(t)
		portfolio, _ := seedReportData(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/compare", map[string]string{
			"asOf":        "2025-01-01",
			"portfolioId": portfolio.ID,
		})
		w := httptest.NewRecorder()

		handler.CompareMethods(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var reports map[model.CostBasisMethod]*model.CostBasisReport
		if err := json.NewDecoder(w.Body).Decode(&reports); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if len(reports) != len(model.AllMethods()) {
			t.Fatalf("Expected %d reports, got %d", len(model.AllMethods()), len(reports))
		}
		for _, method := range model.AllMethods() {
			report, ok := reports[method]
			if !ok {
				t.Errorf("Missing report for method %s", method)
				continue
			}
			if report.Method != method {
				t.Errorf("Report under key %s has method %s", method, report.Method)
			}
		}

		// FIFO realizes the cheap early lot, LIFO the later pricier one
		if reports[model.MethodFIFO].TotalRealizedGL <= reports[model.MethodLIFO].TotalRealizedGL {
			t.Errorf("Expected FIFO gain (%v) to exceed LIFO gain (%v)",
				reports[model.MethodFIFO].TotalRealizedGL, reports[model.MethodLIFO].TotalRealizedGL)
		}
	})
}

// TestReportHandler_ExportReport tests the GET /api/report/export endpoint.
//
// WHY: The CSV download is consumed by tax software; the content type,
// attachment header and column layout are external contracts.
func TestReportHandler_ExportReport(t *testing.T) {
	t.Run("returns a CSV attachment of realized gains", func(t *testing.T) {
		handler, db := setupReportHandler(t)
		portfolio, _ := seedReportData(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/export", map[string]string{
			"method":      "fifo",
			"asOf":        "2025-01-01",
			"portfolioId": portfolio.ID,
		})
		w := httptest.NewRecorder()

		handler.ExportReport(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Expected Content-Type 'text/csv', got '%s'", ct)
		}
		disposition := w.Header().Get("Content-Disposition")
		if disposition != `attachment; filename="capital-gains-fifo-2025-01-01.csv"` {
			t.Errorf("Unexpected Content-Disposition: %s", disposition)
		}

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("Expected header plus 1 record, got %d lines", len(lines))
		}
		if lines[0] != "security,portfolio,purchase_date,sell_date,quantity,cost_basis,proceeds,gain_loss,holding_days,term" {
			t.Errorf("Unexpected CSV header: %s", lines[0])
		}
		if !strings.Contains(lines[1], "long-term") {
			t.Errorf("Expected a long-term record, got: %s", lines[1])
		}
	})

	t.Run("returns 400 for an invalid asOf date", func(t *testing.T) {
		handler, _ := setupReportHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/export", map[string]string{
			"asOf": "01-06-2025",
		})
		w := httptest.NewRecorder()

		handler.ExportReport(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
