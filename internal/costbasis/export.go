package costbasis

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/model"
)

// csvHeader is the fixed column order of the realized-gains export.
var csvHeader = []string{
	"security",
	"portfolio",
	"purchase_date",
	"sell_date",
	"quantity",
	"cost_basis",
	"proceeds",
	"gain_loss",
	"holding_days",
	"term",
}

// ExportCSV serializes the report's realized gains to CSV: one header row,
// one row per record. encoding/csv applies standard quoting, so security and
// portfolio identifiers containing commas or quotes cannot break the table.
func ExportCSV(report *model.CostBasisReport) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.RealizedGains {
		term := "short-term"
		if rec.IsLongTerm {
			term = "long-term"
		}
		row := []string{
			rec.SecurityName,
			rec.PortfolioID,
			rec.PurchaseDate.Format("2006-01-02"),
			rec.SellDate.Format("2006-01-02"),
			strconv.FormatFloat(rec.Quantity, 'f', -1, 64),
			strconv.FormatFloat(round(rec.CostBasis), 'f', 2, 64),
			strconv.FormatFloat(round(rec.Proceeds), 'f', 2, 64),
			strconv.FormatFloat(round(rec.GainLoss), 'f', 2, 64),
			strconv.Itoa(rec.HoldingPeriodDays),
			term,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.String(), nil
}

// ExportFileName returns the conventional download name for an export:
// capital-gains-<method>-<date>.csv.
func ExportFileName(method model.CostBasisMethod, asOf time.Time) string {
	return fmt.Sprintf("capital-gains-%s-%s.csv", method, asOf.Format("2006-01-02"))
}
