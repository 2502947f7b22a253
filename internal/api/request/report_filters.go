package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/advisordesk/costbasis-backend/internal/model"
)

// ParseReportFilters extracts and validates report parameters from query strings.
// Converts raw query string parameters into a validated model.ReportFilters struct.
//
// Validation rules:
//   - method: Must be a valid cost-basis method (fifo, lifo, average, specific);
//     defaults to fifo
//   - asOf: Must be a valid date/datetime string (YYYY-MM-DD or RFC3339);
//     defaults to now
//   - portfolioId: Must be a valid UUID if provided
//
// Returns an error if any parameter fails validation.
func ParseReportFilters(methodParam, asOfParam, portfolioIDParam string) (*model.ReportFilters, error) {
	filters := &model.ReportFilters{
		Method: model.MethodFIFO,
		AsOf:   time.Now().UTC(),
	}

	if methodParam != "" {
		method := model.CostBasisMethod(strings.TrimSpace(strings.ToLower(methodParam)))
		if !method.Valid() {
			return nil, fmt.Errorf("invalid method: %s", methodParam)
		}
		filters.Method = method
	}

	if asOfParam != "" {
		asOf, err := parseFilterTime(asOfParam)
		if err != nil {
			return nil, fmt.Errorf("invalid asOf format: %w", err)
		}
		filters.AsOf = asOf
	}

	if portfolioIDParam != "" {
		if _, err := uuid.Parse(portfolioIDParam); err != nil {
			return nil, fmt.Errorf("invalid portfolioId: %s", portfolioIDParam)
		}
		filters.PortfolioID = portfolioIDParam
	}

	return filters, nil
}

// parseFilterTime parses date strings for report filter parameters.
// Accepts YYYY-MM-DD, RFC3339, and RFC3339 with milliseconds formats.
func parseFilterTime(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
