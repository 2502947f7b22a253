package handlers

import (
	"net/http"

	"github.com/advisordesk/costbasis-backend/internal/api/request"
	"github.com/advisordesk/costbasis-backend/internal/api/response"
	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
	"github.com/advisordesk/costbasis-backend/internal/service"
)

// ReportHandler handles HTTP requests for cost-basis report endpoints.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler with the provided service dependency.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetReport handles GET requests to generate a cost-basis report.
// Per-group processing failures are reported inside the response body, not
// as an HTTP error, so one corrupt history cannot hide the rest.
//
// Endpoint: GET /api/report?method={fifo|lifo|average|specific}&asOf={date}&portfolioId={uuid}
// Response: 200 OK with CostBasisReport
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if report generation fails
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid report parameters", err.Error())
		return
	}

	report, err := h.reportService.GenerateReport(*filters)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// CompareMethods handles GET requests to generate one report per accounting
// method against the same transaction log.
//
// Endpoint: GET /api/report/compare?asOf={date}&portfolioId={uuid}
// Response: 200 OK with map of method -> CostBasisReport
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if report generation fails
func (h *ReportHandler) CompareMethods(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid report parameters", err.Error())
		return
	}

	reports, err := h.reportService.CompareMethods(*filters)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, reports)
}

// ExportReport handles GET requests to download the realized-gains ledger as CSV.
//
// Endpoint: GET /api/report/export?method={fifo|lifo|average|specific}&asOf={date}&portfolioId={uuid}
// Response: 200 OK with text/csv body and a Content-Disposition attachment header
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if export fails
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid report parameters", err.Error())
		return
	}

	content, filename, err := h.reportService.ExportRealizedGains(*filters)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExportReport.Error(), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // headers are already sent, a write failure cannot be reported
	w.Write([]byte(content))
}

func (h *ReportHandler) parseFilters(r *http.Request) (*model.ReportFilters, error) {
	query := r.URL.Query()
	return request.ParseReportFilters(
		query.Get("method"),
		query.Get("asOf"),
		query.Get("portfolioId"),
	)
}
