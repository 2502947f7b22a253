package service

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/advisordesk/costbasis-backend/internal/costbasis"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// ReportService produces cost-basis and capital-gains reports by feeding the
// stored transaction log and position snapshot through the lot engine.
type ReportService struct {
	engine             *costbasis.Engine
	transactionService *TransactionService
	portfolioService   *PortfolioService
}

// NewReportService creates a new ReportService with the provided dependencies.
func NewReportService(
	engine *costbasis.Engine,
	transactionService *TransactionService,
	portfolioService *PortfolioService,
) *ReportService {
	return &ReportService{
		engine:             engine,
		transactionService: transactionService,
		portfolioService:   portfolioService,
	}
}

// GenerateReport builds a cost-basis report under the requested method.
// Groups whose history cannot be processed are reported inside the result;
// only storage failures surface as errors.
func (s *ReportService) GenerateReport(filters model.ReportFilters) (*model.CostBasisReport, error) {
	transactions, err := s.transactionService.LoadTransactions(filters.PortfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	positions, err := s.portfolioService.GetPositions(filters.PortfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	return s.engine.GenerateReport(transactions, positions, filters.Method, filters.PortfolioID, filters.AsOf)
}

// CompareMethods generates one report per supported accounting method against
// the same transaction log and returns them keyed by method. The underlying
// engine is a pure transform, so the reports are computed in parallel.
func (s *ReportService) CompareMethods(filters model.ReportFilters) (map[model.CostBasisMethod]*model.CostBasisReport, error) {
	transactions, err := s.transactionService.LoadTransactions(filters.PortfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	positions, err := s.portfolioService.GetPositions(filters.PortfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	methods := model.AllMethods()
	reports := make([]*model.CostBasisReport, len(methods))

	var g errgroup.Group
	for i, method := range methods {
		i, method := i, method
		g.Go(func() error {
			report, err := s.engine.GenerateReport(transactions, positions, method, filters.PortfolioID, filters.AsOf)
			if err != nil {
				return fmt.Errorf("method %s: %w", method, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byMethod := make(map[model.CostBasisMethod]*model.CostBasisReport, len(methods))
	for i, method := range methods {
		byMethod[method] = reports[i]
	}

	return byMethod, nil
}

// ExportRealizedGains renders the realized-gains ledger of a report as CSV.
// Returns the file content and the suggested download name.
func (s *ReportService) ExportRealizedGains(filters model.ReportFilters) (string, string, error) {
	report, err := s.GenerateReport(filters)
	if err != nil {
		return "", "", err
	}

	content, err := costbasis.ExportCSV(report)
	if err != nil {
		return "", "", err
	}

	return content, costbasis.ExportFileName(report.Method, report.AsOf), nil
}
