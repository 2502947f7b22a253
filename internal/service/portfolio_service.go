package service

import (
	"context"
	"fmt"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/api/request"
	"github.com/advisordesk/costbasis-backend/internal/model"
	"github.com/advisordesk/costbasis-backend/internal/repository"
)

// PortfolioService handles portfolio-related business logic operations.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	positionRepo  *repository.PositionRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		positionRepo:  positionRepo,
	}
}

// GetAllPortfolios retrieves portfolios, optionally including closed ones.
func (s *PortfolioService) GetAllPortfolios(includeClosed bool) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(includeClosed)
}

// GetPortfolio retrieves a single portfolio by ID.
func (s *PortfolioService) GetPortfolio(portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioOnID(portfolioID)
}

// GetPositions retrieves the custodian-reported positions for one portfolio,
// or across all portfolios when portfolioID is empty.
func (s *PortfolioService) GetPositions(portfolioID string) ([]model.Position, error) {
	return s.positionRepo.GetPositions(portfolioID)
}

// CreatePortfolio creates a new portfolio from the validated request.
// The base currency defaults to INR and the status to active.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, req request.CreatePortfolioRequest) (model.Portfolio, error) {
	portfolio := model.Portfolio{
		ClientID:      req.ClientID,
		Name:          req.Name,
		PortfolioType: req.PortfolioType,
		BaseCurrency:  req.BaseCurrency,
		Benchmark:     req.Benchmark,
		Status:        "active",
		Notes:         req.Notes,
	}

	if portfolio.BaseCurrency == "" {
		portfolio.BaseCurrency = "INR"
	}

	if req.InceptionDate != "" {
		inception, err := time.Parse("2006-01-02", req.InceptionDate)
		if err != nil {
			return model.Portfolio{}, err
		}
		portfolio.InceptionDate = inception
	}

	id, err := s.portfolioRepo.InsertPortfolio(ctx, portfolio)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to create portfolio: %w", err)
	}
	portfolio.ID = id

	return portfolio, nil
}

// UpdatePortfolio applies the provided fields to an existing portfolio and
// returns the updated record.
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, portfolioID string, req request.UpdatePortfolioRequest) (model.Portfolio, error) {
	err := s.portfolioRepo.UpdatePortfolio(ctx, portfolioID, req.Name, req.Benchmark, req.Status, req.Notes)
	if err != nil {
		return model.Portfolio{}, err
	}

	return s.portfolioRepo.GetPortfolioOnID(portfolioID)
}
