package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/advisordesk/costbasis-backend/internal/api/request"
	"github.com/advisordesk/costbasis-backend/internal/model"
	"github.com/advisordesk/costbasis-backend/internal/repository"
)

// TransactionService handles transaction-related business logic operations.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
	}
}

// LoadTransactions retrieves the ordered transaction log, optionally scoped
// to one portfolio. This is the input feed of cost-basis reporting.
func (s *TransactionService) LoadTransactions(portfolioID string) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactions(portfolioID)
}

// GetTransactionsPerPortfolio retrieves all transactions for a specific portfolio,
// or all transactions if portfolioID is empty.
// Returns enriched transaction data including portfolio and security names.
func (s *TransactionService) GetTransactionsPerPortfolio(portfolioID string) ([]model.TransactionResponse, error) {
	return s.transactionRepo.GetTransactionsPerPortfolio(portfolioID)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(transactionID string) (model.TransactionResponse, error) {
	return s.transactionRepo.GetTransaction(transactionID)
}

// CreateTransaction records a new transaction from the validated request.
// The total amount is derived from quantity, price and fees: fees increase
// the cost of a buy and reduce the proceeds of a sell.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	tradeDate, err := time.Parse("2006-01-02", req.TradeDate)
	if err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		ID:          uuid.New().String(),
		PortfolioID: req.PortfolioID,
		SecurityID:  req.SecurityID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Price:       req.Price,
		TotalAmount: totalAmount(req.Type, req.Quantity, req.Price, req.Fees),
		Fees:        req.Fees,
		TradeDate:   tradeDate,
		Notes:       req.Notes,
		Status:      "settled",
		LotIDs:      req.LotIDs,
		CreatedAt:   time.Now().UTC(),
	}

	if req.SettlementDate != "" {
		settled, err := time.Parse("2006-01-02", req.SettlementDate)
		if err != nil {
			return nil, err
		}
		transaction.SettlementDate = &settled
	}

	if err := s.transactionRepo.InsertTransaction(ctx, *transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return transaction, nil
}

// UpdateTransaction applies the provided fields to an existing transaction
// and returns the updated record. Changing quantity, price or fees recomputes
// the stored total amount from the resulting values.
func (s *TransactionService) UpdateTransaction(ctx context.Context, transactionID string, req request.UpdateTransactionRequest) (model.TransactionResponse, error) {
	current, err := s.transactionRepo.GetTransaction(transactionID)
	if err != nil {
		return model.TransactionResponse{}, err
	}

	fields := make(map[string]any)

	if req.TradeDate != nil {
		tradeDate, err := time.Parse("2006-01-02", *req.TradeDate)
		if err != nil {
			return model.TransactionResponse{}, err
		}
		fields["trade_date"] = tradeDate.Format("2006-01-02")
	}
	if req.SettlementDate != nil {
		if *req.SettlementDate == "" {
			fields["settlement_date"] = nil
		} else {
			settled, err := time.Parse("2006-01-02", *req.SettlementDate)
			if err != nil {
				return model.TransactionResponse{}, err
			}
			fields["settlement_date"] = settled.Format("2006-01-02")
		}
	}

	txType := current.Type
	if req.Type != nil {
		txType = *req.Type
		fields["type"] = txType
	}
	quantity := current.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
		fields["quantity"] = quantity
	}
	price := current.Price
	if req.Price != nil {
		price = *req.Price
		fields["price"] = price
	}
	fees := current.Fees
	if req.Fees != nil {
		fees = *req.Fees
		fields["fees"] = fees
	}
	if req.Type != nil || req.Quantity != nil || req.Price != nil || req.Fees != nil {
		fields["total_amount"] = totalAmount(txType, quantity, price, fees)
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	if err := s.transactionRepo.UpdateTransaction(ctx, transactionID, fields, req.LotIDs); err != nil {
		return model.TransactionResponse{}, err
	}

	return s.transactionRepo.GetTransaction(transactionID)
}

// DeleteTransaction removes a transaction and its designated lot rows.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	return s.transactionRepo.DeleteTransaction(ctx, transactionID)
}

func totalAmount(txType string, quantity, price, fees float64) float64 {
	gross := quantity * price
	switch txType {
	case "buy":
		return gross + fees
	case "sell":
		return gross - fees
	default:
		return gross
	}
}
