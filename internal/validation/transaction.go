package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/api/request"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	"buy": true, "sell": true, "dividend": true, "fee": true,
	"split": true, "transfer": true,
}

// ValidTransactionStatus contains the allowed transaction status values.
var ValidTransactionStatus = map[string]bool{
	"settled": true, "pending": true, "cancelled": true,
}

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - portfolioId: Must be a valid UUID
//   - securityId: Must be a valid UUID
//   - tradeDate: Must be in YYYY-MM-DD format
//   - type: Must be one of: buy, sell, dividend, fee, split, transfer
//   - quantity: Must be positive for buy and sell
//   - price: Must be positive for buy and sell
//
// The lotIds field is only meaningful for sells consumed under the specific
// identification method; each entry must be a valid UUID.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.PortfolioID); err != nil {
		return err
	}
	if err := ValidateUUID(req.SecurityID); err != nil {
		return err
	}

	if strings.TrimSpace(req.TradeDate) == "" {
		errors["tradeDate"] = "tradeDate is required"
	} else if _, err := time.Parse("2006-01-02", req.TradeDate); err != nil {
		errors["tradeDate"] = err.Error()
	}

	if req.SettlementDate != "" {
		if _, err := time.Parse("2006-01-02", req.SettlementDate); err != nil {
			errors["settlementDate"] = err.Error()
		}
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Type == "buy" || req.Type == "sell" {
		if req.Quantity <= 0.0 {
			errors["quantity"] = "quantity must be positive"
		}
		if req.Price <= 0.0 {
			errors["price"] = "price must be positive"
		}
	}

	if req.Fees < 0.0 {
		errors["fees"] = "fees cannot be negative"
	}

	if len(req.LotIDs) > 0 {
		if req.Type != "sell" {
			errors["lotIds"] = "lotIds may only be set on sell transactions"
		} else if err := ValidateUUIDs(req.LotIDs); err != nil {
			errors["lotIds"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTransaction validates a transaction update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(map[string]string)

	if req.TradeDate != nil {
		if strings.TrimSpace(*req.TradeDate) == "" {
			errors["tradeDate"] = "tradeDate is required"
		} else if _, err := time.Parse("2006-01-02", *req.TradeDate); err != nil {
			errors["tradeDate"] = err.Error()
		}
	}
	if req.SettlementDate != nil && *req.SettlementDate != "" {
		if _, err := time.Parse("2006-01-02", *req.SettlementDate); err != nil {
			errors["settlementDate"] = err.Error()
		}
	}
	if req.Type != nil {
		if strings.TrimSpace(*req.Type) == "" {
			errors["type"] = "type is required"
		} else if !ValidTransactionType[*req.Type] {
			errors["type"] = fmt.Sprintf("invalid type: %s", *req.Type)
		}
	}
	if req.Quantity != nil && *req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}
	if req.Price != nil && *req.Price <= 0.0 {
		errors["price"] = "price must be positive"
	}
	if req.Fees != nil && *req.Fees < 0.0 {
		errors["fees"] = "fees cannot be negative"
	}
	if req.Status != nil && !ValidTransactionStatus[*req.Status] {
		errors["status"] = fmt.Sprintf("invalid status: %s", *req.Status)
	}
	if len(req.LotIDs) > 0 {
		if err := ValidateUUIDs(req.LotIDs); err != nil {
			errors["lotIds"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
