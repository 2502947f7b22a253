package validation

import (
	"strings"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/api/request"
)

// validCurrencies lists the ISO 4217 codes portfolios may be denominated in.
var validCurrencies = map[string]bool{
	"INR": true, "USD": true, "EUR": true, "GBP": true, "SGD": true,
}

// ValidPortfolioStatus contains the allowed portfolio status values.
var ValidPortfolioStatus = map[string]bool{
	"active": true, "closed": true,
}

func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	// Optional but has constraints
	if req.ClientID != "" {
		if err := ValidateUUID(req.ClientID); err != nil {
			errors["clientId"] = err.Error()
		}
	}

	if req.BaseCurrency != "" && !validCurrencies[strings.ToUpper(req.BaseCurrency)] {
		errors["baseCurrency"] = "unsupported currency: " + req.BaseCurrency
	}

	if req.InceptionDate != "" {
		if _, err := time.Parse("2006-01-02", req.InceptionDate); err != nil {
			errors["inceptionDate"] = err.Error()
		}
	}

	if len(req.Notes) > 500 {
		errors["notes"] = "notes must be 500 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdatePortfolio(req request.UpdatePortfolioRequest) error {
	errors := make(map[string]string)

	// Only validate provided fields
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errors["name"] = "name cannot be empty"
		} else if len(*req.Name) > 100 {
			errors["name"] = "name must be 100 characters or less"
		}
	}

	if req.Status != nil && !ValidPortfolioStatus[*req.Status] {
		errors["status"] = "invalid status: " + *req.Status
	}

	if req.Notes != nil && len(*req.Notes) > 500 {
		errors["notes"] = "notes must be 500 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
