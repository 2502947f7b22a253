package costbasis

import (
	"fmt"
	"sort"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// GroupKey identifies one (portfolio, security) transaction group. Lot
// bookkeeping never crosses group boundaries.
type GroupKey struct {
	PortfolioID string
	SecurityID  string
}

// Normalize filters the raw transaction log to the given portfolio scope
// (all portfolios when scopePortfolioID is empty), groups transactions by
// (portfolio, security) and sorts each group ascending by trade date. The
// sort is stable, so buys sharing a trade date keep their insertion order
// and lot creation stays deterministic.
//
// A buy or sell missing its quantity, price, or trade date invalidates the
// whole group it belongs to: the group is returned in the second map keyed
// to the validation error instead of being processed. Groups are never
// partially processed.
func Normalize(transactions []model.Transaction, scopePortfolioID string) (map[GroupKey][]model.Transaction, map[GroupKey]error) {
	groups := make(map[GroupKey][]model.Transaction)
	failed := make(map[GroupKey]error)

	for _, tx := range transactions {
		if scopePortfolioID != "" && tx.PortfolioID != scopePortfolioID {
			continue
		}
		key := GroupKey{PortfolioID: tx.PortfolioID, SecurityID: tx.SecurityID}
		if err := validateTransaction(tx); err != nil {
			if _, seen := failed[key]; !seen {
				failed[key] = err
			}
			continue
		}
		groups[key] = append(groups[key], tx)
	}

	// Drop any group that contained an invalid transaction so it is not
	// partially processed.
	for key := range failed {
		delete(groups, key)
	}

	for key := range groups {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].TradeDate.Before(group[j].TradeDate)
		})
		groups[key] = group
	}

	return groups, failed
}

// validateTransaction checks the fields the lot book depends on. Only buy
// and sell transactions are checked; pass-through types carry no lot effect.
func validateTransaction(tx model.Transaction) error {
	if !tx.IsBuy() && !tx.IsSell() {
		return nil
	}
	// Quantities below the comparison epsilon are indistinguishable from
	// zero to the lot arithmetic and are rejected outright.
	if tx.Quantity <= quantityEpsilon {
		return fmt.Errorf("%w: transaction %s has no quantity", apperrors.ErrInvalidTransaction, tx.ID)
	}
	if tx.Price <= 0 {
		return fmt.Errorf("%w: transaction %s has no price", apperrors.ErrInvalidTransaction, tx.ID)
	}
	if tx.TradeDate.IsZero() {
		return fmt.Errorf("%w: transaction %s has no trade date", apperrors.ErrInvalidTransaction, tx.ID)
	}
	return nil
}
