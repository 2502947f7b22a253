// Package costbasis turns a chronological stream of buy/sell transactions
// into per-security tax lots, computes realized and unrealized gains under a
// selected accounting convention, and rolls the results into an exportable
// capital-gains report.
//
// The engine is a pure transform: it performs no I/O, holds no state across
// invocations, and recomputing from the same snapshot always yields the same
// report. Multiple invocations (one per portfolio, or one per method for
// comparison) can run in parallel without coordination.
package costbasis

import (
	"fmt"
	"sort"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// Engine computes cost-basis reports from transaction and position
// snapshots. The holding-period threshold is fixed at construction.
type Engine struct {
	holdingPeriodDays int
}

// NewEngine creates an engine with the given long-term holding-period
// threshold in days. Values <= 0 fall back to DefaultHoldingPeriodDays.
func NewEngine(holdingPeriodDays int) *Engine {
	if holdingPeriodDays <= 0 {
		holdingPeriodDays = DefaultHoldingPeriodDays
	}
	return &Engine{holdingPeriodDays: holdingPeriodDays}
}

// HoldingPeriodDays returns the configured long-term cutoff.
func (e *Engine) HoldingPeriodDays() int {
	return e.holdingPeriodDays
}

// GenerateReport runs the full pipeline: normalize the transaction log,
// apply each (portfolio, security) group through a fresh lot book under the
// given method, classify realized and unrealized gains, and aggregate into
// the report.
//
// scopePortfolioID limits the report to one portfolio when non-empty. asOf
// is the valuation date for open lots; the zero value means today (UTC).
//
// A data problem in one group (invalid transaction, oversell) fails that
// group only and is reported under GroupErrors; the remaining groups still
// produce results. Only an unsupported method fails the call outright.
func (e *Engine) GenerateReport(
	transactions []model.Transaction,
	positions []model.Position,
	method model.CostBasisMethod,
	scopePortfolioID string,
	asOf time.Time,
) (*model.CostBasisReport, error) {

	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownMethod, method)
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	groups, failures := Normalize(transactions, scopePortfolioID)
	positionsByKey := indexPositions(positions, scopePortfolioID)

	// Process groups in a stable order so the report is deterministic.
	keys := make([]GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].PortfolioID != keys[j].PortfolioID {
			return keys[i].PortfolioID < keys[j].PortfolioID
		}
		return keys[i].SecurityID < keys[j].SecurityID
	})

	results := make([]groupResult, 0, len(keys))
	for _, key := range keys {
		group := groups[key]

		book, err := NewLotBook(method)
		if err != nil {
			return nil, err
		}
		openLots, events, err := book.Apply(group)
		if err != nil {
			failures[key] = err
			continue
		}

		res := groupResult{
			key:          key,
			securityName: securityNameFor(key, positionsByKey, group),
		}
		res.openLots = openLots
		for _, ev := range events {
			res.realized = append(res.realized, Classify(ev, e.holdingPeriodDays))
		}
		currentPrice := positionsByKey[key].CurrentPrice
		for _, lot := range openLots {
			res.unrealized = append(res.unrealized, ClassifyOpenLot(lot, asOf, currentPrice, e.holdingPeriodDays))
		}
		results = append(results, res)
	}

	return aggregate(method, asOf, results, positionsByKey, failures), nil
}

// indexPositions keys the position snapshot by (portfolio, security),
// honoring the same portfolio scope as the transaction filter.
func indexPositions(positions []model.Position, scopePortfolioID string) map[GroupKey]model.Position {
	byKey := make(map[GroupKey]model.Position, len(positions))
	for _, pos := range positions {
		if scopePortfolioID != "" && pos.PortfolioID != scopePortfolioID {
			continue
		}
		byKey[GroupKey{PortfolioID: pos.PortfolioID, SecurityID: pos.SecurityID}] = pos
	}
	return byKey
}

// securityNameFor resolves a display name for the group, preferring the
// position snapshot and falling back to the transaction log.
func securityNameFor(key GroupKey, positions map[GroupKey]model.Position, group []model.Transaction) string {
	if pos, ok := positions[key]; ok && pos.SecurityName != "" {
		return pos.SecurityName
	}
	for _, tx := range group {
		if tx.SecurityName != "" {
			return tx.SecurityName
		}
	}
	return key.SecurityID
}
