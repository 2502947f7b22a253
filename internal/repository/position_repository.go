package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
// Positions are the custodian-reported holdings snapshot; the cost-basis
// engine reconciles them against the transaction log but never mutates them.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetPositions retrieves positions joined with their security metadata.
// When portfolioID is empty, positions across all portfolios are returned.
// Returns an empty slice if no positions match.
func (r *PositionRepository) GetPositions(portfolioID string) ([]model.Position, error) {
	query := `
        SELECT
            pos.id, pos.portfolio_id, pos.security_id,
            s.name, s.type, s.exchange,
            pos.quantity, pos.average_cost, pos.current_price, pos.market_value, pos.last_price_update
        FROM position pos
        JOIN security s ON s.id = pos.security_id
    `
	var args []any

	if portfolioID != "" {
		query += " WHERE pos.portfolio_id = ?"
		args = append(args, portfolioID)
	}

	query += " ORDER BY s.name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}

	for rows.Next() {
		var pos model.Position
		var lastUpdateStr sql.NullString

		err := rows.Scan(
			&pos.ID,
			&pos.PortfolioID,
			&pos.SecurityID,
			&pos.SecurityName,
			&pos.SecurityType,
			&pos.Exchange,
			&pos.Quantity,
			&pos.AverageCost,
			&pos.CurrentPrice,
			&pos.MarketValue,
			&lastUpdateStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}

		if lastUpdateStr.Valid {
			pos.LastPriceUpdate, err = ParseTime(lastUpdateStr.String)
			if err != nil {
				return nil, err
			}
		}

		positions = append(positions, pos)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetPositionOnID retrieves a single position.
// Returns apperrors.ErrPositionNotFound if the id does not exist.
func (r *PositionRepository) GetPositionOnID(positionID string) (model.Position, error) {
	query := `
        SELECT
            pos.id, pos.portfolio_id, pos.security_id,
            s.name, s.type, s.exchange,
            pos.quantity, pos.average_cost, pos.current_price, pos.market_value, pos.last_price_update
        FROM position pos
        JOIN security s ON s.id = pos.security_id
        WHERE pos.id = ?
    `
	var pos model.Position
	var lastUpdateStr sql.NullString

	err := r.db.QueryRow(query, positionID).Scan(
		&pos.ID,
		&pos.PortfolioID,
		&pos.SecurityID,
		&pos.SecurityName,
		&pos.SecurityType,
		&pos.Exchange,
		&pos.Quantity,
		&pos.AverageCost,
		&pos.CurrentPrice,
		&pos.MarketValue,
		&lastUpdateStr,
	)
	if err == sql.ErrNoRows {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query position: %w", err)
	}

	if lastUpdateStr.Valid {
		pos.LastPriceUpdate, err = ParseTime(lastUpdateStr.String)
		if err != nil {
			return model.Position{}, err
		}
	}

	return pos, nil
}

// GetSecurities retrieves every security referenced by at least one position.
// Used by the price refresh job to know which quotes to fetch.
func (r *PositionRepository) GetSecurities() ([]model.Security, error) {
	query := `
        SELECT DISTINCT s.id, s.symbol, s.name, s.type, s.exchange, s.currency, s.last_price, s.last_price_update
        FROM security s
        JOIN position pos ON pos.security_id = s.id
        ORDER BY s.symbol ASC
    `

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query security table: %w", err)
	}
	defer rows.Close()

	securities := []model.Security{}

	for rows.Next() {
		var s model.Security
		var lastPrice sql.NullFloat64
		var lastUpdateStr sql.NullString

		err := rows.Scan(
			&s.ID,
			&s.Symbol,
			&s.Name,
			&s.Type,
			&s.Exchange,
			&s.Currency,
			&lastPrice,
			&lastUpdateStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security table results: %w", err)
		}

		if lastPrice.Valid {
			s.LastPrice = &lastPrice.Float64
		}
		if lastUpdateStr.Valid {
			t, err := ParseTime(lastUpdateStr.String)
			if err != nil {
				return nil, err
			}
			s.LastPriceUpdate = &t
		}

		securities = append(securities, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security table: %w", err)
	}

	return securities, nil
}

// UpdateSecurityPrice records a fresh quote for a security and refreshes the
// derived current_price and market_value on every position that holds it.
func (r *PositionRepository) UpdateSecurityPrice(ctx context.Context, securityID string, price float64, asOf time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	asOfStr := asOf.UTC().Format(time.RFC3339)

	_, err = tx.ExecContext(ctx, `
        UPDATE security SET last_price = ?, last_price_update = ? WHERE id = ?
    `, price, asOfStr, securityID)
	if err != nil {
		return fmt.Errorf("failed to update security price: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE position
        SET current_price = ?, market_value = quantity * ?, last_price_update = ?
        WHERE security_id = ?
    `, price, price, asOfStr, securityID)
	if err != nil {
		return fmt.Errorf("failed to update position prices: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price update: %w", err)
	}

	return nil
}
