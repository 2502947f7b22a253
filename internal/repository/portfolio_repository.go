package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// GetPortfolios retrieves portfolios from the database.
// Closed portfolios are only included when includeClosed is true.
// Returns an empty slice if no portfolios match.
func (r *PortfolioRepository) GetPortfolios(includeClosed bool) ([]model.Portfolio, error) {
	query := `
          SELECT id, client_id, name, portfolio_type, base_currency, benchmark, inception_date, status, notes
          FROM portfolio
          WHERE 1=1
      `
	var args []any

	if !includeClosed {
		query += " AND status = ?"
		args = append(args, "active")
	}

	query += " ORDER BY name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}

	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves a single portfolio.
// Returns apperrors.ErrPortfolioNotFound if the id does not exist.
func (r *PortfolioRepository) GetPortfolioOnID(portfolioID string) (model.Portfolio, error) {
	query := `
          SELECT id, client_id, name, portfolio_type, base_currency, benchmark, inception_date, status, notes
          FROM portfolio
          WHERE id = ?
      `
	var p model.Portfolio
	var inceptionDateStr sql.NullString

	err := r.db.QueryRow(query, portfolioID).Scan(
		&p.ID,
		&p.ClientID,
		&p.Name,
		&p.PortfolioType,
		&p.BaseCurrency,
		&p.Benchmark,
		&inceptionDateStr,
		&p.Status,
		&p.Notes,
	)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	if inceptionDateStr.Valid {
		p.InceptionDate, err = ParseTime(inceptionDateStr.String)
		if err != nil {
			return model.Portfolio{}, err
		}
	}

	return p, nil
}

// InsertPortfolio creates a new portfolio row and returns its generated ID.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p model.Portfolio) (string, error) {
	query := `
        INSERT INTO portfolio (id, client_id, name, portfolio_type, base_currency, benchmark, inception_date, status, notes, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	id := uuid.New().String()

	var inceptionDate any
	if !p.InceptionDate.IsZero() {
		inceptionDate = p.InceptionDate.Format("2006-01-02")
	}

	_, err := r.db.ExecContext(ctx, query,
		id,
		p.ClientID,
		p.Name,
		p.PortfolioType,
		p.BaseCurrency,
		p.Benchmark,
		inceptionDate,
		p.Status,
		p.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return id, nil
}

// UpdatePortfolio applies the non-nil fields of the update to an existing portfolio.
// Returns apperrors.ErrPortfolioNotFound if the id does not exist.
func (r *PortfolioRepository) UpdatePortfolio(ctx context.Context, portfolioID string, name, benchmark, status, notes *string) error {
	query := `UPDATE portfolio SET id = id`
	var args []any

	if name != nil {
		query += ", name = ?"
		args = append(args, *name)
	}
	if benchmark != nil {
		query += ", benchmark = ?"
		args = append(args, *benchmark)
	}
	if status != nil {
		query += ", status = ?"
		args = append(args, *status)
	}
	if notes != nil {
		query += ", notes = ?"
		args = append(args, *notes)
	}

	query += " WHERE id = ?"
	args = append(args, portfolioID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrPortfolioNotFound
	}

	return nil
}

func scanPortfolio(rows *sql.Rows) (model.Portfolio, error) {
	var p model.Portfolio
	var inceptionDateStr sql.NullString

	err := rows.Scan(
		&p.ID,
		&p.ClientID,
		&p.Name,
		&p.PortfolioType,
		&p.BaseCurrency,
		&p.Benchmark,
		&inceptionDateStr,
		&p.Status,
		&p.Notes,
	)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio table results: %w", err)
	}

	if inceptionDateStr.Valid {
		p.InceptionDate, err = ParseTime(inceptionDateStr.String)
		if err != nil {
			return model.Portfolio{}, err
		}
	}

	return p, nil
}
