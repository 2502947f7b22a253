package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction and
// transaction_lot tables. The transaction log is the authoritative input of
// cost-basis reporting, so reads return rows ordered by trade date.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetTransactions retrieves the transaction log, optionally scoped to one
// portfolio, sorted by trade date in ascending order. Designated lot IDs for
// specific-identification sells are attached from the transaction_lot table.
//
// Returns an empty slice if no transactions match.
func (r *TransactionRepository) GetTransactions(portfolioID string) ([]model.Transaction, error) {
	query := `
        SELECT
            t.id, t.portfolio_id, t.security_id, s.name,
            t.trade_date, t.settlement_date, t.type, t.quantity, t.price,
            t.total_amount, t.fees, t.notes, t.status, t.created_at
        FROM "transaction" t
        JOIN security s ON s.id = t.security_id
    `
	var args []any

	if portfolioID != "" {
		query += " WHERE t.portfolio_id = ?"
		args = append(args, portfolioID)
	}

	query += " ORDER BY t.trade_date ASC, t.created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	var sellIDs []string

	for rows.Next() {
		var t model.Transaction
		var tradeDateStr, createdAtStr string
		var settlementDateStr sql.NullString

		err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&t.SecurityID,
			&t.SecurityName,
			&tradeDateStr,
			&settlementDateStr,
			&t.Type,
			&t.Quantity,
			&t.Price,
			&t.TotalAmount,
			&t.Fees,
			&t.Notes,
			&t.Status,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.TradeDate, err = ParseTime(tradeDateStr)
		if err != nil || t.TradeDate.IsZero() {
			return nil, fmt.Errorf("failed to parse trade date: %w", err)
		}

		if settlementDateStr.Valid {
			settled, err := ParseTime(settlementDateStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse settlement date: %w", err)
			}
			t.SettlementDate = &settled
		}

		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || t.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse created date: %w", err)
		}

		if t.IsSell() {
			sellIDs = append(sellIDs, t.ID)
		}

		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	lotsByTransaction, err := r.getDesignatedLots(sellIDs)
	if err != nil {
		return nil, err
	}
	if len(lotsByTransaction) > 0 {
		for i := range transactions {
			transactions[i].LotIDs = lotsByTransaction[transactions[i].ID]
		}
	}

	return transactions, nil
}

// getDesignatedLots retrieves the designated lot IDs for the given sell
// transaction IDs, preserving the order they were recorded in.
func (r *TransactionRepository) getDesignatedLots(transactionIDs []string) (map[string][]string, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(transactionIDs))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
        SELECT transaction_id, lot_id
        FROM transaction_lot
        WHERE transaction_id IN (` + strings.Join(placeholders, ",") + `)
        ORDER BY rowid ASC
    `

	args := make([]any, len(transactionIDs))
	for i, id := range transactionIDs {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction_lot table: %w", err)
	}
	defer rows.Close()

	lotsByTransaction := make(map[string][]string)

	for rows.Next() {
		var transactionID, lotID string
		if err := rows.Scan(&transactionID, &lotID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction_lot table results: %w", err)
		}
		lotsByTransaction[transactionID] = append(lotsByTransaction[transactionID], lotID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction_lot table: %w", err)
	}

	return lotsByTransaction, nil
}

// GetTransactionsPerPortfolio retrieves transactions enriched with portfolio
// and security names for API responses. When portfolioID is empty, all
// transactions are returned.
func (r *TransactionRepository) GetTransactionsPerPortfolio(portfolioID string) ([]model.TransactionResponse, error) {
	query := `
        SELECT
            t.id, t.portfolio_id, p.name, t.security_id, s.name,
            t.trade_date, t.settlement_date, t.type, t.quantity, t.price,
            t.total_amount, t.fees, t.notes, t.status
        FROM "transaction" t
        JOIN portfolio p ON p.id = t.portfolio_id
        JOIN security s ON s.id = t.security_id
    `
	var args []any

	if portfolioID != "" {
		query += " WHERE t.portfolio_id = ?"
		args = append(args, portfolioID)
	}

	query += " ORDER BY t.trade_date ASC, t.created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	responses := []model.TransactionResponse{}

	for rows.Next() {
		t, err := scanTransactionResponse(rows.Scan)
		if err != nil {
			return nil, err
		}
		responses = append(responses, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return responses, nil
}

// GetTransaction retrieves a single transaction by ID.
// Returns apperrors.ErrTransactionNotFound if the id does not exist.
func (r *TransactionRepository) GetTransaction(transactionID string) (model.TransactionResponse, error) {
	query := `
        SELECT
            t.id, t.portfolio_id, p.name, t.security_id, s.name,
            t.trade_date, t.settlement_date, t.type, t.quantity, t.price,
            t.total_amount, t.fees, t.notes, t.status
        FROM "transaction" t
        JOIN portfolio p ON p.id = t.portfolio_id
        JOIN security s ON s.id = t.security_id
        WHERE t.id = ?
    `

	t, err := scanTransactionResponse(r.db.QueryRow(query, transactionID).Scan)
	if err == sql.ErrNoRows {
		return model.TransactionResponse{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.TransactionResponse{}, err
	}

	return t, nil
}

// InsertTransaction creates a transaction row together with its designated
// lot rows in a single database transaction.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t model.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var settlementDate any
	if t.SettlementDate != nil {
		settlementDate = t.SettlementDate.Format("2006-01-02")
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO "transaction"
            (id, portfolio_id, security_id, trade_date, settlement_date, type,
             quantity, price, total_amount, fees, notes, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		t.ID,
		t.PortfolioID,
		t.SecurityID,
		t.TradeDate.Format("2006-01-02"),
		settlementDate,
		t.Type,
		t.Quantity,
		t.Price,
		t.TotalAmount,
		t.Fees,
		t.Notes,
		t.Status,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, lotID := range t.LotIDs {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO transaction_lot (transaction_id, lot_id) VALUES (?, ?)
        `, t.ID, lotID)
		if err != nil {
			return fmt.Errorf("failed to insert transaction_lot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction insert: %w", err)
	}

	return nil
}

// UpdateTransaction applies the non-nil fields of the update to an existing
// transaction. When lotIDs is non-nil the designated lot rows are replaced.
// Returns apperrors.ErrTransactionNotFound if the id does not exist.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, transactionID string, fields map[string]any, lotIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if len(fields) > 0 {
		query := `UPDATE "transaction" SET `
		var sets []string
		var args []any
		for _, column := range []string{"trade_date", "settlement_date", "type", "quantity", "price", "total_amount", "fees", "notes", "status"} {
			if value, ok := fields[column]; ok {
				sets = append(sets, column+" = ?")
				args = append(args, value)
			}
		}
		query += strings.Join(sets, ", ") + " WHERE id = ?"
		args = append(args, transactionID)

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperrors.ErrTransactionNotFound
		}
	}

	if lotIDs != nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM transaction_lot WHERE transaction_id = ?`, transactionID)
		if err != nil {
			return fmt.Errorf("failed to clear transaction_lot: %w", err)
		}
		for _, lotID := range lotIDs {
			_, err = tx.ExecContext(ctx, `
                INSERT INTO transaction_lot (transaction_id, lot_id) VALUES (?, ?)
            `, transactionID, lotID)
			if err != nil {
				return fmt.Errorf("failed to insert transaction_lot: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction update: %w", err)
	}

	return nil
}

// DeleteTransaction removes a transaction; its designated lot rows cascade.
// Returns apperrors.ErrTransactionNotFound if the id does not exist.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM "transaction" WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

func scanTransactionResponse(scan func(...any) error) (model.TransactionResponse, error) {
	var t model.TransactionResponse
	var tradeDateStr string
	var settlementDateStr sql.NullString

	err := scan(
		&t.ID,
		&t.PortfolioID,
		&t.PortfolioName,
		&t.SecurityID,
		&t.SecurityName,
		&tradeDateStr,
		&settlementDateStr,
		&t.Type,
		&t.Quantity,
		&t.Price,
		&t.TotalAmount,
		&t.Fees,
		&t.Notes,
		&t.Status,
	)
	if err == sql.ErrNoRows {
		return model.TransactionResponse{}, err
	}
	if err != nil {
		return model.TransactionResponse{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	t.TradeDate, err = ParseTime(tradeDateStr)
	if err != nil || t.TradeDate.IsZero() {
		return model.TransactionResponse{}, fmt.Errorf("failed to parse trade date: %w", err)
	}

	if settlementDateStr.Valid {
		settled, err := ParseTime(settlementDateStr.String)
		if err != nil {
			return model.TransactionResponse{}, fmt.Errorf("failed to parse settlement date: %w", err)
		}
		t.SettlementDate = &settled
	}

	return t, nil
}
