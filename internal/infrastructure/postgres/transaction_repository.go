package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"fintrack/internal/domain/category"
	"fintrack/internal/domain/transaction"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, account_id, provider_transaction_id, amount, transaction_date,
       description, merchant_name, category, pending, created_at, updated_at`

// Create inserts a manually entered transaction. provider_transaction_id
// stays NULL so sync never touches the row.
func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions (id, user_id, account_id, amount, transaction_date, description, merchant_name, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + transactionColumns

	tx, err := scanTransaction(r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.AccountID, params.Amount, params.Date,
		params.Description, params.MerchantName, string(params.Category),
	))
	if err != nil {
		return nil, wrapConstraint("failed to create transaction", err)
	}

	return tx, nil
}

// GetByID retrieves a transaction by its local id
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// GetByProviderID retrieves a transaction by provider transaction id.
// Returns (nil, nil) when no row matches.
func (r *TransactionRepository) GetByProviderID(ctx context.Context, providerTransactionID string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE provider_transaction_id = $1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, providerTransactionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// UpsertByProviderID inserts the transaction or overwrites the mutable
// fields of the row already holding its provider transaction id. The
// (xmax = 0) column reports whether the row was inserted, so callers get
// exact created/updated counts from a single statement even when syncs race.
func (r *TransactionRepository) UpsertByProviderID(ctx context.Context, params transaction.UpsertParams) (*transaction.Transaction, bool, error) {
	query := `
		INSERT INTO transactions (id, user_id, account_id, provider_transaction_id, amount, transaction_date, description, merchant_name, category, pending)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (provider_transaction_id)
		DO UPDATE SET
			account_id = EXCLUDED.account_id,
			amount = EXCLUDED.amount,
			transaction_date = EXCLUDED.transaction_date,
			description = EXCLUDED.description,
			merchant_name = EXCLUDED.merchant_name,
			category = EXCLUDED.category,
			pending = EXCLUDED.pending,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + transactionColumns + `, (xmax = 0) AS inserted`

	var tx transaction.Transaction
	var providerID sql.NullString
	var categoryName string
	var created bool

	// merchant_name is NOT NULL; an empty merchant stays an empty string
	// so the upsert never trips the constraint.
	err := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.AccountID, params.ProviderTransactionID,
		params.Amount, params.Date, params.Description, params.MerchantName,
		string(params.Category), params.Pending,
	).Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &providerID, &tx.Amount, &tx.Date,
		&tx.Description, &tx.MerchantName, &categoryName, &tx.Pending,
		&tx.CreatedAt, &tx.UpdatedAt, &created,
	)
	if err != nil {
		return nil, false, wrapConstraint("failed to upsert transaction", err)
	}

	fillTransaction(&tx, providerID, categoryName)

	return &tx, created, nil
}

// List retrieves transactions for a user, newest first, narrowed by filter
func (r *TransactionRepository) List(ctx context.Context, userID int64, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	args := []any{userID}

	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		fmt.Fprintf(&b, " AND account_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		fmt.Fprintf(&b, " AND transaction_date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		fmt.Fprintf(&b, " AND transaction_date <= $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		fmt.Fprintf(&b, " AND category = $%d", len(args))
	}

	b.WriteString(" ORDER BY transaction_date DESC, created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}

// CountByUserID returns the number of stored transactions for a user
func (r *TransactionRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Update applies the non-nil fields of params to an existing transaction
func (r *TransactionRepository) Update(ctx context.Context, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET amount = COALESCE($2, amount),
		    transaction_date = COALESCE($3, transaction_date),
		    description = COALESCE($4, description),
		    merchant_name = COALESCE($5, merchant_name),
		    category = COALESCE($6, category),
		    pending = COALESCE($7, pending),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + transactionColumns

	var categoryArg *string
	if params.Category != nil {
		s := string(*params.Category)
		categoryArg = &s
	}

	tx, err := scanTransaction(r.db.QueryRowContext(
		ctx, query,
		id, params.Amount, params.Date, params.Description, params.MerchantName, categoryArg, params.Pending,
	))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return tx, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var providerID sql.NullString
	var categoryName string

	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &providerID, &tx.Amount, &tx.Date,
		&tx.Description, &tx.MerchantName, &categoryName, &tx.Pending,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fillTransaction(&tx, providerID, categoryName)

	return &tx, nil
}

func fillTransaction(tx *transaction.Transaction, providerID sql.NullString, categoryName string) {
	if providerID.Valid {
		id := providerID.String
		tx.ProviderTransactionID = &id
	}
	tx.Category = category.Category(categoryName)
}

func wrapConstraint(msg string, err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", msg, transaction.ErrConstraintViolation)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
