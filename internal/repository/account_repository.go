package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
)

// AccountRepository provides data access methods for the account and
// cash_transaction tables. Balance mutations are expressed as atomic delta
// statements; the debit statement carries its own sufficiency guard so the
// balance can never go negative, regardless of concurrent installments.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateAccount inserts a new paper account with the given opening balance.
func (r *AccountRepository) CreateAccount(ctx context.Context, userID string, balance float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account (user_id, balance, created_at)
		VALUES (?, ?, ?)
	`, userID, balance, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccount retrieves the account for the given user.
func (r *AccountRepository) GetAccount(ctx context.Context, userID string) (model.Account, error) {
	var a model.Account
	var createdAtStr sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, balance, created_at
		FROM account
		WHERE user_id = ?
	`, userID).Scan(&a.UserID, &a.Balance, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to query account table: %w", err)
	}

	if createdAtStr.Valid {
		a.CreatedAt, err = ParseTime(createdAtStr.String)
		if err != nil {
			return model.Account{}, err
		}
	}
	return a, nil
}

// Debit subtracts amount from the user's balance as a single guarded delta
// statement. Zero affected rows means the balance was insufficient (the
// caller is expected to have verified the account exists).
func (r *AccountRepository) Debit(ctx context.Context, q DBTX, userID string, amount float64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE account
		SET balance = balance - ?
		WHERE user_id = ? AND balance >= ?
	`, amount, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read debit result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInsufficientBalance
	}
	return nil
}

// Credit adds amount to the user's balance as a single delta statement.
func (r *AccountRepository) Credit(ctx context.Context, q DBTX, userID string, amount float64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE account
		SET balance = balance + ?
		WHERE user_id = ?
	`, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read credit result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// InsertCashTransaction appends one ledger entry for a balance movement.
func (r *AccountRepository) InsertCashTransaction(ctx context.Context, q DBTX, ct model.CashTransaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO cash_transaction (id, user_id, date, type, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ct.ID, ct.UserID, ct.Date, ct.Type, ct.Amount, ct.Description, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert cash transaction: %w", err)
	}
	return nil
}

// GetCashTransactions retrieves the user's ledger, oldest first.
func (r *AccountRepository) GetCashTransactions(ctx context.Context, userID string) ([]model.CashTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, type, amount, description, created_at
		FROM cash_transaction
		WHERE user_id = ?
		ORDER BY date ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.CashTransaction{}
	for rows.Next() {
		var ct model.CashTransaction
		var description, createdAtStr sql.NullString

		err := rows.Scan(&ct.ID, &ct.UserID, &ct.Date, &ct.Type, &ct.Amount, &description, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash_transaction table results: %w", err)
		}
		if description.Valid {
			ct.Description = description.String
		}
		if createdAtStr.Valid {
			ct.CreatedAt, err = ParseTime(createdAtStr.String)
			if err != nil {
				return nil, err
			}
		}
		transactions = append(transactions, ct)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash_transaction table: %w", err)
	}
	return transactions, nil
}
