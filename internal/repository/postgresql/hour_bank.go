package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
)

type hourBankRepositoryImpl struct {
	db          *database.DB
	lockTimeout string
}

// NewHourBankRepository returns the hour_banks repository. Row locks wait at
// most lockTimeout (a PostgreSQL interval such as "5s") before failing with
// hourbank.ErrConcurrencyConflict.
func NewHourBankRepository(db *database.DB, lockTimeout string) hourbank.HourBankRepository {
	if lockTimeout == "" {
		lockTimeout = "5s"
	}
	return &hourBankRepositoryImpl{db: db, lockTimeout: lockTimeout}
}

const hourBankColumns = `id, user_id, current_balance, total_credited, total_debited, last_transaction, created_at, updated_at`

func scanHourBank(row pgx.Row) (hourbank.HourBank, error) {
	var b hourbank.HourBank
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.CurrentBalance,
		&b.TotalCredited,
		&b.TotalDebited,
		&b.LastTransaction,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

// GetByUserID implements hourbank.HourBankRepository.
func (r *hourBankRepositoryImpl) GetByUserID(ctx context.Context, userID string) (hourbank.HourBank, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + hourBankColumns + ` FROM hour_banks WHERE user_id = $1`
	b, err := scanHourBank(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hourbank.HourBank{}, hourbank.ErrHourBankNotFound
		}
		return hourbank.HourBank{}, fmt.Errorf("failed to get hour bank: %w", err)
	}
	return b, nil
}

// GetByUserIDForUpdate implements hourbank.HourBankRepository.
func (r *hourBankRepositoryImpl) GetByUserIDForUpdate(ctx context.Context, userID string) (hourbank.HourBank, error) {
	if _, ok := database.TxFromContext(ctx); !ok {
		return hourbank.HourBank{}, errors.New("hour bank row lock requires a transaction")
	}
	q := GetQuerier(ctx, r.db)

	// SET does not accept bind parameters.
	if _, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", strings.ReplaceAll(r.lockTimeout, "'", ""))); err != nil {
		return hourbank.HourBank{}, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	query := `SELECT ` + hourBankColumns + ` FROM hour_banks WHERE user_id = $1 FOR UPDATE`
	b, err := scanHourBank(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hourbank.HourBank{}, hourbank.ErrHourBankNotFound
		}
		if isLockConflict(err) {
			return hourbank.HourBank{}, hourbank.ErrConcurrencyConflict
		}
		return hourbank.HourBank{}, fmt.Errorf("failed to lock hour bank: %w", err)
	}
	return b, nil
}

// CreateIfNotExists implements hourbank.HourBankRepository.
func (r *hourBankRepositoryImpl) CreateIfNotExists(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO hour_banks (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to create hour bank: %w", err)
	}
	return nil
}

// UpdateBalance implements hourbank.HourBankRepository.
func (r *hourBankRepositoryImpl) UpdateBalance(ctx context.Context, bank hourbank.HourBank) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE hour_banks
		SET current_balance = $1, total_credited = $2, total_debited = $3,
		    last_transaction = $4, updated_at = NOW()
		WHERE user_id = $5
	`
	tag, err := q.Exec(ctx, query,
		bank.CurrentBalance,
		bank.TotalCredited,
		bank.TotalDebited,
		bank.LastTransaction,
		bank.UserID,
	)
	if err != nil {
		if isLockConflict(err) {
			return hourbank.ErrConcurrencyConflict
		}
		return fmt.Errorf("failed to update hour bank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return hourbank.ErrHourBankNotFound
	}
	return nil
}

// ListUserIDs implements hourbank.HourBankRepository.
func (r *hourBankRepositoryImpl) ListUserIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT user_id FROM hour_banks ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hour banks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan hour bank user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type transactionRepositoryImpl struct {
	db *database.DB
}

func NewTransactionRepository(db *database.DB) hourbank.TransactionRepository {
	return &transactionRepositoryImpl{db: db}
}

const transactionColumns = `id, sequence, user_id, type, hours, balance_before, balance_after, description,
	overtime_request_id, time_record_id, created_by, created_at`

func scanTransaction(row pgx.Row) (hourbank.Transaction, error) {
	var t hourbank.Transaction
	var txType string
	err := row.Scan(
		&t.ID,
		&t.Sequence,
		&t.UserID,
		&txType,
		&t.Hours,
		&t.BalanceBefore,
		&t.BalanceAfter,
		&t.Description,
		&t.OvertimeRequestID,
		&t.TimeRecordID,
		&t.CreatedBy,
		&t.CreatedAt,
	)
	t.Type = hourbank.TransactionType(txType)
	return t, err
}

// Create implements hourbank.TransactionRepository.
func (r *transactionRepositoryImpl) Create(ctx context.Context, tx hourbank.Transaction) (hourbank.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO hour_bank_transactions (
			user_id, type, hours, balance_before, balance_after, description,
			overtime_request_id, time_record_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + transactionColumns

	created, err := scanTransaction(q.QueryRow(ctx, query,
		tx.UserID,
		string(tx.Type),
		tx.Hours,
		tx.BalanceBefore,
		tx.BalanceAfter,
		tx.Description,
		tx.OvertimeRequestID,
		tx.TimeRecordID,
		tx.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err) || isLockConflict(err) {
			return hourbank.Transaction{}, hourbank.ErrConcurrencyConflict
		}
		return hourbank.Transaction{}, fmt.Errorf("failed to create hour bank transaction: %w", err)
	}
	return created, nil
}

// ListByUserID implements hourbank.TransactionRepository. Newest first.
func (r *transactionRepositoryImpl) ListByUserID(ctx context.Context, userID string, filter hourbank.TransactionFilter) ([]hourbank.Transaction, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	argIndex := 2

	if filter.Type != nil {
		where = append(where, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("created_at::date >= $%d::date", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("created_at::date <= $%d::date", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM hour_bank_transactions WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count hour bank transactions: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM hour_bank_transactions
		WHERE %s
		ORDER BY sequence DESC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	txs, err := r.query(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// ListChainByUserID implements hourbank.TransactionRepository.
func (r *transactionRepositoryImpl) ListChainByUserID(ctx context.Context, userID string) ([]hourbank.Transaction, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + transactionColumns + ` FROM hour_bank_transactions WHERE user_id = $1 ORDER BY sequence`
	return r.query(ctx, q, query, userID)
}

func (r *transactionRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]hourbank.Transaction, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hour bank transactions: %w", err)
	}
	defer rows.Close()

	var txs []hourbank.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hour bank transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
