/**
 * @description
 * PostgreSQL implementation of the Repository interface using the pgx driver.
 * Holds linked accounts (with their mandate state) and the transfer audit
 * trail. Schema:
 *
 *   linked_accounts(id, user_id, provider_account_id, provider_customer_id,
 *                   account_name, account_number, bank_name, bank_code,
 *                   phone_number, status, mandate_status, mandate_id,
 *                   mandate_auth_url, created_at, updated_at)
 *   transfer_records(id, user_id, reference, account_number, bank_code,
 *                    bank_name, recipient_name, amount_kobo, status,
 *                    failure_reason, created_at)
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5, pgxpool: The PostgreSQL driver.
 * - github.com/google/uuid: For record identifiers.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
)

// PostgresRepository is the PostgreSQL implementation of Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, user_id, provider_account_id, provider_customer_id, account_name,
	account_number, bank_name, bank_code, phone_number, status,
	mandate_status, COALESCE(mandate_id, ''), COALESCE(mandate_auth_url, ''), created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.LinkedAccount, error) {
	var acc domain.LinkedAccount
	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.ProviderAccountID, &acc.ProviderCustomerID, &acc.AccountName,
		&acc.AccountNumber, &acc.BankName, &acc.BankCode, &acc.PhoneNumber, &acc.Status,
		&acc.MandateStatus, &acc.MandateID, &acc.MandateAuthURL, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan linked account: %w", err)
	}
	return &acc, nil
}

// FindActiveAccountByUserID returns the user's active linked account.
func (r *PostgresRepository) FindActiveAccountByUserID(ctx context.Context, userID string) (*domain.LinkedAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM linked_accounts WHERE user_id = $1 AND status = 'active' ORDER BY created_at DESC LIMIT 1`, accountColumns)
	return scanAccount(r.db.QueryRow(ctx, query, userID))
}

// FindAccountsByUserID returns every linked account for a user, newest first.
func (r *PostgresRepository) FindAccountsByUserID(ctx context.Context, userID string) ([]domain.LinkedAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM linked_accounts WHERE user_id = $1 ORDER BY created_at DESC`, accountColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.LinkedAccount
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// UpdateMandate persists a mandate lifecycle change on a linked account.
func (r *PostgresRepository) UpdateMandate(ctx context.Context, accountID uuid.UUID, status domain.MandateStatus, mandateID, authURL string) error {
	query := `
		UPDATE linked_accounts
		SET mandate_status = $2, mandate_id = $3, mandate_auth_url = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, accountID, status, mandateID, authURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update mandate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ActivateMandateByID marks the account carrying the given provider mandate id
// as active. Called from the provider's out-of-band activation webhook.
func (r *PostgresRepository) ActivateMandateByID(ctx context.Context, mandateID string) error {
	query := `
		UPDATE linked_accounts
		SET mandate_status = 'active', mandate_auth_url = '', updated_at = $2
		WHERE mandate_id = $1
	`
	tag, err := r.db.Exec(ctx, query, mandateID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to activate mandate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMandateNotFound
	}
	return nil
}

// CreateTransferRecord inserts one transfer audit row.
func (r *PostgresRepository) CreateTransferRecord(ctx context.Context, rec *domain.TransferRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO transfer_records
			(id, user_id, reference, account_number, bank_code, bank_name,
			 recipient_name, amount_kobo, status, failure_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.UserID, rec.Reference, rec.AccountNumber, rec.BankCode, rec.BankName,
		rec.RecipientName, rec.AmountKobo, rec.Status, rec.FailureReason, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer record: %w", err)
	}
	return nil
}

// FindTransferRecordsByUserID returns a user's most recent transfer records.
func (r *PostgresRepository) FindTransferRecordsByUserID(ctx context.Context, userID string, limit int) ([]domain.TransferRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, user_id, reference, account_number, bank_code, bank_name,
		       recipient_name, amount_kobo, status, COALESCE(failure_reason, ''), created_at
		FROM transfer_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer records: %w", err)
	}
	defer rows.Close()

	var records []domain.TransferRecord
	for rows.Next() {
		var rec domain.TransferRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Reference, &rec.AccountNumber, &rec.BankCode, &rec.BankName,
			&rec.RecipientName, &rec.AmountKobo, &rec.Status, &rec.FailureReason, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
