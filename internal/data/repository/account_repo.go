package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instamakaan/internal/data/entity"
	"instamakaan/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var ErrDuplicateEmail = errors.New("email already exists")

// AccountRepository is the account store contract. Lookups return nil, nil
// when nothing matches. Every mutation is a single-record update; there
// are no multi-statement transactions.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByResetToken(ctx context.Context, token string) (*entity.Account, error)
	SetOTP(ctx context.Context, email, code string, expiresAt, sentAt time.Time) error
	ReleaseOTPThrottle(ctx context.Context, email string) error
	IncrementOTPRetry(ctx context.Context, email string) error
	// MarkVerified applies only while the stored code still equals code.
	MarkVerified(ctx context.Context, email, code string) (bool, error)
	SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error
	// ConsumeResetToken applies only while token is still stored.
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (bool, error)
}

type accountRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAccountRepository(db database.PgxIface, log *zap.Logger) AccountRepository {
	return &accountRepository{
		db:  db,
		log: log.With(zap.String("repository", "account")),
	}
}

const accountColumns = `
	id, email, password_hash, role, is_verified,
	otp_code, otp_expires_at, otp_last_sent_at, otp_retry_count,
	reset_token, reset_token_expires_at, created_at, updated_at
`

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsVerified,
		account.OTPCode,
		account.OTPExpiresAt,
		account.OTPLastSentAt,
		account.OTPRetryCount,
		account.ResetToken,
		account.ResetTokenExpiresAt,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if database.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		r.log.Error("Failed to create account", zap.Error(err), zap.String("email", account.Email))
		return fmt.Errorf("create account %s: %w", account.Email, err)
	}

	return nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	account, err := r.scanOne(r.db.QueryRow(ctx, query, email))
	if err != nil {
		r.log.Error("Failed to find account by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find account by email %s: %w", email, err)
	}
	return account, nil
}

func (r *accountRepository) FindByResetToken(ctx context.Context, token string) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE reset_token = $1`

	account, err := r.scanOne(r.db.QueryRow(ctx, query, token))
	if err != nil {
		r.log.Error("Failed to find account by reset token", zap.Error(err))
		return nil, fmt.Errorf("find account by reset token: %w", err)
	}
	return account, nil
}

func (r *accountRepository) SetOTP(ctx context.Context, email, code string, expiresAt, sentAt time.Time) error {
	query := `
		UPDATE accounts
		SET otp_code = $2, otp_expires_at = $3, otp_last_sent_at = $4,
		    otp_retry_count = 0, updated_at = $4
		WHERE email = $1
	`
	return r.exec(ctx, "set otp", email, query, email, code, expiresAt, sentAt)
}

func (r *accountRepository) ReleaseOTPThrottle(ctx context.Context, email string) error {
	query := `UPDATE accounts SET otp_last_sent_at = NULL WHERE email = $1`
	return r.exec(ctx, "release otp throttle", email, query, email)
}

func (r *accountRepository) IncrementOTPRetry(ctx context.Context, email string) error {
	query := `UPDATE accounts SET otp_retry_count = otp_retry_count + 1 WHERE email = $1`
	return r.exec(ctx, "increment otp retry", email, query, email)
}

func (r *accountRepository) MarkVerified(ctx context.Context, email, code string) (bool, error) {
	query := `
		UPDATE accounts
		SET is_verified = true, otp_code = NULL, otp_expires_at = NULL,
		    otp_retry_count = 0, updated_at = NOW()
		WHERE email = $1 AND otp_code = $2
	`

	result, err := r.db.Exec(ctx, query, email, code)
	if err != nil {
		r.log.Error("Failed to mark account verified", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("mark account %s verified: %w", email, err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *accountRepository) SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	query := `
		UPDATE accounts
		SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE email = $1
	`
	return r.exec(ctx, "set reset token", email, query, email, token, expiresAt)
}

func (r *accountRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) (bool, error) {
	query := `
		UPDATE accounts
		SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE reset_token = $1
	`

	result, err := r.db.Exec(ctx, query, token, passwordHash)
	if err != nil {
		r.log.Error("Failed to consume reset token", zap.Error(err))
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// exec runs a keyed update and fails when no account matched email.
func (r *accountRepository) exec(ctx context.Context, op, email, query string, args ...any) error {
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to "+op, zap.Error(err), zap.String("email", email))
		return fmt.Errorf("%s for %s: %w", op, email, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: account %s not found", op, email)
	}
	return nil
}

func (r *accountRepository) scanOne(row pgx.Row) (*entity.Account, error) {
	var a entity.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.IsVerified,
		&a.OTPCode,
		&a.OTPExpiresAt,
		&a.OTPLastSentAt,
		&a.OTPRetryCount,
		&a.ResetToken,
		&a.ResetTokenExpiresAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
