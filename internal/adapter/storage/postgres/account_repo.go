package postgres

import (
	"context"
	"errors"
	"fmt"

	"bank-ledger/internal/core/domain"
	"bank-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// AccountRepo implements ports.AccountRepository. It is a dumb durable map:
// all business validation lives in the ledger service.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account. Returns ports.ErrDuplicateName if the name
// is already taken (enforced by the unique constraint, so two concurrent
// creates cannot both succeed).
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, name, pin, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.PIN, a.Balance, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicateName
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByName fetches an account by name (non-locking read).
func (r *AccountRepo) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	query := `SELECT id, name, pin, balance, created_at, updated_at
		FROM accounts WHERE name = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&a.ID, &a.Name, &a.PIN, &a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by name: %w", err)
	}
	return a, nil
}

// GetByNameForUpdate fetches an account by name with a row lock, so no other
// transaction can read-modify-write the same account until commit.
// This MUST be called within a transaction.
func (r *AccountRepo) GetByNameForUpdate(ctx context.Context, tx pgx.Tx, name string) (*domain.Account, error) {
	query := `SELECT id, name, pin, balance, created_at, updated_at
		FROM accounts WHERE name = $1 FOR UPDATE`

	a := &domain.Account{}
	err := tx.QueryRow(ctx, query, name).Scan(
		&a.ID, &a.Name, &a.PIN, &a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// UpdateBalance overwrites the stored balance within a transaction. Returns
// ports.ErrNameNotFound if the account vanished between read and write.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, name string, newBalance int64) error {
	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE name = $2`

	tag, err := tx.Exec(ctx, query, newBalance, name)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNameNotFound
	}
	return nil
}

// VerifyPIN reports whether an account with exactly this name and PIN exists.
func (r *AccountRepo) VerifyPIN(ctx context.Context, name string, pin int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE name = $1 AND pin = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name, pin).Scan(&exists); err != nil {
		return false, fmt.Errorf("verify account pin: %w", err)
	}
	return exists, nil
}
