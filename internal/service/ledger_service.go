package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"bank-ledger/internal/core/domain"
	"bank-ledger/internal/core/ports"
	"bank-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.Ledger.
//
// Every balance mutation runs as begin → SELECT ... FOR UPDATE → compute →
// UPDATE → commit, so concurrent operations on the same account name are
// serialized by the row lock while distinct accounts proceed independently.
// No balance is ever cached between requests.
type LedgerServiceImpl struct {
	accounts   ports.AccountRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accounts ports.AccountRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accounts:   accounts,
		transactor: transactor,
		log:        log,
	}
}

// Register creates an account with a zero balance. Name uniqueness is
// enforced by the store's unique key, so a racing duplicate create loses
// cleanly with a DuplicateAccount error.
func (s *LedgerServiceImpl) Register(ctx context.Context, name string, pin int64) error {
	if !domain.ValidName(name) {
		return apperror.ErrInvalidAccountName()
	}

	now := time.Now().UTC()
	acct := &domain.Account{
		ID:        uuid.New(),
		Name:      name,
		PIN:       pin,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, ports.ErrDuplicateName) {
			return apperror.ErrDuplicateAccount()
		}
		return apperror.ErrStorage(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().Str("account", name).Msg("account created")
	return nil
}

// Authenticate succeeds iff the stored PIN matches exactly. No lockout, no
// retry limit, no hashing: the PIN is an opaque number compared in the clear.
func (s *LedgerServiceImpl) Authenticate(ctx context.Context, name string, pin int64) error {
	ok, err := s.accounts.VerifyPIN(ctx, name, pin)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("verify pin: %w", err))
	}
	if !ok {
		return apperror.ErrAuthenticationFailed()
	}
	return nil
}

// Deposit adds amount to the account's balance and returns the new balance.
// Amounts must be positive, and a deposit that would overflow the int64
// balance is rejected as an invalid amount; the account is unchanged.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, name string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acct, err := s.accounts.GetByNameForUpdate(ctx, dbTx, name)
	if err != nil {
		return 0, apperror.ErrStorage(fmt.Errorf("lock account: %w", err))
	}
	if acct == nil {
		return 0, apperror.ErrAccountNotFound()
	}

	if amount > math.MaxInt64-acct.Balance {
		return 0, apperror.ErrInvalidAmount()
	}
	newBalance := acct.Balance + amount

	if err := s.writeBalance(ctx, dbTx, name, newBalance); err != nil {
		return 0, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account", name).
		Int64("amount", amount).
		Int64("balance", newBalance).
		Msg("deposit applied")

	return newBalance, nil
}

// Withdraw subtracts amount from the account's balance and returns the
// remaining balance. A withdrawal exceeding the balance is rejected and the
// account is unchanged; the balance never goes negative.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, name string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acct, err := s.accounts.GetByNameForUpdate(ctx, dbTx, name)
	if err != nil {
		return 0, apperror.ErrStorage(fmt.Errorf("lock account: %w", err))
	}
	if acct == nil {
		return 0, apperror.ErrAccountNotFound()
	}

	if amount > acct.Balance {
		return 0, apperror.ErrInsufficientFunds()
	}
	newBalance := acct.Balance - amount

	if err := s.writeBalance(ctx, dbTx, name, newBalance); err != nil {
		return 0, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account", name).
		Int64("amount", amount).
		Int64("balance", newBalance).
		Msg("withdrawal applied")

	return newBalance, nil
}

// Balance returns the account's current balance.
func (s *LedgerServiceImpl) Balance(ctx context.Context, name string) (int64, error) {
	acct, err := s.accounts.GetByName(ctx, name)
	if err != nil {
		return 0, apperror.ErrStorage(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return 0, apperror.ErrAccountNotFound()
	}
	return acct.Balance, nil
}

func (s *LedgerServiceImpl) writeBalance(ctx context.Context, tx pgx.Tx, name string, newBalance int64) error {
	if err := s.accounts.UpdateBalance(ctx, tx, name, newBalance); err != nil {
		if errors.Is(err, ports.ErrNameNotFound) {
			// Lost-update hazard: the row disappeared under the lock.
			return apperror.ErrAccountNotFound()
		}
		return apperror.ErrStorage(fmt.Errorf("update balance: %w", err))
	}
	return nil
}
