package ports

import (
	"context"
	"errors"

	"bank-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks bank-ledger/internal/core/ports AccountRepository,DBTransactor,Ledger

// Store-level sentinel errors. The repository performs no business
// validation; these only report key-level outcomes the caller maps onto
// the ledger error taxonomy.
var (
	// ErrDuplicateName reports a create against an already-taken name.
	ErrDuplicateName = errors.New("account name already exists")
	// ErrNameNotFound reports a balance write against a missing account,
	// i.e. the account vanished between read and write.
	ErrNameNotFound = errors.New("account not found")
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx are used inside transaction blocks so that a
// balance read-modify-write pair holds its row lock for the whole pair.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByName(ctx context.Context, name string) (*domain.Account, error)
	GetByNameForUpdate(ctx context.Context, tx pgx.Tx, name string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, name string, newBalance int64) error
	VerifyPIN(ctx context.Context, name string, pin int64) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
