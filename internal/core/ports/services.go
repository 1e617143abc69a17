package ports

import "context"

// Ledger executes balance transitions against the account store. It owns
// the business rules: amount positivity, balance non-negativity, name
// uniqueness mapping, and the overflow policy. Implementations must make
// each deposit/withdraw atomic with respect to concurrent operations on
// the same account name.
type Ledger interface {
	// Register creates an account with a zero balance.
	Register(ctx context.Context, name string, pin int64) error
	// Authenticate succeeds iff an account with exactly this name and PIN
	// exists. Used by the local/interactive flows only; the wire protocol
	// never authenticates.
	Authenticate(ctx context.Context, name string, pin int64) error
	// Deposit adds amount to the account's balance and returns the new balance.
	Deposit(ctx context.Context, name string, amount int64) (int64, error)
	// Withdraw subtracts amount from the account's balance and returns the
	// remaining balance. The balance never goes negative.
	Withdraw(ctx context.Context, name string, amount int64) (int64, error)
	// Balance returns the current balance.
	Balance(ctx context.Context, name string) (int64, error)
}
