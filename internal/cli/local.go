package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bank-ledger/internal/core/ports"
	"bank-ledger/pkg/apperror"
)

// Local drives the ledger directly, without the network layer. Unlike the
// wire protocol it authenticates: deposit and withdrawal are only reachable
// after a successful name+PIN login.
type Local struct {
	ledger ports.Ledger
	in     *bufio.Scanner
	out    io.Writer
}

// NewLocal creates the local interactive mode over the given ledger.
func NewLocal(ledger ports.Ledger, in io.Reader, out io.Writer) *Local {
	return &Local{
		ledger: ledger,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run loops the registration/login menu until the operator exits or input
// ends.
func (l *Local) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(l.out, "Welcome to the banking system!")
		fmt.Fprintln(l.out, "Are you a current user or would you like to register?")
		fmt.Fprintln(l.out, "1. Current User")
		fmt.Fprintln(l.out, "2. Register New Account")
		fmt.Fprintln(l.out, "3. Exit")

		choice, ok := l.readLine()
		if !ok {
			return l.in.Err()
		}

		switch choice {
		case "1":
			if err := l.login(ctx); err != nil {
				return err
			}
		case "2":
			if err := l.register(ctx); err != nil {
				return err
			}
		case "3":
			fmt.Fprintln(l.out, "Exiting the system. Goodbye!")
			return nil
		default:
			fmt.Fprintln(l.out, "Invalid option. Please try again.")
		}
	}
}

// login authenticates and, on success, enters the authenticated session
// loop for the account.
func (l *Local) login(ctx context.Context) error {
	fmt.Fprintln(l.out, "Enter your account name:")
	name, ok := l.readLine()
	if !ok {
		return l.in.Err()
	}

	fmt.Fprintln(l.out, "Enter your PIN:")
	pinText, ok := l.readLine()
	if !ok {
		return l.in.Err()
	}
	pin, err := strconv.ParseInt(pinText, 10, 64)
	if err != nil {
		fmt.Fprintln(l.out, "Invalid PIN format. Verification failed.")
		return nil
	}

	if err := l.ledger.Authenticate(ctx, name, pin); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Unwrap() == nil {
			fmt.Fprintln(l.out, "Invalid account name or PIN. Returning to the main menu.")
			return nil
		}
		return err
	}

	fmt.Fprintln(l.out, "Account verified successfully!")
	return l.session(ctx, name)
}

// session is the authenticated deposit/withdraw loop.
func (l *Local) session(ctx context.Context, name string) error {
	for {
		fmt.Fprintf(l.out, "Welcome, %s!\n", name)
		fmt.Fprintln(l.out, "Please choose an option:")
		fmt.Fprintln(l.out, "1. Deposit")
		fmt.Fprintln(l.out, "2. Withdrawal")
		fmt.Fprintln(l.out, "3. Exit")

		choice, ok := l.readLine()
		if !ok {
			return l.in.Err()
		}

		switch choice {
		case "1":
			if err := l.deposit(ctx, name); err != nil {
				return err
			}
		case "2":
			if err := l.withdraw(ctx, name); err != nil {
				return err
			}
		case "3":
			fmt.Fprintln(l.out, "Exiting the system. Goodbye!")
			return nil
		default:
			fmt.Fprintln(l.out, "Invalid option. Please try again.")
		}
	}
}

func (l *Local) deposit(ctx context.Context, name string) error {
	fmt.Fprintln(l.out, "Enter the amount to deposit:")
	amount, ok := l.readAmount("Invalid number format. Deposit canceled.")
	if !ok {
		return nil
	}

	newBalance, err := l.ledger.Deposit(ctx, name, amount)
	if err != nil {
		return l.printLedgerError(ctx, err, name)
	}
	fmt.Fprintf(l.out, "Deposit successful. New balance: %d\n", newBalance)
	return nil
}

func (l *Local) withdraw(ctx context.Context, name string) error {
	fmt.Fprintln(l.out, "Enter the amount to withdraw:")
	amount, ok := l.readAmount("Invalid number format. Withdrawal canceled.")
	if !ok {
		return nil
	}

	newBalance, err := l.ledger.Withdraw(ctx, name, amount)
	if err != nil {
		return l.printLedgerError(ctx, err, name)
	}
	fmt.Fprintf(l.out, "Withdrawal successful. Remaining balance: %d\n", newBalance)
	return nil
}

func (l *Local) register(ctx context.Context) error {
	fmt.Fprintln(l.out, "Enter account name:")
	name, ok := l.readLine()
	if !ok {
		return l.in.Err()
	}

	fmt.Fprintln(l.out, "Enter a 4-digit PIN:")
	pinText, ok := l.readLine()
	if !ok {
		return l.in.Err()
	}
	pin, err := strconv.ParseInt(pinText, 10, 64)
	if err != nil {
		fmt.Fprintln(l.out, "Invalid PIN format. Account creation canceled.")
		return nil
	}

	if err := l.ledger.Register(ctx, name, pin); err != nil {
		return l.printLedgerError(ctx, err, name)
	}
	fmt.Fprintln(l.out, "Account created successfully!")
	return nil
}

// printLedgerError prints the client-safe message for expected ledger
// failures and propagates everything else. Insufficient funds additionally
// reports the current balance, matching the interactive flow's responses.
func (l *Local) printLedgerError(ctx context.Context, err error, name string) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	if appErr.Unwrap() != nil {
		// Storage failure: fatal to the session, never silently swallowed.
		return err
	}
	if appErr.Code == apperror.ErrInsufficientFunds().Code {
		if balance, berr := l.ledger.Balance(ctx, name); berr == nil {
			fmt.Fprintf(l.out, "Insufficient funds. Current balance: %d\n", balance)
			return nil
		}
	}
	fmt.Fprintln(l.out, appErr.Message)
	return nil
}

func (l *Local) readAmount(cancelMsg string) (int64, bool) {
	text, ok := l.readLine()
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		fmt.Fprintln(l.out, cancelMsg)
		return 0, false
	}
	return amount, true
}

func (l *Local) readLine() (string, bool) {
	if !l.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(l.in.Text()), true
}
