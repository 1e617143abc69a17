// Package tcp implements the wire surface of the ledger: a newline-delimited
// plaintext protocol and the per-connection dispatcher that serves it.
//
// Grammar (ASCII, one command per line, fields space-separated):
//
//	DEPOSIT  <name> <amount>\n
//	WITHDRAW <name> <amount>\n
//
// Responses are single human-readable lines. Requests carry an account name
// but no PIN: the wire protocol is deliberately unauthenticated, unlike the
// local/interactive mode. Known weakness, kept for compatibility.
package tcp

import (
	"fmt"
	"strconv"
	"strings"

	"bank-ledger/pkg/apperror"
)

// Verb is a recognized wire command verb.
type Verb string

const (
	VerbDeposit  Verb = "DEPOSIT"
	VerbWithdraw Verb = "WITHDRAW"
)

// Command is a decoded request line.
type Command struct {
	Verb   Verb
	Name   string
	Amount int64
}

// ParseCommand decodes one request line into a Command. The codec only
// checks grammar: the amount must be a base-10 signed integer token, but
// positivity is the ledger's rule, not the parser's.
func ParseCommand(line string) (Command, *apperror.AppError) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, apperror.ErrMalformedRequest()
	}

	switch verb := Verb(parts[0]); verb {
	case VerbDeposit, VerbWithdraw:
		if len(parts) != 3 {
			return Command{}, apperror.ErrUsage(parts[0])
		}
		amount, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Command{}, apperror.ErrInvalidAmount()
		}
		return Command{Verb: verb, Name: parts[1], Amount: amount}, nil
	default:
		return Command{}, apperror.ErrUnknownCommand()
	}
}

// EncodeCommand renders a command as a request line, newline included.
// Used by the interactive client.
func EncodeCommand(c Command) string {
	return fmt.Sprintf("%s %s %d\n", c.Verb, c.Name, c.Amount)
}

// SuccessLine renders the response for a completed balance transition.
func SuccessLine(verb Verb, newBalance int64) string {
	if verb == VerbWithdraw {
		return fmt.Sprintf("Withdrawal successful. Remaining balance: %d", newBalance)
	}
	return fmt.Sprintf("Deposit successful. New balance: %d", newBalance)
}
