package apperror

import "fmt"

// AppError is a structured error with a stable code and a client-safe
// message. Message is exactly what crosses the protocol boundary; the
// wrapped internal error never does.
type AppError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ---- Request Protocol (REQ) ----

func ErrMalformedRequest() *AppError {
	return New("REQ_001", "Invalid request format.")
}

func ErrUnknownCommand() *AppError {
	return New("REQ_002", "Unknown command.")
}

// ErrUsage reports a recognized verb with the wrong number of fields.
func ErrUsage(verb string) *AppError {
	return New("REQ_003", fmt.Sprintf("Usage: %s <account_name> <amount>", verb))
}

// ---- Ledger Business Logic (LED) ----

func ErrInvalidAmount() *AppError {
	return New("LED_001", "Invalid amount format.")
}

func ErrAccountNotFound() *AppError {
	return New("LED_002", "Account not found.")
}

func ErrInsufficientFunds() *AppError {
	return New("LED_003", "Insufficient funds.")
}

func ErrDuplicateAccount() *AppError {
	return New("LED_004", "Account with this name already exists!")
}

func ErrInvalidAccountName() *AppError {
	return New("LED_005", "Invalid account name.")
}

// ---- Authentication (AUTH, local/interactive mode only) ----

func ErrAuthenticationFailed() *AppError {
	return New("AUTH_001", "Invalid account name or PIN.")
}

// ---- System & Infrastructure (SYS) ----

// ErrStorage wraps a persistence failure. The message deliberately says
// nothing about the cause; the cause is for logs only.
func ErrStorage(err error) *AppError {
	return Wrap("SYS_001", "Internal error. Please try again.", err)
}
