package repository

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrDuplicateExternal = errors.New("external id already recorded")
	ErrNotFound          = errors.New("record not found")
)

// isUniqueViolation detects unique-constraint failures across the
// postgres and sqlite drivers so concurrent inserts surface as the
// same business error as the pre-check.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
