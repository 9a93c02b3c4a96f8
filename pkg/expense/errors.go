package expense

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTitle    = errors.New("title must not be blank")
	ErrInvalidAmount = errors.New("amount must be a positive number")
	ErrNotesTooLong  = fmt.Errorf("notes must be at most %d characters", MaxNotesLength)
)

// ValidationError rejects a candidate before any store interaction.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StoreError reports a persistence or query failure. It is never retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// DuplicateWarning is returned under the confirm policy when a similar expense
// already exists within the window and the caller did not confirm.
type DuplicateWarning struct {
	Title   string
	Amount  decimal.Decimal
	Similar int
	Window  time.Duration
}

func (e *DuplicateWarning) Error() string {
	return fmt.Sprintf("%d similar expense(s) %q of %s recorded within the last %s",
		e.Similar, e.Title, e.Amount, e.Window)
}

// ParseAmount parses a decimal amount. Anything that is not a finite decimal
// number is reported as a ValidationError.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Err: fmt.Errorf("%w: %q", ErrInvalidAmount, s)}
	}
	return amount, nil
}
