package service

import (
	"errors"
	"fmt"

	"veaxAgent/internal/resolver"
)

// ValidationError reports a missing or malformed request parameter.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a symbol, pool or position that does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// InsufficientBalanceError reports a wallet that cannot cover a plan.
// Required and Available are base units.
type InsufficientBalanceError struct {
	Label     string
	Symbol    string
	Required  string
	Available string
	Decimals  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient balance for %s (%s). Required: %s, Available: %s, Decimal: %d",
		e.Label, e.Symbol, e.Required, e.Available, e.Decimals)
}

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err should be surfaced to the caller as a
// 400 with its message. Everything else is an upstream failure.
func IsClientError(err error) bool {
	var (
		v *ValidationError
		n *NotFoundError
		b *InsufficientBalanceError
	)
	return errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &b)
}

func mapResolveError(err error) error {
	var unknown *resolver.UnknownSymbolError
	if errors.As(err, &unknown) {
		return &NotFoundError{Msg: unknown.Error()}
	}
	return err
}
