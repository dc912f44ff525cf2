/**
 * @description
 * This file defines the error taxonomy used across the transaction engine.
 * Predictable domain conditions are explicit error values, not panics:
 *
 * - UserInputError: the user gave us something unusable; answered with a
 *   clarifying prompt and never logged as a system fault.
 * - VerificationFailure: no provider could confirm the recipient name;
 *   terminal for this attempt, retryable by the user.
 * - AuthorizationRequired: a mandate is missing or still pending; surfaced
 *   as an actionable authorization link, not as a failure.
 * - ProviderFault: an upstream provider misbehaved; full detail goes to the
 *   logs, the user sees a generic retry message.
 *
 * @dependencies
 * - errors, fmt: Standard Go libraries.
 */

package domain

import (
	"errors"
	"fmt"
)

// UserInputError marks input the user can correct (bad amount, unknown bank,
// malformed account number).
type UserInputError struct {
	Msg string
}

func (e *UserInputError) Error() string { return e.Msg }

// NewUserInputError builds a UserInputError with a formatted message.
func NewUserInputError(format string, args ...interface{}) *UserInputError {
	return &UserInputError{Msg: fmt.Sprintf(format, args...)}
}

// VerificationFailure means both the primary and fallback providers failed to
// resolve an account name. The message is safe to show verbatim.
type VerificationFailure struct {
	Msg string
}

func (e *VerificationFailure) Error() string { return e.Msg }

// AuthorizationRequired means the transfer cannot proceed until the user
// approves (or finishes approving) a debit mandate.
type AuthorizationRequired struct {
	AuthorizationURL string
	Msg              string
}

func (e *AuthorizationRequired) Error() string { return e.Msg }

// ProviderFault wraps an unexpected upstream failure. Op names the call site
// for the audit log; the wrapped error never reaches the user.
type ProviderFault struct {
	Op  string
	Err error
}

func (e *ProviderFault) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *ProviderFault) Unwrap() error { return e.Err }

// IsUserInput reports whether err is a UserInputError.
func IsUserInput(err error) bool {
	var uie *UserInputError
	return errors.As(err, &uie)
}
