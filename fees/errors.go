/*
errors.go - Error and warning types for the fee resolver

PURPOSE:
  Nothing in the resolver is fatal: every bad input degrades to a safe,
  displayable state. Conditions that the student should see (installment
  not allowed, selection reset) are reported as Warnings on the
  Resolution rather than returned errors. The sentinel errors here are
  for the ledger/store layer, where persistence can genuinely fail.

SEE ALSO:
  - resolver.go: Attaches Warnings to resolutions
  - ledger.go: Uses the sentinel errors
*/
package fees

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateReference is returned when a payment with the same
	// reference already exists. Expected behavior for client retries.
	ErrDuplicateReference = errors.New("duplicate payment reference")

	// ErrStudentNotFound is returned when a referenced student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrSubmissionClosed is returned when a payment is submitted against
	// a selection whose resolution disallows submission (zero total or
	// zero balance).
	ErrSubmissionClosed = errors.New("payment submission disabled for selection")

	// ErrOverpayment is returned when the submitted amount exceeds the
	// payable amount for the selection.
	ErrOverpayment = errors.New("amount exceeds payable balance")
)

// =============================================================================
// WARNINGS - User-facing, non-fatal resolution conditions
// =============================================================================

// WarningCode enumerates the recoverable conditions of the resolver.
type WarningCode string

const (
	// WarnMissingFeeStructure: no line items for the requested (year, term)
	// anywhere; total and balance are zero and submission is disabled.
	WarnMissingFeeStructure WarningCode = "missing_fee_structure"

	// WarnFallbackYear: the requested year had no line items for the term;
	// the breakdown fell back to another year.
	WarnFallbackYear WarningCode = "fallback_year"

	// WarnInvalidFeeSelection: the requested fee item is not in the term's
	// breakdown; the selection was reset to "all".
	WarnInvalidFeeSelection WarningCode = "invalid_fee_selection"

	// WarnInstallmentNotAllowed: installment requested on an item that does
	// not permit it; the resolution fell back to the full payment amount.
	WarnInstallmentNotAllowed WarningCode = "installment_not_allowed"
)

// Warning is a user-facing validation message attached to a Resolution.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Code, w.Message) }

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// OverpaymentError reports how far a submission exceeded the payable amount.
type OverpaymentError struct {
	Submitted Money
	Payable   Money
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("amount %s exceeds payable %s", e.Submitted, e.Payable)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }
