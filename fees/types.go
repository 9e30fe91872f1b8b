/*
Package fees implements the fee ledger resolver: given a class's fee
structure and a student's payment history, it answers "how much is due,
how much is paid, and how much is payable right now" for any selected
(academic year, term, fee item) combination.

PURPOSE:
  This package contains the core domain types and pure computations for
  school fee billing. It has no I/O: callers pass in snapshots of fee
  line items and payment records and get back plain result values.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal (never float math)
  - FeeLineItem: A single billable charge for a class/year/term
  - PaymentRecord: One payment submitted by a student
  - FeeTypeKey: Category tag ("tuition", "books", or "all" for aggregate)

DESIGN PRINCIPLES:
  1. Purity: Resolution never performs I/O and never panics on bad input
  2. Precision: decimal.Decimal everywhere; half-up rounding to 2 places
  3. Safe degradation: Invalid selections fall back to defined defaults
  4. Explicit keys: Nested year/term/fee-type maps use typed keys, not
     ad-hoc strings

SEE ALSO:
  - breakdown.go: Term fee breakdown with fallback-year resolution
  - totals.go: Cumulative payment totals per (year, term, fee type)
  - resolver.go: Selection resolution (total/paid/balance/payable)
  - ledger.go: Append-only payment ledger over a Store
*/
package fees

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount
// =============================================================================

// Money is a currency amount. All fee arithmetic goes through Money so
// rounding and clamping policy lives in one place.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

// MoneyFromString parses a decimal string. Malformed input yields zero;
// payment amounts are untrusted and must never abort a resolution.
func MoneyFromString(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money        { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money        { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) IsPositive() bool         { return m.Value.IsPositive() }
func (m Money) LessThan(o Money) bool    { return m.Value.LessThan(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

// ClampZero floors the amount at zero. Balances are never negative.
func (m Money) ClampZero() Money {
	if m.IsNegative() {
		return ZeroMoney()
	}
	return m
}

// DivRound divides by n with half-up rounding to 2 decimal places.
// Used for installment splits.
func (m Money) DivRound(n int64) Money {
	return Money{Value: m.Value.DivRound(decimal.NewFromInt(n), 2)}
}

// Round2 rounds half-up to 2 decimal places (currency display precision).
func (m Money) Round2() Money { return Money{Value: m.Value.Round(2)} }

func (m Money) String() string { return m.Value.StringFixed(2) }

// Float64 is for JSON responses only; internal math stays on decimals.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StudentID string
type ClassID string
type FeeItemID string

// AcademicYear is the display form, e.g. "2025/2026". Years are ordered
// by plain string comparison; see FallbackYears in breakdown.go.
type AcademicYear string

// Term is one of three academic periods per year.
type Term string

const (
	TermFirst  Term = "1st Term"
	TermSecond Term = "2nd Term"
	TermThird  Term = "3rd Term"
)

// Valid reports whether t is one of the three known terms.
func (t Term) Valid() bool {
	switch t {
	case TermFirst, TermSecond, TermThird:
		return true
	}
	return false
}

// FeeTypeKey distinguishes fee categories. FeeTypeAll is the sentinel
// aggregating across every line item in a term.
type FeeTypeKey string

const FeeTypeAll FeeTypeKey = "all"

// FeeItemAll is the selection sentinel meaning "all fees for the term".
const FeeItemAll FeeItemID = "all"

// =============================================================================
// FEE LINE ITEM - One billable charge
// =============================================================================

// FeeLineItem is a single charge scoped to a (class, year, term).
// Line items are provisioned by staff before a term begins and are
// read-only from the resolver's perspective.
type FeeLineItem struct {
	ID          FeeItemID
	ClassID     ClassID
	Year        AcademicYear
	Term        Term
	FeeType     FeeTypeKey
	Description string
	Amount      Money

	// Installment plan. MaxInstallments is always >= 1; a value of 1
	// with AllowInstallments false means full payment only.
	AllowInstallments bool
	MaxInstallments   int
}

// =============================================================================
// PAYMENT RECORD - One payment submitted by a student
// =============================================================================

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusVerified  PaymentStatus = "verified"
	StatusPartial   PaymentStatus = "partial"
	StatusCompleted PaymentStatus = "completed"
	StatusRejected  PaymentStatus = "rejected"
)

// CountsTowardPaid reports whether a record in this status contributes
// to the paid total. Rejected payments do not reduce the balance.
func (s PaymentStatus) CountsTowardPaid() bool {
	return s != StatusRejected
}

// PaymentRecord is one payment by a student. A FeeType of FeeTypeAll
// (or empty) marks an aggregate payment not tied to one line item.
// Records are appended by the submission flow and later transition
// status via an external verification step.
type PaymentRecord struct {
	ID        string
	StudentID StudentID
	Year      AcademicYear
	Term      Term
	FeeType   FeeTypeKey
	Amount    Money
	Status    PaymentStatus
	Method    string
	Reference string
	Notes     string
	CreatedAt time.Time
}

// FeeTypeOrAll normalizes the record's fee type: records without a
// specific type land in the "all" bucket.
func (r PaymentRecord) FeeTypeOrAll() FeeTypeKey {
	if r.FeeType == "" {
		return FeeTypeAll
	}
	return r.FeeType
}
