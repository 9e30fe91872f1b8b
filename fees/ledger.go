/*
ledger.go - Append-only payment ledger

PURPOSE:
  The payment ledger is the source of truth for what a student has
  paid. Records are appended by the submission flow and never edited
  here; status transitions (verification, rejection) belong to an
  external workflow acting directly on the store.

INVARIANTS:
  1. APPEND-ONLY: submission never updates or deletes records
  2. IDEMPOTENT: a reference already in the store is rejected, so a
     retried form post cannot double-charge
  3. RE-CHECKED: the payable amount is re-resolved from a fresh
     snapshot inside Submit, so a stale page cannot overpay
  4. SERIALIZED: submissions run one at a time. The re-check and the
     append form a single critical section, so two concurrent
     submissions cannot both resolve against the same snapshot

SEE ALSO:
  - resolver.go: The balance math Submit re-runs
  - store/sqlite, store/memory: Store implementations
*/
package fees

import (
	"context"
	"sync"
)

// =============================================================================
// STORE INTERFACES
// =============================================================================

// ScheduleStore provides the fee structure side of the resolver's input.
type ScheduleStore interface {
	// LineItemsByClass returns every fee line item for a class across
	// all known academic years and terms.
	LineItemsByClass(ctx context.Context, classID ClassID) ([]FeeLineItem, error)
}

// PaymentStore persists payment records. Append-only from this
// package's perspective.
type PaymentStore interface {
	AppendPayment(ctx context.Context, rec PaymentRecord) error
	PaymentsByStudent(ctx context.Context, studentID StudentID) ([]PaymentRecord, error)

	// PaymentExists reports whether a record with this reference was
	// already appended. Backs the idempotency check.
	PaymentExists(ctx context.Context, reference string) (bool, error)
}

// Store is the combined persistence surface the ledger needs.
type Store interface {
	ScheduleStore
	PaymentStore
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger combines the resolver with a Store: it loads snapshots,
// resolves selections, and accepts validated submissions.
type Ledger struct {
	store Store

	// submitMu serializes Submit. The store's own locking covers each
	// read or append individually, not the re-check-then-append pair.
	submitMu sync.Mutex
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Resolve loads fresh snapshots for (student, class) and resolves sel.
func (l *Ledger) Resolve(ctx context.Context, studentID StudentID, classID ClassID, sel Selection) (Resolution, error) {
	items, err := l.store.LineItemsByClass(ctx, classID)
	if err != nil {
		return Resolution{}, err
	}
	records, err := l.store.PaymentsByStudent(ctx, studentID)
	if err != nil {
		return Resolution{}, err
	}

	breakdown := ComputeBreakdown(items, sel.Year, sel.Term)
	totals := ComputePaymentTotals(records)
	return ResolveSelection(breakdown, totals, sel), nil
}

// Breakdown loads the class fee structure and computes the term
// breakdown (with fallback year) for display.
func (l *Ledger) Breakdown(ctx context.Context, classID ClassID, year AcademicYear, term Term) (TermBreakdown, error) {
	items, err := l.store.LineItemsByClass(ctx, classID)
	if err != nil {
		return TermBreakdown{}, err
	}
	return ComputeBreakdown(items, year, term), nil
}

// Submit validates rec against a fresh resolution and appends it as a
// pending payment. The resolution is recomputed here, not trusted from
// the client: two concurrent submissions both pass the page-level check
// but the second one sees the first one's record in its snapshot,
// because Submit holds submitMu from the re-check through the append.
func (l *Ledger) Submit(ctx context.Context, classID ClassID, sel Selection, rec PaymentRecord) (Resolution, error) {
	l.submitMu.Lock()
	defer l.submitMu.Unlock()

	if rec.Reference != "" {
		exists, err := l.store.PaymentExists(ctx, rec.Reference)
		if err != nil {
			return Resolution{}, err
		}
		if exists {
			return Resolution{}, ErrDuplicateReference
		}
	}

	res, err := l.Resolve(ctx, rec.StudentID, classID, sel)
	if err != nil {
		return Resolution{}, err
	}
	if !res.CanSubmit {
		return res, ErrSubmissionClosed
	}
	if rec.Amount.GreaterThan(res.Payable) {
		return res, &OverpaymentError{Submitted: rec.Amount, Payable: res.Payable}
	}

	rec.Year = res.Year
	rec.Term = res.Term
	rec.FeeType = res.FeeTypeKey
	rec.Status = StatusPending
	if err := l.store.AppendPayment(ctx, rec); err != nil {
		return res, err
	}
	return res, nil
}
