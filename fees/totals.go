/*
totals.go - Cumulative payment totals

PURPOSE:
  Groups a student's payment records by (year, term) and accumulates,
  within each group, a total per fee type plus an "all" bucket summing
  every payment for the group regardless of fee type.

KEYING:
  The nested year/term/fee-type structure uses a typed composite key
  rather than concatenated strings, and all lookups go through
  Paid(), which makes the default-to-zero policy explicit.

SEE ALSO:
  - resolver.go: Looks up paid totals during resolution
*/
package fees

// termKey identifies one (year, term) group.
type termKey struct {
	Year AcademicYear
	Term Term
}

// PaymentTotals maps (year, term, fee type) to the cumulative amount
// paid. Build it with ComputePaymentTotals; read it with Paid.
type PaymentTotals struct {
	byTerm map[termKey]map[FeeTypeKey]Money
}

// ComputePaymentTotals aggregates payment records. Pure: the same input
// always yields the same totals. Rejected records are skipped; negative
// amounts are treated as zero so a malformed record can never reduce
// another payment's contribution.
func ComputePaymentTotals(records []PaymentRecord) PaymentTotals {
	t := PaymentTotals{byTerm: make(map[termKey]map[FeeTypeKey]Money)}

	for _, r := range records {
		if !r.Status.CountsTowardPaid() {
			continue
		}
		amount := r.Amount.ClampZero()

		k := termKey{Year: r.Year, Term: r.Term}
		bucket := t.byTerm[k]
		if bucket == nil {
			bucket = make(map[FeeTypeKey]Money)
			t.byTerm[k] = bucket
		}

		bucket[FeeTypeAll] = bucket[FeeTypeAll].Add(amount)
		if ft := r.FeeTypeOrAll(); ft != FeeTypeAll {
			bucket[ft] = bucket[ft].Add(amount)
		}
	}
	return t
}

// Paid returns the cumulative amount paid for (year, term, key), or
// zero when no matching payments exist. Key FeeTypeAll returns the
// aggregate for the whole term.
func (t PaymentTotals) Paid(year AcademicYear, term Term, key FeeTypeKey) Money {
	bucket, ok := t.byTerm[termKey{Year: year, Term: term}]
	if !ok {
		return ZeroMoney()
	}
	paid, ok := bucket[key]
	if !ok {
		return ZeroMoney()
	}
	return paid
}
