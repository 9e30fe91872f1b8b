/*
resolver.go - Selection resolution

PURPOSE:
  The central computation: given a term's fee breakdown and the
  student's payment totals, resolve a selection (fee item or "all",
  full or installment) into total / paid / balance / payable figures
  plus submission eligibility.

RESOLUTION STEPS:
  1. "all" selection: total = breakdown total, aggregate fee type,
     installments never allowed
  2. Item selection: look up by id; unknown ids reset to "all" with a
     warning
  3. paid   = totals[(year, term, feeTypeKey)] (zero default)
  4. balance = max(0, total - paid)
  5. Installment request: rejected (with warning, falling back to the
     full amount) unless the item allows it and MaxInstallments >= 2;
     otherwise payable = min(balance, round(total/n, 2))
  6. Full payment: payable = balance
  7. CanSubmit is false when total or balance is zero - the caller must
     disable the submission form, not silently ignore it

  Paid totals are looked up under the breakdown's effective (year,
  term), so after a fallback year the paid and total figures refer to
  the same term structure.

FAILURE SEMANTICS:
  Pure and synchronous; never returns an error. Every invalid input has
  a defined fallback, surfaced through Resolution.Warnings.

SEE ALSO:
  - breakdown.go, totals.go: Inputs
  - ledger.go: Re-resolves server-side before accepting a submission
*/
package fees

// PaymentType selects full or installment payment.
type PaymentType string

const (
	PayFull        PaymentType = "full"
	PayInstallment PaymentType = "installment"
)

// Selection is what the student picked on the payment page.
type Selection struct {
	Year        AcademicYear
	Term        Term
	FeeItemID   FeeItemID // FeeItemAll for the whole term
	PaymentType PaymentType
}

// Resolution is the resolved state of a selection. All amounts are
// clamped to >= 0 and rounded to currency precision.
type Resolution struct {
	Year       AcademicYear
	Term       Term
	FeeItemID  FeeItemID
	FeeTypeKey FeeTypeKey

	Total   Money
	Paid    Money
	Balance Money
	Payable Money

	AllowInstallments bool
	MaxInstallments   int

	// InstallmentAmount is the per-installment split (round(total/n, 2))
	// when an installment resolution succeeded; zero otherwise.
	InstallmentAmount Money

	// CanSubmit gates the submission form: false when there is nothing
	// to pay (zero total or zero balance).
	CanSubmit bool

	Warnings []Warning
}

func (r *Resolution) warn(code WarningCode, msg string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: msg})
}

// HasWarning reports whether a warning with the given code was raised.
func (r Resolution) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// ResolveSelection resolves sel against the term breakdown and payment
// totals. See the file header for the step-by-step policy.
func ResolveSelection(breakdown TermBreakdown, totals PaymentTotals, sel Selection) Resolution {
	res := Resolution{
		Year:            breakdown.Year,
		Term:            breakdown.Term,
		FeeItemID:       sel.FeeItemID,
		MaxInstallments: 1,
	}

	if breakdown.FellBack {
		res.warn(WarnFallbackYear,
			"no fee structure for the selected year; showing "+string(breakdown.Year))
	}
	if breakdown.IsEmpty() {
		res.warn(WarnMissingFeeStructure, "no fees have been set up for this term")
	}

	// Steps 1-2: selection -> total, fee type key, installment rules.
	switch {
	case sel.FeeItemID == FeeItemAll || sel.FeeItemID == "":
		res.FeeItemID = FeeItemAll
		res.FeeTypeKey = FeeTypeAll
		res.Total = breakdown.Total
	default:
		item, ok := breakdown.Item(sel.FeeItemID)
		if !ok {
			// Invalid selection: reset to "all".
			res.warn(WarnInvalidFeeSelection, "selected fee item is not available; showing all fees")
			res.FeeItemID = FeeItemAll
			res.FeeTypeKey = FeeTypeAll
			res.Total = breakdown.Total
		} else {
			res.FeeTypeKey = item.FeeType
			res.Total = item.Amount
			res.AllowInstallments = item.AllowInstallments
			if item.MaxInstallments > 1 {
				res.MaxInstallments = item.MaxInstallments
			}
		}
	}

	// Steps 3-4: paid and balance, clamped.
	res.Total = res.Total.ClampZero().Round2()
	res.Paid = totals.Paid(breakdown.Year, breakdown.Term, res.FeeTypeKey).ClampZero().Round2()
	res.Balance = res.Total.Sub(res.Paid).ClampZero()

	// Steps 5-6: payable.
	switch {
	case sel.PaymentType == PayInstallment && (!res.AllowInstallments || res.MaxInstallments < 2):
		res.warn(WarnInstallmentNotAllowed, "installment payment is not available for this fee")
		res.Payable = res.Balance
	case sel.PaymentType == PayInstallment:
		res.InstallmentAmount = res.Total.DivRound(int64(res.MaxInstallments))
		res.Payable = res.Balance.Min(res.InstallmentAmount)
	default:
		res.Payable = res.Balance
	}
	res.Payable = res.Payable.ClampZero()

	// Step 7: submission gate.
	res.CanSubmit = res.Total.IsPositive() && res.Balance.IsPositive()

	return res
}
