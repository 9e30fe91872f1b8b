package fees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sankore/school-portal/fees"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const (
	year2025 = fees.AcademicYear("2025/2026")
	year2024 = fees.AcademicYear("2024/2025")
)

func tuitionItem(amount float64) fees.FeeLineItem {
	return fees.FeeLineItem{
		ID:              "item-1",
		ClassID:         "p6",
		Year:            year2025,
		Term:            fees.TermFirst,
		FeeType:         "tuition",
		Description:     "Tuition",
		Amount:          fees.NewMoney(amount),
		MaxInstallments: 1,
	}
}

func booksItem(amount float64) fees.FeeLineItem {
	return fees.FeeLineItem{
		ID:              "item-2",
		ClassID:         "p6",
		Year:            year2025,
		Term:            fees.TermFirst,
		FeeType:         "books",
		Description:     "Books",
		Amount:          fees.NewMoney(amount),
		MaxInstallments: 1,
	}
}

func payment(feeType fees.FeeTypeKey, amount float64) fees.PaymentRecord {
	return fees.PaymentRecord{
		StudentID: "stu-1",
		Year:      year2025,
		Term:      fees.TermFirst,
		FeeType:   feeType,
		Amount:    fees.NewMoney(amount),
		Status:    fees.StatusVerified,
	}
}

func resolve(items []fees.FeeLineItem, records []fees.PaymentRecord, sel fees.Selection) fees.Resolution {
	breakdown := fees.ComputeBreakdown(items, sel.Year, sel.Term)
	totals := fees.ComputePaymentTotals(records)
	return fees.ResolveSelection(breakdown, totals, sel)
}

// =============================================================================
// SINGLE ITEM SCENARIOS
// =============================================================================

func TestResolve_SingleItem_NoPayments(t *testing.T) {
	// GIVEN: one tuition item of 20000, no payments
	// THEN: total=20000, paid=0, balance=20000, payable=20000
	res := resolve(
		[]fees.FeeLineItem{tuitionItem(20000)},
		nil,
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayFull},
	)

	assert.Equal(t, "20000.00", res.Total.String())
	assert.Equal(t, "0.00", res.Paid.String())
	assert.Equal(t, "20000.00", res.Balance.String())
	assert.Equal(t, "20000.00", res.Payable.String())
	assert.True(t, res.CanSubmit)
	assert.Empty(t, res.Warnings)
}

func TestResolve_SingleItem_PartialPayment(t *testing.T) {
	// GIVEN: tuition 20000, one verified tuition payment of 15000
	res := resolve(
		[]fees.FeeLineItem{tuitionItem(20000)},
		[]fees.PaymentRecord{payment("tuition", 15000)},
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayFull},
	)

	assert.Equal(t, "5000.00", res.Balance.String())
	assert.Equal(t, "5000.00", res.Payable.String())
}

func TestResolve_InstallmentOnIneligibleItem_FallsBackToFull(t *testing.T) {
	// GIVEN: tuition 20000 (no installments), paid 15000
	// WHEN: requesting an installment payment
	// THEN: falls back to full (payable = balance = 5000) with a warning
	res := resolve(
		[]fees.FeeLineItem{tuitionItem(20000)},
		[]fees.PaymentRecord{payment("tuition", 15000)},
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayInstallment},
	)

	assert.Equal(t, "5000.00", res.Payable.String())
	assert.True(t, res.HasWarning(fees.WarnInstallmentNotAllowed))
	assert.True(t, res.InstallmentAmount.IsZero())
}

func TestResolve_Installment_SplitsTotal(t *testing.T) {
	// GIVEN: total=30000, maxInstallments=3, allowed, paid=0
	// THEN: payable = min(balance, round(30000/3, 2)) = 10000.00
	item := tuitionItem(30000)
	item.AllowInstallments = true
	item.MaxInstallments = 3

	res := resolve(
		[]fees.FeeLineItem{item},
		nil,
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayInstallment},
	)

	assert.Equal(t, "10000.00", res.InstallmentAmount.String())
	assert.Equal(t, "10000.00", res.Payable.String())
}

func TestResolve_Installment_PayableNeverExceedsBalance(t *testing.T) {
	// GIVEN: 30000 in 3 installments, 25000 already paid (balance 5000)
	// THEN: payable = min(5000, 10000) = 5000
	item := tuitionItem(30000)
	item.AllowInstallments = true
	item.MaxInstallments = 3

	res := resolve(
		[]fees.FeeLineItem{item},
		[]fees.PaymentRecord{payment("tuition", 25000)},
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayInstallment},
	)

	assert.Equal(t, "5000.00", res.Payable.String())
}

func TestResolve_Installment_HalfUpRounding(t *testing.T) {
	// 10000 over 3 installments: 3333.333... rounds half-up to 3333.33
	item := tuitionItem(10000)
	item.AllowInstallments = true
	item.MaxInstallments = 3

	res := resolve(
		[]fees.FeeLineItem{item},
		nil,
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayInstallment},
	)

	assert.Equal(t, "3333.33", res.InstallmentAmount.String())
}

// =============================================================================
// "ALL" SELECTION SCENARIOS
// =============================================================================

func TestResolve_AllItems_AggregatesTermTotal(t *testing.T) {
	// GIVEN: tuition 20000 + books 5000, aggregate payments of 10000
	// THEN: total=25000, balance=15000
	res := resolve(
		[]fees.FeeLineItem{tuitionItem(20000), booksItem(5000)},
		[]fees.PaymentRecord{payment(fees.FeeTypeAll, 10000)},
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: fees.FeeItemAll, PaymentType: fees.PayFull},
	)

	assert.Equal(t, "25000.00", res.Total.String())
	assert.Equal(t, "15000.00", res.Balance.String())
	assert.False(t, res.AllowInstallments)
	assert.Equal(t, 1, res.MaxInstallments)
}

func TestResolve_UnknownItem_ResetsToAll(t *testing.T) {
	// An id missing from the term's breakdown resolves exactly like "all".
	items := []fees.FeeLineItem{tuitionItem(20000), booksItem(5000)}
	records := []fees.PaymentRecord{payment(fees.FeeTypeAll, 10000)}

	asAll := resolve(items, records,
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: fees.FeeItemAll, PaymentType: fees.PayFull})
	asUnknown := resolve(items, records,
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-99", PaymentType: fees.PayFull})

	assert.True(t, asUnknown.HasWarning(fees.WarnInvalidFeeSelection))
	assert.Equal(t, fees.FeeItemAll, asUnknown.FeeItemID)
	assert.Equal(t, asAll.Total.String(), asUnknown.Total.String())
	assert.Equal(t, asAll.Paid.String(), asUnknown.Paid.String())
	assert.Equal(t, asAll.Balance.String(), asUnknown.Balance.String())
	assert.Equal(t, asAll.Payable.String(), asUnknown.Payable.String())
}

func TestResolve_InstallmentOnAll_NotAllowed(t *testing.T) {
	res := resolve(
		[]fees.FeeLineItem{tuitionItem(20000), booksItem(5000)},
		nil,
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: fees.FeeItemAll, PaymentType: fees.PayInstallment},
	)

	assert.True(t, res.HasWarning(fees.WarnInstallmentNotAllowed))
	assert.Equal(t, res.Balance.String(), res.Payable.String())
}

// =============================================================================
// DEGRADED STATES
// =============================================================================

func TestResolve_MissingFeeStructure_DisablesSubmission(t *testing.T) {
	res := resolve(nil, nil,
		fees.Selection{Year: year2025, Term: fees.TermSecond, FeeItemID: fees.FeeItemAll, PaymentType: fees.PayFull})

	assert.True(t, res.HasWarning(fees.WarnMissingFeeStructure))
	assert.True(t, res.Total.IsZero())
	assert.True(t, res.Balance.IsZero())
	assert.False(t, res.CanSubmit)
}

func TestResolve_FallbackYear_WarnsAndUsesEffectiveYear(t *testing.T) {
	// GIVEN: 2nd Term fees exist only in 2024/2025, with one payment
	//        recorded under that year and a stray one under 2025/2026
	// WHEN: resolving 2025/2026 2nd Term, all fees
	// THEN: the fallback warning is raised and both total and paid come
	//       from the fallback year's term structure
	items := []fees.FeeLineItem{{
		ID: "old-tuition", ClassID: "p6", Year: year2024, Term: fees.TermSecond,
		FeeType: "tuition", Amount: fees.NewMoney(18000), MaxInstallments: 1,
	}}
	records := []fees.PaymentRecord{
		{
			StudentID: "stu-1", Year: year2024, Term: fees.TermSecond,
			FeeType: "tuition", Amount: fees.NewMoney(5000), Status: fees.StatusVerified,
		},
		{
			StudentID: "stu-1", Year: year2025, Term: fees.TermSecond,
			FeeType: "tuition", Amount: fees.NewMoney(999), Status: fees.StatusVerified,
		},
	}

	res := resolve(items, records,
		fees.Selection{Year: year2025, Term: fees.TermSecond, FeeItemID: fees.FeeItemAll, PaymentType: fees.PayFull})

	assert.True(t, res.HasWarning(fees.WarnFallbackYear))
	assert.Equal(t, year2024, res.Year)
	assert.Equal(t, "18000.00", res.Total.String())
	assert.Equal(t, "5000.00", res.Paid.String(), "paid follows the effective year, not the requested one")
	assert.Equal(t, "13000.00", res.Balance.String())
	assert.True(t, res.CanSubmit)
}

func TestResolve_Overpaid_BalanceClampedToZero(t *testing.T) {
	// More paid than owed must never surface a negative balance, and a
	// fully-settled selection disables submission.
	res := resolve(
		[]fees.FeeLineItem{tuitionItem(20000)},
		[]fees.PaymentRecord{payment("tuition", 25000)},
		fees.Selection{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayFull},
	)

	assert.Equal(t, "0.00", res.Balance.String())
	assert.Equal(t, "0.00", res.Payable.String())
	assert.False(t, res.CanSubmit)
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestResolve_Invariants_BalanceNonNegative_PayableWithinBalance(t *testing.T) {
	items := []fees.FeeLineItem{tuitionItem(20000), booksItem(5000)}
	installable := tuitionItem(30000)
	installable.ID = "item-3"
	installable.AllowInstallments = true
	installable.MaxInstallments = 4
	items = append(items, installable)

	paymentSets := [][]fees.PaymentRecord{
		nil,
		{payment("tuition", 5000)},
		{payment("tuition", 50000)},
		{payment(fees.FeeTypeAll, 12500), payment("books", 5000)},
		{payment("tuition", -100)}, // malformed, treated as zero
	}
	selections := []fees.Selection{
		{Year: year2025, Term: fees.TermFirst, FeeItemID: fees.FeeItemAll, PaymentType: fees.PayFull},
		{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-1", PaymentType: fees.PayFull},
		{Year: year2025, Term: fees.TermFirst, FeeItemID: "item-3", PaymentType: fees.PayInstallment},
		{Year: year2025, Term: fees.TermFirst, FeeItemID: "missing", PaymentType: fees.PayInstallment},
		{Year: year2024, Term: fees.TermThird, FeeItemID: fees.FeeItemAll, PaymentType: fees.PayFull},
	}

	for _, records := range paymentSets {
		for _, sel := range selections {
			res := resolve(items, records, sel)
			require.False(t, res.Balance.IsNegative(), "balance must be >= 0 for %+v", sel)
			require.False(t, res.Payable.IsNegative(), "payable must be >= 0 for %+v", sel)
			require.False(t, res.Payable.GreaterThan(res.Balance), "payable must be <= balance for %+v", sel)
		}
	}
}
