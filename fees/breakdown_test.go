package fees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sankore/school-portal/fees"
)

func item(id fees.FeeItemID, year fees.AcademicYear, term fees.Term, feeType fees.FeeTypeKey, amount float64) fees.FeeLineItem {
	return fees.FeeLineItem{
		ID: id, ClassID: "p6", Year: year, Term: term,
		FeeType: feeType, Amount: fees.NewMoney(amount), MaxInstallments: 1,
	}
}

func TestComputeBreakdown_FiltersToYearAndTerm(t *testing.T) {
	items := []fees.FeeLineItem{
		item("a", year2025, fees.TermFirst, "tuition", 20000),
		item("b", year2025, fees.TermFirst, "books", 5000),
		item("c", year2025, fees.TermSecond, "tuition", 21000),
		item("d", year2024, fees.TermFirst, "tuition", 18000),
	}

	b := fees.ComputeBreakdown(items, year2025, fees.TermFirst)

	assert.Len(t, b.LineItems, 2)
	assert.Equal(t, "25000.00", b.Total.String())
	assert.False(t, b.FellBack)

	got, ok := b.Item("b")
	assert.True(t, ok)
	assert.Equal(t, fees.FeeTypeKey("books"), got.FeeType)

	_, ok = b.Item("c")
	assert.False(t, ok, "items from other terms must not resolve")
}

func TestComputeBreakdown_FallsBackToLatestYearWithFees(t *testing.T) {
	// GIVEN: 2nd Term fees exist only in older years
	// WHEN: requesting 2025/2026 2nd Term
	// THEN: falls back to the lexicographically highest year with
	//       2nd Term line items (2024/2025, not 2023/2024)
	items := []fees.FeeLineItem{
		item("a", year2025, fees.TermFirst, "tuition", 20000),
		item("b", "2023/2024", fees.TermSecond, "tuition", 15000),
		item("c", year2024, fees.TermSecond, "tuition", 18000),
	}

	b := fees.ComputeBreakdown(items, year2025, fees.TermSecond)

	assert.True(t, b.FellBack)
	assert.Equal(t, year2024, b.Year)
	assert.Equal(t, "18000.00", b.Total.String())
}

func TestComputeBreakdown_ZeroAmountItems_NoFallback(t *testing.T) {
	// GIVEN: the requested term is defined, but every item is zero
	// THEN: the term is kept as-is; fallback needs absent line items,
	//       not a zero total
	items := []fees.FeeLineItem{
		item("a", year2025, fees.TermFirst, "tuition", 0),
		item("b", year2024, fees.TermFirst, "tuition", 18000),
	}

	b := fees.ComputeBreakdown(items, year2025, fees.TermFirst)

	assert.False(t, b.FellBack)
	assert.Equal(t, year2025, b.Year)
	assert.Len(t, b.LineItems, 1)
	assert.True(t, b.IsEmpty())
}

func TestComputeBreakdown_NoYearHasTerm_ZeroTotal(t *testing.T) {
	items := []fees.FeeLineItem{
		item("a", year2025, fees.TermFirst, "tuition", 20000),
	}

	b := fees.ComputeBreakdown(items, year2025, fees.TermThird)

	assert.True(t, b.IsEmpty())
	assert.False(t, b.FellBack)
	assert.Equal(t, year2025, b.Year, "requested keys are kept on an empty breakdown")
	assert.Empty(t, b.LineItems)
}

func TestFallbackYears_LexicographicDescending(t *testing.T) {
	items := []fees.FeeLineItem{
		item("a", "2023/2024", fees.TermFirst, "tuition", 1),
		item("b", year2025, fees.TermFirst, "tuition", 1),
		item("c", year2024, fees.TermFirst, "tuition", 1),
		item("d", year2025, fees.TermSecond, "books", 1),
	}

	years := fees.FallbackYears(items)

	assert.Equal(t, []fees.AcademicYear{year2025, year2024, "2023/2024"}, years)
}
