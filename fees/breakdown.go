/*
breakdown.go - Term fee breakdown

PURPOSE:
  Filters a class's fee line items down to one (year, term) and sums
  them. If the requested year has no line items for the term, the
  breakdown falls back to the first year - scanning years in
  lexicographic descending order - whose term has line items. The
  trigger is the absence of line items, not a zero total: a year that
  does define the term keeps it, whatever the amounts sum to. If no
  year anywhere has fees for the term, the breakdown is zero.

ORDERING:
  Academic years are display strings ("2025/2026") and are ordered by
  plain string comparison, descending. For the conventional yyyy/yyyy
  format this matches reverse chronological order.

SEE ALSO:
  - resolver.go: Consumes the breakdown
*/
package fees

import "sort"

// TermBreakdown is the derived fee structure for one (year, term):
// the line items and their sum. Year records which year was actually
// used, which differs from the request after a fallback.
type TermBreakdown struct {
	Year      AcademicYear
	Term      Term
	LineItems []FeeLineItem
	Total     Money

	// FellBack is set when Year differs from the requested year.
	FellBack bool
}

// Item looks up a line item by id within the breakdown.
func (b TermBreakdown) Item(id FeeItemID) (FeeLineItem, bool) {
	for _, it := range b.LineItems {
		if it.ID == id {
			return it, true
		}
	}
	return FeeLineItem{}, false
}

// IsEmpty reports whether the breakdown carries no billable total.
func (b TermBreakdown) IsEmpty() bool { return b.Total.IsZero() }

// ComputeBreakdown filters items to (year, term) and totals them,
// applying the fallback-year rule when the requested year has no line
// items for the term.
func ComputeBreakdown(items []FeeLineItem, year AcademicYear, term Term) TermBreakdown {
	b := breakdownFor(items, year, term)
	if len(b.LineItems) > 0 {
		return b
	}

	for _, y := range FallbackYears(items) {
		if y == year {
			continue
		}
		candidate := breakdownFor(items, y, term)
		if len(candidate.LineItems) > 0 {
			candidate.FellBack = true
			return candidate
		}
	}

	// No year anywhere has fees for this term. Keep the requested keys
	// so the caller renders the selection it asked for, with zero total.
	return TermBreakdown{Year: year, Term: term, Total: ZeroMoney()}
}

func breakdownFor(items []FeeLineItem, year AcademicYear, term Term) TermBreakdown {
	b := TermBreakdown{Year: year, Term: term, Total: ZeroMoney()}
	for _, it := range items {
		if it.Year != year || it.Term != term {
			continue
		}
		b.LineItems = append(b.LineItems, it)
		b.Total = b.Total.Add(it.Amount)
	}
	return b
}

// FallbackYears returns the distinct academic years present in items,
// lexicographically descending. This is the scan order for the
// fallback-year rule.
func FallbackYears(items []FeeLineItem) []AcademicYear {
	seen := make(map[AcademicYear]bool)
	var years []AcademicYear
	for _, it := range items {
		if !seen[it.Year] {
			seen[it.Year] = true
			years = append(years, it.Year)
		}
	}
	sort.Slice(years, func(i, j int) bool { return years[i] > years[j] })
	return years
}
