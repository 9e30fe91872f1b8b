// Package academics computes the small derived figures shown on the
// student dashboard: attendance rate and streak, and grade bands for
// results. All functions are pure.
package academics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
	Excused AttendanceStatus = "excused"
)

// AttendanceRecord is one school day's mark for a student.
type AttendanceRecord struct {
	StudentID string
	Date      time.Time
	Status    AttendanceStatus
}

// AttendanceSummary is what the dashboard shows.
type AttendanceSummary struct {
	TotalDays   int
	PresentDays int
	AbsentDays  int
	LateDays    int

	// Rate is present days / total days as a percentage, one decimal
	// place. Late counts as present for the rate.
	Rate float64

	// Streak is the number of consecutive most-recent school days the
	// student was present (or late). An absence breaks it.
	Streak int
}

// Summarize computes the attendance summary. Records may arrive in any
// order; an empty input yields a zero summary (rate 0, not NaN).
func Summarize(records []AttendanceRecord) AttendanceSummary {
	var s AttendanceSummary
	if len(records) == 0 {
		return s
	}

	sorted := make([]AttendanceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, r := range sorted {
		s.TotalDays++
		switch r.Status {
		case Present:
			s.PresentDays++
		case Late:
			s.LateDays++
		case Absent:
			s.AbsentDays++
		}
	}

	attended := s.PresentDays + s.LateDays
	rate := decimal.NewFromInt(int64(attended)).
		Div(decimal.NewFromInt(int64(s.TotalDays))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	s.Rate, _ = rate.Float64()

	// Walk backwards from the most recent day. Excused days neither
	// extend nor break the streak.
	for i := len(sorted) - 1; i >= 0; i-- {
		switch sorted[i].Status {
		case Present, Late:
			s.Streak++
		case Excused:
			continue
		default:
			return s
		}
	}
	return s
}

// =============================================================================
// GRADE BANDS
// =============================================================================

// SubjectResult is one subject's score for a term, out of 100.
type SubjectResult struct {
	Subject string
	Score   float64
}

// GradeBand maps a percentage score to the school's letter band.
func GradeBand(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	case score >= 40:
		return "E"
	default:
		return "F"
	}
}

// ResultSummary is a result set with its average and overall band.
type ResultSummary struct {
	Results []GradedResult
	Average float64
	Band    string
}

// GradedResult pairs a subject result with its band.
type GradedResult struct {
	SubjectResult
	Band string
}

// Grade bands a result set and computes the average score (one decimal
// place) with its overall band. Empty input yields an "F" average of 0.
func Grade(results []SubjectResult) ResultSummary {
	summary := ResultSummary{Band: GradeBand(0)}
	if len(results) == 0 {
		return summary
	}

	total := decimal.Zero
	for _, r := range results {
		summary.Results = append(summary.Results, GradedResult{SubjectResult: r, Band: GradeBand(r.Score)})
		total = total.Add(decimal.NewFromFloat(r.Score))
	}

	avg := total.Div(decimal.NewFromInt(int64(len(results)))).Round(1)
	summary.Average, _ = avg.Float64()
	summary.Band = GradeBand(summary.Average)
	return summary
}
