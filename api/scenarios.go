/*
scenarios.go - Demo data scenarios

PURPOSE:
  Seeds the database with known states so the dashboard can be demoed
  and exercised without a real school's data. Each scenario resets the
  store first; loading is destructive by design.

SCENARIOS:
  empty        A wiped database
  demo-school  Two classes with fee schedules, three students with
               varied payment states, CBT tests around "now",
               attendance and results, diary and news entries

SEE ALSO:
  - factory/schedule.go: Fee schedule JSON parsing used for seeding
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sankore/school-portal/academics"
	"github.com/sankore/school-portal/cbt"
	"github.com/sankore/school-portal/fees"
	"github.com/sankore/school-portal/store/sqlite"
)

var scenarios = []ScenarioDTO{
	{ID: "empty", Name: "Empty", Description: "A wiped database"},
	{ID: "demo-school", Name: "Demo School", Description: "Seeded classes, students, fees, payments, CBT tests and feeds"},
}

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"current":   h.currentScenario,
	})
}

// LoadScenario resets the database and seeds the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if req.ID != "empty" && req.ID != "demo-school" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ID), nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	if req.ID == "demo-school" {
		if err := h.seedDemoSchool(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed scenario", err)
			return
		}
	}

	h.currentScenario = req.ID
	writeJSON(w, http.StatusOK, map[string]any{"loaded": req.ID})
}

func demoSchedule(classID string, tuition, books int) string {
	return fmt.Sprintf(`{
		"class_id": %q,
		"years": [
			{
				"year": "2025/2026",
				"terms": [
					{"term": "1st Term", "items": [
						{"id": "%[1]s-25-t1-tuition", "fee_type": "tuition", "description": "Tuition", "amount": "%[2]d", "allow_installments": true, "max_installments": 3},
						{"id": "%[1]s-25-t1-books", "fee_type": "books", "description": "Books and materials", "amount": "%[3]d"}
					]},
					{"term": "2nd Term", "items": [
						{"id": "%[1]s-25-t2-tuition", "fee_type": "tuition", "description": "Tuition", "amount": "%[2]d", "allow_installments": true, "max_installments": 3}
					]}
				]
			},
			{
				"year": "2024/2025",
				"terms": [
					{"term": "3rd Term", "items": [
						{"id": "%[1]s-24-t3-tuition", "fee_type": "tuition", "description": "Tuition", "amount": "%[2]d"}
					]}
				]
			}
		]
	}`, classID, tuition, books)
}

func (h *Handler) seedDemoSchool(ctx context.Context) error {
	now := h.now().UTC()

	// Fee schedules via the same parser the admin import uses.
	for _, doc := range []string{demoSchedule("p6", 250000, 45000), demoSchedule("p5", 220000, 40000)} {
		items, err := h.Schedules.ParseSchedule([]byte(doc))
		if err != nil {
			return err
		}
		if err := h.Store.SaveLineItems(ctx, items); err != nil {
			return err
		}
	}

	students := []sqlite.Student{
		{ID: "stu-amara", Name: "Amara Okafor", ClassID: "p6", AdmissionNo: "P6/019"},
		{ID: "stu-jide", Name: "Jide Balogun", ClassID: "p6", AdmissionNo: "P6/007"},
		{ID: "stu-nia", Name: "Nia Mensah", ClassID: "p5", AdmissionNo: "P5/012"},
	}
	for _, s := range students {
		if err := h.Store.SaveStudent(ctx, s); err != nil {
			return err
		}
	}

	// Amara: one verified installment on tuition. Jide: fully settled
	// via an aggregate payment. Nia: nothing paid yet.
	payments := []fees.PaymentRecord{
		{
			ID: "pay-demo-1", StudentID: "stu-amara", Year: "2025/2026", Term: fees.TermFirst,
			FeeType: "tuition", Amount: fees.NewMoney(83334), Status: fees.StatusVerified,
			Method: "bank_transfer", Reference: "demo-ref-1", CreatedAt: now.AddDate(0, 0, -21),
		},
		{
			ID: "pay-demo-2", StudentID: "stu-jide", Year: "2025/2026", Term: fees.TermFirst,
			FeeType: fees.FeeTypeAll, Amount: fees.NewMoney(295000), Status: fees.StatusCompleted,
			Method: "card", Reference: "demo-ref-2", CreatedAt: now.AddDate(0, 0, -14),
		},
	}
	for _, p := range payments {
		if err := h.Store.AppendPayment(ctx, p); err != nil {
			return err
		}
	}

	// One test per window state around now.
	tests := []cbt.Test{
		{ID: "cbt-maths", Title: "Mid-term Mathematics", Subject: "Mathematics",
			OpensAt: now.Add(-2 * time.Hour), ClosesAt: now.Add(6 * time.Hour), DurationMinutes: 60, QuestionCount: 40},
		{ID: "cbt-english", Title: "English Comprehension", Subject: "English",
			OpensAt: now.AddDate(0, 0, 2), ClosesAt: now.AddDate(0, 0, 3), DurationMinutes: 45, QuestionCount: 30},
		{ID: "cbt-science", Title: "Basic Science Quiz", Subject: "Science",
			OpensAt: now.AddDate(0, 0, -7), ClosesAt: now.AddDate(0, 0, -6), DurationMinutes: 30, QuestionCount: 25},
	}
	for _, t := range tests {
		if err := h.Store.SaveCBTTest(ctx, "p6", t); err != nil {
			return err
		}
	}

	score := 85.0
	submitted := now.AddDate(0, 0, -6)
	if err := h.Store.SaveCBTAttempt(ctx, cbt.Attempt{
		TestID: "cbt-science", StudentID: "stu-amara",
		StartedAt: submitted.Add(-25 * time.Minute), SubmittedAt: &submitted, Score: &score,
	}); err != nil {
		return err
	}

	// Three weeks of attendance for Amara, one absence.
	for i := 20; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		status := academics.Present
		if i == 9 {
			status = academics.Absent
		}
		if err := h.Store.SaveAttendance(ctx, academics.AttendanceRecord{
			StudentID: "stu-amara", Date: day, Status: status,
		}); err != nil {
			return err
		}
	}

	results := []academics.SubjectResult{
		{Subject: "Mathematics", Score: 82},
		{Subject: "English", Score: 71},
		{Subject: "Science", Score: 64},
		{Subject: "Social Studies", Score: 77},
	}
	for _, res := range results {
		if err := h.Store.SaveResult(ctx, "stu-amara", "2025/2026", fees.TermFirst, res); err != nil {
			return err
		}
	}

	diary := []sqlite.Entry{
		{ID: "diary-1", Date: now.AddDate(0, 0, 5), Title: "Inter-house sports day", Body: "All students report by 8am in house colours."},
		{ID: "diary-2", Date: now.AddDate(0, 0, 12), Title: "Mid-term break begins"},
	}
	for _, e := range diary {
		if err := h.Store.SaveDiaryEntry(ctx, e); err != nil {
			return err
		}
	}

	news := []sqlite.Entry{
		{ID: "news-1", Date: now.AddDate(0, 0, -3), Title: "New library wing opens", Body: "The new library wing is now open to all classes."},
		{ID: "news-2", Date: now.AddDate(0, 0, -1), Title: "PTA meeting rescheduled", Body: "Moved to the last Friday of the month."},
	}
	for _, e := range news {
		if err := h.Store.SaveNewsPost(ctx, e); err != nil {
			return err
		}
	}

	return nil
}
