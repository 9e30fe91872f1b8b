/*
handlers.go - HTTP API handlers for the student portal

PURPOSE:
  Exposes the portal's dashboard data and the fee payment flow via
  REST. Handles HTTP request/response, JSON serialization, request
  validation, and delegates to domain logic.

ENDPOINTS:
  Students:
    GET  /api/students                       List all students
    GET  /api/students/{id}                  Get student details

  Fees:
    GET  /api/students/{id}/fees/breakdown   Term fee breakdown
    GET  /api/students/{id}/fees/resolve     Resolve a payment selection
    GET  /api/students/{id}/payments         Payment history
    POST /api/students/{id}/payments         Submit a payment

  Dashboard:
    GET  /api/students/{id}/cbt              CBT tests with derived state
    GET  /api/students/{id}/attendance       Attendance summary
    GET  /api/students/{id}/results          Term results with grade bands
    GET  /api/diary                          School diary
    GET  /api/news                           News feed

  Admin:
    POST /api/admin/fees/import              Import a fee schedule JSON

  Scenarios:
    GET  /api/scenarios                      List demo scenarios
    POST /api/scenarios/load                 Load a demo scenario

QUERY DEFAULTS:
  year/term query parameters default to the configured current
  academic year and term, mirroring how the dashboard lands on "this
  term" until the student picks another one.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Student not found
  - 409: Duplicate reference (idempotent retry)
  - 422: Submission closed or overpayment
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. Session handling belongs to the
  gateway in front of this service.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sankore/school-portal/academics"
	"github.com/sankore/school-portal/cbt"
	"github.com/sankore/school-portal/factory"
	"github.com/sankore/school-portal/fees"
	"github.com/sankore/school-portal/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Ledger    *fees.Ledger
	Schedules *factory.ScheduleFactory

	// Portal-wide defaults for the year/term query parameters.
	CurrentYear fees.AcademicYear
	CurrentTerm fees.Term

	validate *validator.Validate

	// now is swappable in tests so CBT states are deterministic.
	now func() time.Time

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, currentYear fees.AcademicYear, currentTerm fees.Term) *Handler {
	return &Handler{
		Store:       store,
		Ledger:      fees.NewLedger(store),
		Schedules:   factory.NewScheduleFactory(),
		CurrentYear: currentYear,
		CurrentTerm: currentTerm,
		validate:    newValidator(),
		now:         time.Now,
	}
}

// yearTermParams resolves the year/term query parameters with defaults.
func (h *Handler) yearTermParams(r *http.Request) (fees.AcademicYear, fees.Term) {
	year := fees.AcademicYear(r.URL.Query().Get("year"))
	if year == "" {
		year = h.CurrentYear
	}
	term := fees.Term(r.URL.Query().Get("term"))
	if term == "" {
		term = h.CurrentTerm
	}
	return year, term
}

// studentParam loads the student from the URL, writing a 404 on miss.
func (h *Handler) studentParam(w http.ResponseWriter, r *http.Request) (sqlite.Student, bool) {
	id := fees.StudentID(chi.URLParam(r, "id"))
	student, err := h.Store.GetStudent(r.Context(), id)
	if errors.Is(err, fees.ErrStudentNotFound) {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return sqlite.Student{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load student", err)
		return sqlite.Student{}, false
	}
	return student, true
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	dtos := make([]StudentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStudent returns one student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(student))
}

func toStudentDTO(s sqlite.Student) StudentDTO {
	return StudentDTO{
		ID:          string(s.ID),
		Name:        s.Name,
		ClassID:     string(s.ClassID),
		AdmissionNo: s.AdmissionNo,
	}
}

// =============================================================================
// FEE HANDLERS
// =============================================================================

// GetBreakdown returns the fee breakdown for the student's class and
// the requested (year, term), applying the fallback-year rule.
// GET /api/students/{id}/fees/breakdown?year=&term=
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}
	year, term := h.yearTermParams(r)

	breakdown, err := h.Ledger.Breakdown(r.Context(), student.ClassID, year, term)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute breakdown", err)
		return
	}

	dto := BreakdownDTO{
		Year:     string(breakdown.Year),
		Term:     string(breakdown.Term),
		FellBack: breakdown.FellBack,
		Items:    []LineItemDTO{},
		Total:    breakdown.Total.String(),
	}
	for _, it := range breakdown.LineItems {
		dto.Items = append(dto.Items, LineItemDTO{
			ID:                string(it.ID),
			FeeType:           string(it.FeeType),
			Description:       it.Description,
			Amount:            it.Amount.String(),
			AllowInstallments: it.AllowInstallments,
			MaxInstallments:   it.MaxInstallments,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// ResolveSelection resolves a payment selection for display.
// GET /api/students/{id}/fees/resolve?year=&term=&item=&type=
func (h *Handler) ResolveSelection(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}
	year, term := h.yearTermParams(r)

	sel := fees.Selection{
		Year:        year,
		Term:        term,
		FeeItemID:   fees.FeeItemID(r.URL.Query().Get("item")),
		PaymentType: fees.PaymentType(r.URL.Query().Get("type")),
	}

	res, err := h.Ledger.Resolve(r.Context(), student.ID, student.ClassID, sel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve selection", err)
		return
	}
	writeJSON(w, http.StatusOK, toResolutionDTO(res))
}

// ListPayments returns the student's payment history.
// GET /api/students/{id}/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}

	records, err := h.Store.PaymentsByStudent(r.Context(), student.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(records))
	for i, rec := range records {
		dtos[i] = toPaymentDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitPayment validates and records a payment submission.
// POST /api/students/{id}/payments
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}

	var req SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	amount := fees.MoneyFromString(req.Amount)
	if !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be a positive decimal", nil)
		return
	}

	paymentType := fees.PaymentType(req.PaymentType)
	if paymentType == "" {
		paymentType = fees.PayFull
	}
	sel := fees.Selection{
		Year:        fees.AcademicYear(req.Year),
		Term:        fees.Term(req.Term),
		FeeItemID:   fees.FeeItemID(req.FeeItemID),
		PaymentType: paymentType,
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}
	rec := fees.PaymentRecord{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		Amount:    amount,
		Method:    req.Method,
		Reference: reference,
		Notes:     req.Notes,
		CreatedAt: h.now().UTC(),
	}

	res, err := h.Ledger.Submit(r.Context(), student.ClassID, sel, rec)
	switch {
	case errors.Is(err, fees.ErrDuplicateReference):
		writeError(w, http.StatusConflict, "A payment with this reference already exists", err)
		return
	case errors.Is(err, fees.ErrSubmissionClosed):
		writeError(w, http.StatusUnprocessableEntity, "Payment submission is not available for this selection", err)
		return
	case errors.Is(err, fees.ErrOverpayment):
		writeError(w, http.StatusUnprocessableEntity, "Amount exceeds the payable balance", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to submit payment", err)
		return
	}

	rec.Year = res.Year
	rec.Term = res.Term
	rec.FeeType = res.FeeTypeKey
	rec.Status = fees.StatusPending
	writeJSON(w, http.StatusCreated, SubmitPaymentResponse{
		Payment:    toPaymentDTO(rec),
		Resolution: toResolutionDTO(res),
	})
}

func toPaymentDTO(rec fees.PaymentRecord) PaymentDTO {
	return PaymentDTO{
		ID:        rec.ID,
		Year:      string(rec.Year),
		Term:      string(rec.Term),
		FeeType:   string(rec.FeeTypeOrAll()),
		Amount:    rec.Amount.String(),
		Status:    string(rec.Status),
		Method:    rec.Method,
		Reference: rec.Reference,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
	}
}

// =============================================================================
// CBT HANDLERS
// =============================================================================

// ListCBTTests returns the class's tests with each one's derived
// availability state for this student.
// GET /api/students/{id}/cbt
func (h *Handler) ListCBTTests(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	tests, err := h.Store.CBTTestsByClass(ctx, student.ClassID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tests", err)
		return
	}
	attempts, err := h.Store.CBTAttemptsByStudent(ctx, student.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attempts", err)
		return
	}

	now := h.now()
	dtos := make([]CBTTestDTO, len(tests))
	for i, t := range tests {
		var attempt *cbt.Attempt
		if a, ok := attempts[t.ID]; ok {
			attempt = &a
		}
		ev := cbt.Evaluate(t, attempt, now)

		dto := CBTTestDTO{
			ID:              t.ID,
			Title:           t.Title,
			Subject:         t.Subject,
			OpensAt:         t.OpensAt,
			ClosesAt:        t.ClosesAt,
			DurationMinutes: t.DurationMinutes,
			QuestionCount:   t.QuestionCount,
			State:           string(ev.State),
			CanStart:        ev.CanStart,
		}
		if !ev.Deadline.IsZero() {
			deadline := ev.Deadline
			dto.Deadline = &deadline
		}
		if attempt != nil && attempt.SubmittedAt != nil {
			dto.Score = attempt.Score
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// GetAttendance returns the student's attendance summary.
// GET /api/students/{id}/attendance
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}

	records, err := h.Store.AttendanceByStudent(r.Context(), student.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}

	s := academics.Summarize(records)
	writeJSON(w, http.StatusOK, AttendanceSummaryDTO{
		TotalDays:   s.TotalDays,
		PresentDays: s.PresentDays,
		AbsentDays:  s.AbsentDays,
		LateDays:    s.LateDays,
		Rate:        s.Rate,
		Streak:      s.Streak,
	})
}

// GetResults returns the student's term results with grade bands.
// GET /api/students/{id}/results?year=&term=
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentParam(w, r)
	if !ok {
		return
	}
	year, term := h.yearTermParams(r)

	results, err := h.Store.ResultsByStudent(r.Context(), student.ID, year, term)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load results", err)
		return
	}

	summary := academics.Grade(results)
	dto := ResultsDTO{
		Year:    string(year),
		Term:    string(term),
		Results: []GradedResultDTO{},
		Average: summary.Average,
		Band:    summary.Band,
	}
	for _, g := range summary.Results {
		dto.Results = append(dto.Results, GradedResultDTO{Subject: g.Subject, Score: g.Score, Band: g.Band})
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListDiary returns the school diary.
// GET /api/diary
func (h *Handler) ListDiary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListDiaryEntries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load diary", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// ListNews returns the news feed, newest first.
// GET /api/news
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.ListNewsPosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load news", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(posts))
}

func toEntryDTOs(entries []sqlite.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{ID: e.ID, Date: e.Date, Title: e.Title, Body: e.Body}
	}
	return dtos
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ImportFeeSchedule parses and stores a fee schedule JSON document.
// POST /api/admin/fees/import
func (h *Handler) ImportFeeSchedule(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	items, err := h.Schedules.ParseSchedule(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fee schedule", err)
		return
	}
	if err := h.Store.SaveLineItems(r.Context(), items); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save fee schedule", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"imported": len(items)})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
