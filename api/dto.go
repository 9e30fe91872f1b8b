/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts cross the wire as fixed two-decimal strings ("250000.00").
  Clients render them as-is; float64 would reintroduce the rounding
  noise the decimal types exist to avoid.

VALIDATION:
  Request types carry go-playground/validator tags, checked in
  handlers via Handler.validate. Field names in validation errors use
  the JSON tag, not the Go name.

SEE ALSO:
  - handlers.go: Uses these types
  - validate.go: Validator setup
*/
package api

import (
	"time"

	"github.com/sankore/school-portal/fees"
)

// =============================================================================
// STUDENTS
// =============================================================================

type StudentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ClassID     string `json:"class_id"`
	AdmissionNo string `json:"admission_no,omitempty"`
}

// =============================================================================
// FEES
// =============================================================================

type LineItemDTO struct {
	ID                string `json:"id"`
	FeeType           string `json:"fee_type"`
	Description       string `json:"description"`
	Amount            string `json:"amount"`
	AllowInstallments bool   `json:"allow_installments"`
	MaxInstallments   int    `json:"max_installments"`
}

type BreakdownDTO struct {
	Year     string        `json:"year"`
	Term     string        `json:"term"`
	FellBack bool          `json:"fell_back"`
	Items    []LineItemDTO `json:"items"`
	Total    string        `json:"total"`
}

type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResolutionDTO struct {
	Year              string       `json:"year"`
	Term              string       `json:"term"`
	FeeItemID         string       `json:"fee_item_id"`
	FeeTypeKey        string       `json:"fee_type_key"`
	Total             string       `json:"total"`
	Paid              string       `json:"paid"`
	Balance           string       `json:"balance"`
	Payable           string       `json:"payable"`
	AllowInstallments bool         `json:"allow_installments"`
	MaxInstallments   int          `json:"max_installments"`
	InstallmentAmount string       `json:"installment_amount,omitempty"`
	CanSubmit         bool         `json:"can_submit"`
	Warnings          []WarningDTO `json:"warnings,omitempty"`
}

func toResolutionDTO(res fees.Resolution) ResolutionDTO {
	dto := ResolutionDTO{
		Year:              string(res.Year),
		Term:              string(res.Term),
		FeeItemID:         string(res.FeeItemID),
		FeeTypeKey:        string(res.FeeTypeKey),
		Total:             res.Total.String(),
		Paid:              res.Paid.String(),
		Balance:           res.Balance.String(),
		Payable:           res.Payable.String(),
		AllowInstallments: res.AllowInstallments,
		MaxInstallments:   res.MaxInstallments,
		CanSubmit:         res.CanSubmit,
	}
	if !res.InstallmentAmount.IsZero() {
		dto.InstallmentAmount = res.InstallmentAmount.String()
	}
	for _, w := range res.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{Code: string(w.Code), Message: w.Message})
	}
	return dto
}

// SubmitPaymentRequest is the payment form post.
type SubmitPaymentRequest struct {
	Year        string `json:"academic_year" validate:"required"`
	Term        string `json:"term" validate:"required,oneof='1st Term' '2nd Term' '3rd Term'"`
	FeeItemID   string `json:"fee_item_id" validate:"required"`
	PaymentType string `json:"payment_type" validate:"omitempty,oneof=full installment"`
	Method      string `json:"payment_method" validate:"required,oneof=bank_transfer card cash mobile_money"`
	Amount      string `json:"amount" validate:"required"`
	Notes       string `json:"notes" validate:"max=500"`
	Reference   string `json:"reference" validate:"omitempty,max=64"`
}

type PaymentDTO struct {
	ID        string    `json:"id"`
	Year      string    `json:"academic_year"`
	Term      string    `json:"term"`
	FeeType   string    `json:"fee_type"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	Method    string    `json:"payment_method,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitPaymentResponse pairs the accepted record with the resolution
// it was validated against.
type SubmitPaymentResponse struct {
	Payment    PaymentDTO    `json:"payment"`
	Resolution ResolutionDTO `json:"resolution"`
}

// =============================================================================
// CBT
// =============================================================================

type CBTTestDTO struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	OpensAt         time.Time  `json:"opens_at"`
	ClosesAt        time.Time  `json:"closes_at"`
	DurationMinutes int        `json:"duration_minutes"`
	QuestionCount   int        `json:"question_count"`
	State           string     `json:"state"`
	CanStart        bool       `json:"can_start"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Score           *float64   `json:"score,omitempty"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type AttendanceSummaryDTO struct {
	TotalDays   int     `json:"total_days"`
	PresentDays int     `json:"present_days"`
	AbsentDays  int     `json:"absent_days"`
	LateDays    int     `json:"late_days"`
	Rate        float64 `json:"rate"`
	Streak      int     `json:"streak"`
}

type GradedResultDTO struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
	Band    string  `json:"band"`
}

type ResultsDTO struct {
	Year    string            `json:"year"`
	Term    string            `json:"term"`
	Results []GradedResultDTO `json:"results"`
	Average float64           `json:"average"`
	Band    string            `json:"band"`
}

type EntryDTO struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
	Body  string    `json:"body,omitempty"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ID string `json:"id" validate:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
