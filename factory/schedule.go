/*
Package factory provides JSON to Go fee schedule conversion.

PURPOSE:
  Converts JSON fee structure documents into fees.FeeLineItem slices.
  This is how staff provision a term's fees without code changes: the
  bursar's office edits a JSON document (or posts it to the admin
  import endpoint) and the factory turns it into line items.

JSON SCHEMA:
  {
    "class_id": "p6",
    "years": [
      {
        "year": "2025/2026",
        "terms": [
          {
            "term": "1st Term",
            "items": [
              {
                "id": "p6-2025-t1-tuition",
                "fee_type": "tuition",
                "description": "Tuition",
                "amount": "250000",
                "allow_installments": true,
                "max_installments": 3
              }
            ]
          }
        ]
      }
    ]
  }

VALIDATION:
  - Amounts are decimal strings; non-positive or malformed amounts fail
  - Duplicate item ids fail
  - max_installments defaults to 1 and must be >= 2 when installments
    are allowed
  - Terms must be one of the three known term names

USAGE:
  f := factory.NewScheduleFactory()
  items, err := f.ParseSchedule(jsonBytes)

SEE ALSO:
  - fees/types.go: FeeLineItem
  - api/handlers.go: Admin import endpoint
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/sankore/school-portal/fees"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a class's fee structure.
type ScheduleJSON struct {
	ClassID string     `json:"class_id"`
	Years   []YearJSON `json:"years"`
}

type YearJSON struct {
	Year  string     `json:"year"`
	Terms []TermJSON `json:"terms"`
}

type TermJSON struct {
	Term  string     `json:"term"`
	Items []ItemJSON `json:"items"`
}

type ItemJSON struct {
	ID                string `json:"id"`
	FeeType           string `json:"fee_type"`
	Description       string `json:"description"`
	Amount            string `json:"amount"`
	AllowInstallments bool   `json:"allow_installments,omitempty"`
	MaxInstallments   int    `json:"max_installments,omitempty"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

type ScheduleFactory struct{}

func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseSchedule converts a JSON document into fee line items.
func (f *ScheduleFactory) ParseSchedule(data []byte) ([]fees.FeeLineItem, error) {
	var doc ScheduleJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid schedule JSON: %w", err)
	}
	if doc.ClassID == "" {
		return nil, fmt.Errorf("schedule missing class_id")
	}

	var items []fees.FeeLineItem
	seen := make(map[fees.FeeItemID]bool)

	for _, y := range doc.Years {
		if y.Year == "" {
			return nil, fmt.Errorf("class %s: year entry missing year", doc.ClassID)
		}
		for _, t := range y.Terms {
			term := fees.Term(t.Term)
			if !term.Valid() {
				return nil, fmt.Errorf("class %s year %s: unknown term %q", doc.ClassID, y.Year, t.Term)
			}
			for _, it := range t.Items {
				item, err := f.parseItem(doc.ClassID, y.Year, term, it)
				if err != nil {
					return nil, err
				}
				if seen[item.ID] {
					return nil, fmt.Errorf("duplicate fee item id %q", item.ID)
				}
				seen[item.ID] = true
				items = append(items, item)
			}
		}
	}
	return items, nil
}

func (f *ScheduleFactory) parseItem(classID, year string, term fees.Term, it ItemJSON) (fees.FeeLineItem, error) {
	if it.ID == "" {
		return fees.FeeLineItem{}, fmt.Errorf("%s %s %s: fee item missing id", classID, year, term)
	}
	if it.FeeType == "" || it.FeeType == string(fees.FeeTypeAll) {
		return fees.FeeLineItem{}, fmt.Errorf("fee item %q: fee_type must be a specific category", it.ID)
	}

	amount := fees.MoneyFromString(it.Amount)
	if !amount.IsPositive() {
		return fees.FeeLineItem{}, fmt.Errorf("fee item %q: amount %q must be a positive decimal", it.ID, it.Amount)
	}

	maxInstallments := it.MaxInstallments
	if maxInstallments < 1 {
		maxInstallments = 1
	}
	if it.AllowInstallments && maxInstallments < 2 {
		return fees.FeeLineItem{}, fmt.Errorf("fee item %q: installments allowed but max_installments is %d", it.ID, maxInstallments)
	}

	return fees.FeeLineItem{
		ID:                fees.FeeItemID(it.ID),
		ClassID:           fees.ClassID(classID),
		Year:              fees.AcademicYear(year),
		Term:              term,
		FeeType:           fees.FeeTypeKey(it.FeeType),
		Description:       it.Description,
		Amount:            amount,
		AllowInstallments: it.AllowInstallments,
		MaxInstallments:   maxInstallments,
	}, nil
}
