package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sankore/school-portal/factory"
	"github.com/sankore/school-portal/fees"
)

const validSchedule = `{
	"class_id": "p6",
	"years": [
		{
			"year": "2025/2026",
			"terms": [
				{
					"term": "1st Term",
					"items": [
						{"id": "t1-tuition", "fee_type": "tuition", "description": "Tuition", "amount": "250000", "allow_installments": true, "max_installments": 3},
						{"id": "t1-books", "fee_type": "books", "description": "Books and materials", "amount": "45000"}
					]
				},
				{
					"term": "2nd Term",
					"items": [
						{"id": "t2-tuition", "fee_type": "tuition", "description": "Tuition", "amount": "250000"}
					]
				}
			]
		}
	]
}`

func TestParseSchedule_Valid(t *testing.T) {
	items, err := factory.NewScheduleFactory().ParseSchedule([]byte(validSchedule))
	require.NoError(t, err)
	require.Len(t, items, 3)

	tuition := items[0]
	assert.Equal(t, fees.ClassID("p6"), tuition.ClassID)
	assert.Equal(t, fees.AcademicYear("2025/2026"), tuition.Year)
	assert.Equal(t, fees.TermFirst, tuition.Term)
	assert.Equal(t, "250000.00", tuition.Amount.String())
	assert.True(t, tuition.AllowInstallments)
	assert.Equal(t, 3, tuition.MaxInstallments)

	books := items[1]
	assert.False(t, books.AllowInstallments)
	assert.Equal(t, 1, books.MaxInstallments, "max_installments defaults to 1")
}

func TestParseSchedule_Rejections(t *testing.T) {
	cases := map[string]string{
		"malformed json":    `{"class_id": "p6",`,
		"missing class id":  `{"years": []}`,
		"unknown term":      `{"class_id": "p6", "years": [{"year": "2025/2026", "terms": [{"term": "Summer", "items": []}]}]}`,
		"reserved fee type": `{"class_id": "p6", "years": [{"year": "2025/2026", "terms": [{"term": "1st Term", "items": [{"id": "x", "fee_type": "all", "amount": "100"}]}]}]}`,
		"zero amount":       `{"class_id": "p6", "years": [{"year": "2025/2026", "terms": [{"term": "1st Term", "items": [{"id": "x", "fee_type": "tuition", "amount": "0"}]}]}]}`,
		"bad amount":        `{"class_id": "p6", "years": [{"year": "2025/2026", "terms": [{"term": "1st Term", "items": [{"id": "x", "fee_type": "tuition", "amount": "abc"}]}]}]}`,
		"duplicate ids":     `{"class_id": "p6", "years": [{"year": "2025/2026", "terms": [{"term": "1st Term", "items": [{"id": "x", "fee_type": "tuition", "amount": "100"}, {"id": "x", "fee_type": "books", "amount": "50"}]}]}]}`,
		"bad installments":  `{"class_id": "p6", "years": [{"year": "2025/2026", "terms": [{"term": "1st Term", "items": [{"id": "x", "fee_type": "tuition", "amount": "100", "allow_installments": true, "max_installments": 1}]}]}]}`,
	}

	f := factory.NewScheduleFactory()
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ParseSchedule([]byte(doc))
			assert.Error(t, err)
		})
	}
}
