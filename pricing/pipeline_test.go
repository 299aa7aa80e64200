package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/models"
)

func strPtr(s string) *string { return &s }

func datePtr(t time.Time) *time.Time { return &t }

func testPipeline() *Pipeline {
	return NewPipeline(nil, expression.NewEvaluator(nil))
}

func TestDateWindowDefaultsToYesterday(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	yesterday := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	from, to := testPipeline().DateWindow(&models.PricingProcedure{}, now)
	assert.Equal(t, yesterday, from)
	assert.Equal(t, yesterday, to)
}

func TestDateWindowFixedDates(t *testing.T) {
	procedure := &models.PricingProcedure{
		PriceDateFrom: datePtr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		PriceDateTo:   datePtr(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
	}

	from, to := testPipeline().DateWindow(procedure, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), to)
}

func TestDateWindowExpressionsWin(t *testing.T) {
	procedure := &models.PricingProcedure{
		PriceDateFrom:     datePtr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		PriceDateFromExpr: strPtr("add_days(parse_date(now), -7)"),
		PriceDateToExpr:   strPtr("parse_date(now)"),
	}

	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	from, to := testPipeline().DateWindow(procedure, now)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, now, to)
}

func TestDateWindowInvalidExpressionKeepsFixedDate(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	procedure := &models.PricingProcedure{
		PriceDateFrom:     datePtr(fixed),
		PriceDateFromExpr: strPtr("not a )( date"),
		PriceDateTo:       datePtr(fixed),
	}

	from, to := testPipeline().DateWindow(procedure, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, fixed, from)
	assert.Equal(t, fixed, to)
}

func TestDateWindowNonDateExpressionKeepsFixedDate(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	procedure := &models.PricingProcedure{
		PriceDateFrom:     datePtr(fixed),
		PriceDateFromExpr: strPtr(`"never"`),
		PriceDateTo:       datePtr(fixed),
		PriceDateToExpr:   strPtr(`"never"`),
	}

	from, to := testPipeline().DateWindow(procedure, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, fixed, from)
	assert.Equal(t, fixed, to)
}

func TestDateWindowClampsInvertedRange(t *testing.T) {
	procedure := &models.PricingProcedure{
		PriceDateFrom: datePtr(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
		PriceDateTo:   datePtr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	from, to := testPipeline().DateWindow(procedure, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, from, to)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), from)
}

func TestAttemptNamesCarriesContext(t *testing.T) {
	row := StagedRow{
		Reference: "XS123",
		Date:      time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Names:     map[string]interface{}{"last": 101.5, "last_error": nil},
	}

	names := attemptNames(row, "context_instrument", "bond_1", 5)
	assert.Equal(t, "2024-03-14", names["context_date"])
	assert.Equal(t, "bond_1", names["context_instrument"])
	assert.EqualValues(t, 5, names["context_pricing_policy"])
	assert.Equal(t, 101.5, names["last"])
	assert.Contains(t, names, "last_error")
}

func TestEmptyPriceResult(t *testing.T) {
	assert.True(t, emptyPriceResult(0, 0))
	// a zero principal with a nonzero accrued is still a price
	assert.False(t, emptyPriceResult(0, 0.75))
	assert.False(t, emptyPriceResult(101.5, 0))
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(nil))
	assert.Nil(t, splitCSV(strPtr("   ")))

	filter := splitCSV(strPtr(" bond_1, bond_2 ,,bond_3 "))
	assert.Len(t, filter, 3)
	assert.True(t, filter["bond_1"])
	assert.True(t, filter["bond_2"])
	assert.True(t, filter["bond_3"])
	assert.False(t, filter["bond_4"])
}
