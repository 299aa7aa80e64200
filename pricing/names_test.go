package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
)

func TestFieldCarriesPerFieldErrors(t *testing.T) {
	names := map[string]interface{}{}
	errs := []string{}

	field(names, &errs, "last", null.Float64From(101.5), null.String{})
	field(names, &errs, "bid", null.Float64{}, null.StringFrom("no bid quoted"))

	assert.Equal(t, 101.5, names["last"])
	assert.Nil(t, names["last_error"])
	assert.Nil(t, names["bid"])
	assert.Equal(t, "no bid quoted", names["bid_error"])
	assert.Equal(t, []string{"no bid quoted"}, errs)
}

func forwardRow(reference string, date time.Time, last float64, weight *float64) StagedRow {
	return StagedRow{
		Reference: reference,
		Date:      date,
		Names:     map[string]interface{}{"last": last},
		Weight:    weight,
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestCollapseForwardsWeightedAverage(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := []StagedRow{
		forwardRow("EURUSD", date, 100, floatPtr(1)),
		forwardRow("EURUSD", date, 110, floatPtr(3)),
	}

	out := CollapseForwards(rows)
	require.Len(t, out, 1)
	assert.Equal(t, "EURUSD", out[0].Reference)
	assert.InDelta(t, 107.5, out[0].Names["last"].(float64), 1e-12)
}

func TestCollapseForwardsMissingWeightCountsAsOne(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := []StagedRow{
		forwardRow("EURUSD", date, 100, nil),
		forwardRow("EURUSD", date, 110, nil),
	}

	out := CollapseForwards(rows)
	require.Len(t, out, 1)
	assert.InDelta(t, 105, out[0].Names["last"].(float64), 1e-12)
}

func TestCollapseForwardsZeroTotalWeight(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := []StagedRow{
		forwardRow("EURUSD", date, 100, floatPtr(0)),
	}

	out := CollapseForwards(rows)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Names["last"])
}

func TestCollapseForwardsKeepsInputOrder(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := []StagedRow{
		forwardRow("GBPUSD", date, 1.27, nil),
		forwardRow("EURUSD", date, 1.08, nil),
		forwardRow("GBPUSD", date.AddDate(0, 0, 1), 1.28, nil),
	}

	out := CollapseForwards(rows)
	require.Len(t, out, 3)
	assert.Equal(t, "GBPUSD", out[0].Reference)
	assert.Equal(t, "EURUSD", out[1].Reference)
	assert.Equal(t, date.AddDate(0, 0, 1), out[2].Date)
}

func TestCollapseForwardsNoValues(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := []StagedRow{
		{
			Reference:  "EURUSD",
			Date:       date,
			Names:      map[string]interface{}{"last": nil},
			ErrorTexts: []string{"reference unknown"},
		},
	}

	out := CollapseForwards(rows)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Names["last"])
	assert.Equal(t, []string{"reference unknown"}, out[0].ErrorTexts)
}
