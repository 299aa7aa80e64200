package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finastack/folio/models"
)

func marchDay(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func pricedRow(d int, price int64) *models.PriceHistory {
	return &models.PriceHistory{
		InstrumentID:    41,
		PricingPolicyID: 5,
		Date:            marchDay(d),
		PrincipalPrice:  decimal.NewFromInt(price),
		Factor:          decimal.NewFromInt(1),
	}
}

func TestForwardRollCoversDaysAfterWindow(t *testing.T) {
	// window [03-01, 03-03], last price on 03-03, fill for 2 days
	rows := []*models.PriceHistory{pricedRow(3, 102)}

	fills := planForwardFills(rows, marchDay(1), marchDay(5), 2)

	require.Len(t, fills, 2)
	assert.Equal(t, marchDay(4), fills[0].date)
	assert.Equal(t, marchDay(5), fills[1].date)
	for _, fill := range fills {
		assert.Equal(t, marchDay(3), fill.source.Date)
		assert.Equal(t, "102", fill.source.PrincipalPrice.String())
	}
}

func TestForwardRollStopsAtFillBound(t *testing.T) {
	rows := []*models.PriceHistory{pricedRow(1, 100)}

	fills := planForwardFills(rows, marchDay(1), marchDay(10), 2)

	// 03-02 and 03-03 only; a filled date never extends the reach
	require.Len(t, fills, 2)
	assert.Equal(t, marchDay(2), fills[0].date)
	assert.Equal(t, marchDay(3), fills[1].date)
}

func TestForwardRollFillsInWindowGaps(t *testing.T) {
	rows := []*models.PriceHistory{pricedRow(1, 100), pricedRow(3, 103)}

	fills := planForwardFills(rows, marchDay(1), marchDay(4), 2)

	require.Len(t, fills, 2)
	assert.Equal(t, marchDay(2), fills[0].date)
	assert.Equal(t, marchDay(1), fills[0].source.Date)
	assert.Equal(t, marchDay(4), fills[1].date)
	assert.Equal(t, marchDay(3), fills[1].source.Date)
}

func TestForwardRollSkipsEmptySources(t *testing.T) {
	fills := planForwardFills([]*models.PriceHistory{pricedRow(1, 0)}, marchDay(1), marchDay(3), 2)
	assert.Empty(t, fills)
}
