package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// two buys at different prices, then a full-lot disposal
func plTrades() []*models.Transaction {
	buy1 := buyTransaction(1, 10, -1000)
	buy1.AccountingDate = day(2024, 1, 8)
	buy1.CashDate = day(2024, 1, 8)

	buy2 := buyTransaction(2, 10, -1200)
	buy2.AccountingDate = day(2024, 1, 9)
	buy2.CashDate = day(2024, 1, 9)

	sell := buyTransaction(3, -10, 1500)

	return []*models.Transaction{buy1, buy2, sell}
}

func TestPLRealizedAvco(t *testing.T) {
	universe := testUniverse(plTrades()...)
	items := NewPLReportBuilder(testSettings(), universe).Build()

	require.Len(t, items, 1)
	item := items[0]

	// avg cost 110, disposal consumes 1100 of the 2200 basis
	assert.Equal(t, "10", item.PositionSize.String())
	assert.Equal(t, "400", item.RealizedPL.String())
	assert.Equal(t, "110", item.CostPriceLoc.String())
	assert.Equal(t, "1000", item.MarketValueLoc.String())
	assert.Equal(t, "-100", item.UnrealizedPL.String())
	assert.Equal(t, "300", item.TotalPL.String())
}

func TestPLRealizedFifo(t *testing.T) {
	settings := testSettings()
	settings.CostMethod = types.CostMethodFifo

	universe := testUniverse(plTrades()...)
	items := NewPLReportBuilder(settings, universe).Build()

	require.Len(t, items, 1)
	item := items[0]

	// disposal consumes the first lot entirely
	assert.Equal(t, "500", item.RealizedPL.String())
	assert.Equal(t, "120", item.CostPriceLoc.String())
	assert.Equal(t, "-200", item.UnrealizedPL.String())
	assert.Equal(t, "300", item.TotalPL.String())
}

func TestPLFifoPartialLot(t *testing.T) {
	settings := testSettings()
	settings.CostMethod = types.CostMethodFifo

	buy := buyTransaction(1, 10, -1000)
	buy.AccountingDate = day(2024, 1, 8)
	buy.CashDate = day(2024, 1, 8)
	sell := buyTransaction(2, -4, 480)

	universe := testUniverse(buy, sell)
	items := NewPLReportBuilder(settings, universe).Build()

	require.Len(t, items, 1)
	item := items[0]

	// 4 of 10 units consumed at cost 100 each
	assert.Equal(t, "6", item.PositionSize.String())
	assert.Equal(t, "80", item.RealizedPL.String())
	assert.Equal(t, "100", item.CostPriceLoc.String())
}

func TestPLUnrealizedFollowsPrice(t *testing.T) {
	universe := testUniverse(buyTransaction(1, 10, -1000))
	universe.Prices[41].PrincipalPrice = decimal.NewFromInt(110)

	items := NewPLReportBuilder(testSettings(), universe).Build()

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "0", item.RealizedPL.String())
	assert.Equal(t, "1100", item.MarketValueLoc.String())
	assert.Equal(t, "100", item.UnrealizedPL.String())
	assert.Equal(t, "100", item.TotalPL.String())
}

func TestPLCarryAndOverheads(t *testing.T) {
	trn := buyTransaction(1, 10, -1000)
	trn.CarryWithSign = decimal.NewFromInt(-7)
	trn.OverheadsWithSign = decimal.NewFromInt(-3)

	universe := testUniverse(trn)
	items := NewPLReportBuilder(testSettings(), universe).Build()

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "-7", item.Carry.String())
	assert.Equal(t, "-3", item.Overheads.String())
	assert.Equal(t, "-10", item.TotalPL.String())
}

func TestPLTransactionPLClass(t *testing.T) {
	trn := buyTransaction(1, 0, 25)
	trn.TransactionClass = models.ClassTransactionPL

	universe := testUniverse(trn)
	items := NewPLReportBuilder(testSettings(), universe).Build()

	require.Len(t, items, 1)
	assert.Equal(t, "25", items[0].RealizedPL.String())
	assert.Equal(t, "25", items[0].TotalPL.String())
}

func TestPLFirstDateCutoff(t *testing.T) {
	first := day(2024, 1, 9)
	settings := testSettings()
	settings.PlFirstDate = &first

	universe := testUniverse(plTrades()...)
	items := NewPLReportBuilder(settings, universe).Build()

	require.Len(t, items, 1)
	item := items[0]

	// the 2024-01-08 buy falls out: only the 1200 lot backs the sale
	assert.Equal(t, "0", item.PositionSize.String())
	assert.Equal(t, "300", item.RealizedPL.String())
}

func TestPLCashOnlyClassesExcluded(t *testing.T) {
	trn := buyTransaction(1, 0, 500)
	trn.TransactionClass = models.ClassCashInflow

	universe := testUniverse(trn)
	items := NewPLReportBuilder(testSettings(), universe).Build()
	assert.Empty(t, items)
}
