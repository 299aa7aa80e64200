package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

func transactionReportSettings(depth types.DepthLevel) TransactionReportSettings {
	return TransactionReportSettings{
		TenantID:     1,
		BeginDate:    day(2024, 1, 1),
		EndDate:      day(2024, 1, 31),
		DepthLevel:   depth,
		DateFieldKey: types.DateFieldAccountingDate,
	}
}

func namedUniverse(transactions ...*models.Transaction) *Universe {
	universe := testUniverse(transactions...)
	instrument := universe.Instruments[41]
	instrument.Name = "Apple Inc"
	instrument.ShortName = "AAPL"
	instrument.UserCode = "apple"
	return universe
}

func TestTransactionReportStatusVisibility(t *testing.T) {
	universe := namedUniverse(buyTransaction(1, 10, -1000))
	settings := transactionReportSettings(types.DepthBaseTransaction)

	rows := NewTransactionReportBuilder(settings, universe).Build()
	assert.Len(t, rows, 1)

	universe.ComplexTransactions[1].Status = models.StatusPending
	rows = NewTransactionReportBuilder(settings, universe).Build()
	assert.Empty(t, rows)

	universe.ComplexTransactions[1].Status = models.StatusIgnored
	rows = NewTransactionReportBuilder(settings, universe).Build()
	assert.Empty(t, rows)

	settings.IncludeIgnored = true
	rows = NewTransactionReportBuilder(settings, universe).Build()
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusIgnored, rows[0].Status)
}

func TestTransactionReportComplexDepthDedupes(t *testing.T) {
	first := buyTransaction(1, 10, -1000)
	second := buyTransaction(1, 5, -500)
	second.ID = 2

	universe := namedUniverse(first, second)
	settings := transactionReportSettings(types.DepthComplexTransaction)

	rows := NewTransactionReportBuilder(settings, universe).Build()
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(1), rows[0].ComplexTransactionID)
	assert.Nil(t, rows[0].Transaction)
}

func TestTransactionReportBaseDepthItemColumns(t *testing.T) {
	universe := namedUniverse(buyTransaction(1, 10, -1000))
	settings := transactionReportSettings(types.DepthBaseTransaction)

	rows := NewTransactionReportBuilder(settings, universe).Build()
	require.Len(t, rows, 1)

	row := rows[0]
	require.NotNil(t, row.Transaction)
	assert.Equal(t, "Apple Inc", row.TransactionItemName)
	assert.Equal(t, "AAPL", row.TransactionItemShortName)
	assert.Equal(t, "apple", row.TransactionItemUserCode)
}

func TestTransactionReportSentinelShowsNotes(t *testing.T) {
	notes := "management fee Q1"
	trn := buyTransaction(1, 0, -100)
	trn.TransactionClass = models.ClassCashOutflow
	trn.InstrumentID = 99 // tenant default instrument
	trn.Notes = &notes

	universe := namedUniverse(trn)
	settings := transactionReportSettings(types.DepthBaseTransaction)

	rows := NewTransactionReportBuilder(settings, universe).Build()
	require.Len(t, rows, 1)
	assert.Equal(t, notes, rows[0].TransactionItemName)
	assert.Equal(t, notes, rows[0].TransactionItemShortName)
	assert.Equal(t, notes, rows[0].TransactionItemUserCode)
}

func TestTransactionReportDateFieldSelection(t *testing.T) {
	trn := buyTransaction(1, 10, -1000)
	trn.AccountingDate = day(2024, 2, 5) // outside the window
	trn.CashDate = day(2024, 1, 10)

	universe := namedUniverse(trn)

	settings := transactionReportSettings(types.DepthBaseTransaction)
	rows := NewTransactionReportBuilder(settings, universe).Build()
	assert.Empty(t, rows)

	settings.DateFieldKey = types.DateFieldCashDate
	rows = NewTransactionReportBuilder(settings, universe).Build()
	assert.Len(t, rows, 1)
}

func TestTransactionReportEntryDepth(t *testing.T) {
	universe := namedUniverse(buyTransaction(1, 10, -1000))
	settings := transactionReportSettings(types.DepthEntry)

	rows := NewTransactionReportBuilder(settings, universe).Build()
	require.Len(t, rows, 2)

	assert.Equal(t, types.EntryItemInstrument, rows[0].EntryItemType)
	assert.Equal(t, uint64(11), rows[0].EntryAccountID)
	assert.Equal(t, uint64(41), rows[0].EntryInstrumentID)
	assert.Equal(t, "10", rows[0].EntryAmount.String())

	assert.Equal(t, types.EntryItemCurrency, rows[1].EntryItemType)
	assert.Equal(t, uint64(12), rows[1].EntryAccountID)
	assert.Equal(t, uint64(1), rows[1].EntryCurrencyID)
	assert.Equal(t, "-1000", rows[1].EntryAmount.String())
}

func TestTransactionReportOrdering(t *testing.T) {
	late := buyTransaction(1, 10, -1000)
	late.ID = 7
	late.AccountingDate = day(2024, 1, 12)
	late.CashDate = day(2024, 1, 12)

	early := buyTransaction(2, 5, -500)
	early.ID = 9
	early.AccountingDate = day(2024, 1, 5)
	early.CashDate = day(2024, 1, 5)

	universe := namedUniverse(late, early)
	settings := transactionReportSettings(types.DepthBaseTransaction)

	rows := NewTransactionReportBuilder(settings, universe).Build()
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(9), rows[0].Transaction.ID)
	assert.Equal(t, uint64(7), rows[1].Transaction.ID)
}
