package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/models/datatypes"
)

func testKernel() *Kernel {
	return NewKernel(nil, expression.NewEvaluator(nil))
}

func bookingTenant() *models.Tenant {
	return &models.Tenant{
		ID:                    1,
		DefaultCurrencyID:     1,
		DefaultPortfolioID:    21,
		DefaultAccountID:      22,
		DefaultInstrumentID:   99,
		DefaultCounterpartyID: 51,
		DefaultResponsibleID:  52,
		DefaultStrategy1ID:    31,
		DefaultStrategy2ID:    32,
		DefaultStrategy3ID:    33,
	}
}

func buyType() *models.TransactionType {
	return &models.TransactionType{
		ID: 7,
		Actions: []models.TransactionTypeAction{
			{
				Order:            0,
				Kind:             models.ActionKindTransaction,
				TransactionClass: int32(models.ClassBuy),
				Fields: datatypes.FieldMap{
					"position_size_with_sign": "size",
					"cash_consideration":      "-1 * size * price",
					"principal_with_sign":     "-1 * size * price",
					"accounting_date":         "trade_date",
					"cash_date":               "trade_date",
					"transaction_date":        "trade_date",
				},
			},
		},
	}
}

func buyValues() map[string]interface{} {
	return map[string]interface{}{
		"size":       10.0,
		"price":      100.0,
		"trade_date": "2024-01-10",
	}
}

func TestExecuteTransactionAction(t *testing.T) {
	kernel := testKernel()

	result, err := kernel.Execute(bookingTenant(), buyType(), buyValues(), nil)
	require.NoError(t, err)

	ct := result.ComplexTransaction
	assert.Equal(t, models.StatusPending, ct.Status)
	assert.EqualValues(t, 1, ct.TenantID)
	assert.EqualValues(t, 7, ct.TransactionTypeID)

	require.Len(t, result.Transactions, 1)
	trn := result.Transactions[0]
	assert.Equal(t, models.ClassBuy, trn.TransactionClass)
	assert.Equal(t, "10", trn.PositionSizeWithSign.String())
	assert.Equal(t, "-1000", trn.CashConsideration.String())
	assert.Equal(t, "2024-01-10", trn.AccountingDate.Format("2006-01-02"))
	assert.Equal(t, "1", trn.ReferenceFxRate.String())
	assert.Equal(t, "1", trn.Factor.String())
}

func TestExecuteSeedsTenantDefaults(t *testing.T) {
	kernel := testKernel()

	result, err := kernel.Execute(bookingTenant(), buyType(), buyValues(), nil)
	require.NoError(t, err)

	trn := result.Transactions[0]
	assert.EqualValues(t, 99, trn.InstrumentID)
	assert.EqualValues(t, 1, trn.TransactionCurrencyID)
	assert.EqualValues(t, 1, trn.SettlementCurrencyID)
	assert.EqualValues(t, 21, trn.PortfolioID)
	assert.EqualValues(t, 22, trn.AccountPositionID)
	assert.EqualValues(t, 22, trn.AccountCashID)
	assert.EqualValues(t, 22, trn.AccountInterimID)
	assert.EqualValues(t, 31, trn.Strategy1PositionID)
	assert.EqualValues(t, 31, trn.Strategy1CashID)
	assert.EqualValues(t, 52, trn.ResponsibleID)
	assert.EqualValues(t, 51, trn.CounterpartyID)
}

func TestExecuteConditionSkipsAction(t *testing.T) {
	tt := buyType()
	tt.Actions[0].ConditionExpr = strPtr("size > 100")

	result, err := testKernel().Execute(bookingTenant(), tt, buyValues(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
}

func TestExecuteContextNamesVisible(t *testing.T) {
	tt := buyType()
	tt.Actions[0].Fields["notes"] = "booked_by"

	result, err := testKernel().Execute(bookingTenant(), tt, buyValues(),
		map[string]interface{}{"booked_by": "import worker"})
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	require.NotNil(t, result.Transactions[0].Notes)
	assert.Equal(t, "import worker", *result.Transactions[0].Notes)
}

func TestExecuteFailureCarriesActionIndex(t *testing.T) {
	tt := buyType()
	tt.Actions = append(tt.Actions, models.TransactionTypeAction{
		Order:            1,
		Kind:             models.ActionKindTransaction,
		TransactionClass: int32(models.ClassCashOutflow),
		Fields:           datatypes.FieldMap{"cash_consideration": "unknown_name * 2"},
	})

	_, err := testKernel().Execute(bookingTenant(), tt, buyValues(), nil)
	require.Error(t, err)

	var bookErr *BookingFailedError
	require.ErrorAs(t, err, &bookErr)
	assert.Equal(t, 1, bookErr.ActionIndex)
	assert.ErrorIs(t, err, expression.ErrInvalidExpression)
}

func TestExecuteUnknownTransactionField(t *testing.T) {
	tt := buyType()
	tt.Actions[0].Fields["no_such_column"] = "1"

	_, err := testKernel().Execute(bookingTenant(), tt, buyValues(), nil)
	require.Error(t, err)

	var bookErr *BookingFailedError
	require.ErrorAs(t, err, &bookErr)
	assert.Equal(t, 0, bookErr.ActionIndex)
}

func TestExecutePhantomInstrumentReference(t *testing.T) {
	tt := &models.TransactionType{
		ID: 8,
		Actions: []models.TransactionTypeAction{
			{
				Order: 0,
				Kind:  models.ActionKindInstrument,
				Fields: datatypes.FieldMap{
					"user_code": `"bond_" + str(size)`,
					"name":      `"Bond"`,
				},
			},
			{
				Order:            1,
				Kind:             models.ActionKindTransaction,
				TransactionClass: int32(models.ClassBuy),
				Fields: datatypes.FieldMap{
					"instrument_id":           "actions[0].instrument",
					"position_size_with_sign": "size",
				},
			},
		},
	}

	result, err := testKernel().Execute(bookingTenant(), tt, map[string]interface{}{"size": 10.0}, nil)
	require.NoError(t, err)

	require.Len(t, result.Instruments, 1)
	assert.Equal(t, "bond_10", result.Instruments[0].UserCode)
	assert.Equal(t, "1", result.Instruments[0].PriceMultiplier.String())

	// the reference stays deferred until the instrument row has an id
	require.Len(t, result.Transactions, 1)
	assert.EqualValues(t, 99, result.Transactions[0].InstrumentID)
	require.Len(t, result.phantomRefs, 1)
	assert.Equal(t, 0, result.phantomRefs[0].slot)
	assert.Equal(t, "instrument_id", result.phantomRefs[0].field)
}

func TestExecuteFactorScheduleOnCreatedInstrument(t *testing.T) {
	tt := &models.TransactionType{
		ID: 9,
		Actions: []models.TransactionTypeAction{
			{
				Order: 0,
				Kind:  models.ActionKindInstrument,
				Fields: datatypes.FieldMap{
					"user_code": `"split_bond"`,
					"name":      `"Split Bond"`,
				},
			},
			{
				Order: 1,
				Kind:  models.ActionKindFactorSchedule,
				Fields: datatypes.FieldMap{
					"instrument_id":  "actions[0].instrument",
					"effective_date": `"2024-01-10"`,
					"factor_value":   "0.5",
				},
			},
		},
	}

	result, err := testKernel().Execute(bookingTenant(), tt, map[string]interface{}{}, nil)
	require.NoError(t, err)

	require.Len(t, result.FactorSchedules, 1)
	row := result.FactorSchedules[0]
	assert.Equal(t, "0.5", row.FactorValue.String())

	// the instrument reference is deferred, not dropped
	require.Len(t, result.scheduleRefs, 1)
	ref := result.scheduleRefs[0]
	assert.Equal(t, "instrument_id", ref.field)
	assert.Equal(t, 0, ref.slot)

	// persist resolves the reference through the recorded assign
	require.NoError(t, ref.assign(ref.field, float64(77)))
	assert.EqualValues(t, 77, row.InstrumentID)
}

func TestExecuteUniqueCodeAndDisplayText(t *testing.T) {
	tt := buyType()
	tt.TransactionUniqueCodeExpr = strPtr(`"buy_" + str(size)`)
	tt.DisplayExpr = strPtr(`"Buy " + str(size) + " units"`)

	result, err := testKernel().Execute(bookingTenant(), tt, buyValues(), nil)
	require.NoError(t, err)

	ct := result.ComplexTransaction
	require.NotNil(t, ct.TransactionUniqueCode)
	assert.Equal(t, "buy_10", *ct.TransactionUniqueCode)
	require.NotNil(t, ct.Text)
	assert.Equal(t, "Buy 10 units", *ct.Text)
}

func TestExecuteConditionResultsStayAligned(t *testing.T) {
	tt := buyType()
	skip := "size > 100"
	tt.Actions[0].ConditionExpr = &skip
	tt.Actions = append(tt.Actions, models.TransactionTypeAction{
		Order:            1,
		Kind:             models.ActionKindTransaction,
		TransactionClass: int32(models.ClassCashInflow),
		Fields:           datatypes.FieldMap{"cash_consideration": "size"},
	})

	result, err := testKernel().Execute(bookingTenant(), tt, buyValues(), nil)
	require.NoError(t, err)

	// the skipped first action leaves a hole, the second still books
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, models.ClassCashInflow, result.Transactions[0].TransactionClass)
}
