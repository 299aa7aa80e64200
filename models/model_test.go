package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletedCode(t *testing.T) {
	code := deletedCode(42)
	assert.True(t, strings.HasPrefix(code, "del42_"))
	assert.NotEqual(t, code, deletedCode(42))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "tenant_user_code"`)))
	assert.True(t, IsUniqueViolation(errors.New("ERROR: something (SQLSTATE 23505)")))
}

func TestTerminalProcedureStatus(t *testing.T) {
	assert.False(t, TerminalProcedureStatus(ProcedureStatusInit))
	assert.False(t, TerminalProcedureStatus(ProcedureStatusPending))
	assert.True(t, TerminalProcedureStatus(ProcedureStatusDone))
	assert.True(t, TerminalProcedureStatus(ProcedureStatusError))
	assert.True(t, TerminalProcedureStatus(ProcedureStatusCanceled))
}

func TestNextCronTick(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)

	next, err := NextCronTick("0 18 * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC), next)

	// strictly after now
	next, err = NextCronTick("30 10 * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), next)

	_, err = NextCronTick("not a cron", now)
	assert.Error(t, err)
}

func TestComplexTransactionContributes(t *testing.T) {
	ct := &ComplexTransaction{Status: StatusBooked}
	assert.True(t, ct.Contributes())

	assert.False(t, (&ComplexTransaction{Status: StatusPending}).Contributes())
	assert.False(t, (&ComplexTransaction{Status: StatusIgnored}).Contributes())
	assert.False(t, (&ComplexTransaction{Status: StatusBooked, IsDeleted: true}).Contributes())
	assert.False(t, (&ComplexTransaction{Status: StatusBooked, IsCanceled: true}).Contributes())
}

func TestTransactionMinDate(t *testing.T) {
	trn := &Transaction{
		AccountingDate: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		CashDate:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, trn.CashDate, trn.MinDate())

	trn.CashDate = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, trn.AccountingDate, trn.MinDate())
}

func TestTransactionClassPredicates(t *testing.T) {
	assert.True(t, (&Transaction{TransactionClass: ClassBuy}).IsPosition())
	assert.True(t, (&Transaction{TransactionClass: ClassSell}).IsPosition())
	assert.True(t, (&Transaction{TransactionClass: ClassTransfer}).IsPosition())
	assert.False(t, (&Transaction{TransactionClass: ClassCashInflow}).IsPosition())

	assert.True(t, (&Transaction{TransactionClass: ClassCashOutflow}).IsCash())
	assert.True(t, (&Transaction{TransactionClass: ClassFXTrade}).IsFX())
	assert.True(t, (&Transaction{TransactionClass: ClassFXTransfer}).IsFX())
	assert.True(t, (&Transaction{TransactionClass: ClassInstrumentPL}).IsPL())
	assert.True(t, (&Transaction{TransactionClass: ClassTransactionPL}).IsPL())
}

func TestPriceHistoryIsEmpty(t *testing.T) {
	assert.True(t, (&PriceHistory{}).IsEmpty())

	withPrincipal := &PriceHistory{PrincipalPrice: decimal.NewFromInt(100)}
	assert.False(t, withPrincipal.IsEmpty())

	withAccrued := &PriceHistory{AccruedPrice: decimal.NewFromInt(1)}
	assert.False(t, withAccrued.IsEmpty())
}
