package models

import (
	"time"

	"github.com/gookit/validate"
	"github.com/shopspring/decimal"
)

type TransactionClass int32

const (
	ClassBuy           TransactionClass = 1
	ClassSell          TransactionClass = 2
	ClassFXTrade       TransactionClass = 3
	ClassInstrumentPL  TransactionClass = 4
	ClassTransactionPL TransactionClass = 5
	ClassTransfer      TransactionClass = 6
	ClassFXTransfer    TransactionClass = 7
	ClassCashInflow    TransactionClass = 8
	ClassCashOutflow   TransactionClass = 9
	ClassDefault       TransactionClass = 10
)

// Transaction is one atomic posting line of a complex transaction.
type Transaction struct {
	ID                      uint64           `json:"id" gorm:"primaryKey"`
	TenantID                uint64           `json:"tenant_id" gorm:"index" validate:"required"`
	ComplexTransactionID    uint64           `json:"complex_transaction_id" gorm:"index" validate:"required"`
	ComplexTransactionOrder int32            `json:"complex_transaction_order" gorm:"default:0"`
	TransactionCode         int64            `json:"transaction_code" gorm:"index"`
	TransactionClass        TransactionClass `json:"transaction_class" gorm:"index" validate:"required"`

	InstrumentID          uint64  `json:"instrument_id" gorm:"index"`
	LinkedInstrumentID    *uint64 `json:"linked_instrument_id"`
	TransactionCurrencyID uint64  `json:"transaction_currency_id"`
	SettlementCurrencyID  uint64  `json:"settlement_currency_id"`

	PositionSizeWithSign decimal.Decimal `json:"position_size_with_sign" gorm:"default:0.0"`
	CashConsideration    decimal.Decimal `json:"cash_consideration" gorm:"default:0.0"`
	PrincipalWithSign    decimal.Decimal `json:"principal_with_sign" gorm:"default:0.0"`
	CarryWithSign        decimal.Decimal `json:"carry_with_sign" gorm:"default:0.0"`
	OverheadsWithSign    decimal.Decimal `json:"overheads_with_sign" gorm:"default:0.0"`
	ReferenceFxRate      decimal.Decimal `json:"reference_fx_rate" gorm:"default:1.0"`
	Factor               decimal.Decimal `json:"factor" gorm:"default:1.0"`
	TradePrice           decimal.Decimal `json:"trade_price" gorm:"default:0.0"`

	TransactionDate time.Time `json:"transaction_date" gorm:"type:date;index" validate:"required"`
	AccountingDate  time.Time `json:"accounting_date" gorm:"type:date;index" validate:"required"`
	CashDate        time.Time `json:"cash_date" gorm:"type:date;index" validate:"required"`

	PortfolioID       uint64 `json:"portfolio_id" gorm:"index"`
	AccountPositionID uint64 `json:"account_position_id"`
	AccountCashID     uint64 `json:"account_cash_id"`
	AccountInterimID  uint64 `json:"account_interim_id"`

	Strategy1PositionID uint64 `json:"strategy1_position_id"`
	Strategy1CashID     uint64 `json:"strategy1_cash_id"`
	Strategy2PositionID uint64 `json:"strategy2_position_id"`
	Strategy2CashID     uint64 `json:"strategy2_cash_id"`
	Strategy3PositionID uint64 `json:"strategy3_position_id"`
	Strategy3CashID     uint64 `json:"strategy3_cash_id"`

	ResponsibleID  uint64 `json:"responsible_id"`
	CounterpartyID uint64 `json:"counterparty_id"`

	AllocationBalanceID *uint64 `json:"allocation_balance_id"`
	AllocationPlID      *uint64 `json:"allocation_pl_id"`

	IsCanceled bool    `json:"is_canceled" gorm:"default:false"`
	IsDeleted  bool    `json:"is_deleted" gorm:"default:false;index"`
	Notes      *string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Transaction) Messages() map[string]string {
	return validate.MS{
		"required": "transaction.invalid_{field}",
	}
}

func (t *Transaction) IsBuy() bool  { return t.TransactionClass == ClassBuy }
func (t *Transaction) IsSell() bool { return t.TransactionClass == ClassSell }

// IsPosition reports classes whose position leg moves instrument units.
func (t *Transaction) IsPosition() bool {
	switch t.TransactionClass {
	case ClassBuy, ClassSell, ClassTransfer:
		return true
	}
	return false
}

// IsCash reports classes that only move settlement currency.
func (t *Transaction) IsCash() bool {
	switch t.TransactionClass {
	case ClassCashInflow, ClassCashOutflow:
		return true
	}
	return false
}

func (t *Transaction) IsFX() bool {
	switch t.TransactionClass {
	case ClassFXTrade, ClassFXTransfer:
		return true
	}
	return false
}

func (t *Transaction) IsPL() bool {
	switch t.TransactionClass {
	case ClassInstrumentPL, ClassTransactionPL:
		return true
	}
	return false
}

// MinDate is the earliest of accounting and cash date; the balance
// universe cut-off compares it against the report date.
func (t *Transaction) MinDate() time.Time {
	if t.CashDate.Before(t.AccountingDate) {
		return t.CashDate
	}
	return t.AccountingDate
}
