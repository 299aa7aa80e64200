package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

type LegKind = string

var (
	LegPosition LegKind = "position"
	LegCash     LegKind = "cash"
)

// Posting is one effective accounting entry derived from a base
// transaction for a given report date.
type Posting struct {
	Transaction *models.Transaction

	Leg       LegKind
	ItemType  types.ItemType
	EntryType types.EntryItemType

	AccountID    uint64
	InstrumentID uint64 // instrument items
	CurrencyID   uint64 // currency items
	Amount       decimal.Decimal

	Strategy1ID uint64
	Strategy2ID uint64
	Strategy3ID uint64
}

// settlement state of a posting line relative to the report date
type dateState int

const (
	// report date on or after both dates (or the dates coincide)
	stateSettled dateState = iota
	// accounting_date <= RD < cash_date: booked, cash in limbo
	stateAccountedNotSettled
	// cash_date <= RD < accounting_date: cash moved, not yet booked
	stateSettledNotAccounted
)

func classify(t *models.Transaction, reportDate time.Time) dateState {
	ad, cd := t.AccountingDate, t.CashDate
	if ad.Before(cd) && !reportDate.Before(ad) && reportDate.Before(cd) {
		return stateAccountedNotSettled
	}
	if cd.Before(ad) && !reportDate.Before(cd) && reportDate.Before(ad) {
		return stateSettledNotAccounted
	}
	return stateSettled
}

// EffectivePostings applies the interim-account date-triangle rule: the
// effective account and amount of every leg depend on how the report
// date falls against the accounting and cash dates. Transactions with
// accounting_date == cash_date always take the settled column.
func EffectivePostings(t *models.Transaction, reportDate time.Time) []Posting {
	state := classify(t, reportDate)

	posLeg := func(accountID uint64, itemType types.ItemType, entryType types.EntryItemType, instrumentID, currencyID uint64, amount decimal.Decimal) Posting {
		return Posting{
			Transaction:  t,
			Leg:          LegPosition,
			ItemType:     itemType,
			EntryType:    entryType,
			AccountID:    accountID,
			InstrumentID: instrumentID,
			CurrencyID:   currencyID,
			Amount:       amount,
			Strategy1ID:  t.Strategy1PositionID,
			Strategy2ID:  t.Strategy2PositionID,
			Strategy3ID:  t.Strategy3PositionID,
		}
	}
	cashLeg := func(accountID uint64, entryType types.EntryItemType, amount decimal.Decimal) Posting {
		return Posting{
			Transaction: t,
			Leg:         LegCash,
			ItemType:    types.ItemTypeCurrency,
			EntryType:   entryType,
			AccountID:   accountID,
			CurrencyID:  t.SettlementCurrencyID,
			Amount:      amount,
			Strategy1ID: t.Strategy1CashID,
			Strategy2ID: t.Strategy2CashID,
			Strategy3ID: t.Strategy3CashID,
		}
	}

	switch t.TransactionClass {
	case models.ClassCashInflow, models.ClassCashOutflow:
		switch state {
		case stateAccountedNotSettled:
			return []Posting{cashLeg(t.AccountInterimID, types.EntryItemCurrency, t.CashConsideration)}
		default:
			return []Posting{cashLeg(t.AccountCashID, types.EntryItemCurrency, t.CashConsideration)}
		}

	case models.ClassBuy, models.ClassSell:
		switch state {
		case stateSettled:
			return []Posting{
				posLeg(t.AccountPositionID, types.ItemTypeInstrument, types.EntryItemInstrument, t.InstrumentID, 0, t.PositionSizeWithSign),
				cashLeg(t.AccountCashID, types.EntryItemCurrency, t.CashConsideration),
			}
		case stateAccountedNotSettled:
			return []Posting{
				posLeg(t.AccountPositionID, types.ItemTypeInstrument, types.EntryItemInstrument, t.InstrumentID, 0, t.PositionSizeWithSign),
				cashLeg(t.AccountInterimID, types.EntryItemCurrency, t.CashConsideration),
			}
		default: // cash settled before accounting: money parked on interim
			return []Posting{
				posLeg(t.AccountInterimID, types.ItemTypeCurrency, types.EntryItemCurrency, 0, t.SettlementCurrencyID, t.CashConsideration.Neg()),
				cashLeg(t.AccountCashID, types.EntryItemCurrency, t.CashConsideration),
			}
		}

	case models.ClassFXTrade:
		switch state {
		case stateSettled:
			return []Posting{
				posLeg(t.AccountPositionID, types.ItemTypeCurrency, types.EntryItemFXTrades, 0, t.TransactionCurrencyID, t.PositionSizeWithSign),
				cashLeg(t.AccountCashID, types.EntryItemFXTrades, t.CashConsideration),
			}
		case stateAccountedNotSettled:
			return []Posting{
				posLeg(t.AccountPositionID, types.ItemTypeCurrency, types.EntryItemFXTrades, 0, t.TransactionCurrencyID, t.PositionSizeWithSign),
				cashLeg(t.AccountInterimID, types.EntryItemFXTrades, t.CashConsideration),
			}
		default:
			return []Posting{
				posLeg(t.AccountInterimID, types.ItemTypeCurrency, types.EntryItemFXTrades, 0, t.SettlementCurrencyID, t.CashConsideration.Neg()),
				cashLeg(t.AccountCashID, types.EntryItemFXTrades, t.CashConsideration),
			}
		}

	case models.ClassFXTransfer:
		from := posLeg(t.AccountPositionID, types.ItemTypeCurrency, types.EntryItemFXVariations, 0, t.TransactionCurrencyID, t.CashConsideration.Neg())
		to := cashLeg(t.AccountCashID, types.EntryItemFXVariations, t.CashConsideration)
		switch state {
		case stateAccountedNotSettled:
			to = cashLeg(t.AccountInterimID, types.EntryItemFXVariations, t.CashConsideration)
		case stateSettledNotAccounted:
			from = posLeg(t.AccountInterimID, types.ItemTypeCurrency, types.EntryItemFXVariations, 0, t.SettlementCurrencyID, t.CashConsideration.Neg())
		}
		return []Posting{from, to}

	case models.ClassTransfer:
		// Both legs live on the position account: a transfer moves the
		// instrument between strategy buckets. The outgoing leg carries
		// the cash-slot strategies.
		outLeg := func(accountID uint64) Posting {
			p := posLeg(accountID, types.ItemTypeInstrument, types.EntryItemInstrument, t.InstrumentID, 0, t.PositionSizeWithSign.Neg())
			p.Strategy1ID = t.Strategy1CashID
			p.Strategy2ID = t.Strategy2CashID
			p.Strategy3ID = t.Strategy3CashID
			return p
		}
		in := posLeg(t.AccountPositionID, types.ItemTypeInstrument, types.EntryItemInstrument, t.InstrumentID, 0, t.PositionSizeWithSign)
		out := outLeg(t.AccountPositionID)
		switch state {
		case stateAccountedNotSettled:
			out = outLeg(t.AccountInterimID)
		case stateSettledNotAccounted:
			in = posLeg(t.AccountInterimID, types.ItemTypeCurrency, types.EntryItemCurrency, 0, t.SettlementCurrencyID, t.CashConsideration.Neg())
		}
		return []Posting{in, out}

	case models.ClassInstrumentPL, models.ClassTransactionPL:
		entry := types.EntryItemTransactionPL
		return []Posting{cashLeg(t.AccountCashID, entry, t.CashConsideration)}
	}

	return nil
}
