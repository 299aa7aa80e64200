package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// TransactionReportSettings select the universe of a transaction
// report. PENDING complex transactions are never shown; IGNORED only on
// explicit request.
type TransactionReportSettings struct {
	TenantID     uint64
	BeginDate    time.Time
	EndDate      time.Time
	DepthLevel   types.DepthLevel
	DateFieldKey types.DateFieldKey

	IncludeIgnored bool

	PortfolioIDs []uint64
	AccountIDs   []uint64
}

// TransactionReportRow flattens a complex transaction, a base
// transaction, or one accounting entry, depending on the depth level.
type TransactionReportRow struct {
	DepthLevel types.DepthLevel `json:"depth_level"`

	ComplexTransactionID   uint64                          `json:"complex_transaction_id"`
	ComplexTransactionCode int64                           `json:"complex_transaction_code"`
	Date                   time.Time                       `json:"date"`
	Status                 models.ComplexTransactionStatus `json:"status"`
	TransactionTypeID      uint64                          `json:"transaction_type_id"`
	Text                   *string                         `json:"text"`

	UserText   models.UserTextFields   `json:"user_text"`
	UserNumber models.UserNumberFields `json:"user_number"`
	UserDate   models.UserDateFields   `json:"user_date"`

	// base-transaction and entry depth
	Transaction *models.Transaction `json:"transaction,omitempty"`

	// transaction_item_* columns: notes when the instrument is the
	// default sentinel, else the instrument identity
	TransactionItemName      string `json:"transaction_item_name,omitempty"`
	TransactionItemShortName string `json:"transaction_item_short_name,omitempty"`
	TransactionItemUserCode  string `json:"transaction_item_user_code,omitempty"`

	// entry depth
	EntryItemType     types.EntryItemType `json:"entry_item_type,omitempty"`
	EntryAccountID    uint64              `json:"entry_account_id,omitempty"`
	EntryAmount       decimal.Decimal     `json:"entry_amount,omitempty"`
	EntryCurrencyID   uint64              `json:"entry_currency_id,omitempty"`
	EntryInstrumentID uint64              `json:"entry_instrument_id,omitempty"`
}

type TransactionReportBuilder struct {
	Settings TransactionReportSettings
	Universe *Universe
}

func NewTransactionReportBuilder(settings TransactionReportSettings, universe *Universe) *TransactionReportBuilder {
	return &TransactionReportBuilder{Settings: settings, Universe: universe}
}

func (b *TransactionReportBuilder) statusVisible(ct *models.ComplexTransaction) bool {
	if ct.IsDeleted {
		return false
	}
	switch ct.Status {
	case models.StatusBooked:
		return true
	case models.StatusIgnored:
		return b.Settings.IncludeIgnored
	}
	return false
}

func (b *TransactionReportBuilder) dateOf(t *models.Transaction) time.Time {
	switch b.Settings.DateFieldKey {
	case types.DateFieldCashDate:
		return t.CashDate
	case types.DateFieldTransactionDate:
		return t.TransactionDate
	default:
		return t.AccountingDate
	}
}

func (b *TransactionReportBuilder) inRange(d time.Time) bool {
	return !d.Before(b.Settings.BeginDate) && !d.After(b.Settings.EndDate)
}

func (b *TransactionReportBuilder) Build() []TransactionReportRow {
	switch b.Settings.DepthLevel {
	case types.DepthComplexTransaction:
		return b.buildComplex()
	case types.DepthEntry:
		return b.buildEntries()
	default:
		return b.buildBase()
	}
}

func (b *TransactionReportBuilder) selected() []*models.Transaction {
	out := make([]*models.Transaction, 0, len(b.Universe.Transactions))
	for _, t := range b.Universe.Transactions {
		if t.TenantID != b.Settings.TenantID || t.IsDeleted {
			continue
		}
		ct, ok := b.Universe.ComplexTransactions[t.ComplexTransactionID]
		if !ok || !b.statusVisible(ct) {
			continue
		}
		if !b.inRange(b.dateOf(t)) {
			continue
		}
		if !matchFilter(b.Settings.PortfolioIDs, t.PortfolioID) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b2 := out[i], out[j]
		if !a.AccountingDate.Equal(b2.AccountingDate) {
			return a.AccountingDate.Before(b2.AccountingDate)
		}
		return a.ID < b2.ID
	})
	return out
}

func (b *TransactionReportBuilder) complexRow(ct *models.ComplexTransaction) TransactionReportRow {
	return TransactionReportRow{
		DepthLevel:             b.Settings.DepthLevel,
		ComplexTransactionID:   ct.ID,
		ComplexTransactionCode: ct.Code,
		Date:                   ct.Date,
		Status:                 ct.Status,
		TransactionTypeID:      ct.TransactionTypeID,
		Text:                   ct.Text,
		UserText:               ct.UserText,
		UserNumber:             ct.UserNumber,
		UserDate:               ct.UserDate,
	}
}

func (b *TransactionReportBuilder) buildComplex() []TransactionReportRow {
	seen := map[uint64]bool{}
	rows := []TransactionReportRow{}
	for _, t := range b.selected() {
		if seen[t.ComplexTransactionID] {
			continue
		}
		seen[t.ComplexTransactionID] = true
		ct := b.Universe.ComplexTransactions[t.ComplexTransactionID]
		rows = append(rows, b.complexRow(ct))
	}
	return rows
}

// transactionItem fills the derived transaction_item_* columns: the
// instrument identity, or the transaction notes when the instrument is
// the tenant default sentinel.
func (b *TransactionReportBuilder) transactionItem(row *TransactionReportRow, t *models.Transaction) {
	if b.Universe.Tenant != nil && t.InstrumentID == b.Universe.Tenant.DefaultInstrumentID {
		notes := ""
		if t.Notes != nil {
			notes = *t.Notes
		}
		row.TransactionItemName = notes
		row.TransactionItemShortName = notes
		row.TransactionItemUserCode = notes
		return
	}
	if instrument, ok := b.Universe.Instruments[t.InstrumentID]; ok {
		row.TransactionItemName = instrument.Name
		row.TransactionItemShortName = instrument.ShortName
		row.TransactionItemUserCode = instrument.UserCode
	}
}

func (b *TransactionReportBuilder) buildBase() []TransactionReportRow {
	rows := []TransactionReportRow{}
	for _, t := range b.selected() {
		ct := b.Universe.ComplexTransactions[t.ComplexTransactionID]
		row := b.complexRow(ct)
		row.Transaction = t
		b.transactionItem(&row, t)
		rows = append(rows, row)
	}
	return rows
}

func (b *TransactionReportBuilder) buildEntries() []TransactionReportRow {
	rows := []TransactionReportRow{}
	for _, t := range b.selected() {
		ct := b.Universe.ComplexTransactions[t.ComplexTransactionID]
		for _, p := range EffectivePostings(t, b.Settings.EndDate) {
			row := b.complexRow(ct)
			row.Transaction = t
			b.transactionItem(&row, t)
			row.EntryItemType = p.EntryType
			row.EntryAccountID = p.AccountID
			row.EntryAmount = p.Amount
			row.EntryCurrencyID = p.CurrencyID
			row.EntryInstrumentID = p.InstrumentID
			rows = append(rows, row)
		}
	}
	return rows
}
