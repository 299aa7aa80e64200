package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// ReportItem is one flat output row of the balance and P&L builders.
// The consolidation-axis ids are tenant defaults for ignored axes.
type ReportItem struct {
	ItemType types.ItemType `json:"item_type"`

	PortfolioID  uint64 `json:"portfolio_id"`
	AccountID    uint64 `json:"account_id"`
	Strategy1ID  uint64 `json:"strategy1_id"`
	Strategy2ID  uint64 `json:"strategy2_id"`
	Strategy3ID  uint64 `json:"strategy3_id"`
	AllocationID uint64 `json:"allocation_id"`

	InstrumentID uint64 `json:"instrument_id,omitempty"`
	CurrencyID   uint64 `json:"currency_id,omitempty"`

	PositionSize        decimal.Decimal `json:"position_size"`
	NominalPositionSize decimal.Decimal `json:"nominal_position_size"`
	MarketValue         decimal.Decimal `json:"market_value"`
	MarketValueLoc      decimal.Decimal `json:"market_value_loc"`
	FxRate              decimal.Decimal `json:"fx_rate"`
	Exposure            decimal.Decimal `json:"exposure"`
	ExposureLoc         decimal.Decimal `json:"exposure_loc"`

	// P&L columns, populated by the P&L builder only.
	CostPriceLoc decimal.Decimal `json:"cost_price_loc,omitempty"`
	Carry        decimal.Decimal `json:"carry,omitempty"`
	Overheads    decimal.Decimal `json:"overheads,omitempty"`
	RealizedPL   decimal.Decimal `json:"realized_pl,omitempty"`
	UnrealizedPL decimal.Decimal `json:"unrealized_pl,omitempty"`
	TotalPL      decimal.Decimal `json:"total_pl,omitempty"`
}

// Universe is the data snapshot a builder runs over. Builders are pure
// over it; loaders fill it from the database.
type Universe struct {
	Tenant       *models.Tenant
	Transactions []*models.Transaction
	// complex-transaction status by id, for the BOOKED-only filter
	ComplexTransactions map[uint64]*models.ComplexTransaction
	Instruments         map[uint64]*models.Instrument
	// fx rate by currency id at the report date
	FxRates map[uint64]decimal.Decimal
	// price history by instrument id at the report date
	Prices map[uint64]*models.PriceHistory
}

// FxRateOf returns the report-date fx rate of a currency: 1 for the
// tenant default currency, 0 when the history row is missing. Missing
// rates zero out the dependent columns, the row itself survives.
func (u *Universe) FxRateOf(currencyID uint64) decimal.Decimal {
	if u.Tenant != nil && currencyID == u.Tenant.DefaultCurrencyID {
		return decimal.NewFromInt(1)
	}
	if rate, ok := u.FxRates[currencyID]; ok {
		return rate
	}
	return decimal.Zero
}

// consolidationKey is the comparable group-by key of both builders.
type consolidationKey struct {
	portfolioID  uint64
	accountID    uint64
	strategy1ID  uint64
	strategy2ID  uint64
	strategy3ID  uint64
	allocationID uint64
	// exactly one of the following is non-zero
	instrumentID uint64
	currencyID   uint64
}

// ReportSettings is shared by balance and P&L builders.
type ReportSettings struct {
	TenantID         uint64
	ReportDate       time.Time
	PlFirstDate      *time.Time // P&L builder only
	ReportCurrencyID uint64
	PricingPolicyID  uint64
	CostMethod       types.CostMethod

	PortfolioMode  types.ConsolidationMode
	AccountMode    types.ConsolidationMode
	Strategy1Mode  types.ConsolidationMode
	Strategy2Mode  types.ConsolidationMode
	Strategy3Mode  types.ConsolidationMode
	AllocationMode types.ConsolidationMode

	PortfolioIDs []uint64
	AccountIDs   []uint64
	Strategy1IDs []uint64
	Strategy2IDs []uint64
	Strategy3IDs []uint64

	WithExposure bool
}

func (s *ReportSettings) defaulted(mode types.ConsolidationMode, id, fallback uint64) uint64 {
	if mode == types.ModeConsolidate {
		return id
	}
	return fallback
}

// keyFor folds a posting into the group-by key honoring the
// consolidation modes: ignored axes collapse onto tenant defaults.
func (s *ReportSettings) keyFor(p *Posting, tenant *models.Tenant) consolidationKey {
	allocationID := tenant.DefaultInstrumentID
	if p.Transaction.AllocationBalanceID != nil {
		allocationID = *p.Transaction.AllocationBalanceID
	}

	key := consolidationKey{
		portfolioID:  s.defaulted(s.PortfolioMode, p.Transaction.PortfolioID, tenant.DefaultPortfolioID),
		accountID:    s.defaulted(s.AccountMode, p.AccountID, tenant.DefaultAccountID),
		strategy1ID:  s.defaulted(s.Strategy1Mode, p.Strategy1ID, tenant.DefaultStrategy1ID),
		strategy2ID:  s.defaulted(s.Strategy2Mode, p.Strategy2ID, tenant.DefaultStrategy2ID),
		strategy3ID:  s.defaulted(s.Strategy3Mode, p.Strategy3ID, tenant.DefaultStrategy3ID),
		allocationID: s.defaulted(s.AllocationMode, allocationID, tenant.DefaultInstrumentID),
	}

	if p.ItemType == types.ItemTypeInstrument {
		key.instrumentID = p.InstrumentID
	} else {
		key.currencyID = p.CurrencyID
	}

	return key
}

func matchFilter(ids []uint64, id uint64) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// InUniverse applies the shared universe filter: BOOKED owner, not
// deleted, tenant match, axis filters, and the min-date cut-off.
func (s *ReportSettings) InUniverse(t *models.Transaction, cts map[uint64]*models.ComplexTransaction) bool {
	if t.TenantID != s.TenantID || t.IsDeleted {
		return false
	}
	ct, ok := cts[t.ComplexTransactionID]
	if !ok || !ct.Contributes() {
		return false
	}
	if t.MinDate().After(s.ReportDate) {
		return false
	}
	if !matchFilter(s.PortfolioIDs, t.PortfolioID) {
		return false
	}
	if len(s.AccountIDs) > 0 &&
		!matchFilter(s.AccountIDs, t.AccountPositionID) &&
		!matchFilter(s.AccountIDs, t.AccountCashID) &&
		!matchFilter(s.AccountIDs, t.AccountInterimID) {
		return false
	}
	if !matchFilter(s.Strategy1IDs, t.Strategy1PositionID) && !matchFilter(s.Strategy1IDs, t.Strategy1CashID) {
		return false
	}
	if !matchFilter(s.Strategy2IDs, t.Strategy2PositionID) && !matchFilter(s.Strategy2IDs, t.Strategy2CashID) {
		return false
	}
	if !matchFilter(s.Strategy3IDs, t.Strategy3PositionID) && !matchFilter(s.Strategy3IDs, t.Strategy3CashID) {
		return false
	}
	return true
}
