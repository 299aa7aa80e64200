package reports

import (
	"github.com/shopspring/decimal"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/models"
)

// LoadUniverse snapshots the data a builder needs: the transaction
// universe up to the report date plus report-date histories. Builders
// never touch the database after this point.
func LoadUniverse(settings *ReportSettings) (*Universe, error) {
	db := config.DataBase

	universe := &Universe{
		ComplexTransactions: map[uint64]*models.ComplexTransaction{},
		Instruments:         map[uint64]*models.Instrument{},
		FxRates:             map[uint64]decimal.Decimal{},
		Prices:              map[uint64]*models.PriceHistory{},
	}

	tenant := &models.Tenant{}
	if err := db.First(tenant, "id = ?", settings.TenantID).Error; err != nil {
		return nil, err
	}
	universe.Tenant = tenant

	var transactions []*models.Transaction
	query := db.
		Where("tenant_id = ? AND is_deleted = false", settings.TenantID).
		Where("LEAST(accounting_date, cash_date) <= ?", settings.ReportDate)
	if len(settings.PortfolioIDs) > 0 {
		query = query.Where("portfolio_id IN ?", settings.PortfolioIDs)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	universe.Transactions = transactions

	ctIDs := make([]uint64, 0, len(transactions))
	instrumentIDs := map[uint64]bool{}
	currencyIDs := map[uint64]bool{settings.ReportCurrencyID: true}
	for _, t := range transactions {
		ctIDs = append(ctIDs, t.ComplexTransactionID)
		instrumentIDs[t.InstrumentID] = true
		currencyIDs[t.TransactionCurrencyID] = true
		currencyIDs[t.SettlementCurrencyID] = true
	}

	var cts []*models.ComplexTransaction
	if len(ctIDs) > 0 {
		if err := db.Where("id IN ?", ctIDs).Find(&cts).Error; err != nil {
			return nil, err
		}
	}
	for _, ct := range cts {
		universe.ComplexTransactions[ct.ID] = ct
	}

	var instruments []*models.Instrument
	if len(instrumentIDs) > 0 {
		ids := keysOf(instrumentIDs)
		if err := db.Where("id IN ?", ids).Find(&instruments).Error; err != nil {
			return nil, err
		}
	}
	for _, instrument := range instruments {
		universe.Instruments[instrument.ID] = instrument
		currencyIDs[instrument.PricingCurrencyID] = true
		currencyIDs[instrument.AccruedCurrencyID] = true
	}

	var fxRows []*models.CurrencyHistory
	if err := db.
		Where("currency_id IN ? AND pricing_policy_id = ? AND date = ?",
			keysOf(currencyIDs), settings.PricingPolicyID, settings.ReportDate).
		Find(&fxRows).Error; err != nil {
		return nil, err
	}
	for _, row := range fxRows {
		universe.FxRates[row.CurrencyID] = row.FxRate
	}

	var priceRows []*models.PriceHistory
	if len(instrumentIDs) > 0 {
		if err := db.
			Where("instrument_id IN ? AND pricing_policy_id = ? AND date = ?",
				keysOf(instrumentIDs), settings.PricingPolicyID, settings.ReportDate).
			Find(&priceRows).Error; err != nil {
			return nil, err
		}
	}
	for _, row := range priceRows {
		universe.Prices[row.InstrumentID] = row
	}

	return universe, nil
}

func keysOf(set map[uint64]bool) []uint64 {
	out := make([]uint64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
