package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func testTenant() *models.Tenant {
	return &models.Tenant{
		ID:                  1,
		DefaultCurrencyID:   1,
		DefaultPortfolioID:  21,
		DefaultAccountID:    22,
		DefaultInstrumentID: 99,
		DefaultStrategy1ID:  31,
		DefaultStrategy2ID:  32,
		DefaultStrategy3ID:  33,
	}
}

func testSettings() ReportSettings {
	return ReportSettings{
		TenantID:         1,
		ReportDate:       day(2024, 1, 15),
		ReportCurrencyID: 1,
		PricingPolicyID:  5,
		CostMethod:       types.CostMethodAvco,
		PortfolioMode:    types.ModeConsolidate,
		AccountMode:      types.ModeConsolidate,
		Strategy1Mode:    types.ModeConsolidate,
		Strategy2Mode:    types.ModeConsolidate,
		Strategy3Mode:    types.ModeConsolidate,
		AllocationMode:   types.ModeConsolidate,
	}
}

// buyTransaction books size units of instrument 41 against cash in the
// tenant default currency, settled on 2024-01-10.
func buyTransaction(ctID uint64, size, cash int64) *models.Transaction {
	class := models.ClassBuy
	if size < 0 {
		class = models.ClassSell
	}
	return &models.Transaction{
		ID:                   ctID,
		TenantID:             1,
		ComplexTransactionID: ctID,
		TransactionClass:     class,
		InstrumentID:         41,
		SettlementCurrencyID: 1,
		PositionSizeWithSign: decimal.NewFromInt(size),
		CashConsideration:    decimal.NewFromInt(cash),
		PrincipalWithSign:    decimal.NewFromInt(cash),
		TransactionDate:      day(2024, 1, 10),
		AccountingDate:       day(2024, 1, 10),
		CashDate:             day(2024, 1, 10),
		PortfolioID:          21,
		AccountPositionID:    11,
		AccountCashID:        12,
		AccountInterimID:     13,
		Strategy1PositionID:  31,
		Strategy1CashID:      31,
		Strategy2PositionID:  32,
		Strategy2CashID:      32,
		Strategy3PositionID:  33,
		Strategy3CashID:      33,
	}
}

func bookedComplex(ids ...uint64) map[uint64]*models.ComplexTransaction {
	out := map[uint64]*models.ComplexTransaction{}
	for _, id := range ids {
		out[id] = &models.ComplexTransaction{ID: id, TenantID: 1, Status: models.StatusBooked}
	}
	return out
}

func testInstrument() *models.Instrument {
	return &models.Instrument{
		ID:                41,
		PricingCurrencyID: 1,
		AccruedCurrencyID: 1,
		PriceMultiplier:   decimal.NewFromInt(1),
		AccruedMultiplier: decimal.NewFromInt(1),
	}
}

func testPrice(principal, accrued int64) *models.PriceHistory {
	return &models.PriceHistory{
		InstrumentID:    41,
		PricingPolicyID: 5,
		Date:            day(2024, 1, 15),
		PrincipalPrice:  decimal.NewFromInt(principal),
		AccruedPrice:    decimal.NewFromInt(accrued),
		Factor:          decimal.NewFromInt(1),
	}
}

func testUniverse(transactions ...*models.Transaction) *Universe {
	ids := make([]uint64, 0, len(transactions))
	for _, trn := range transactions {
		ids = append(ids, trn.ComplexTransactionID)
	}
	return &Universe{
		Tenant:              testTenant(),
		Transactions:        transactions,
		ComplexTransactions: bookedComplex(ids...),
		Instruments:         map[uint64]*models.Instrument{41: testInstrument()},
		FxRates:             map[uint64]decimal.Decimal{},
		Prices:              map[uint64]*models.PriceHistory{41: testPrice(100, 0)},
	}
}
