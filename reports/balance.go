package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// BalanceReportBuilder consolidates the filtered transaction universe
// into instrument and currency items valued at the report date.
type BalanceReportBuilder struct {
	Settings ReportSettings
	Universe *Universe
}

func NewBalanceReportBuilder(settings ReportSettings, universe *Universe) *BalanceReportBuilder {
	return &BalanceReportBuilder{Settings: settings, Universe: universe}
}

type balanceGroup struct {
	key  consolidationKey
	size decimal.Decimal
}

func (b *BalanceReportBuilder) Build() []ReportItem {
	cashGroups := map[consolidationKey]*balanceGroup{}
	positionGroups := map[consolidationKey]*balanceGroup{}

	for _, trn := range b.Universe.Transactions {
		if !b.Settings.InUniverse(trn, b.Universe.ComplexTransactions) {
			continue
		}

		for _, posting := range EffectivePostings(trn, b.Settings.ReportDate) {
			p := posting
			key := b.Settings.keyFor(&p, b.Universe.Tenant)

			var groups map[consolidationKey]*balanceGroup
			if p.ItemType == types.ItemTypeInstrument {
				groups = positionGroups
			} else {
				groups = cashGroups
			}

			group, ok := groups[key]
			if !ok {
				group = &balanceGroup{key: key}
				groups[key] = group
			}
			group.size = group.size.Add(p.Amount)
		}
	}

	reportFx := b.Universe.FxRateOf(b.Settings.ReportCurrencyID)

	items := make([]ReportItem, 0, len(cashGroups)+len(positionGroups))
	for _, g := range cashGroups {
		if g.size.IsZero() {
			continue
		}
		items = append(items, b.cashItem(g, reportFx))
	}
	for _, g := range positionGroups {
		if g.size.IsZero() {
			continue
		}
		items = append(items, b.positionItem(g, reportFx))
	}

	sortItems(items)
	return items
}

func (b *BalanceReportBuilder) cashItem(g *balanceGroup, reportFx decimal.Decimal) ReportItem {
	stlFx := b.Universe.FxRateOf(g.key.currencyID)

	marketValueLoc := g.size.Mul(stlFx)
	marketValue := decimal.Zero
	if !reportFx.IsZero() {
		marketValue = marketValueLoc.Div(reportFx)
	}

	item := b.newItem(g, types.ItemTypeCurrency)
	item.PositionSize = roundEmit(g.size)
	item.NominalPositionSize = roundEmit(g.size)
	item.MarketValueLoc = roundEmit(marketValueLoc)
	item.MarketValue = roundEmit(marketValue)
	item.FxRate = stlFx

	if b.Settings.WithExposure {
		item.ExposureLoc = item.MarketValueLoc
		item.Exposure = item.MarketValue
	}

	return item
}

func (b *BalanceReportBuilder) positionItem(g *balanceGroup, reportFx decimal.Decimal) ReportItem {
	item := b.newItem(g, types.ItemTypeInstrument)

	instrument := b.Universe.Instruments[g.key.instrumentID]
	price := b.Universe.Prices[g.key.instrumentID]

	principal := decimal.Zero
	accrued := decimal.Zero
	factor := decimal.Zero
	if price != nil {
		principal = price.PrincipalPrice
		accrued = price.AccruedPrice
		factor = price.Factor
	}

	nominal := g.size
	if !factor.IsZero() {
		nominal = g.size.Div(factor)
	}

	marketValueLoc := decimal.Zero
	exposureLoc := decimal.Zero
	pchFx := decimal.Zero
	if instrument != nil {
		pchFx = b.Universe.FxRateOf(instrument.PricingCurrencyID)
		achFx := b.Universe.FxRateOf(instrument.AccruedCurrencyID)

		principalLoc := g.size.Mul(principal).Mul(instrument.PriceMultiplier).Mul(pchFx)
		accruedLoc := g.size.Mul(accrued).Mul(achFx).Mul(instrument.AccruedMultiplier)
		marketValueLoc = principalLoc.Add(accruedLoc)

		if b.Settings.WithExposure {
			exposureLoc = exposure(instrument, price, g.size, principalLoc, marketValueLoc)
		}
	}

	marketValue := decimal.Zero
	exposureVal := decimal.Zero
	if !reportFx.IsZero() {
		marketValue = marketValueLoc.Div(reportFx)
		exposureVal = exposureLoc.Div(reportFx)
	}

	item.PositionSize = roundEmit(g.size)
	item.NominalPositionSize = roundEmit(nominal)
	item.MarketValueLoc = roundEmit(marketValueLoc)
	item.MarketValue = roundEmit(marketValue)
	item.FxRate = pchFx
	if b.Settings.WithExposure {
		item.ExposureLoc = roundEmit(exposureLoc)
		item.Exposure = roundEmit(exposureVal)
	}

	return item
}

// exposure derives the instrument exposure per its calculation model.
// Absent deltas count as zero.
func exposure(instrument *models.Instrument, price *models.PriceHistory, size, principalLoc, marketValueLoc decimal.Decimal) decimal.Decimal {
	longDelta := decimal.Zero
	shortDelta := decimal.Zero
	if price != nil {
		longDelta = price.LongDelta
		shortDelta = price.ShortDelta
	}

	switch instrument.ExposureCalculationModel {
	case types.ExposurePriceExposure:
		return principalLoc
	case types.ExposureDeltaAdjusted:
		long := principalLoc.Mul(longDelta).Mul(instrument.UnderlyingLongMultiplier)
		short := principalLoc.Mul(shortDelta).Mul(instrument.UnderlyingShortMultiplier)
		return long.Sub(short)
	case types.ExposureUnderlyingLongShort:
		long := decimal.Zero
		short := decimal.Zero
		if instrument.LongUnderlyingExposure != "zero" {
			long = principalLoc.Mul(longDelta).Mul(instrument.UnderlyingLongMultiplier)
		}
		if instrument.ShortUnderlyingExposure != "zero" {
			short = principalLoc.Mul(shortDelta).Mul(instrument.UnderlyingShortMultiplier)
		}
		return long.Sub(short)
	default: // market value
		return marketValueLoc
	}
}

func (b *BalanceReportBuilder) newItem(g *balanceGroup, itemType types.ItemType) ReportItem {
	return ReportItem{
		ItemType:     itemType,
		PortfolioID:  g.key.portfolioID,
		AccountID:    g.key.accountID,
		Strategy1ID:  g.key.strategy1ID,
		Strategy2ID:  g.key.strategy2ID,
		Strategy3ID:  g.key.strategy3ID,
		AllocationID: g.key.allocationID,
		InstrumentID: g.key.instrumentID,
		CurrencyID:   g.key.currencyID,
	}
}

// roundEmit applies the emission rounding; intermediate sums stay
// unrounded.
func roundEmit(v decimal.Decimal) decimal.Decimal {
	return v.Round(config.RoundNDigits)
}

// sortItems orders rows by consolidation keys so equal inputs produce
// bit-identical reports.
func sortItems(items []ReportItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.ItemType != b.ItemType {
			return a.ItemType < b.ItemType
		}
		if a.PortfolioID != b.PortfolioID {
			return a.PortfolioID < b.PortfolioID
		}
		if a.AccountID != b.AccountID {
			return a.AccountID < b.AccountID
		}
		if a.Strategy1ID != b.Strategy1ID {
			return a.Strategy1ID < b.Strategy1ID
		}
		if a.Strategy2ID != b.Strategy2ID {
			return a.Strategy2ID < b.Strategy2ID
		}
		if a.Strategy3ID != b.Strategy3ID {
			return a.Strategy3ID < b.Strategy3ID
		}
		if a.AllocationID != b.AllocationID {
			return a.AllocationID < b.AllocationID
		}
		if a.InstrumentID != b.InstrumentID {
			return a.InstrumentID < b.InstrumentID
		}
		return a.CurrencyID < b.CurrencyID
	})
}
