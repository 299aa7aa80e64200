package reports

import (
	"sort"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/shopspring/decimal"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// PLReportBuilder runs the balance algorithm over the date range
// [pl_first_date, report_date] and additionally computes realized
// components with the chosen cost method.
type PLReportBuilder struct {
	Settings ReportSettings
	Universe *Universe
}

func NewPLReportBuilder(settings ReportSettings, universe *Universe) *PLReportBuilder {
	return &PLReportBuilder{Settings: settings, Universe: universe}
}

// lot is one open cost layer of an instrument position.
type lot struct {
	size decimal.Decimal // always positive
	cost decimal.Decimal // total local cost of the lot
}

type plGroup struct {
	key          consolidationKey
	transactions []*models.Transaction
}

func (b *PLReportBuilder) Build() []ReportItem {
	groups := map[consolidationKey]*plGroup{}

	for _, trn := range b.Universe.Transactions {
		if !b.Settings.InUniverse(trn, b.Universe.ComplexTransactions) {
			continue
		}
		if b.Settings.PlFirstDate != nil && trn.AccountingDate.Before(*b.Settings.PlFirstDate) {
			continue
		}
		if !trn.IsPosition() && !trn.IsPL() {
			continue
		}

		for _, posting := range EffectivePostings(trn, b.Settings.ReportDate) {
			p := posting
			if p.ItemType != types.ItemTypeInstrument && !trn.IsPL() {
				continue
			}
			key := b.Settings.keyFor(&p, b.Universe.Tenant)
			group, ok := groups[key]
			if !ok {
				group = &plGroup{key: key}
				groups[key] = group
			}
			group.transactions = append(group.transactions, trn)
			break // realized components are per transaction, not per leg
		}
	}

	reportFx := b.Universe.FxRateOf(b.Settings.ReportCurrencyID)

	items := make([]ReportItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, b.plItem(g, reportFx))
	}

	sortItems(items)
	return items
}

func (b *PLReportBuilder) plItem(g *plGroup, reportFx decimal.Decimal) ReportItem {
	sort.SliceStable(g.transactions, func(i, j int) bool {
		a, b := g.transactions[i], g.transactions[j]
		if !a.AccountingDate.Equal(b.AccountingDate) {
			return a.AccountingDate.Before(b.AccountingDate)
		}
		return a.ID < b.ID
	})

	position := decimal.Zero
	costBasis := decimal.Zero
	realized := decimal.Zero
	carry := decimal.Zero
	overheads := decimal.Zero

	lots := linkedlistqueue.New()
	// AVCO folds all lots into one running average; FIFO consumes in
	// arrival order.
	avco := b.Settings.CostMethod != types.CostMethodFifo

	for _, trn := range g.transactions {
		carry = carry.Add(trn.CarryWithSign)
		overheads = overheads.Add(trn.OverheadsWithSign)

		if trn.IsPL() {
			realized = realized.Add(trn.CashConsideration)
			continue
		}

		size := trn.PositionSizeWithSign
		if size.IsZero() {
			continue
		}

		if size.IsPositive() {
			cost := trn.PrincipalWithSign.Neg() // buy principal is negative cash
			if avco {
				position = position.Add(size)
				costBasis = costBasis.Add(cost)
			} else {
				lots.Enqueue(&lot{size: size, cost: cost})
				position = position.Add(size)
				costBasis = costBasis.Add(cost)
			}
			continue
		}

		// disposal
		sold := size.Neg()
		proceeds := trn.PrincipalWithSign // sell principal is positive cash

		var consumed decimal.Decimal
		if avco {
			if !position.IsZero() {
				consumed = costBasis.Mul(sold).Div(position)
			}
		} else {
			remaining := sold
			for !remaining.IsZero() {
				front, ok := lots.Peek()
				if !ok {
					break
				}
				l := front.(*lot)
				if l.size.LessThanOrEqual(remaining) {
					consumed = consumed.Add(l.cost)
					remaining = remaining.Sub(l.size)
					lots.Dequeue()
				} else {
					part := l.cost.Mul(remaining).Div(l.size)
					consumed = consumed.Add(part)
					l.cost = l.cost.Sub(part)
					l.size = l.size.Sub(remaining)
					remaining = decimal.Zero
				}
			}
		}

		realized = realized.Add(proceeds.Sub(consumed))
		position = position.Sub(sold)
		costBasis = costBasis.Sub(consumed)
	}

	item := ReportItem{
		ItemType:     types.ItemTypeInstrument,
		PortfolioID:  g.key.portfolioID,
		AccountID:    g.key.accountID,
		Strategy1ID:  g.key.strategy1ID,
		Strategy2ID:  g.key.strategy2ID,
		Strategy3ID:  g.key.strategy3ID,
		AllocationID: g.key.allocationID,
		InstrumentID: g.key.instrumentID,
		CurrencyID:   g.key.currencyID,
	}

	marketValueLoc := decimal.Zero
	instrument := b.Universe.Instruments[g.key.instrumentID]
	price := b.Universe.Prices[g.key.instrumentID]
	if instrument != nil && price != nil {
		pchFx := b.Universe.FxRateOf(instrument.PricingCurrencyID)
		achFx := b.Universe.FxRateOf(instrument.AccruedCurrencyID)
		marketValueLoc = position.Mul(price.PrincipalPrice).Mul(instrument.PriceMultiplier).Mul(pchFx).
			Add(position.Mul(price.AccruedPrice).Mul(achFx).Mul(instrument.AccruedMultiplier))
	}

	costPriceLoc := decimal.Zero
	if !position.IsZero() {
		costPriceLoc = costBasis.Div(position)
	}

	unrealized := marketValueLoc.Sub(costBasis)
	total := realized.Add(unrealized).Add(carry).Add(overheads)

	item.PositionSize = roundEmit(position)
	item.NominalPositionSize = roundEmit(position)
	item.MarketValueLoc = roundEmit(marketValueLoc)
	if !reportFx.IsZero() {
		item.MarketValue = roundEmit(marketValueLoc.Div(reportFx))
		item.TotalPL = roundEmit(total.Div(reportFx))
	}
	item.CostPriceLoc = roundEmit(costPriceLoc)
	item.Carry = roundEmit(carry)
	item.Overheads = roundEmit(overheads)
	item.RealizedPL = roundEmit(realized)
	item.UnrealizedPL = roundEmit(unrealized)

	return item
}
