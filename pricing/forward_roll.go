package pricing

import (
	"fmt"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"github.com/finastack/folio/models"
)

// forwardFill is one planned gap fill: the missing date and the row
// whose prices carry forward onto it.
type forwardFill struct {
	date   time.Time
	source *models.PriceHistory
}

// planForwardFills walks every day of [from, to] and picks, for each
// date without a row, the latest earlier row. A fill never reaches more
// than fillDays past its source date, and filled dates never serve as
// sources themselves.
func planForwardFills(rows []*models.PriceHistory, from, to time.Time, fillDays int) []forwardFill {
	index := treemap.NewWith(utils.TimeComparator)
	for _, row := range rows {
		index.Put(row.Date, row)
	}

	fills := []forwardFill{}
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		if _, exists := index.Get(date); exists {
			continue
		}
		floorKey, floorValue := index.Floor(date)
		if floorKey == nil {
			continue // nothing earlier to roll forward
		}
		source := floorValue.(*models.PriceHistory)
		if source.IsEmpty() {
			continue
		}
		if daysBetween(floorKey.(time.Time), date) > fillDays {
			continue
		}
		fills = append(fills, forwardFill{date: date, source: source})
	}
	return fills
}

// ForwardRollInstrument fills pricing gaps by carrying the last known
// price forward. The roll covers the procedure window plus the
// price_fill_days days after its end, so the last priced date keeps a
// row on every one of the following price_fill_days days. Filled rows
// are journaled like any other created price.
func (p *Pipeline) ForwardRollInstrument(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, instrumentID, policyID uint64) error {
	from, to := p.rollWindow(procedure, instance)
	rollEnd := to.AddDate(0, 0, int(procedure.PriceFillDays))

	var rows []models.PriceHistory
	if err := p.db.
		Where("instrument_id = ? AND pricing_policy_id = ? AND date <= ?", instrumentID, policyID, rollEnd).
		Order("date").Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	existing := make([]*models.PriceHistory, len(rows))
	for i := range rows {
		existing[i] = &rows[i]
	}

	for _, fill := range planForwardFills(existing, from, rollEnd, int(procedure.PriceFillDays)) {
		now := time.Now().UTC()
		filled := &models.PriceHistory{
			InstrumentID:              instrumentID,
			PricingPolicyID:           policyID,
			Date:                      fill.date,
			PrincipalPrice:            fill.source.PrincipalPrice,
			AccruedPrice:              fill.source.AccruedPrice,
			Factor:                    fill.source.Factor,
			Ytm:                       fill.source.Ytm,
			LongDelta:                 fill.source.LongDelta,
			ShortDelta:                fill.source.ShortDelta,
			ProcedureModifiedDatetime: &now,
		}
		if err := p.db.Create(filled).Error; err != nil {
			if models.IsUniqueViolation(err) {
				continue // raced with a concurrent run for the same date
			}
			return err
		}

		principal, _ := filled.PrincipalPrice.Float64()
		accrued, _ := filled.AccruedPrice.Float64()
		journal := &models.PriceHistoryError{
			TenantID:                   tenant.ID,
			InstrumentID:               instrumentID,
			PricingPolicyID:            policyID,
			PricingProcedureInstanceID: &instance.ID,
			Date:                       fill.date,
			Status:                     models.HistoryErrorStatusCreated,
			PrincipalPrice:             &principal,
			AccruedPrice:               &accrued,
			Text: fmt.Sprintf("forward filled from %s",
				fill.source.Date.Format("2006-01-02")),
		}
		if err := p.db.Create(journal).Error; err != nil {
			return err
		}
		instance.SuccessfulPricesCount++
	}

	return nil
}

func (p *Pipeline) rollWindow(procedure *models.PricingProcedure, instance *models.PricingProcedureInstance) (time.Time, time.Time) {
	if instance.EffectiveDateFrom != nil && instance.EffectiveDateTo != nil {
		return *instance.EffectiveDateFrom, *instance.EffectiveDateTo
	}
	return p.DateWindow(procedure, time.Now().UTC())
}
