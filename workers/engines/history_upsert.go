package engines

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/models"
)

func parseDate(value string) (time.Time, error) {
	return time.Parse(expression.DateLayout, value)
}

func upsertPrice(db *gorm.DB, instrumentID uint64, row simpleImportRow, date time.Time) error {
	existing := &models.PriceHistory{}
	err := db.Where("instrument_id = ? AND pricing_policy_id = ? AND date = ?",
		instrumentID, row.PricingPolicyID, date).First(existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.PriceHistory{
			InstrumentID:    instrumentID,
			PricingPolicyID: row.PricingPolicyID,
			Date:            date,
			PrincipalPrice:  decimal.NewFromFloat(row.PrincipalPrice),
			AccruedPrice:    decimal.NewFromFloat(row.AccruedPrice),
			Factor:          decimal.NewFromInt(1),
		}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(existing).Updates(map[string]interface{}{
		"principal_price": decimal.NewFromFloat(row.PrincipalPrice),
		"accrued_price":   decimal.NewFromFloat(row.AccruedPrice),
	}).Error
}

func upsertFx(db *gorm.DB, currencyID uint64, row simpleImportRow, date time.Time) error {
	existing := &models.CurrencyHistory{}
	err := db.Where("currency_id = ? AND pricing_policy_id = ? AND date = ?",
		currencyID, row.PricingPolicyID, date).First(existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.CurrencyHistory{
			CurrencyID:      currencyID,
			PricingPolicyID: row.PricingPolicyID,
			Date:            date,
			FxRate:          decimal.NewFromFloat(row.FxRate),
		}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(existing).Update("fx_rate", decimal.NewFromFloat(row.FxRate)).Error
}
