package lookups

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/models"
)

// DB implements the evaluator's lookup surface against the domain
// model, scoped to one tenant and pricing policy.
type DB struct {
	TenantID        uint64
	PricingPolicyID uint64
}

func New(tenantID, pricingPolicyID uint64) *DB {
	return &DB{TenantID: tenantID, PricingPolicyID: pricingPolicyID}
}

func (l *DB) FxRate(currencyUserCode string, date time.Time) (float64, error) {
	currency := &models.Currency{}
	if err := config.DataBase.
		First(currency, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			l.TenantID, currencyUserCode).Error; err != nil {
		return 0, fmt.Errorf("currency %q: %w", currencyUserCode, err)
	}

	row := &models.CurrencyHistory{}
	if err := config.DataBase.
		Where("currency_id = ? AND pricing_policy_id = ? AND date = ?",
			currency.ID, l.PricingPolicyID, date).
		First(row).Error; err != nil {
		return 0, fmt.Errorf("fx rate %q at %s: %w",
			currencyUserCode, date.Format("2006-01-02"), err)
	}
	rate, _ := row.FxRate.Float64()
	return rate, nil
}

func (l *DB) Price(instrumentUserCode string, date time.Time) (float64, error) {
	row, err := l.priceRow(instrumentUserCode, date)
	if err != nil {
		return 0, err
	}
	price, _ := row.PrincipalPrice.Float64()
	return price, nil
}

func (l *DB) AccruedPrice(instrumentUserCode string, date time.Time) (float64, error) {
	row, err := l.priceRow(instrumentUserCode, date)
	if err != nil {
		return 0, err
	}
	price, _ := row.AccruedPrice.Float64()
	return price, nil
}

func (l *DB) priceRow(instrumentUserCode string, date time.Time) (*models.PriceHistory, error) {
	instrument := &models.Instrument{}
	if err := config.DataBase.
		First(instrument, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			l.TenantID, instrumentUserCode).Error; err != nil {
		return nil, fmt.Errorf("instrument %q: %w", instrumentUserCode, err)
	}

	row := &models.PriceHistory{}
	if err := config.DataBase.
		Where("instrument_id = ? AND pricing_policy_id = ? AND date = ?",
			instrument.ID, l.PricingPolicyID, date).
		First(row).Error; err != nil {
		return nil, fmt.Errorf("price %q at %s: %w",
			instrumentUserCode, date.Format("2006-01-02"), err)
	}
	return row, nil
}

// GenerateUserCode yields a fresh code under the given prefix. The
// suffix is random, collisions are caught by the partial unique index
// and retried by the caller.
func (l *DB) GenerateUserCode(prefix string) (string, error) {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	if prefix == "" {
		return suffix, nil
	}
	return prefix + "_" + suffix, nil
}
