package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency struct {
	ID                  uint64  `json:"id" gorm:"primaryKey"`
	NamedEntity         `gorm:"embedded"`
	ReferenceForPricing *string `json:"reference_for_pricing"`
	PricingConditionID  uint64  `json:"pricing_condition_id" gorm:"default:0"`
	DefaultFxRate       decimal.Decimal `json:"default_fx_rate" gorm:"default:1.0"`
	CountryID           *uint64 `json:"country_id"`
}

// CurrencyHistory is one fx-rate observation. The tenant default
// currency is implicitly 1.0 for every date and must never be stored.
type CurrencyHistory struct {
	ID              uint64          `json:"id" gorm:"primaryKey"`
	CurrencyID      uint64          `json:"currency_id" gorm:"index:,unique,composite:currency_history_key"`
	PricingPolicyID uint64          `json:"pricing_policy_id" gorm:"index:,unique,composite:currency_history_key"`
	Date            time.Time       `json:"date" gorm:"type:date;index:,unique,composite:currency_history_key"`
	FxRate          decimal.Decimal `json:"fx_rate"`
	ProcedureModifiedDatetime *time.Time `json:"procedure_modified_datetime"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
