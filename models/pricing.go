package models

import (
	"time"

	"github.com/finastack/folio/types"
)

type PricingPolicy struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	ExprText    *string `json:"expr"`
	DefaultInstrumentPricingSchemeID *uint64 `json:"default_instrument_pricing_scheme_id"`
	DefaultCurrencyPricingSchemeID   *uint64 `json:"default_currency_pricing_scheme_id"`
}

// PricingSchemeParameters is the parameter bundle shared by instrument
// and currency schemes: how to turn raw provider fields into numbers.
type PricingSchemeParameters struct {
	Expr                     string                         `json:"expr"`
	AccrualExpr              *string                        `json:"accrual_expr"`
	ErrorTextExpr            *string                        `json:"error_text_expr"`
	AccrualCalculationMethod types.AccrualCalculationMethod `json:"accrual_calculation_method" gorm:"default:none"`
}

type InstrumentPricingScheme struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	Provider    types.PricingProvider   `json:"provider"`
	Parameters  PricingSchemeParameters `json:"parameters" gorm:"embedded;embeddedPrefix:param_"`
}

type CurrencyPricingScheme struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	Provider    types.PricingProvider   `json:"provider"`
	Parameters  PricingSchemeParameters `json:"parameters" gorm:"embedded;embeddedPrefix:param_"`
}

type HistoryErrorStatus = string

var (
	HistoryErrorStatusError       HistoryErrorStatus = "E"
	HistoryErrorStatusSkip        HistoryErrorStatus = "S"
	HistoryErrorStatusCreated     HistoryErrorStatus = "C"
	HistoryErrorStatusOverwritten HistoryErrorStatus = "O"
	HistoryErrorStatusRequested   HistoryErrorStatus = "R"
)

// PriceHistoryError journals every pricing attempt, successful or not.
// Exactly one row is written per staged row per run.
type PriceHistoryError struct {
	ID                 uint64             `json:"id" gorm:"primaryKey"`
	TenantID           uint64             `json:"tenant_id" gorm:"index"`
	InstrumentID       uint64             `json:"instrument_id" gorm:"index"`
	PricingPolicyID    uint64             `json:"pricing_policy_id"`
	PricingProcedureInstanceID *uint64    `json:"pricing_procedure_instance_id"`
	Date               time.Time          `json:"date" gorm:"type:date"`
	Status             HistoryErrorStatus `json:"status" gorm:"default:E"`
	PrincipalPrice     *float64           `json:"principal_price"`
	AccruedPrice       *float64           `json:"accrued_price"`
	Text               string             `json:"text"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type CurrencyHistoryError struct {
	ID                 uint64             `json:"id" gorm:"primaryKey"`
	TenantID           uint64             `json:"tenant_id" gorm:"index"`
	CurrencyID         uint64             `json:"currency_id" gorm:"index"`
	PricingPolicyID    uint64             `json:"pricing_policy_id"`
	PricingProcedureInstanceID *uint64    `json:"pricing_procedure_instance_id"`
	Date               time.Time          `json:"date" gorm:"type:date"`
	Status             HistoryErrorStatus `json:"status" gorm:"default:E"`
	FxRate             *float64           `json:"fx_rate"`
	Text               string             `json:"text"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
