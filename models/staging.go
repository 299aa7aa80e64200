package models

import (
	"time"

	"github.com/volatiletech/null"

	"github.com/finastack/folio/types"
)

// Staging rows hold raw per-provider results between the gateway
// response and pricing-scheme evaluation. They are keyed by
// (tenant, procedure instance, reference, parameters, date) and deleted
// once the window is processed.
type StagingKey struct {
	TenantID            uint64    `json:"tenant_id" gorm:"index:,unique,composite:staging_key"`
	ProcedureInstanceID uint64    `json:"procedure_instance_id" gorm:"index:,unique,composite:staging_key"`
	Reference           string    `json:"reference" gorm:"index:,unique,composite:staging_key"`
	Parameters          string    `json:"parameters" gorm:"index:,unique,composite:staging_key"`
	Date                time.Time `json:"date" gorm:"type:date;index:,unique,composite:staging_key"`
}

type BloombergInstrumentResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Ask          null.Float64 `json:"ask"`
	Bid          null.Float64 `json:"bid"`
	Last         null.Float64 `json:"last"`
	Accrual      null.Float64 `json:"accrual"`
	AskError     null.String  `json:"ask_error"`
	BidError     null.String  `json:"bid_error"`
	LastError    null.String  `json:"last_error"`
	AccrualError null.String  `json:"accrual_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BloombergCurrencyResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Ask       null.Float64 `json:"ask"`
	Bid       null.Float64 `json:"bid"`
	Last      null.Float64 `json:"last"`
	AskError  null.String  `json:"ask_error"`
	BidError  null.String  `json:"bid_error"`
	LastError null.String  `json:"last_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BloombergForwardsResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Last      null.Float64 `json:"last"`
	Weight    null.Float64 `json:"weight"`
	LastError null.String  `json:"last_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WtradeResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Open        null.Float64 `json:"open"`
	Close       null.Float64 `json:"close"`
	High        null.Float64 `json:"high"`
	Low         null.Float64 `json:"low"`
	Volume      null.Float64 `json:"volume"`
	OpenError   null.String  `json:"open_error"`
	CloseError  null.String  `json:"close_error"`
	HighError   null.String  `json:"high_error"`
	LowError    null.String  `json:"low_error"`
	VolumeError null.String  `json:"volume_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FixerResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Close      null.Float64 `json:"close"`
	CloseError null.String  `json:"close_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AlphavResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Close      null.Float64 `json:"close"`
	CloseError null.String  `json:"close_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CbondsInstrumentResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Open        null.Float64 `json:"open"`
	Close       null.Float64 `json:"close"`
	High        null.Float64 `json:"high"`
	Low         null.Float64 `json:"low"`
	Volume      null.Float64 `json:"volume"`
	Accrual     null.Float64 `json:"accrual"`
	OpenError   null.String  `json:"open_error"`
	CloseError  null.String  `json:"close_error"`
	HighError   null.String  `json:"high_error"`
	LowError    null.String  `json:"low_error"`
	VolumeError null.String  `json:"volume_error"`
	AccrualError null.String `json:"accrual_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CbondsCurrencyResult struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	StagingKey `gorm:"embedded"`

	Open       null.Float64 `json:"open"`
	Close      null.Float64 `json:"close"`
	High       null.Float64 `json:"high"`
	Low        null.Float64 `json:"low"`
	OpenError  null.String  `json:"open_error"`
	CloseError null.String  `json:"close_error"`
	HighError  null.String  `json:"high_error"`
	LowError   null.String  `json:"low_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StagingModelFor maps a provider onto its staging entity; the set of
// providers is closed.
func StagingModelFor(provider types.PricingProvider) interface{} {
	switch provider {
	case types.ProviderBloombergInstrument:
		return &BloombergInstrumentResult{}
	case types.ProviderBloombergCurrency:
		return &BloombergCurrencyResult{}
	case types.ProviderBloombergForwards:
		return &BloombergForwardsResult{}
	case types.ProviderWtrade:
		return &WtradeResult{}
	case types.ProviderFixer:
		return &FixerResult{}
	case types.ProviderAlphav:
		return &AlphavResult{}
	case types.ProviderCbondsInstrument:
		return &CbondsInstrumentResult{}
	case types.ProviderCbondsCurrency:
		return &CbondsCurrencyResult{}
	}
	return nil
}
