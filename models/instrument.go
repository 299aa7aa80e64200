package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finastack/folio/types"
)

type InstrumentClass int32

const (
	InstrumentClassGeneral    InstrumentClass = 1
	InstrumentClassStock      InstrumentClass = 2
	InstrumentClassBond       InstrumentClass = 3
	InstrumentClassDerivative InstrumentClass = 4
)

// InstrumentType carries the event templates: each template is a
// TransactionType id the event scheduler books through.
type InstrumentType struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	InstrumentClass InstrumentClass `json:"instrument_class" gorm:"default:1"`

	OneOffEventID    *uint64 `json:"one_off_event_id"`
	RegularEventID   *uint64 `json:"regular_event_id"`
	FactorSameID     *uint64 `json:"factor_same_id"`
	FactorUpID       *uint64 `json:"factor_up_id"`
	FactorDownID     *uint64 `json:"factor_down_id"`
}

type Instrument struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`

	InstrumentTypeID  uint64          `json:"instrument_type_id" gorm:"index"`
	PricingCurrencyID uint64          `json:"pricing_currency_id"`
	AccruedCurrencyID uint64          `json:"accrued_currency_id"`
	PriceMultiplier   decimal.Decimal `json:"price_multiplier" gorm:"default:1.0"`
	AccruedMultiplier decimal.Decimal `json:"accrued_multiplier" gorm:"default:1.0"`

	CoDirectionalExposureCurrencyID      uint64          `json:"co_directional_exposure_currency_id"`
	CounterDirectionalExposureCurrencyID uint64          `json:"counter_directional_exposure_currency_id"`
	ExposureCalculationModel             types.ExposureCalculationModel `json:"exposure_calculation_model" gorm:"default:market_value"`
	UnderlyingLongMultiplier             decimal.Decimal `json:"underlying_long_multiplier" gorm:"default:1.0"`
	UnderlyingShortMultiplier            decimal.Decimal `json:"underlying_short_multiplier" gorm:"default:1.0"`
	LongUnderlyingInstrumentID           *uint64         `json:"long_underlying_instrument_id"`
	ShortUnderlyingInstrumentID          *uint64         `json:"short_underlying_instrument_id"`
	LongUnderlyingExposure               string          `json:"long_underlying_exposure" gorm:"default:zero"`
	ShortUnderlyingExposure              string          `json:"short_underlying_exposure" gorm:"default:zero"`

	MaturityDate  *time.Time      `json:"maturity_date" gorm:"type:date"`
	MaturityPrice decimal.Decimal `json:"maturity_price" gorm:"default:0.0"`

	ReferenceForPricing *string `json:"reference_for_pricing"`
	PricingConditionID  uint64  `json:"pricing_condition_id" gorm:"default:0"`

	// user-authored override applied instead of the scheme expr
	ManualPricingFormula *string `json:"manual_pricing_formula"`
}

// PriceHistory is one price observation. A row with both prices zero is
/// "empty": it is journaled as an error, never served as a price.
type PriceHistory struct {
	ID              uint64          `json:"id" gorm:"primaryKey"`
	InstrumentID    uint64          `json:"instrument_id" gorm:"index:,unique,composite:price_history_key"`
	PricingPolicyID uint64          `json:"pricing_policy_id" gorm:"index:,unique,composite:price_history_key"`
	Date            time.Time       `json:"date" gorm:"type:date;index:,unique,composite:price_history_key"`
	PrincipalPrice  decimal.Decimal `json:"principal_price"`
	AccruedPrice    decimal.Decimal `json:"accrued_price"`
	Factor          decimal.Decimal `json:"factor" gorm:"default:1.0"`
	Ytm             decimal.Decimal `json:"ytm"`
	LongDelta       decimal.Decimal `json:"long_delta"`
	ShortDelta      decimal.Decimal `json:"short_delta"`
	ProcedureModifiedDatetime *time.Time `json:"procedure_modified_datetime"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *PriceHistory) IsEmpty() bool {
	return p.PrincipalPrice.IsZero() && p.AccruedPrice.IsZero()
}

// AccrualCalculationSchedule drives PER_SCHEDULE accrued prices.
type AccrualCalculationSchedule struct {
	ID                    uint64          `json:"id" gorm:"primaryKey"`
	InstrumentID          uint64          `json:"instrument_id" gorm:"index"`
	AccrualStartDate      time.Time       `json:"accrual_start_date" gorm:"type:date"`
	FirstPaymentDate      time.Time       `json:"first_payment_date" gorm:"type:date"`
	AccrualSize           decimal.Decimal `json:"accrual_size"`
	PeriodicityN          int32           `json:"periodicity_n" gorm:"default:1"`
	AccrualCalculationModel string        `json:"accrual_calculation_model" gorm:"default:day_count_actual_360"`
	Notes                 *string         `json:"notes"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// InstrumentFactorSchedule rescales position sizes from EffectiveDate.
type InstrumentFactorSchedule struct {
	ID            uint64          `json:"id" gorm:"primaryKey"`
	InstrumentID  uint64          `json:"instrument_id" gorm:"index"`
	EffectiveDate time.Time       `json:"effective_date" gorm:"type:date"`
	FactorValue   decimal.Decimal `json:"factor_value" gorm:"default:1.0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EventSchedule describes a future instrument event; its actions book
// through the transaction type named by the instrument-type template.
type EventSchedule struct {
	ID             uint64     `json:"id" gorm:"primaryKey"`
	InstrumentID   uint64     `json:"instrument_id" gorm:"index"`
	EventClass     string     `json:"event_class" gorm:"default:one_off"`
	EffectiveDate  time.Time  `json:"effective_date" gorm:"type:date"`
	FinalDate      *time.Time `json:"final_date" gorm:"type:date"`
	NotificationDate *time.Time `json:"notification_date" gorm:"type:date"`
	PeriodicityN   int32      `json:"periodicity_n" gorm:"default:0"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	IsAutoGenerated bool      `json:"is_auto_generated" gorm:"default:false"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type EventScheduleAction struct {
	ID                 uint64  `json:"id" gorm:"primaryKey"`
	EventScheduleID    uint64  `json:"event_schedule_id" gorm:"index"`
	TransactionTypeID  uint64  `json:"transaction_type_id"`
	Text               string  `json:"text"`
	IsBookAutomatic    bool    `json:"is_book_automatic" gorm:"default:false"`
	ButtonPosition     int32   `json:"button_position" gorm:"default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
