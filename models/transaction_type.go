package models

import (
	"time"

	"github.com/finastack/folio/models/datatypes"
)

type InputValueType = string

var (
	InputValueNumber   InputValueType = "number"
	InputValueString   InputValueType = "string"
	InputValueDate     InputValueType = "date"
	InputValueRelation InputValueType = "relation"
)

type ActionKind = string

var (
	ActionKindTransaction                ActionKind = "transaction"
	ActionKindInstrument                 ActionKind = "instrument"
	ActionKindFactorSchedule             ActionKind = "instrument_factor_schedule"
	ActionKindAccrualSchedule            ActionKind = "instrument_accrual_calculation_schedule"
	ActionKindEventSchedule              ActionKind = "instrument_event_schedule"
	ActionKindEventScheduleAction        ActionKind = "instrument_event_schedule_action"
	ActionKindManualPricingFormula       ActionKind = "instrument_manual_pricing_formula"
)

// TransactionType is the reusable booking template: ordered typed
// inputs, ordered rewrite actions, and a booking layout.
type TransactionType struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	GroupUserCode          *string `json:"group"`
	DisplayExpr            *string `json:"display_expr"`
	TransactionUniqueCodeExpr *string `json:"transaction_unique_code_expr"`
	BookTransactionLayoutName *string `json:"book_transaction_layout_name"`
	IsValidForAllPortfolios   bool    `json:"is_valid_for_all_portfolios" gorm:"default:true"`
	IsValidForAllInstruments  bool    `json:"is_valid_for_all_instruments" gorm:"default:true"`
	VisibilityStatus          int32   `json:"visibility_status" gorm:"default:1"`

	Inputs  []TransactionTypeInput  `json:"inputs" gorm:"foreignKey:TransactionTypeID"`
	Actions []TransactionTypeAction `json:"actions" gorm:"foreignKey:TransactionTypeID"`
}

type TransactionTypeInput struct {
	ID                uint64         `json:"id" gorm:"primaryKey"`
	TransactionTypeID uint64         `json:"transaction_type_id" gorm:"index"`
	Name              string         `json:"name"`
	VerboseName       *string        `json:"verbose_name"`
	ValueType         InputValueType `json:"value_type" gorm:"default:string"`
	ContentType       *string        `json:"content_type"`
	IsFill            bool           `json:"is_fill" gorm:"default:true"`
	ValueExpr         *string        `json:"value_expr"`
	Order             int32          `json:"order" gorm:"default:0"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TransactionTypeAction carries field expressions keyed by the target
// column name. A field expression can reference prior action results
// through the "actions" name visible during booking.
type TransactionTypeAction struct {
	ID                uint64     `json:"id" gorm:"primaryKey"`
	TransactionTypeID uint64     `json:"transaction_type_id" gorm:"index"`
	Order             int32      `json:"order" gorm:"default:0"`
	Kind              ActionKind `json:"kind" gorm:"default:transaction"`
	ConditionExpr     *string    `json:"condition_expr"`
	TransactionClass  int32      `json:"transaction_class" gorm:"default:0"`
	Fields            datatypes.FieldMap `json:"fields" gorm:"type:jsonb"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
