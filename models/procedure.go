package models

import "time"

type ProcedureStatus = string

var (
	ProcedureStatusInit     ProcedureStatus = "I"
	ProcedureStatusPending  ProcedureStatus = "P"
	ProcedureStatusDone     ProcedureStatus = "D"
	ProcedureStatusError    ProcedureStatus = "E"
	ProcedureStatusCanceled ProcedureStatus = "C"
)

// TerminalProcedureStatus reports statuses no transition may leave;
// instance statuses are monotonic so task replays stay idempotent.
func TerminalProcedureStatus(s ProcedureStatus) bool {
	return s == ProcedureStatusDone || s == ProcedureStatusError || s == ProcedureStatusCanceled
}

// PricingProcedure fills PriceHistory / CurrencyHistory for a window of
// dates from one provider, per the configured schemes.
type PricingProcedure struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`

	PricingPolicyID *uint64 `json:"pricing_policy_id"`
	PortfolioID     *uint64 `json:"portfolio_id"`

	PriceDateFrom     *time.Time `json:"price_date_from" gorm:"type:date"`
	PriceDateTo       *time.Time `json:"price_date_to" gorm:"type:date"`
	PriceDateFromExpr *string    `json:"price_date_from_expr"`
	PriceDateToExpr   *string    `json:"price_date_to_expr"`
	PriceFillDays     int32      `json:"price_fill_days" gorm:"default:0"`

	PriceGetPrincipalPrices bool `json:"price_get_principal_prices" gorm:"default:true"`
	PriceGetAccruedPrices   bool `json:"price_get_accrued_prices" gorm:"default:true"`
	PriceGetFxRates         bool `json:"price_get_fx_rates" gorm:"default:true"`

	PriceOverwritePrincipalPrices bool `json:"price_overwrite_principal_prices" gorm:"default:false"`
	PriceOverwriteAccruedPrices   bool `json:"price_overwrite_accrued_prices" gorm:"default:false"`
	PriceOverwriteFxRates         bool `json:"price_overwrite_fx_rates" gorm:"default:false"`

	InstrumentTypeFilters *string `json:"instrument_type_filters"`
	InstrumentFilters     *string `json:"instrument_filters"`
	CurrencyFilters       *string `json:"currency_filters"`
	PricingSchemeFilters  *string `json:"pricing_scheme_filters"`
	PricingConditionFilters *string `json:"pricing_condition_filters"`
}

type PricingProcedureInstance struct {
	ID          uint64          `json:"id" gorm:"primaryKey"`
	TenantID    uint64          `json:"tenant_id" gorm:"index"`
	ProcedureID uint64          `json:"procedure_id" gorm:"index"`
	Status      ProcedureStatus `json:"status" gorm:"default:I"`
	ScheduleInstanceID *uint64  `json:"schedule_instance_id"`

	EffectiveDateFrom *time.Time `json:"effective_date_from" gorm:"type:date"`
	EffectiveDateTo   *time.Time `json:"effective_date_to" gorm:"type:date"`

	SuccessfulPricesCount int64   `json:"successful_prices_count" gorm:"default:0"`
	ErrorPricesCount      int64   `json:"error_prices_count" gorm:"default:0"`
	ErrorMessage          *string `json:"error_message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestDataFileProcedure asks a named provider for a data file which
// comes back asynchronously on the callback URL.
type RequestDataFileProcedure struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`

	Provider     string  `json:"provider"`
	SchemeName   string  `json:"scheme_name"`
	SchemeType   string  `json:"scheme_type" gorm:"default:transaction_import"`
	DateFrom     *time.Time `json:"date_from" gorm:"type:date"`
	DateTo       *time.Time `json:"date_to" gorm:"type:date"`
	DateFromExpr *string `json:"date_from_expr"`
	DateToExpr   *string `json:"date_to_expr"`
}

type RequestDataFileProcedureInstance struct {
	ID          uint64          `json:"id" gorm:"primaryKey"`
	TenantID    uint64          `json:"tenant_id" gorm:"index"`
	ProcedureID uint64          `json:"procedure_id" gorm:"index"`
	Status      ProcedureStatus `json:"status" gorm:"default:I"`
	ScheduleInstanceID *uint64  `json:"schedule_instance_id"`

	RequestID     string  `json:"request_id" gorm:"index"`
	PublicKey     string  `json:"public_key"`
	PrivateKey    string  `json:"private_key"`
	RequestData   *string `json:"request_data"`
	ResponseData  *string `json:"response_data"`
	LinkedTaskID  *uint64 `json:"linked_task_id"`
	ErrorMessage  *string `json:"error_message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpressionProcedure runs user code under the evaluator with context
// variables resolved first.
type ExpressionProcedure struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	Code        string `json:"code"`

	ContextVariables []ExpressionProcedureContextVariable `json:"context_variables" gorm:"foreignKey:ProcedureID"`
}

type ExpressionProcedureContextVariable struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	ProcedureID uint64    `json:"procedure_id" gorm:"index"`
	Order       int32     `json:"order" gorm:"default:0"`
	Name        string    `json:"name"`
	Expression  string    `json:"expression"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ExpressionProcedureInstance struct {
	ID          uint64          `json:"id" gorm:"primaryKey"`
	TenantID    uint64          `json:"tenant_id" gorm:"index"`
	ProcedureID uint64          `json:"procedure_id" gorm:"index"`
	Status      ProcedureStatus `json:"status" gorm:"default:I"`
	ScheduleInstanceID *uint64  `json:"schedule_instance_id"`
	Notes       *string         `json:"notes"`
	Result      *string         `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
