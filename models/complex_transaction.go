package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ComplexTransactionStatus int32

const (
	StatusBooked  ComplexTransactionStatus = 1
	StatusPending ComplexTransactionStatus = 2
	StatusIgnored ComplexTransactionStatus = 3
)

const (
	ShowParameters int32 = 1
	HideParameters int32 = 2
)

// ComplexTransaction is one application of a TransactionType. Only a
// BOOKED, not-deleted, not-canceled complex transaction contributes
// postings to balance and P&L reports.
type ComplexTransaction struct {
	ID                           uint64                   `json:"id" gorm:"primaryKey"`
	TenantID                     uint64                   `json:"tenant_id" gorm:"index" validate:"required"`
	OwnerID                      uint64                   `json:"owner_id"`
	TransactionTypeID            uint64                   `json:"transaction_type_id" gorm:"index" validate:"required"`
	Date                         time.Time                `json:"date" gorm:"type:date;index"`
	Status                       ComplexTransactionStatus `json:"status" gorm:"default:1;index"`
	VisibilityStatus             int32                    `json:"visibility_status" gorm:"default:1"`
	Code                         int64                    `json:"code" gorm:"index"`
	TransactionUniqueCode        *string                  `json:"transaction_unique_code" gorm:"index"`
	DeletedTransactionUniqueCode *string                  `json:"deleted_transaction_unique_code"`
	Text                         *string                  `json:"text"`
	IsDeleted                    bool                     `json:"is_deleted" gorm:"default:false;index"`
	IsLocked                     bool                     `json:"is_locked" gorm:"default:false"`
	IsCanceled                   bool                     `json:"is_canceled" gorm:"default:false"`
	ErrorCode                    *int32                   `json:"error_code"`

	UserText   UserTextFields   `json:"user_text" gorm:"embedded"`
	UserNumber UserNumberFields `json:"user_number" gorm:"embedded"`
	UserDate   UserDateFields   `json:"user_date" gorm:"embedded"`

	Inputs       []ComplexTransactionInput `json:"inputs" gorm:"foreignKey:ComplexTransactionID"`
	Transactions []Transaction             `json:"transactions" gorm:"foreignKey:ComplexTransactionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// twenty text, twenty number, five date user slots

type UserTextFields struct {
	UserText1  *string `json:"user_text_1"`
	UserText2  *string `json:"user_text_2"`
	UserText3  *string `json:"user_text_3"`
	UserText4  *string `json:"user_text_4"`
	UserText5  *string `json:"user_text_5"`
	UserText6  *string `json:"user_text_6"`
	UserText7  *string `json:"user_text_7"`
	UserText8  *string `json:"user_text_8"`
	UserText9  *string `json:"user_text_9"`
	UserText10 *string `json:"user_text_10"`
	UserText11 *string `json:"user_text_11"`
	UserText12 *string `json:"user_text_12"`
	UserText13 *string `json:"user_text_13"`
	UserText14 *string `json:"user_text_14"`
	UserText15 *string `json:"user_text_15"`
	UserText16 *string `json:"user_text_16"`
	UserText17 *string `json:"user_text_17"`
	UserText18 *string `json:"user_text_18"`
	UserText19 *string `json:"user_text_19"`
	UserText20 *string `json:"user_text_20"`
}

type UserNumberFields struct {
	UserNumber1  *decimal.Decimal `json:"user_number_1"`
	UserNumber2  *decimal.Decimal `json:"user_number_2"`
	UserNumber3  *decimal.Decimal `json:"user_number_3"`
	UserNumber4  *decimal.Decimal `json:"user_number_4"`
	UserNumber5  *decimal.Decimal `json:"user_number_5"`
	UserNumber6  *decimal.Decimal `json:"user_number_6"`
	UserNumber7  *decimal.Decimal `json:"user_number_7"`
	UserNumber8  *decimal.Decimal `json:"user_number_8"`
	UserNumber9  *decimal.Decimal `json:"user_number_9"`
	UserNumber10 *decimal.Decimal `json:"user_number_10"`
	UserNumber11 *decimal.Decimal `json:"user_number_11"`
	UserNumber12 *decimal.Decimal `json:"user_number_12"`
	UserNumber13 *decimal.Decimal `json:"user_number_13"`
	UserNumber14 *decimal.Decimal `json:"user_number_14"`
	UserNumber15 *decimal.Decimal `json:"user_number_15"`
	UserNumber16 *decimal.Decimal `json:"user_number_16"`
	UserNumber17 *decimal.Decimal `json:"user_number_17"`
	UserNumber18 *decimal.Decimal `json:"user_number_18"`
	UserNumber19 *decimal.Decimal `json:"user_number_19"`
	UserNumber20 *decimal.Decimal `json:"user_number_20"`
}

type UserDateFields struct {
	UserDate1 *time.Time `json:"user_date_1" gorm:"type:date"`
	UserDate2 *time.Time `json:"user_date_2" gorm:"type:date"`
	UserDate3 *time.Time `json:"user_date_3" gorm:"type:date"`
	UserDate4 *time.Time `json:"user_date_4" gorm:"type:date"`
	UserDate5 *time.Time `json:"user_date_5" gorm:"type:date"`
}

// ComplexTransactionInput binds one typed value supplied by the user to
// the transaction-type input it fills.
type ComplexTransactionInput struct {
	ID                     uint64     `json:"id" gorm:"primaryKey"`
	ComplexTransactionID   uint64     `json:"complex_transaction_id" gorm:"index"`
	TransactionTypeInputID uint64     `json:"transaction_type_input_id"`
	ValueString            *string    `json:"value_string"`
	ValueFloat             *float64   `json:"value_float"`
	ValueDate              *time.Time `json:"value_date" gorm:"type:date"`
	ValueRelationID        *uint64    `json:"value_relation_id"`
	ValueRelationType      *string    `json:"value_relation_type"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// Contributes reports whether this complex transaction's postings are
// visible to balance and P&L builders.
func (c *ComplexTransaction) Contributes() bool {
	return c.Status == StatusBooked && !c.IsDeleted && !c.IsCanceled
}
