package models

type AccountType struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	ShowTransactionDetails bool `json:"show_transaction_details" gorm:"default:false"`
	TransactionDetailsExpr *string `json:"transaction_details_expr"`
}

type Account struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	AccountTypeID uint64 `json:"account_type_id" gorm:"index"`
	IsValid       bool   `json:"is_valid" gorm:"default:true"`
}
