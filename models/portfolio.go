package models

type PortfolioType struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
}

type Portfolio struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	PortfolioTypeID  *uint64 `json:"portfolio_type_id" gorm:"index"`
	FirstTransactionDate *string `json:"first_transaction_date"`
	FirstCashFlowDate    *string `json:"first_cash_flow_date"`
}
