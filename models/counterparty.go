package models

type CounterpartyGroup struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
}

type Counterparty struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	GroupID  uint64 `json:"group_id" gorm:"index"`
	IsValid  bool   `json:"is_valid" gorm:"default:true"`
}

type ResponsibleGroup struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
}

type Responsible struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	GroupID  uint64 `json:"group_id" gorm:"index"`
	IsValid  bool   `json:"is_valid" gorm:"default:true"`
}
