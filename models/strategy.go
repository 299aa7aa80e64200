package models

// Three independent three-level classification hierarchies, used as
// consolidation axes by the report builders.

type Strategy1Group struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
}

type Strategy1Subgroup struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	GroupID uint64 `json:"group_id" gorm:"index"`
}

type Strategy1 struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	SubgroupID uint64 `json:"subgroup_id" gorm:"index"`
}

type Strategy2Group struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
}

type Strategy2Subgroup struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	GroupID uint64 `json:"group_id" gorm:"index"`
}

type Strategy2 struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	SubgroupID uint64 `json:"subgroup_id" gorm:"index"`
}

type Strategy3Group struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
}

type Strategy3Subgroup struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	GroupID uint64 `json:"group_id" gorm:"index"`
}

type Strategy3 struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	SubgroupID uint64 `json:"subgroup_id" gorm:"index"`
}
