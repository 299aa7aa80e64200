package models

import "time"

type ImportTaskKind = string

var (
	ImportTaskTransaction ImportTaskKind = "transaction_import"
	ImportTaskSimple      ImportTaskKind = "simple_import"
)

// ImportTask is the child ingestion task a data-file callback spawns.
// The owning RequestDataFileProcedureInstance links to it.
type ImportTask struct {
	ID        uint64          `json:"id" gorm:"primaryKey"`
	TenantID  uint64          `json:"tenant_id" gorm:"index"`
	Kind      ImportTaskKind  `json:"kind"`
	Status    ProcedureStatus `json:"status" gorm:"default:I"`
	Payload   *string         `json:"payload"`
	ErrorMessage *string      `json:"error_message"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
