package models

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/finastack/folio/types"
)

// Schedule is a cron-driven ordered sequence of procedures with an
// error-handler policy.
type Schedule struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`

	CronExpr     string             `json:"cron_expr"`
	IsEnabled    bool               `json:"is_enabled" gorm:"default:true"`
	ErrorHandler types.ErrorHandler `json:"error_handler" gorm:"default:break"`
	LastRunAt    time.Time          `json:"last_run_at" gorm:"index"`
	NextRunAt    time.Time          `json:"next_run_at" gorm:"index"`
	JSONData     *string            `json:"json_data"`

	Procedures []ScheduleProcedure `json:"procedures" gorm:"foreignKey:ScheduleID"`
}

type ScheduleProcedureType = string

var (
	ScheduleProcedurePricing    ScheduleProcedureType = "pricing_procedure"
	ScheduleProcedureData       ScheduleProcedureType = "data_procedure"
	ScheduleProcedureExpression ScheduleProcedureType = "expression_procedure"
)

type ScheduleProcedure struct {
	ID         uint64                `json:"id" gorm:"primaryKey"`
	ScheduleID uint64                `json:"schedule_id" gorm:"index:,unique,composite:schedule_order"`
	Order      int32                 `json:"order" gorm:"index:,unique,composite:schedule_order"`
	Type       ScheduleProcedureType `json:"type"`
	UserCode   string                `json:"user_code"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// ScheduleInstance is one firing of a schedule. The processing counter
// is non-decreasing; at most one step is in flight at a time.
type ScheduleInstance struct {
	ID         uint64          `json:"id" gorm:"primaryKey"`
	TenantID   uint64          `json:"tenant_id" gorm:"index"`
	ScheduleID uint64          `json:"schedule_id" gorm:"index"`
	Status     ProcedureStatus `json:"status" gorm:"default:I"`
	CurrentProcessingProcedureNumber int32 `json:"current_processing_procedure_number" gorm:"default:0"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NextCronTick is the strictly next tick of expr after now.
func NextCronTick(expr string, now time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron string %q: %w", expr, err)
	}
	return sched.Next(now), nil
}

// BeforeSave validates the cron expression and advances next_run_at so
// a stored schedule is always armed for the next wall-clock tick.
func (s *Schedule) BeforeSave(tx *gorm.DB) error {
	if !s.IsEnabled {
		return nil
	}
	next, err := NextCronTick(s.CronExpr, time.Now())
	if err != nil {
		return err
	}
	s.NextRunAt = next
	return nil
}
