package procedures

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/gateway"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/pricing"
	"github.com/finastack/folio/schedules"
)

// Engine executes the three procedure kinds. All external effects go
// through injected capabilities so runs are testable without the
// deployed services.
type Engine struct {
	db        *gorm.DB
	evaluator *expression.Evaluator
	pipeline  *pricing.Pipeline
	dataFiles gateway.DataFileService
	providers gateway.ProviderCaller
	schedules *schedules.Engine
	submit    schedules.Submitter
}

func NewEngine(db *gorm.DB, evaluator *expression.Evaluator, dataFiles gateway.DataFileService, providers gateway.ProviderCaller, submit schedules.Submitter) *Engine {
	return &Engine{
		db:        db,
		evaluator: evaluator,
		pipeline:  pricing.NewPipeline(db, evaluator),
		dataFiles: dataFiles,
		providers: providers,
		schedules: schedules.NewEngine(db, submit),
		submit:    submit,
	}
}

// metric journals one procedure run to influx. Metrics never fail a
// run.
func (e *Engine) metric(kind string, tenantID uint64, status string, started time.Time) {
	if config.InfluxDB == nil {
		return
	}
	config.InfluxDB.NewPoint("procedure_run",
		map[string]string{
			"kind":   kind,
			"status": status,
			"tenant": strconv.FormatUint(tenantID, 10),
		},
		map[string]interface{}{
			"duration_ms": time.Since(started).Milliseconds(),
		})
}

// runNext hands control back to the owning schedule instance, if any.
// Canceled procedures never advance their schedule.
func (e *Engine) runNext(scheduleInstanceID *uint64, status models.ProcedureStatus) {
	if scheduleInstanceID == nil {
		return
	}
	if status == models.ProcedureStatusCanceled {
		return
	}
	if err := e.schedules.RunNextProcedure(*scheduleInstanceID); err != nil {
		config.Logger.Errorf("procedures: run next on schedule instance %d: %v", *scheduleInstanceID, err)
	}
}
