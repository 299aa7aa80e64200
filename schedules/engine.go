package schedules

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/messages"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/mq_client"
	"github.com/finastack/folio/types"
)

// Submitter is the deferred-execution capability: hand a payload to a
// named queue, at-least-once. Tests swap in an in-memory recorder.
type Submitter interface {
	Submit(queue string, payload []byte) error
}

// AMQPSubmitter routes through the mq_client bindings.
type AMQPSubmitter struct{}

func (AMQPSubmitter) Submit(queue string, payload []byte) error {
	return mq_client.Enqueue(queue, payload)
}

// TaskPayload is what travels on the procedure queues. Consumers load
// the instance by id; replays are no-ops thanks to monotonic statuses.
type TaskPayload struct {
	TenantID            uint64 `json:"tenant_id"`
	ProcedureInstanceID uint64 `json:"procedure_instance_id"`
	ScheduleInstanceID  uint64 `json:"schedule_instance_id,omitempty"`
}

// Engine drives schedules: fire due ones, then walk their procedure
// steps strictly in order, one in flight per instance.
type Engine struct {
	db     *gorm.DB
	submit Submitter
}

func NewEngine(db *gorm.DB, submit Submitter) *Engine {
	return &Engine{db: db, submit: submit}
}

// FireDue fires every enabled schedule whose next_run_at has passed.
// Each schedule fires independently; one failure does not stop the
// sweep.
func (e *Engine) FireDue(now time.Time) {
	var due []*models.Schedule
	if err := e.db.
		Where("is_enabled = true AND next_run_at <= ?", now).
		Find(&due).Error; err != nil {
		config.Logger.Errorf("schedules: sweep: %v", err)
		return
	}
	for _, schedule := range due {
		if err := e.Fire(schedule); err != nil {
			config.Logger.Errorf("schedules: fire %s: %v", schedule.UserCode, err)
		}
	}
}

// Fire reschedules, opens a ScheduleInstance, and dispatches step 0.
func (e *Engine) Fire(schedule *models.Schedule) error {
	next, err := models.NextCronTick(schedule.CronExpr, time.Now())
	if err != nil {
		return err
	}
	if err := e.db.Model(schedule).UpdateColumns(map[string]interface{}{
		"last_run_at": time.Now().UTC(),
		"next_run_at": next,
	}).Error; err != nil {
		return err
	}

	instance := &models.ScheduleInstance{
		TenantID:                         schedule.TenantID,
		ScheduleID:                       schedule.ID,
		Status:                           models.ProcedureStatusPending,
		CurrentProcessingProcedureNumber: 0,
	}
	if err := e.db.Create(instance).Error; err != nil {
		return err
	}

	messages.Publish(schedule.TenantID, types.MessageInfo, "schedules",
		"Schedule started",
		fmt.Sprintf("schedule %s instance %d", schedule.UserCode, instance.ID))

	return e.dispatchStep(schedule, instance, 0)
}

// RunNextProcedure advances a schedule instance after a step finished.
// The counter moves forward first, then the handler policy applies: an
// errored step halts the run when the handler is BREAK.
func (e *Engine) RunNextProcedure(instanceID uint64) error {
	instance := &models.ScheduleInstance{}
	if err := e.db.First(instance, "id = ?", instanceID).Error; err != nil {
		return err
	}
	if models.TerminalProcedureStatus(instance.Status) {
		return nil // replayed completion of a finished run
	}

	schedule := &models.Schedule{}
	if err := e.db.Preload("Procedures", func(db *gorm.DB) *gorm.DB {
		return db.Order("\"order\"")
	}).First(schedule, "id = ?", instance.ScheduleID).Error; err != nil {
		return err
	}

	stepStatuses, err := e.stepStatuses(instance)
	if err != nil {
		return err
	}

	nextStep := instance.CurrentProcessingProcedureNumber + 1
	if err := e.db.Model(instance).
		UpdateColumn("current_processing_procedure_number", nextStep).Error; err != nil {
		return err
	}
	instance.CurrentProcessingProcedureNumber = nextStep

	switch advanceDecision(schedule.ErrorHandler, stepStatuses, nextStep, len(schedule.Procedures)) {
	case advanceHalt:
		return e.finish(schedule, instance, models.ProcedureStatusError)
	case advanceFinish:
		return e.finish(schedule, instance, worstStatus(stepStatuses))
	}
	return e.dispatchStep(schedule, instance, nextStep)
}

type advance int

const (
	advanceHalt advance = iota
	advanceFinish
	advanceDispatch
)

// advanceDecision applies the error-handler policy once the counter sits
// on nextStep: BREAK halts on any errored step so far, CONTINUE keeps
// dispatching until the steps run out.
func advanceDecision(handler types.ErrorHandler, stepStatuses []models.ProcedureStatus, nextStep int32, totalSteps int) advance {
	if handler == types.ErrorHandlerBreak {
		for _, status := range stepStatuses {
			if status == models.ProcedureStatusError {
				return advanceHalt
			}
		}
	}
	if int(nextStep) >= totalSteps {
		return advanceFinish
	}
	return advanceDispatch
}

func (e *Engine) finish(schedule *models.Schedule, instance *models.ScheduleInstance, status models.ProcedureStatus) error {
	if err := e.db.Model(instance).UpdateColumn("status", status).Error; err != nil {
		return err
	}
	instance.Status = status

	messageType := types.MessageSuccess
	if status == models.ProcedureStatusError {
		messageType = types.MessageError
	}
	messages.Publish(schedule.TenantID, messageType, "schedules",
		"Schedule finished",
		fmt.Sprintf("schedule %s instance %d status %s", schedule.UserCode, instance.ID, status))
	return nil
}

// dispatchStep creates the procedure instance of the step with matching
// order and enqueues it.
func (e *Engine) dispatchStep(schedule *models.Schedule, instance *models.ScheduleInstance, order int32) error {
	var step *models.ScheduleProcedure
	for i := range schedule.Procedures {
		if schedule.Procedures[i].Order == order {
			step = &schedule.Procedures[i]
			break
		}
	}
	if step == nil {
		return e.finish(schedule, instance, models.ProcedureStatusDone)
	}

	payload := TaskPayload{TenantID: schedule.TenantID, ScheduleInstanceID: instance.ID}

	switch step.Type {
	case models.ScheduleProcedurePricing:
		procedure := &models.PricingProcedure{}
		if err := e.db.First(procedure, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			schedule.TenantID, step.UserCode).Error; err != nil {
			return e.stepFailed(schedule, instance, step, err)
		}
		procedureInstance := &models.PricingProcedureInstance{
			TenantID:           schedule.TenantID,
			ProcedureID:        procedure.ID,
			Status:             models.ProcedureStatusInit,
			ScheduleInstanceID: &instance.ID,
		}
		if err := e.db.Create(procedureInstance).Error; err != nil {
			return err
		}
		payload.ProcedureInstanceID = procedureInstance.ID

	case models.ScheduleProcedureData:
		procedure := &models.RequestDataFileProcedure{}
		if err := e.db.First(procedure, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			schedule.TenantID, step.UserCode).Error; err != nil {
			return e.stepFailed(schedule, instance, step, err)
		}
		procedureInstance := &models.RequestDataFileProcedureInstance{
			TenantID:           schedule.TenantID,
			ProcedureID:        procedure.ID,
			Status:             models.ProcedureStatusInit,
			ScheduleInstanceID: &instance.ID,
		}
		if err := e.db.Create(procedureInstance).Error; err != nil {
			return err
		}
		payload.ProcedureInstanceID = procedureInstance.ID

	case models.ScheduleProcedureExpression:
		procedure := &models.ExpressionProcedure{}
		if err := e.db.First(procedure, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			schedule.TenantID, step.UserCode).Error; err != nil {
			return e.stepFailed(schedule, instance, step, err)
		}
		procedureInstance := &models.ExpressionProcedureInstance{
			TenantID:           schedule.TenantID,
			ProcedureID:        procedure.ID,
			Status:             models.ProcedureStatusInit,
			ScheduleInstanceID: &instance.ID,
		}
		if err := e.db.Create(procedureInstance).Error; err != nil {
			return err
		}
		payload.ProcedureInstanceID = procedureInstance.ID

	default:
		return e.stepFailed(schedule, instance, step,
			fmt.Errorf("unknown procedure type %q", step.Type))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return e.submit.Submit(step.Type, raw)
}

// stepFailed records a step that could not even be dispatched, then
// applies the handler policy as if the step ran and errored.
func (e *Engine) stepFailed(schedule *models.Schedule, instance *models.ScheduleInstance, step *models.ScheduleProcedure, cause error) error {
	messages.Publish(schedule.TenantID, types.MessageError, "schedules",
		"Schedule step failed",
		fmt.Sprintf("schedule %s step %d (%s %s): %v",
			schedule.UserCode, step.Order, step.Type, step.UserCode, cause))

	if schedule.ErrorHandler == types.ErrorHandlerBreak {
		return e.finish(schedule, instance, models.ProcedureStatusError)
	}
	return e.RunNextProcedure(instance.ID)
}

// stepStatuses gathers the statuses of every procedure instance this
// schedule instance has dispatched so far.
func (e *Engine) stepStatuses(instance *models.ScheduleInstance) ([]models.ProcedureStatus, error) {
	out := []models.ProcedureStatus{}

	var pricing []models.PricingProcedureInstance
	if err := e.db.Where("schedule_instance_id = ?", instance.ID).Find(&pricing).Error; err != nil {
		return nil, err
	}
	for _, p := range pricing {
		out = append(out, p.Status)
	}

	var data []models.RequestDataFileProcedureInstance
	if err := e.db.Where("schedule_instance_id = ?", instance.ID).Find(&data).Error; err != nil {
		return nil, err
	}
	for _, d := range data {
		out = append(out, d.Status)
	}

	var expr []models.ExpressionProcedureInstance
	if err := e.db.Where("schedule_instance_id = ?", instance.ID).Find(&expr).Error; err != nil {
		return nil, err
	}
	for _, x := range expr {
		out = append(out, x.Status)
	}

	return out, nil
}

// worstStatus folds per-step outcomes into the instance outcome:
// any error beats canceled beats done.
func worstStatus(statuses []models.ProcedureStatus) models.ProcedureStatus {
	worst := models.ProcedureStatusDone
	for _, status := range statuses {
		switch status {
		case models.ProcedureStatusError:
			return models.ProcedureStatusError
		case models.ProcedureStatusCanceled:
			worst = models.ProcedureStatusCanceled
		}
	}
	return worst
}
