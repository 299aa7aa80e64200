package procedures

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/finastack/folio/messages"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// RunExpressionProcedure resolves the context variables in order, runs
// the procedure code under the evaluator, and reifies the run: notes
// capture the context, the resolved variables, the code and the
// evaluator log.
func (e *Engine) RunExpressionProcedure(instanceID uint64) error {
	started := time.Now()

	instance := &models.ExpressionProcedureInstance{}
	if err := e.db.First(instance, "id = ?", instanceID).Error; err != nil {
		return err
	}
	if models.TerminalProcedureStatus(instance.Status) {
		return nil
	}

	procedure := &models.ExpressionProcedure{}
	if err := e.db.Preload("ContextVariables").
		First(procedure, "id = ?", instance.ProcedureID).Error; err != nil {
		return err
	}

	if err := e.db.Model(instance).
		Update("status", models.ProcedureStatusPending).Error; err != nil {
		return err
	}
	instance.Status = models.ProcedureStatusPending

	variables := procedure.ContextVariables
	sort.Slice(variables, func(i, j int) bool { return variables[i].Order < variables[j].Order })

	var notes strings.Builder
	fmt.Fprintf(&notes, "procedure: %s\ninstance: %d\n", procedure.UserCode, instance.ID)

	// later variables see the values of earlier ones
	names := map[string]interface{}{}
	var varErr error
	for _, variable := range variables {
		value, err := e.evaluator.SafeEval(variable.Expression, names)
		if err != nil {
			varErr = fmt.Errorf("context variable %q: %w", variable.Name, err)
			break
		}
		names[variable.Name] = value
		fmt.Fprintf(&notes, "var %s = %v\n", variable.Name, value)
	}

	var result interface{}
	var log string
	runErr := varErr
	if runErr == nil {
		fmt.Fprintf(&notes, "code:\n%s\n", procedure.Code)
		result, log, runErr = e.evaluator.SafeEvalWithLogs(procedure.Code, names)
		if log != "" {
			fmt.Fprintf(&notes, "log:\n%s", log)
		}
	}

	if e.expressionCanceled(instance) {
		e.metric("expression_procedure", instance.TenantID, models.ProcedureStatusCanceled, started)
		return nil
	}

	status := models.ProcedureStatusDone
	updates := map[string]interface{}{}
	if runErr != nil {
		status = models.ProcedureStatusError
		fmt.Fprintf(&notes, "error: %v\n", runErr)
		messages.Publish(instance.TenantID, types.MessageError, "procedures",
			"Expression procedure failed",
			fmt.Sprintf("procedure %s instance %d: %v", procedure.UserCode, instance.ID, runErr))
	} else {
		resultText := fmt.Sprint(result)
		updates["result"] = &resultText
		messages.Publish(instance.TenantID, types.MessageSuccess, "procedures",
			"Expression procedure finished",
			fmt.Sprintf("procedure %s instance %d", procedure.UserCode, instance.ID))
	}
	notesText := notes.String()
	updates["status"] = status
	updates["notes"] = &notesText

	if err := e.db.Model(instance).Updates(updates).Error; err != nil {
		return err
	}
	instance.Status = status

	e.metric("expression_procedure", instance.TenantID, status, started)
	e.runNext(instance.ScheduleInstanceID, status)
	return nil
}

func (e *Engine) expressionCanceled(instance *models.ExpressionProcedureInstance) bool {
	fresh := &models.ExpressionProcedureInstance{}
	if err := e.db.First(fresh, "id = ?", instance.ID).Error; err != nil {
		return false
	}
	if fresh.Status == models.ProcedureStatusCanceled {
		instance.Status = models.ProcedureStatusCanceled
		return true
	}
	return false
}
