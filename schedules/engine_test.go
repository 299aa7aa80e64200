package schedules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

func TestAdvanceBreakHaltsOnErroredStep(t *testing.T) {
	statuses := []models.ProcedureStatus{models.ProcedureStatusDone, models.ProcedureStatusError}

	assert.Equal(t, advanceHalt,
		advanceDecision(types.ErrorHandlerBreak, statuses, 2, 4))
	// even when the errored step was the last one
	assert.Equal(t, advanceHalt,
		advanceDecision(types.ErrorHandlerBreak, statuses, 2, 2))
}

func TestAdvanceContinueKeepsDispatchingPastErrors(t *testing.T) {
	statuses := []models.ProcedureStatus{models.ProcedureStatusError}

	assert.Equal(t, advanceDispatch,
		advanceDecision(types.ErrorHandlerContinue, statuses, 1, 3))
	assert.Equal(t, advanceFinish,
		advanceDecision(types.ErrorHandlerContinue, statuses, 3, 3))
}

func TestAdvanceCleanRunFinishesAfterLastStep(t *testing.T) {
	statuses := []models.ProcedureStatus{models.ProcedureStatusDone}

	assert.Equal(t, advanceDispatch,
		advanceDecision(types.ErrorHandlerBreak, statuses, 1, 2))
	assert.Equal(t, advanceFinish,
		advanceDecision(types.ErrorHandlerBreak, []models.ProcedureStatus{
			models.ProcedureStatusDone, models.ProcedureStatusDone,
		}, 2, 2))
}

func TestWorstStatus(t *testing.T) {
	assert.Equal(t, models.ProcedureStatusDone, worstStatus(nil))
	assert.Equal(t, models.ProcedureStatusDone,
		worstStatus([]models.ProcedureStatus{models.ProcedureStatusDone, models.ProcedureStatusDone}))

	assert.Equal(t, models.ProcedureStatusCanceled,
		worstStatus([]models.ProcedureStatus{models.ProcedureStatusDone, models.ProcedureStatusCanceled}))

	// an error dominates everything else
	assert.Equal(t, models.ProcedureStatusError,
		worstStatus([]models.ProcedureStatus{
			models.ProcedureStatusCanceled, models.ProcedureStatusError, models.ProcedureStatusDone,
		}))
}
