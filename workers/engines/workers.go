package engines

import (
	"encoding/json"

	"github.com/finastack/folio/procedures"
	"github.com/finastack/folio/schedules"
)

// Worker consumes one queue; payloads may be redelivered, so Process
// must be idempotent.
type Worker interface {
	Process(payload []byte) error
}

type PricingProcedureWorker struct {
	Engine *procedures.Engine
}

func (w *PricingProcedureWorker) Process(payload []byte) error {
	var task schedules.TaskPayload
	if err := json.Unmarshal(payload, &task); err != nil {
		return err
	}
	return w.Engine.RunPricingProcedure(task.ProcedureInstanceID)
}

type DataProcedureWorker struct {
	Engine *procedures.Engine
}

func (w *DataProcedureWorker) Process(payload []byte) error {
	var task schedules.TaskPayload
	if err := json.Unmarshal(payload, &task); err != nil {
		return err
	}
	return w.Engine.RunDataProcedure(task.ProcedureInstanceID)
}

type ExpressionProcedureWorker struct {
	Engine *procedures.Engine
}

func (w *ExpressionProcedureWorker) Process(payload []byte) error {
	var task schedules.TaskPayload
	if err := json.Unmarshal(payload, &task); err != nil {
		return err
	}
	return w.Engine.RunExpressionProcedure(task.ProcedureInstanceID)
}
