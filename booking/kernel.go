package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/reports"
	"github.com/finastack/folio/types"
)

// Kernel rewrites a complex transaction of a given transaction type
// into base transactions and instrument mutations. Bookings are atomic:
// either every effect persists or none does.
type Kernel struct {
	db        *gorm.DB
	evaluator *expression.Evaluator
}

func NewKernel(db *gorm.DB, evaluator *expression.Evaluator) *Kernel {
	return &Kernel{db: db, evaluator: evaluator}
}

// BookingResult carries everything one booking produced.
type BookingResult struct {
	ComplexTransaction *models.ComplexTransaction
	Transactions       []*models.Transaction
	Instruments        []*models.Instrument
	FactorSchedules    []*models.InstrumentFactorSchedule
	AccrualSchedules   []*models.AccrualCalculationSchedule
	EventSchedules     []*models.EventSchedule
	EventActions       []*models.EventScheduleAction
	// instrument id (or created-instrument slot) → formula text
	ManualPricingFormulas []ManualPricingFormula

	// deferred phantom references resolved after instruments persist
	phantomRefs  []phantomRef
	scheduleRefs []scheduleRef
}

type ManualPricingFormula struct {
	InstrumentID uint64
	Slot         int // index into the booking's created instruments when InstrumentID is 0
	Formula      string
}

// phantomRef marks a transaction field that must receive the id of an
// instrument created by an earlier action in the same booking.
type phantomRef struct {
	transactionIndex int
	field            string
	slot             int
}

// scheduleRef is the schedule-row counterpart: the assign closure of
// the row whose field waits for a created instrument's id.
type scheduleRef struct {
	assign func(string, interface{}) error
	field  string
	slot   int
}

func (r *BookingResult) deferScheduleRef(assign func(string, interface{}) error) func(string, int) {
	return func(field string, slot int) {
		r.scheduleRefs = append(r.scheduleRefs, scheduleRef{assign: assign, field: field, slot: slot})
	}
}

// phantom is the marker value an instrument action leaves in the
// prior-action results; downstream field expressions resolve through
// it. It indexes the booking's created instruments.
type phantom struct {
	slot int
}

// Book validates the inputs, executes the type's ordered actions, and
// persists the outcome atomically. Conflicts on the transaction unique
// code retry a bounded number of times before failing.
func (k *Kernel) Book(tenant *models.Tenant, transactionType *models.TransactionType, values map[string]interface{}, context map[string]interface{}) (*BookingResult, error) {
	bindings, err := ValidateInputs(transactionType, values)
	if err != nil {
		return nil, err
	}

	result, err := k.Execute(tenant, transactionType, values, context)
	if err != nil {
		return nil, err
	}
	result.ComplexTransaction.Inputs = make([]models.ComplexTransactionInput, len(bindings))
	copy(result.ComplexTransaction.Inputs, bindings)

	var persistErr error
	for attempt := 0; attempt < models.ConflictRetryBound; attempt++ {
		persistErr = k.persist(result)
		if persistErr == nil {
			reports.InvalidateTenant(tenant.ID)
			return result, nil
		}
		if !models.IsUniqueViolation(persistErr) {
			break
		}
	}
	return nil, &BookingFailedError{ActionIndex: -1, Text: persistErr.Error(), Err: persistErr}
}

// Execute runs the action script without touching the database. The
// names visible to every expression are the user inputs, the booking
// context, and the results of prior actions.
func (k *Kernel) Execute(tenant *models.Tenant, transactionType *models.TransactionType, values map[string]interface{}, context map[string]interface{}) (*BookingResult, error) {
	ct := &models.ComplexTransaction{
		TenantID:          tenant.ID,
		TransactionTypeID: transactionType.ID,
		Date:              time.Now().UTC().Truncate(24 * time.Hour),
		Status:            models.StatusPending,
	}

	result := &BookingResult{ComplexTransaction: ct}

	names := map[string]interface{}{}
	for key, value := range values {
		names[key] = value
	}
	for key, value := range context {
		names[key] = value
	}
	actionResults := make([]interface{}, 0, len(transactionType.Actions))
	names["actions"] = actionResults

	for index := range transactionType.Actions {
		action := &transactionType.Actions[index]

		ok, err := k.evaluator.EvalBool(action.ConditionExpr, names)
		if err != nil {
			return nil, &BookingFailedError{ActionIndex: index, Text: err.Error(), Err: err}
		}
		if !ok {
			actionResults = append(actionResults, nil)
			names["actions"] = actionResults
			continue
		}

		actionResult, err := k.runAction(tenant, action, names, result)
		if err != nil {
			return nil, &BookingFailedError{ActionIndex: index, Text: err.Error(), Err: err}
		}
		actionResults = append(actionResults, actionResult)
		names["actions"] = actionResults
	}

	if transactionType.TransactionUniqueCodeExpr != nil {
		v, err := k.evaluator.SafeEval(*transactionType.TransactionUniqueCodeExpr, names)
		if err == nil {
			code := fmt.Sprint(v)
			ct.TransactionUniqueCode = &code
		}
	}
	if transactionType.DisplayExpr != nil {
		if v, err := k.evaluator.SafeEval(*transactionType.DisplayExpr, names); err == nil {
			text := fmt.Sprint(v)
			ct.Text = &text
		}
	}

	return result, nil
}

func (k *Kernel) runAction(tenant *models.Tenant, action *models.TransactionTypeAction, names map[string]interface{}, result *BookingResult) (interface{}, error) {
	fields, err := k.evalFields(action, names)
	if err != nil {
		return nil, err
	}

	switch action.Kind {
	case models.ActionKindTransaction:
		trn := &models.Transaction{
			TenantID:                tenant.ID,
			TransactionClass:        models.TransactionClass(action.TransactionClass),
			ComplexTransactionOrder: action.Order,
			ReferenceFxRate:         decimal.NewFromInt(1),
			Factor:                  decimal.NewFromInt(1),
		}
		applyTransactionDefaults(trn, tenant)
		for field, value := range fields {
			if ph, isPhantom := value.(phantom); isPhantom {
				result.phantomRefs = append(result.phantomRefs, phantomRef{
					transactionIndex: len(result.Transactions),
					field:            field,
					slot:             ph.slot,
				})
				continue
			}
			if err := assignTransactionField(trn, field, value); err != nil {
				return nil, err
			}
		}
		result.Transactions = append(result.Transactions, trn)
		return map[string]interface{}{"kind": "transaction", "order": float64(action.Order)}, nil

	case models.ActionKindInstrument:
		instrument := &models.Instrument{}
		instrument.TenantID = tenant.ID
		instrument.PriceMultiplier = decimal.NewFromInt(1)
		instrument.AccruedMultiplier = decimal.NewFromInt(1)
		instrument.ExposureCalculationModel = types.ExposureMarketValue
		for field, value := range fields {
			if err := assignInstrumentField(instrument, field, value); err != nil {
				return nil, err
			}
		}
		result.Instruments = append(result.Instruments, instrument)
		// downstream actions reference this phantom until persist
		return map[string]interface{}{"kind": "instrument", "instrument": phantom{slot: len(result.Instruments) - 1}}, nil

	case models.ActionKindFactorSchedule:
		row := &models.InstrumentFactorSchedule{FactorValue: decimal.NewFromInt(1)}
		assign := func(field string, value interface{}) error {
			return assignFactorScheduleField(row, field, value)
		}
		if err := applySchedule(fields, assign, result.deferScheduleRef(assign)); err != nil {
			return nil, err
		}
		result.FactorSchedules = append(result.FactorSchedules, row)
		return map[string]interface{}{"kind": "factor_schedule"}, nil

	case models.ActionKindAccrualSchedule:
		row := &models.AccrualCalculationSchedule{PeriodicityN: 1}
		assign := func(field string, value interface{}) error {
			return assignAccrualScheduleField(row, field, value)
		}
		if err := applySchedule(fields, assign, result.deferScheduleRef(assign)); err != nil {
			return nil, err
		}
		result.AccrualSchedules = append(result.AccrualSchedules, row)
		return map[string]interface{}{"kind": "accrual_schedule"}, nil

	case models.ActionKindEventSchedule:
		row := &models.EventSchedule{IsAutoGenerated: true}
		assign := func(field string, value interface{}) error {
			return assignEventScheduleField(row, field, value)
		}
		if err := applySchedule(fields, assign, result.deferScheduleRef(assign)); err != nil {
			return nil, err
		}
		result.EventSchedules = append(result.EventSchedules, row)
		return map[string]interface{}{"kind": "event_schedule"}, nil

	case models.ActionKindEventScheduleAction:
		row := &models.EventScheduleAction{}
		assign := func(field string, value interface{}) error {
			return assignEventActionField(row, field, value)
		}
		if err := applySchedule(fields, assign, result.deferScheduleRef(assign)); err != nil {
			return nil, err
		}
		result.EventActions = append(result.EventActions, row)
		return map[string]interface{}{"kind": "event_schedule_action"}, nil

	case models.ActionKindManualPricingFormula:
		formula := ManualPricingFormula{}
		for field, value := range fields {
			switch field {
			case "instrument_id":
				if ph, isPhantom := value.(phantom); isPhantom {
					formula.Slot = ph.slot
				} else if id, ok := toID(value); ok {
					formula.InstrumentID = id
				}
			case "formula", "expr":
				formula.Formula = fmt.Sprint(value)
			}
		}
		result.ManualPricingFormulas = append(result.ManualPricingFormulas, formula)
		return map[string]interface{}{"kind": "manual_pricing_formula"}, nil
	}

	return nil, fmt.Errorf("unknown action kind %q", action.Kind)
}

// applySchedule assigns evaluated fields onto a schedule row. Phantom
// values become deferred references, resolved at persist once the
// created instrument has an id.
func applySchedule(fields map[string]interface{}, assign func(string, interface{}) error, deferRef func(string, int)) error {
	for field, value := range fields {
		if ph, isPhantom := value.(phantom); isPhantom {
			deferRef(field, ph.slot)
			continue
		}
		if err := assign(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (k *Kernel) evalFields(action *models.TransactionTypeAction, names map[string]interface{}) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(action.Fields))
	for field, expr := range action.Fields {
		value, err := k.evaluator.SafeEval(expr, names)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		fields[field] = value
	}
	return fields, nil
}

// applyTransactionDefaults seeds every axis with the tenant default so
// unfilled fields stay reportable.
func applyTransactionDefaults(trn *models.Transaction, tenant *models.Tenant) {
	trn.InstrumentID = tenant.DefaultInstrumentID
	trn.TransactionCurrencyID = tenant.DefaultCurrencyID
	trn.SettlementCurrencyID = tenant.DefaultCurrencyID
	trn.PortfolioID = tenant.DefaultPortfolioID
	trn.AccountPositionID = tenant.DefaultAccountID
	trn.AccountCashID = tenant.DefaultAccountID
	trn.AccountInterimID = tenant.DefaultAccountID
	trn.Strategy1PositionID = tenant.DefaultStrategy1ID
	trn.Strategy1CashID = tenant.DefaultStrategy1ID
	trn.Strategy2PositionID = tenant.DefaultStrategy2ID
	trn.Strategy2CashID = tenant.DefaultStrategy2ID
	trn.Strategy3PositionID = tenant.DefaultStrategy3ID
	trn.Strategy3CashID = tenant.DefaultStrategy3ID
	trn.ResponsibleID = tenant.DefaultResponsibleID
	trn.CounterpartyID = tenant.DefaultCounterpartyID
}

func (k *Kernel) persist(result *BookingResult) error {
	return k.db.Transaction(func(tx *gorm.DB) error {
		ct := result.ComplexTransaction

		if ct.Code == 0 {
			var maxCode int64
			tx.Model(&models.ComplexTransaction{}).
				Where("tenant_id = ?", ct.TenantID).
				Select("COALESCE(MAX(code), 0)").Scan(&maxCode)
			ct.Code = maxCode + 1
		}

		ct.Status = models.StatusBooked
		if err := tx.Create(ct).Error; err != nil {
			return err
		}

		for _, instrument := range result.Instruments {
			if err := tx.Create(instrument).Error; err != nil {
				return err
			}
		}

		for _, ref := range result.phantomRefs {
			if ref.slot >= len(result.Instruments) {
				return fmt.Errorf("phantom reference %d is out of range", ref.slot)
			}
			id := result.Instruments[ref.slot].ID
			if err := assignTransactionField(result.Transactions[ref.transactionIndex], ref.field, float64(id)); err != nil {
				return err
			}
		}

		for _, ref := range result.scheduleRefs {
			if ref.slot >= len(result.Instruments) {
				return fmt.Errorf("phantom reference %d is out of range", ref.slot)
			}
			if err := ref.assign(ref.field, float64(result.Instruments[ref.slot].ID)); err != nil {
				return err
			}
		}

		for i, trn := range result.Transactions {
			trn.ComplexTransactionID = ct.ID
			trn.TransactionCode = ct.Code
			trn.ComplexTransactionOrder = int32(i)
			if err := tx.Create(trn).Error; err != nil {
				return err
			}
		}

		for _, row := range result.FactorSchedules {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		for _, row := range result.AccrualSchedules {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		for _, row := range result.EventSchedules {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		for _, row := range result.EventActions {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		for _, formula := range result.ManualPricingFormulas {
			id := formula.InstrumentID
			if id == 0 {
				if formula.Slot >= len(result.Instruments) {
					return fmt.Errorf("manual pricing formula references instrument %d of %d", formula.Slot, len(result.Instruments))
				}
				id = result.Instruments[formula.Slot].ID
			}
			text := formula.Formula
			if err := tx.Model(&models.Instrument{}).Where("id = ?", id).
				Update("manual_pricing_formula", &text).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
