package engines

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/finastack/folio/booking"
	"github.com/finastack/folio/config"
	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/messages"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/reports"
	"github.com/finastack/folio/schedules"
	"github.com/finastack/folio/types"
)

// ImportWorker executes the child tasks a data-file callback spawns.
// transaction_import rows book through the kernel; simple_import rows
// upsert price and fx history directly.
type ImportWorker struct {
	db     *gorm.DB
	kernel *booking.Kernel
}

func NewImportWorker(db *gorm.DB, evaluator *expression.Evaluator) *ImportWorker {
	return &ImportWorker{db: db, kernel: booking.NewKernel(db, evaluator)}
}

type transactionImportRow struct {
	TransactionType string                 `json:"transaction_type"`
	Inputs          map[string]interface{} `json:"inputs"`
}

type simpleImportRow struct {
	Entity          string  `json:"entity"`
	UserCode        string  `json:"user_code"`
	PricingPolicyID uint64  `json:"pricing_policy_id"`
	Date            string  `json:"date"`
	PrincipalPrice  float64 `json:"principal_price"`
	AccruedPrice    float64 `json:"accrued_price"`
	FxRate          float64 `json:"fx_rate"`
}

func (w *ImportWorker) Process(payload []byte) error {
	var task schedules.TaskPayload
	if err := json.Unmarshal(payload, &task); err != nil {
		return err
	}

	record := &models.ImportTask{}
	if err := w.db.First(record, "id = ?", task.ProcedureInstanceID).Error; err != nil {
		return err
	}
	if models.TerminalProcedureStatus(record.Status) {
		return nil
	}
	if err := w.db.Model(record).Update("status", models.ProcedureStatusPending).Error; err != nil {
		return err
	}

	var runErr error
	switch record.Kind {
	case models.ImportTaskTransaction:
		runErr = w.importTransactions(record)
	case models.ImportTaskSimple:
		runErr = w.importSimple(record)
	default:
		runErr = fmt.Errorf("unknown import kind %q", record.Kind)
	}

	status := models.ProcedureStatusDone
	updates := map[string]interface{}{}
	if runErr != nil {
		status = models.ProcedureStatusError
		text := runErr.Error()
		updates["error_message"] = &text
		messages.Publish(record.TenantID, types.MessageError, "imports",
			"Import task failed", fmt.Sprintf("task %d: %v", record.ID, runErr))
	} else {
		reports.InvalidateTenant(record.TenantID)
		messages.Publish(record.TenantID, types.MessageSuccess, "imports",
			"Import task finished", fmt.Sprintf("task %d", record.ID))
	}
	updates["status"] = status
	return w.db.Model(record).Updates(updates).Error
}

func (w *ImportWorker) importTransactions(record *models.ImportTask) error {
	if record.Payload == nil {
		return nil
	}
	var rows []transactionImportRow
	if err := json.Unmarshal([]byte(*record.Payload), &rows); err != nil {
		return err
	}

	tenant := &models.Tenant{}
	if err := w.db.First(tenant, "id = ?", record.TenantID).Error; err != nil {
		return err
	}

	failed := 0
	for _, row := range rows {
		transactionType := &models.TransactionType{}
		if err := w.db.Preload("Inputs").Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\"")
		}).First(transactionType, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			record.TenantID, row.TransactionType).Error; err != nil {
			failed++
			config.Logger.Errorf("import task %d: transaction type %q: %v", record.ID, row.TransactionType, err)
			continue
		}
		if _, err := w.kernel.Book(tenant, transactionType, row.Inputs, nil); err != nil {
			failed++
			config.Logger.Errorf("import task %d: book %q: %v", record.ID, row.TransactionType, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rows failed", failed, len(rows))
	}
	return nil
}

func (w *ImportWorker) importSimple(record *models.ImportTask) error {
	if record.Payload == nil {
		return nil
	}
	var rows []simpleImportRow
	if err := json.Unmarshal([]byte(*record.Payload), &rows); err != nil {
		return err
	}

	for _, row := range rows {
		if err := w.upsertHistory(record.TenantID, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *ImportWorker) upsertHistory(tenantID uint64, row simpleImportRow) error {
	date, err := parseDate(row.Date)
	if err != nil {
		return err
	}

	switch row.Entity {
	case "price_history":
		instrument := &models.Instrument{}
		if err := w.db.First(instrument, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			tenantID, row.UserCode).Error; err != nil {
			return err
		}
		return upsertPrice(w.db, instrument.ID, row, date)

	case "currency_history":
		currency := &models.Currency{}
		if err := w.db.First(currency, "tenant_id = ? AND user_code = ? AND is_deleted = false",
			tenantID, row.UserCode).Error; err != nil {
			return err
		}
		return upsertFx(w.db, currency.ID, row, date)
	}
	return fmt.Errorf("unknown entity %q", row.Entity)
}
