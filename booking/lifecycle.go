package booking

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/reports"
	"github.com/finastack/folio/types"
)

// Lifecycle transitions of a complex transaction. Status changes never
// touch the base transactions; visibility to the report builders flows
// entirely through ComplexTransaction.Contributes.

// Ignore parks the complex transaction: its postings leave the balance
// and P&L universe but the record and its inputs stay intact.
func (k *Kernel) Ignore(ct *models.ComplexTransaction) error {
	if ct.IsDeleted {
		return fmt.Errorf("complex transaction %d is deleted", ct.ID)
	}
	ct.Status = models.StatusIgnored
	if err := k.db.Model(ct).Update("status", models.StatusIgnored).Error; err != nil {
		return err
	}
	reports.InvalidateTenant(ct.TenantID)
	return nil
}

// Activate books an ignored or pending complex transaction.
func (k *Kernel) Activate(ct *models.ComplexTransaction) error {
	if ct.IsDeleted {
		return fmt.Errorf("complex transaction %d is deleted", ct.ID)
	}
	ct.Status = models.StatusBooked
	if err := k.db.Model(ct).Update("status", models.StatusBooked).Error; err != nil {
		return err
	}
	reports.InvalidateTenant(ct.TenantID)
	return nil
}

// Cancel withdraws the booking. Canceled transactions keep their unique
// code slot free so a corrected rebook can claim it.
func (k *Kernel) Cancel(ct *models.ComplexTransaction) error {
	err := k.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"is_canceled": true}
		if ct.TransactionUniqueCode != nil {
			updates["deleted_transaction_unique_code"] = *ct.TransactionUniqueCode
			updates["transaction_unique_code"] = nil
		}
		if err := tx.Model(ct).Updates(updates).Error; err != nil {
			return err
		}
		ct.IsCanceled = true
		ct.DeletedTransactionUniqueCode = ct.TransactionUniqueCode
		ct.TransactionUniqueCode = nil
		return tx.Model(&models.Transaction{}).
			Where("complex_transaction_id = ?", ct.ID).
			Update("is_canceled", true).Error
	})
	if err == nil {
		reports.InvalidateTenant(ct.TenantID)
	}
	return err
}

// Rebook replays the transaction type's actions against the stored
// inputs. The reaction decides what happens to user-editable state.
func (k *Kernel) Rebook(ct *models.ComplexTransaction, transactionType *models.TransactionType, context map[string]interface{}, reaction types.RebookReaction) (*BookingResult, error) {
	if reaction == types.RebookSkip {
		return &BookingResult{ComplexTransaction: ct}, nil
	}

	tenant := &models.Tenant{}
	if err := k.db.First(tenant, "id = ?", ct.TenantID).Error; err != nil {
		return nil, err
	}

	values, err := k.inputValues(ct, transactionType)
	if err != nil {
		return nil, err
	}

	result, err := k.Execute(tenant, transactionType, values, context)
	if err != nil {
		return nil, err
	}

	replay := result.ComplexTransaction
	replay.ID = ct.ID
	replay.TenantID = ct.TenantID
	replay.Code = ct.Code
	replay.Date = ct.Date
	replay.OwnerID = ct.OwnerID
	if reaction == types.RebookPreserveManualEdits {
		replay.UserText = ct.UserText
		replay.UserNumber = ct.UserNumber
		replay.UserDate = ct.UserDate
		replay.Text = ct.Text
	}
	result.ComplexTransaction = replay

	err = k.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complex_transaction_id = ?", ct.ID).
			Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		replay.Status = models.StatusBooked
		if err := tx.Save(replay).Error; err != nil {
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
		for i, trn := range result.Transactions {
			trn.ComplexTransactionID = ct.ID
			trn.TransactionCode = ct.Code
			trn.ComplexTransactionOrder = int32(i)
			if err := tx.Create(trn).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &BookingFailedError{ActionIndex: -1, Text: err.Error(), Err: err}
	}
	reports.InvalidateTenant(ct.TenantID)
	return result, nil
}

// inputValues reconstructs the caller-supplied value map from the
// stored input bindings.
func (k *Kernel) inputValues(ct *models.ComplexTransaction, transactionType *models.TransactionType) (map[string]interface{}, error) {
	byID := make(map[uint64]*models.TransactionTypeInput, len(transactionType.Inputs))
	for i := range transactionType.Inputs {
		byID[transactionType.Inputs[i].ID] = &transactionType.Inputs[i]
	}

	var bindings []models.ComplexTransactionInput
	if err := k.db.Where("complex_transaction_id = ?", ct.ID).Find(&bindings).Error; err != nil {
		return nil, err
	}

	values := map[string]interface{}{}
	for _, binding := range bindings {
		input, ok := byID[binding.TransactionTypeInputID]
		if !ok {
			continue // input declaration removed since the original booking
		}
		switch {
		case binding.ValueFloat != nil:
			values[input.Name] = *binding.ValueFloat
		case binding.ValueString != nil:
			values[input.Name] = *binding.ValueString
		case binding.ValueDate != nil:
			values[input.Name] = *binding.ValueDate
		case binding.ValueRelationID != nil:
			rel := Relation{ID: *binding.ValueRelationID}
			if binding.ValueRelationType != nil {
				rel.ContentType = *binding.ValueRelationType
			}
			values[input.Name] = rel
		}
	}
	return values, nil
}
