package procedures

import (
	"errors"
	"fmt"
	"time"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/gateway"
	"github.com/finastack/folio/messages"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/pricing"
	"github.com/finastack/folio/reports"
	"github.com/finastack/folio/types"
)

// RunPricingProcedure executes one pricing procedure instance end to
// end: provider fetch, staging, scheme evaluation, forward roll.
// Replays of finished instances are no-ops.
func (e *Engine) RunPricingProcedure(instanceID uint64) error {
	started := time.Now()

	instance := &models.PricingProcedureInstance{}
	if err := e.db.First(instance, "id = ?", instanceID).Error; err != nil {
		return err
	}
	if models.TerminalProcedureStatus(instance.Status) {
		return nil
	}

	procedure := &models.PricingProcedure{}
	if err := e.db.First(procedure, "id = ?", instance.ProcedureID).Error; err != nil {
		return err
	}

	tenant := &models.Tenant{}
	if err := e.db.First(tenant, "id = ?", instance.TenantID).Error; err != nil {
		return err
	}

	if err := e.advancePricing(instance, models.ProcedureStatusPending); err != nil {
		return err
	}

	from, to := e.pipeline.DateWindow(procedure, time.Now().UTC())
	e.db.Model(instance).Updates(map[string]interface{}{
		"effective_date_from": from,
		"effective_date_to":   to,
	})
	instance.EffectiveDateFrom = &from
	instance.EffectiveDateTo = &to

	runErr := e.runPricingSchemes(tenant, procedure, instance, from, to)

	if e.pricingCanceled(instance) {
		e.metric("pricing_procedure", tenant.ID, models.ProcedureStatusCanceled, started)
		return nil
	}

	status := models.ProcedureStatusDone
	if runErr != nil {
		status = models.ProcedureStatusError
		text := runErr.Error()
		e.db.Model(instance).Update("error_message", &text)
		messages.Publish(tenant.ID, types.MessageError, "pricing",
			"Pricing procedure failed",
			fmt.Sprintf("procedure %s instance %d: %v", procedure.UserCode, instance.ID, runErr))
	} else {
		messages.Publish(tenant.ID, types.MessageSuccess, "pricing",
			"Pricing procedure finished",
			fmt.Sprintf("procedure %s instance %d: %d prices, %d errors",
				procedure.UserCode, instance.ID,
				instance.SuccessfulPricesCount, instance.ErrorPricesCount))
		reports.InvalidateTenant(tenant.ID)
	}

	if err := e.advancePricing(instance, status); err != nil {
		return err
	}

	e.metric("pricing_procedure", tenant.ID, status, started)
	e.runNext(instance.ScheduleInstanceID, status)
	return nil
}

func (e *Engine) runPricingSchemes(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, from, to time.Time) error {
	policy := &models.PricingPolicy{}
	if procedure.PricingPolicyID != nil {
		if err := e.db.First(policy, "id = ?", *procedure.PricingPolicyID).Error; err != nil {
			return err
		}
	}

	if procedure.PriceGetPrincipalPrices || procedure.PriceGetAccruedPrices {
		if policy.DefaultInstrumentPricingSchemeID != nil {
			scheme := &models.InstrumentPricingScheme{}
			if err := e.db.First(scheme, "id = ?", *policy.DefaultInstrumentPricingSchemeID).Error; err != nil {
				return err
			}
			if err := e.fetchAndRunInstruments(tenant, procedure, instance, scheme, from, to); err != nil {
				return err
			}
		}
	}

	if e.pricingCanceled(instance) {
		return nil
	}

	if procedure.PriceGetFxRates && policy.DefaultCurrencyPricingSchemeID != nil {
		scheme := &models.CurrencyPricingScheme{}
		if err := e.db.First(scheme, "id = ?", *policy.DefaultCurrencyPricingSchemeID).Error; err != nil {
			return err
		}
		if err := e.fetchAndRunCurrencies(tenant, procedure, instance, scheme, from, to); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) fetchAndRunInstruments(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, scheme *models.InstrumentPricingScheme, from, to time.Time) error {
	targets, err := e.pipeline.InstrumentTargets(tenant.ID, procedure)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	request := &gateway.ProviderRequest{
		Procedure: procedure.ID,
		DateFrom:  from.Format(expression.DateLayout),
		DateTo:    to.Format(expression.DateLayout),
	}
	for _, instrument := range targets {
		request.Items = append(request.Items, gateway.ProviderItem{
			Reference: *instrument.ReferenceForPricing,
			Fields:    pricing.FieldsFor(scheme.Provider),
		})
	}

	response, err := e.providers.Fetch(scheme.Provider, request)
	if err != nil {
		return err
	}
	if err := pricing.StageProviderResponse(e.db, scheme.Provider, tenant.ID, instance.ID, response); err != nil {
		return err
	}
	return e.pipeline.RunInstruments(tenant, procedure, instance, scheme)
}

func (e *Engine) fetchAndRunCurrencies(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, scheme *models.CurrencyPricingScheme, from, to time.Time) error {
	targets, err := e.pipeline.CurrencyTargets(tenant.ID, procedure)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	request := &gateway.ProviderRequest{
		Procedure: procedure.ID,
		DateFrom:  from.Format(expression.DateLayout),
		DateTo:    to.Format(expression.DateLayout),
	}
	for _, currency := range targets {
		request.Items = append(request.Items, gateway.ProviderItem{
			Reference: *currency.ReferenceForPricing,
			Fields:    pricing.FieldsFor(scheme.Provider),
		})
	}

	response, err := e.providers.Fetch(scheme.Provider, request)
	if err != nil {
		return err
	}
	if err := pricing.StageProviderResponse(e.db, scheme.Provider, tenant.ID, instance.ID, response); err != nil {
		return err
	}
	return e.pipeline.RunCurrencies(tenant, procedure, instance, scheme)
}

// advancePricing moves the instance status forward; terminal states
// are sticky so concurrent replays cannot resurrect a finished run.
func (e *Engine) advancePricing(instance *models.PricingProcedureInstance, status models.ProcedureStatus) error {
	if models.TerminalProcedureStatus(instance.Status) {
		return errors.New("procedure instance already finished")
	}
	if err := e.db.Model(instance).Update("status", status).Error; err != nil {
		return err
	}
	instance.Status = status
	return nil
}

// pricingCanceled re-reads the status to honor an external cancel
// between steps.
func (e *Engine) pricingCanceled(instance *models.PricingProcedureInstance) bool {
	fresh := &models.PricingProcedureInstance{}
	if err := e.db.First(fresh, "id = ?", instance.ID).Error; err != nil {
		return false
	}
	if fresh.Status == models.ProcedureStatusCanceled {
		instance.Status = models.ProcedureStatusCanceled
		return true
	}
	return false
}
