package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// Pipeline turns staged provider rows into PriceHistory and
// CurrencyHistory rows. Every attempt, successful or not, leaves
// exactly one journal row, so a run is fully auditable.
type Pipeline struct {
	db        *gorm.DB
	evaluator *expression.Evaluator
}

func NewPipeline(db *gorm.DB, evaluator *expression.Evaluator) *Pipeline {
	return &Pipeline{db: db, evaluator: evaluator}
}

const zeroPriceText = "Price is 0 or null"

// DateWindow resolves the procedure's pricing window. Expressions win
// over fixed dates; an invalid expression keeps the fixed value. With
// nothing configured the window is yesterday.
func (p *Pipeline) DateWindow(procedure *models.PricingProcedure, now time.Time) (time.Time, time.Time) {
	yesterday := now.AddDate(0, 0, -1).Truncate(24 * time.Hour)

	from := yesterday
	if procedure.PriceDateFrom != nil {
		from = *procedure.PriceDateFrom
	}
	if procedure.PriceDateFromExpr != nil {
		if d, err := p.evalDate(*procedure.PriceDateFromExpr, now); err == nil {
			from = d
		}
	}

	to := yesterday
	if procedure.PriceDateTo != nil {
		to = *procedure.PriceDateTo
	}
	if procedure.PriceDateToExpr != nil {
		if d, err := p.evalDate(*procedure.PriceDateToExpr, now); err == nil {
			to = d
		}
	}

	if to.Before(from) {
		to = from
	}
	return from, to
}

func (p *Pipeline) evalDate(expr string, now time.Time) (time.Time, error) {
	v, err := p.evaluator.SafeEval(expr, map[string]interface{}{
		"now": now.Format(expression.DateLayout),
	})
	if err != nil {
		return time.Time{}, err
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return time.Parse(expression.DateLayout, x)
	}
	return time.Time{}, fmt.Errorf("%w: not a date", expression.ErrInvalidExpression)
}

// splitCSV parses the comma-separated user-code filters of a procedure.
func splitCSV(filter *string) map[string]bool {
	if filter == nil || strings.TrimSpace(*filter) == "" {
		return nil
	}
	out := map[string]bool{}
	for _, part := range strings.Split(*filter, ",") {
		if code := strings.TrimSpace(part); code != "" {
			out[code] = true
		}
	}
	return out
}

// InstrumentTargets resolves the instruments a procedure prices: not
// deleted, carrying a pricing reference, passing the configured
// filters.
func (p *Pipeline) InstrumentTargets(tenantID uint64, procedure *models.PricingProcedure) ([]*models.Instrument, error) {
	var instruments []*models.Instrument
	query := p.db.
		Where("tenant_id = ? AND is_deleted = false", tenantID).
		Where("reference_for_pricing IS NOT NULL AND reference_for_pricing <> ''")
	if err := query.Find(&instruments).Error; err != nil {
		return nil, err
	}

	instrumentFilter := splitCSV(procedure.InstrumentFilters)
	typeFilter := splitCSV(procedure.InstrumentTypeFilters)
	if instrumentFilter == nil && typeFilter == nil {
		return instruments, nil
	}

	typeCodes := map[uint64]string{}
	if typeFilter != nil {
		var instrumentTypes []*models.InstrumentType
		if err := p.db.Where("tenant_id = ?", tenantID).Find(&instrumentTypes).Error; err != nil {
			return nil, err
		}
		for _, it := range instrumentTypes {
			typeCodes[it.ID] = it.UserCode
		}
	}

	out := instruments[:0]
	for _, instrument := range instruments {
		if instrumentFilter != nil && !instrumentFilter[instrument.UserCode] {
			continue
		}
		if typeFilter != nil && !typeFilter[typeCodes[instrument.InstrumentTypeID]] {
			continue
		}
		out = append(out, instrument)
	}
	return out, nil
}

// CurrencyTargets resolves the currencies a procedure prices.
func (p *Pipeline) CurrencyTargets(tenantID uint64, procedure *models.PricingProcedure) ([]*models.Currency, error) {
	var currencies []*models.Currency
	query := p.db.
		Where("tenant_id = ? AND is_deleted = false", tenantID).
		Where("reference_for_pricing IS NOT NULL AND reference_for_pricing <> ''")
	if err := query.Find(&currencies).Error; err != nil {
		return nil, err
	}
	filter := splitCSV(procedure.CurrencyFilters)
	if filter == nil {
		return currencies, nil
	}
	out := currencies[:0]
	for _, currency := range currencies {
		if filter[currency.UserCode] {
			out = append(out, currency)
		}
	}
	return out, nil
}

// RunInstruments evaluates one staged window against the scheme and
// writes PriceHistory plus one journal row per attempt.
func (p *Pipeline) RunInstruments(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, scheme *models.InstrumentPricingScheme) error {
	targets, err := p.InstrumentTargets(tenant.ID, procedure)
	if err != nil {
		return err
	}
	byReference := map[string]*models.Instrument{}
	for _, instrument := range targets {
		byReference[*instrument.ReferenceForPricing] = instrument
	}

	rows, err := LoadStagedRows(p.db, scheme.Provider, instance.ID)
	if err != nil {
		return err
	}
	if scheme.Provider == types.ProviderBloombergForwards {
		rows = CollapseForwards(rows)
	}

	policyID := uint64(0)
	if procedure.PricingPolicyID != nil {
		policyID = *procedure.PricingPolicyID
	}

	touched := map[uint64]bool{}
	for _, row := range rows {
		instrument, known := byReference[row.Reference]
		if !known {
			continue // reference no longer maps to a live instrument
		}
		if err := p.priceAttempt(tenant, procedure, instance, scheme, instrument, policyID, row); err != nil {
			return err
		}
		touched[instrument.ID] = true
	}

	if procedure.PriceFillDays > 0 {
		for id := range touched {
			if err := p.ForwardRollInstrument(tenant, procedure, instance, id, policyID); err != nil {
				return err
			}
		}
	}

	if err := PurgeWindow(p.db, scheme.Provider, instance.ID); err != nil {
		return err
	}
	return p.db.Model(instance).Updates(map[string]interface{}{
		"successful_prices_count": instance.SuccessfulPricesCount,
		"error_prices_count":      instance.ErrorPricesCount,
	}).Error
}

// attemptNames is the name map one pricing attempt evaluates against:
// the provider fields with their per-field error texts plus the run
// context.
func attemptNames(row StagedRow, contextKey, entityCode string, policyID uint64) map[string]interface{} {
	names := map[string]interface{}{
		"context_date":           row.Date.Format(expression.DateLayout),
		contextKey:               entityCode,
		"context_pricing_policy": float64(policyID),
	}
	for key, value := range row.Names {
		names[key] = value
	}
	return names
}

// emptyPriceResult reports an attempt that produced no price at all. A
// zero principal with a nonzero accrued is a valid row.
func emptyPriceResult(principal, accrued float64) bool {
	return principal == 0 && accrued == 0
}

func (p *Pipeline) priceAttempt(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, scheme *models.InstrumentPricingScheme, instrument *models.Instrument, policyID uint64, row StagedRow) error {
	journal := &models.PriceHistoryError{
		TenantID:                   tenant.ID,
		InstrumentID:               instrument.ID,
		PricingPolicyID:            policyID,
		PricingProcedureInstanceID: &instance.ID,
		Date:                       row.Date,
		Status:                     models.HistoryErrorStatusError,
	}

	expr := scheme.Parameters.Expr
	if instrument.ManualPricingFormula != nil && *instrument.ManualPricingFormula != "" {
		expr = *instrument.ManualPricingFormula
	}
	names := attemptNames(row, "context_instrument", instrument.UserCode, policyID)

	principal, evalErr := p.evalNumber(expr, names)
	if evalErr != nil {
		journal.Text = p.errorText(scheme.Parameters.ErrorTextExpr, names, row.ErrorTexts, evalErr)
		instance.ErrorPricesCount++
		return p.db.Create(journal).Error
	}

	accrued := 0.0
	if procedure.PriceGetAccruedPrices {
		var accrualErr error
		accrued, accrualErr = p.accruedPrice(scheme, instrument, names, row.Date)
		if accrualErr != nil {
			journal.Text = p.errorText(scheme.Parameters.ErrorTextExpr, names, row.ErrorTexts, accrualErr)
			instance.ErrorPricesCount++
			return p.db.Create(journal).Error
		}
	}

	if emptyPriceResult(principal, accrued) {
		journal.Text = zeroPriceText
		if len(row.ErrorTexts) > 0 {
			journal.Text = zeroPriceText + ": " + strings.Join(row.ErrorTexts, "; ")
		}
		instance.ErrorPricesCount++
		return p.db.Create(journal).Error
	}

	journal.PrincipalPrice = &principal
	journal.AccruedPrice = &accrued

	existing := &models.PriceHistory{}
	err := p.db.
		Where("instrument_id = ? AND pricing_policy_id = ? AND date = ?", instrument.ID, policyID, row.Date).
		First(existing).Error
	now := time.Now().UTC()

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record := &models.PriceHistory{
			InstrumentID:              instrument.ID,
			PricingPolicyID:           policyID,
			Date:                      row.Date,
			Factor:                    decimal.NewFromInt(1),
			ProcedureModifiedDatetime: &now,
		}
		if procedure.PriceGetPrincipalPrices {
			record.PrincipalPrice = decimal.NewFromFloat(principal)
		}
		if procedure.PriceGetAccruedPrices {
			record.AccruedPrice = decimal.NewFromFloat(accrued)
		}
		if createErr := p.db.Create(record).Error; createErr != nil {
			return createErr
		}
		journal.Status = models.HistoryErrorStatusCreated
		instance.SuccessfulPricesCount++

	case err != nil:
		return err

	case procedure.PriceOverwritePrincipalPrices || procedure.PriceOverwriteAccruedPrices:
		updates := map[string]interface{}{"procedure_modified_datetime": &now}
		if procedure.PriceOverwritePrincipalPrices && procedure.PriceGetPrincipalPrices {
			updates["principal_price"] = decimal.NewFromFloat(principal)
		}
		if procedure.PriceOverwriteAccruedPrices && procedure.PriceGetAccruedPrices {
			updates["accrued_price"] = decimal.NewFromFloat(accrued)
		}
		if updateErr := p.db.Model(existing).Updates(updates).Error; updateErr != nil {
			return updateErr
		}
		journal.Status = models.HistoryErrorStatusOverwritten
		instance.SuccessfulPricesCount++

	default:
		journal.Status = models.HistoryErrorStatusSkip
		journal.Text = "price already exists and overwrite is off"
	}

	return p.db.Create(journal).Error
}

// RunCurrencies is the fx counterpart: same journal discipline, no
// accrual.
func (p *Pipeline) RunCurrencies(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, scheme *models.CurrencyPricingScheme) error {
	if !procedure.PriceGetFxRates {
		return nil
	}
	targets, err := p.CurrencyTargets(tenant.ID, procedure)
	if err != nil {
		return err
	}
	byReference := map[string]*models.Currency{}
	for _, currency := range targets {
		byReference[*currency.ReferenceForPricing] = currency
	}

	rows, err := LoadStagedRows(p.db, scheme.Provider, instance.ID)
	if err != nil {
		return err
	}
	if scheme.Provider == types.ProviderBloombergForwards {
		rows = CollapseForwards(rows)
	}

	policyID := uint64(0)
	if procedure.PricingPolicyID != nil {
		policyID = *procedure.PricingPolicyID
	}

	for _, row := range rows {
		currency, known := byReference[row.Reference]
		if !known {
			continue
		}
		if err := p.fxAttempt(tenant, procedure, instance, scheme, currency, policyID, row); err != nil {
			return err
		}
	}

	if err := PurgeWindow(p.db, scheme.Provider, instance.ID); err != nil {
		return err
	}
	return p.db.Model(instance).Updates(map[string]interface{}{
		"successful_prices_count": instance.SuccessfulPricesCount,
		"error_prices_count":      instance.ErrorPricesCount,
	}).Error
}

func (p *Pipeline) fxAttempt(tenant *models.Tenant, procedure *models.PricingProcedure, instance *models.PricingProcedureInstance, scheme *models.CurrencyPricingScheme, currency *models.Currency, policyID uint64, row StagedRow) error {
	journal := &models.CurrencyHistoryError{
		TenantID:                   tenant.ID,
		CurrencyID:                 currency.ID,
		PricingPolicyID:            policyID,
		PricingProcedureInstanceID: &instance.ID,
		Date:                       row.Date,
		Status:                     models.HistoryErrorStatusError,
	}

	names := attemptNames(row, "context_currency", currency.UserCode, policyID)

	rate, evalErr := p.evalNumber(scheme.Parameters.Expr, names)
	switch {
	case evalErr != nil:
		journal.Text = p.errorText(scheme.Parameters.ErrorTextExpr, names, row.ErrorTexts, evalErr)
		instance.ErrorPricesCount++
		return p.db.Create(journal).Error
	case rate == 0:
		journal.Text = zeroPriceText
		instance.ErrorPricesCount++
		return p.db.Create(journal).Error
	}

	journal.FxRate = &rate

	existing := &models.CurrencyHistory{}
	err := p.db.
		Where("currency_id = ? AND pricing_policy_id = ? AND date = ?", currency.ID, policyID, row.Date).
		First(existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record := &models.CurrencyHistory{
			CurrencyID:      currency.ID,
			PricingPolicyID: policyID,
			Date:            row.Date,
			FxRate:          decimal.NewFromFloat(rate),
		}
		if createErr := p.db.Create(record).Error; createErr != nil {
			return createErr
		}
		journal.Status = models.HistoryErrorStatusCreated
		instance.SuccessfulPricesCount++

	case err != nil:
		return err

	case procedure.PriceOverwriteFxRates:
		if updateErr := p.db.Model(existing).
			Update("fx_rate", decimal.NewFromFloat(rate)).Error; updateErr != nil {
			return updateErr
		}
		journal.Status = models.HistoryErrorStatusOverwritten
		instance.SuccessfulPricesCount++

	default:
		journal.Status = models.HistoryErrorStatusSkip
		journal.Text = "fx rate already exists and overwrite is off"
	}

	return p.db.Create(journal).Error
}

func (p *Pipeline) evalNumber(expr string, names map[string]interface{}) (float64, error) {
	v, err := p.evaluator.SafeEval(expr, names)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: not a number", expression.ErrInvalidExpression)
}

// errorText prefers the scheme's error_text_expr; provider error texts
// and the raw evaluation error are the fallback.
func (p *Pipeline) errorText(errorTextExpr *string, names map[string]interface{}, errorTexts []string, evalErr error) string {
	if errorTextExpr != nil && *errorTextExpr != "" {
		withError := map[string]interface{}{"error_message": evalErr.Error()}
		for key, value := range names {
			withError[key] = value
		}
		if v, err := p.evaluator.SafeEval(*errorTextExpr, withError); err == nil {
			return fmt.Sprint(v)
		}
	}
	if len(errorTexts) > 0 {
		return strings.Join(errorTexts, "; ")
	}
	return evalErr.Error()
}

func (p *Pipeline) accruedPrice(scheme *models.InstrumentPricingScheme, instrument *models.Instrument, names map[string]interface{}, date time.Time) (float64, error) {
	switch scheme.Parameters.AccrualCalculationMethod {
	case types.AccrualPerFormula:
		if scheme.Parameters.AccrualExpr == nil || *scheme.Parameters.AccrualExpr == "" {
			return 0, nil
		}
		return p.evalNumber(*scheme.Parameters.AccrualExpr, names)
	case types.AccrualPerSchedule:
		var schedules []models.AccrualCalculationSchedule
		if err := p.db.Where("instrument_id = ?", instrument.ID).
			Order("accrual_start_date").Find(&schedules).Error; err != nil {
			return 0, err
		}
		return AccruedAt(schedules, date), nil
	}
	return 0, nil
}
