package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// Field setters map the snake_case keys of an action's field map onto
// model columns. Unknown keys fail the booking: a typo in a template is
// a template bug, not something to paper over.

func assignTransactionField(trn *models.Transaction, field string, value interface{}) error {
	switch field {
	case "instrument_id":
		return setID(&trn.InstrumentID, field, value)
	case "linked_instrument_id":
		return setOptionalID(&trn.LinkedInstrumentID, field, value)
	case "transaction_currency_id":
		return setID(&trn.TransactionCurrencyID, field, value)
	case "settlement_currency_id":
		return setID(&trn.SettlementCurrencyID, field, value)

	case "position_size_with_sign":
		return setDecimal(&trn.PositionSizeWithSign, field, value)
	case "cash_consideration":
		return setDecimal(&trn.CashConsideration, field, value)
	case "principal_with_sign":
		return setDecimal(&trn.PrincipalWithSign, field, value)
	case "carry_with_sign":
		return setDecimal(&trn.CarryWithSign, field, value)
	case "overheads_with_sign":
		return setDecimal(&trn.OverheadsWithSign, field, value)
	case "reference_fx_rate":
		return setDecimal(&trn.ReferenceFxRate, field, value)
	case "factor":
		return setDecimal(&trn.Factor, field, value)
	case "trade_price":
		return setDecimal(&trn.TradePrice, field, value)

	case "transaction_date":
		return setDate(&trn.TransactionDate, field, value)
	case "accounting_date":
		return setDate(&trn.AccountingDate, field, value)
	case "cash_date":
		return setDate(&trn.CashDate, field, value)

	case "portfolio_id":
		return setID(&trn.PortfolioID, field, value)
	case "account_position_id":
		return setID(&trn.AccountPositionID, field, value)
	case "account_cash_id":
		return setID(&trn.AccountCashID, field, value)
	case "account_interim_id":
		return setID(&trn.AccountInterimID, field, value)

	case "strategy1_position_id":
		return setID(&trn.Strategy1PositionID, field, value)
	case "strategy1_cash_id":
		return setID(&trn.Strategy1CashID, field, value)
	case "strategy2_position_id":
		return setID(&trn.Strategy2PositionID, field, value)
	case "strategy2_cash_id":
		return setID(&trn.Strategy2CashID, field, value)
	case "strategy3_position_id":
		return setID(&trn.Strategy3PositionID, field, value)
	case "strategy3_cash_id":
		return setID(&trn.Strategy3CashID, field, value)

	case "responsible_id":
		return setID(&trn.ResponsibleID, field, value)
	case "counterparty_id":
		return setID(&trn.CounterpartyID, field, value)
	case "allocation_balance_id":
		return setOptionalID(&trn.AllocationBalanceID, field, value)
	case "allocation_pl_id":
		return setOptionalID(&trn.AllocationPlID, field, value)

	case "notes":
		return setOptionalString(&trn.Notes, value)
	}
	return fmt.Errorf("transaction has no field %q", field)
}

func assignInstrumentField(instrument *models.Instrument, field string, value interface{}) error {
	switch field {
	case "user_code":
		instrument.UserCode = fmt.Sprint(value)
		return nil
	case "name":
		instrument.Name = fmt.Sprint(value)
		return nil
	case "short_name":
		instrument.ShortName = fmt.Sprint(value)
		return nil
	case "public_name":
		return setOptionalString(&instrument.PublicName, value)
	case "notes":
		return setOptionalString(&instrument.Notes, value)

	case "instrument_type_id":
		return setID(&instrument.InstrumentTypeID, field, value)
	case "pricing_currency_id":
		return setID(&instrument.PricingCurrencyID, field, value)
	case "accrued_currency_id":
		return setID(&instrument.AccruedCurrencyID, field, value)
	case "price_multiplier":
		return setDecimal(&instrument.PriceMultiplier, field, value)
	case "accrued_multiplier":
		return setDecimal(&instrument.AccruedMultiplier, field, value)

	case "co_directional_exposure_currency_id":
		return setID(&instrument.CoDirectionalExposureCurrencyID, field, value)
	case "counter_directional_exposure_currency_id":
		return setID(&instrument.CounterDirectionalExposureCurrencyID, field, value)
	case "exposure_calculation_model":
		instrument.ExposureCalculationModel = types.ExposureCalculationModel(fmt.Sprint(value))
		return nil
	case "underlying_long_multiplier":
		return setDecimal(&instrument.UnderlyingLongMultiplier, field, value)
	case "underlying_short_multiplier":
		return setDecimal(&instrument.UnderlyingShortMultiplier, field, value)
	case "long_underlying_instrument_id":
		return setOptionalID(&instrument.LongUnderlyingInstrumentID, field, value)
	case "short_underlying_instrument_id":
		return setOptionalID(&instrument.ShortUnderlyingInstrumentID, field, value)
	case "long_underlying_exposure":
		instrument.LongUnderlyingExposure = fmt.Sprint(value)
		return nil
	case "short_underlying_exposure":
		instrument.ShortUnderlyingExposure = fmt.Sprint(value)
		return nil

	case "maturity_date":
		var d time.Time
		if err := setDate(&d, field, value); err != nil {
			return err
		}
		instrument.MaturityDate = &d
		return nil
	case "maturity_price":
		return setDecimal(&instrument.MaturityPrice, field, value)
	case "reference_for_pricing":
		return setOptionalString(&instrument.ReferenceForPricing, value)
	}
	return fmt.Errorf("instrument has no field %q", field)
}

func assignFactorScheduleField(row *models.InstrumentFactorSchedule, field string, value interface{}) error {
	switch field {
	case "instrument_id":
		return setID(&row.InstrumentID, field, value)
	case "effective_date":
		return setDate(&row.EffectiveDate, field, value)
	case "factor_value":
		return setDecimal(&row.FactorValue, field, value)
	}
	return fmt.Errorf("factor schedule has no field %q", field)
}

func assignAccrualScheduleField(row *models.AccrualCalculationSchedule, field string, value interface{}) error {
	switch field {
	case "instrument_id":
		return setID(&row.InstrumentID, field, value)
	case "accrual_start_date":
		return setDate(&row.AccrualStartDate, field, value)
	case "first_payment_date":
		return setDate(&row.FirstPaymentDate, field, value)
	case "accrual_size":
		return setDecimal(&row.AccrualSize, field, value)
	case "periodicity_n":
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("field %q: expected a number", field)
		}
		row.PeriodicityN = int32(f)
		return nil
	case "accrual_calculation_model":
		row.AccrualCalculationModel = fmt.Sprint(value)
		return nil
	case "notes":
		return setOptionalString(&row.Notes, value)
	}
	return fmt.Errorf("accrual schedule has no field %q", field)
}

func assignEventScheduleField(row *models.EventSchedule, field string, value interface{}) error {
	switch field {
	case "instrument_id":
		return setID(&row.InstrumentID, field, value)
	case "event_class":
		row.EventClass = fmt.Sprint(value)
		return nil
	case "effective_date":
		return setDate(&row.EffectiveDate, field, value)
	case "final_date":
		return setOptionalDate(&row.FinalDate, field, value)
	case "notification_date":
		return setOptionalDate(&row.NotificationDate, field, value)
	case "periodicity_n":
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("field %q: expected a number", field)
		}
		row.PeriodicityN = int32(f)
		return nil
	case "name":
		row.Name = fmt.Sprint(value)
		return nil
	case "description":
		return setOptionalString(&row.Description, value)
	}
	return fmt.Errorf("event schedule has no field %q", field)
}

func assignEventActionField(row *models.EventScheduleAction, field string, value interface{}) error {
	switch field {
	case "event_schedule_id":
		return setID(&row.EventScheduleID, field, value)
	case "transaction_type_id":
		return setID(&row.TransactionTypeID, field, value)
	case "text":
		row.Text = fmt.Sprint(value)
		return nil
	case "is_book_automatic":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %q: expected a boolean", field)
		}
		row.IsBookAutomatic = b
		return nil
	case "button_position":
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("field %q: expected a number", field)
		}
		row.ButtonPosition = int32(f)
		return nil
	}
	return fmt.Errorf("event schedule action has no field %q", field)
}

func setDecimal(target *decimal.Decimal, field string, value interface{}) error {
	switch x := value.(type) {
	case decimal.Decimal:
		*target = x
		return nil
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		*target = d
		return nil
	}
	f, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("field %q: expected a number", field)
	}
	*target = decimal.NewFromFloat(f)
	return nil
}

func setDate(target *time.Time, field string, value interface{}) error {
	d, ok := asDate(value)
	if !ok {
		return fmt.Errorf("field %q: expected a date", field)
	}
	*target = d
	return nil
}

func setOptionalDate(target **time.Time, field string, value interface{}) error {
	if value == nil {
		*target = nil
		return nil
	}
	var d time.Time
	if err := setDate(&d, field, value); err != nil {
		return err
	}
	*target = &d
	return nil
}

func setID(target *uint64, field string, value interface{}) error {
	id, ok := toID(value)
	if !ok {
		return fmt.Errorf("field %q: expected an id", field)
	}
	*target = id
	return nil
}

func setOptionalID(target **uint64, field string, value interface{}) error {
	if value == nil {
		*target = nil
		return nil
	}
	id, ok := toID(value)
	if !ok {
		return fmt.Errorf("field %q: expected an id", field)
	}
	*target = &id
	return nil
}

func setOptionalString(target **string, value interface{}) error {
	if value == nil {
		*target = nil
		return nil
	}
	s := fmt.Sprint(value)
	*target = &s
	return nil
}

func toID(value interface{}) (uint64, bool) {
	switch x := value.(type) {
	case uint64:
		return x, true
	case Relation:
		return x.ID, true
	case *Relation:
		return x.ID, true
	}
	f, ok := toFloat(value)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}

func toFloat(value interface{}) (float64, bool) {
	return asFloat(value)
}
