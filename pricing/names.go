package pricing

import (
	"time"

	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// StagedRow is the provider-independent shape the scheme expressions
// evaluate against: raw fields by name, provider error texts, and the
// forwards weight when the provider supplies one.
type StagedRow struct {
	Reference  string
	Date       time.Time
	Names      map[string]interface{}
	ErrorTexts []string
	Weight     *float64
}

func field(names map[string]interface{}, errs *[]string, key string, value null.Float64, errText null.String) {
	if value.Valid {
		names[key] = value.Float64
	} else {
		names[key] = nil
	}
	names[key+"_error"] = nil
	if errText.Valid && errText.String != "" {
		names[key+"_error"] = errText.String
		*errs = append(*errs, errText.String)
	}
}

// LoadStagedRows reads one procedure instance's staging window and
// normalizes it across providers.
func LoadStagedRows(db *gorm.DB, provider types.PricingProvider, instanceID uint64) ([]StagedRow, error) {
	out := []StagedRow{}

	switch provider {
	case types.ProviderBloombergInstrument:
		var rows []models.BloombergInstrumentResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "ask", r.Ask, r.AskError)
			field(names, &errs, "bid", r.Bid, r.BidError)
			field(names, &errs, "last", r.Last, r.LastError)
			field(names, &errs, "accrual", r.Accrual, r.AccrualError)
			out = append(out, StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs})
		}

	case types.ProviderBloombergCurrency:
		var rows []models.BloombergCurrencyResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "ask", r.Ask, r.AskError)
			field(names, &errs, "bid", r.Bid, r.BidError)
			field(names, &errs, "last", r.Last, r.LastError)
			out = append(out, StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs})
		}

	case types.ProviderBloombergForwards:
		var rows []models.BloombergForwardsResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "last", r.Last, r.LastError)
			staged := StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs}
			if r.Weight.Valid {
				w := r.Weight.Float64
				staged.Weight = &w
			}
			out = append(out, staged)
		}

	case types.ProviderWtrade:
		var rows []models.WtradeResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "open", r.Open, r.OpenError)
			field(names, &errs, "close", r.Close, r.CloseError)
			field(names, &errs, "high", r.High, r.HighError)
			field(names, &errs, "low", r.Low, r.LowError)
			field(names, &errs, "volume", r.Volume, r.VolumeError)
			out = append(out, StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs})
		}

	case types.ProviderFixer:
		var rows []models.FixerResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "close", r.Close, r.CloseError)
			out = append(out, StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs})
		}

	case types.ProviderAlphav:
		var rows []models.AlphavResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "close", r.Close, r.CloseError)
			out = append(out, StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs})
		}

	case types.ProviderCbondsInstrument:
		var rows []models.CbondsInstrumentResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "open", r.Open, r.OpenError)
			field(names, &errs, "close", r.Close, r.CloseError)
			field(names, &errs, "high", r.High, r.HighError)
			field(names, &errs, "low", r.Low, r.LowError)
			field(names, &errs, "volume", r.Volume, r.VolumeError)
			field(names, &errs, "accrual", r.Accrual, r.AccrualError)
			out = append(out, StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs})
		}

	case types.ProviderCbondsCurrency:
		var rows []models.CbondsCurrencyResult
		if err := db.Where("procedure_instance_id = ?", instanceID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			names := map[string]interface{}{}
			errs := []string{}
			field(names, &errs, "open", r.Open, r.OpenError)
			field(names, &errs, "close", r.Close, r.CloseError)
			field(names, &errs, "high", r.High, r.HighError)
			field(names, &errs, "low", r.Low, r.LowError)
			out = append(out, StagedRow{Reference: r.Reference, Date: r.Date, Names: names, ErrorTexts: errs})
		}
	}

	return out, nil
}

// CollapseForwards folds same-reference same-date forwards rows into a
// single weighted-average row. Rows without a weight count as weight 1;
// a zero total weight yields no price.
func CollapseForwards(rows []StagedRow) []StagedRow {
	type key struct {
		reference string
		date      time.Time
	}
	type agg struct {
		sum, weightSum float64
		count          int
		errs           []string
	}

	order := []key{}
	byKey := map[key]*agg{}
	for _, row := range rows {
		k := key{reference: row.Reference, date: row.Date}
		a, seen := byKey[k]
		if !seen {
			a = &agg{}
			byKey[k] = a
			order = append(order, k)
		}
		a.errs = append(a.errs, row.ErrorTexts...)
		last, ok := row.Names["last"].(float64)
		if !ok {
			continue
		}
		weight := 1.0
		if row.Weight != nil {
			weight = *row.Weight
		}
		a.sum += last * weight
		a.weightSum += weight
		a.count++
	}

	out := make([]StagedRow, 0, len(order))
	for _, k := range order {
		a := byKey[k]
		names := map[string]interface{}{"last": nil, "last_error": nil}
		if a.count > 0 && a.weightSum != 0 {
			names["last"] = a.sum / a.weightSum
		}
		out = append(out, StagedRow{Reference: k.reference, Date: k.date, Names: names, ErrorTexts: a.errs})
	}
	return out
}
