package pricing

import (
	"time"

	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/gateway"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// rawCell is one (field, date) observation from a provider response.
type rawCell struct {
	value     null.Float64
	errorText null.String
}

type rawRow map[string]rawCell

// StageProviderResponse flattens a gateway response into the provider's
// staging table. Unknown field codes are dropped.
func StageProviderResponse(db *gorm.DB, provider types.PricingProvider, tenantID, instanceID uint64, response *gateway.ProviderResponse) error {
	type rowKey struct {
		reference  string
		parameters string
		date       time.Time
	}

	order := []rowKey{}
	rows := map[rowKey]rawRow{}

	for _, item := range response.Items {
		for _, f := range item.Fields {
			for _, v := range f.Values {
				date, err := time.Parse(expression.DateLayout, v.Date)
				if err != nil {
					continue
				}
				k := rowKey{reference: item.Reference, parameters: item.Parameters, date: date}
				row, seen := rows[k]
				if !seen {
					row = rawRow{}
					rows[k] = row
					order = append(order, k)
				}
				cell := rawCell{}
				if v.Value != nil {
					cell.value = null.Float64From(*v.Value)
				}
				if v.ErrorText != nil {
					cell.errorText = null.StringFrom(*v.ErrorText)
				}
				row[f.Code] = cell
			}
		}
	}

	key := func(k rowKey) models.StagingKey {
		return models.StagingKey{
			TenantID:            tenantID,
			ProcedureInstanceID: instanceID,
			Reference:           k.reference,
			Parameters:          k.parameters,
			Date:                k.date,
		}
	}

	switch provider {
	case types.ProviderBloombergInstrument:
		out := make([]models.BloombergInstrumentResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.BloombergInstrumentResult{
				StagingKey:   key(k),
				Ask:          row["ask"].value,
				Bid:          row["bid"].value,
				Last:         row["last"].value,
				Accrual:      row["accrual"].value,
				AskError:     row["ask"].errorText,
				BidError:     row["bid"].errorText,
				LastError:    row["last"].errorText,
				AccrualError: row["accrual"].errorText,
			})
		}
		return IngestInstrumentResults(db, out)

	case types.ProviderBloombergCurrency:
		out := make([]models.BloombergCurrencyResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.BloombergCurrencyResult{
				StagingKey: key(k),
				Ask:        row["ask"].value,
				Bid:        row["bid"].value,
				Last:       row["last"].value,
				AskError:   row["ask"].errorText,
				BidError:   row["bid"].errorText,
				LastError:  row["last"].errorText,
			})
		}
		return IngestCurrencyResults(db, out)

	case types.ProviderBloombergForwards:
		out := make([]models.BloombergForwardsResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.BloombergForwardsResult{
				StagingKey: key(k),
				Last:       row["last"].value,
				Weight:     row["weight"].value,
				LastError:  row["last"].errorText,
			})
		}
		return IngestForwardsResults(db, out)

	case types.ProviderWtrade:
		out := make([]models.WtradeResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.WtradeResult{
				StagingKey:  key(k),
				Open:        row["open"].value,
				Close:       row["close"].value,
				High:        row["high"].value,
				Low:         row["low"].value,
				Volume:      row["volume"].value,
				OpenError:   row["open"].errorText,
				CloseError:  row["close"].errorText,
				HighError:   row["high"].errorText,
				LowError:    row["low"].errorText,
				VolumeError: row["volume"].errorText,
			})
		}
		return IngestWtradeResults(db, out)

	case types.ProviderFixer:
		out := make([]models.FixerResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.FixerResult{
				StagingKey: key(k),
				Close:      row["close"].value,
				CloseError: row["close"].errorText,
			})
		}
		return IngestFixerResults(db, out)

	case types.ProviderAlphav:
		out := make([]models.AlphavResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.AlphavResult{
				StagingKey: key(k),
				Close:      row["close"].value,
				CloseError: row["close"].errorText,
			})
		}
		return IngestAlphavResults(db, out)

	case types.ProviderCbondsInstrument:
		out := make([]models.CbondsInstrumentResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.CbondsInstrumentResult{
				StagingKey:   key(k),
				Open:         row["open"].value,
				Close:        row["close"].value,
				High:         row["high"].value,
				Low:          row["low"].value,
				Volume:       row["volume"].value,
				Accrual:      row["accrual"].value,
				OpenError:    row["open"].errorText,
				CloseError:   row["close"].errorText,
				HighError:    row["high"].errorText,
				LowError:     row["low"].errorText,
				VolumeError:  row["volume"].errorText,
				AccrualError: row["accrual"].errorText,
			})
		}
		return IngestCbondsInstrumentResults(db, out)

	case types.ProviderCbondsCurrency:
		out := make([]models.CbondsCurrencyResult, 0, len(order))
		for _, k := range order {
			row := rows[k]
			out = append(out, models.CbondsCurrencyResult{
				StagingKey: key(k),
				Open:       row["open"].value,
				Close:      row["close"].value,
				High:       row["high"].value,
				Low:        row["low"].value,
				OpenError:  row["open"].errorText,
				CloseError: row["close"].errorText,
				HighError:  row["high"].errorText,
				LowError:   row["low"].errorText,
			})
		}
		return IngestCbondsCurrencyResults(db, out)
	}

	return nil
}

// FieldsFor lists the raw field codes a provider request asks for.
func FieldsFor(provider types.PricingProvider) []string {
	switch provider {
	case types.ProviderBloombergInstrument:
		return []string{"ask", "bid", "last", "accrual"}
	case types.ProviderBloombergCurrency:
		return []string{"ask", "bid", "last"}
	case types.ProviderBloombergForwards:
		return []string{"last", "weight"}
	case types.ProviderWtrade:
		return []string{"open", "close", "high", "low", "volume"}
	case types.ProviderFixer, types.ProviderAlphav:
		return []string{"close"}
	case types.ProviderCbondsInstrument:
		return []string{"open", "close", "high", "low", "volume", "accrual"}
	case types.ProviderCbondsCurrency:
		return []string{"open", "close", "high", "low"}
	}
	return nil
}
