package pricing

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// Staging rows are upserted on the natural key so a provider re-sending
// a window replaces values instead of duplicating them.
var stagingConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "tenant_id"},
		{Name: "procedure_instance_id"},
		{Name: "reference"},
		{Name: "parameters"},
		{Name: "date"},
	},
	UpdateAll: true,
}

// IngestInstrumentResults stores one provider response batch.
func IngestInstrumentResults(db *gorm.DB, rows []models.BloombergInstrumentResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

func IngestCurrencyResults(db *gorm.DB, rows []models.BloombergCurrencyResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

func IngestForwardsResults(db *gorm.DB, rows []models.BloombergForwardsResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

func IngestWtradeResults(db *gorm.DB, rows []models.WtradeResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

func IngestFixerResults(db *gorm.DB, rows []models.FixerResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

func IngestAlphavResults(db *gorm.DB, rows []models.AlphavResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

func IngestCbondsInstrumentResults(db *gorm.DB, rows []models.CbondsInstrumentResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

func IngestCbondsCurrencyResults(db *gorm.DB, rows []models.CbondsCurrencyResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(stagingConflict).Create(&rows).Error
}

// PurgeWindow drops the staged rows of a finished procedure instance.
func PurgeWindow(db *gorm.DB, provider types.PricingProvider, instanceID uint64) error {
	model := models.StagingModelFor(provider)
	if model == nil {
		return nil
	}
	return db.Where("procedure_instance_id = ?", instanceID).Delete(model).Error
}
