package cron

import (
	"time"

	"github.com/jasonlvhit/gocron"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/types"
)

// stagingRetentionDays keeps orphaned staging rows around long enough
// to debug a failed run before they are swept.
const stagingRetentionDays = 7

// StagingCleanupJob deletes staging rows left behind by crashed runs.
// Successful runs purge their own window; this is the backstop.
type StagingCleanupJob struct{}

func (j *StagingCleanupJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Day().At("03:00").Do(cleanupStaging)
	<-s.Start()
}

func cleanupStaging() {
	cutoff := time.Now().UTC().AddDate(0, 0, -stagingRetentionDays)

	providers := []types.PricingProvider{
		types.ProviderBloombergInstrument,
		types.ProviderBloombergCurrency,
		types.ProviderBloombergForwards,
		types.ProviderWtrade,
		types.ProviderFixer,
		types.ProviderAlphav,
		types.ProviderCbondsInstrument,
		types.ProviderCbondsCurrency,
	}

	for _, provider := range providers {
		model := models.StagingModelFor(provider)
		if model == nil {
			continue
		}
		if err := config.DataBase.
			Where("created_at < ?", cutoff).Delete(model).Error; err != nil {
			config.Logger.Errorf("staging cleanup %s: %v", provider, err)
		}
	}
}
