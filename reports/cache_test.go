package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheSettings(tenantID uint64) ReportSettings {
	return ReportSettings{
		TenantID:         tenantID,
		ReportDate:       time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		ReportCurrencyID: 1,
		PricingPolicyID:  5,
	}
}

func TestReportCacheRoundTrip(t *testing.T) {
	settings := cacheSettings(9001)
	items := []ReportItem{{PortfolioID: 21}}

	StoreItems(settings.TenantID, "balance", settings, items)

	got, ok := CachedItems(settings.TenantID, "balance", settings)
	require.True(t, ok)
	assert.EqualValues(t, 21, got[0].PortfolioID)
}

func TestReportCacheSeparatesKinds(t *testing.T) {
	settings := cacheSettings(9002)

	StoreItems(settings.TenantID, "balance", settings, []ReportItem{{PortfolioID: 21}})

	_, ok := CachedItems(settings.TenantID, "pl", settings)
	assert.False(t, ok)
}

func TestInvalidateTenantClearsCachedReports(t *testing.T) {
	hit := cacheSettings(9003)
	kept := cacheSettings(9004)
	StoreItems(hit.TenantID, "balance", hit, []ReportItem{{PortfolioID: 1}})
	StoreItems(kept.TenantID, "balance", kept, []ReportItem{{PortfolioID: 2}})

	InvalidateTenant(hit.TenantID)

	_, ok := CachedItems(hit.TenantID, "balance", hit)
	assert.False(t, ok)
	_, ok = CachedItems(kept.TenantID, "balance", kept)
	assert.True(t, ok)
}

func TestBalanceReportServedFromCache(t *testing.T) {
	settings := cacheSettings(9005)
	items := []ReportItem{{PortfolioID: 21, AccountID: 22}}
	StoreItems(settings.TenantID, "balance", settings, items)

	// no database is configured here, so a cache miss would fail loudly
	got, err := BalanceReport(settings)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestTransactionReportServedFromCache(t *testing.T) {
	settings := TransactionReportSettings{
		TenantID:  9006,
		BeginDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	rows := []TransactionReportRow{{ComplexTransactionID: 314}}
	StoreRows(settings.TenantID, settings, rows)

	got, err := TransactionReport(settings)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}
