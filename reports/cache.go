package reports

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/finastack/folio/config"
)

// Derived report caches are per-tenant with explicit invalidation keys.
// They are advisory: a miss or eviction only costs a rebuild. Writes to
// the domain model publish an invalidation event instead of clearing
// anything synchronously.
var itemCache = gocache.New(5*time.Minute, 10*time.Minute)

func settingsKey(tenantID uint64, kind string, settings interface{}) string {
	raw, _ := json.Marshal(settings)
	return fmt.Sprintf("report:%d:%s:%x", tenantID, kind, md5.Sum(raw))
}

// CachedItems looks up a previously built item list for identical
// settings of the same report kind.
func CachedItems(tenantID uint64, kind string, settings interface{}) ([]ReportItem, bool) {
	if v, ok := itemCache.Get(settingsKey(tenantID, kind, settings)); ok {
		return v.([]ReportItem), true
	}
	return nil, false
}

func StoreItems(tenantID uint64, kind string, settings interface{}, items []ReportItem) {
	itemCache.Set(settingsKey(tenantID, kind, settings), items, gocache.DefaultExpiration)
}

// CachedRows is the transaction-report counterpart of CachedItems.
func CachedRows(tenantID uint64, settings interface{}) ([]TransactionReportRow, bool) {
	if v, ok := itemCache.Get(settingsKey(tenantID, "transaction", settings)); ok {
		return v.([]TransactionReportRow), true
	}
	return nil, false
}

func StoreRows(tenantID uint64, settings interface{}, rows []TransactionReportRow) {
	itemCache.Set(settingsKey(tenantID, "transaction", settings), rows, gocache.DefaultExpiration)
}

// InvalidateTenant drops this worker's cached reports for the tenant
// and publishes the invalidation key for other workers.
func InvalidateTenant(tenantID uint64) {
	prefix := fmt.Sprintf("report:%d:", tenantID)
	for key := range itemCache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			itemCache.Delete(key)
		}
	}
	if config.Redis != nil {
		config.Redis.PublishInvalidation(tenantID, "reports")
	}
}
