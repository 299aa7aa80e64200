package reports

// BalanceReport is the balance report entry point: serve a cached item
// list when an identical request was built recently, otherwise load the
// universe, build, and cache the result.
func BalanceReport(settings ReportSettings) ([]ReportItem, error) {
	if items, ok := CachedItems(settings.TenantID, "balance", settings); ok {
		return items, nil
	}
	universe, err := LoadUniverse(&settings)
	if err != nil {
		return nil, err
	}
	items := NewBalanceReportBuilder(settings, universe).Build()
	StoreItems(settings.TenantID, "balance", settings, items)
	return items, nil
}

// PLReport builds the P&L report. It shares the cache with the balance
// report but under its own kind, so identical settings never cross over.
func PLReport(settings ReportSettings) ([]ReportItem, error) {
	if items, ok := CachedItems(settings.TenantID, "pl", settings); ok {
		return items, nil
	}
	universe, err := LoadUniverse(&settings)
	if err != nil {
		return nil, err
	}
	items := NewPLReportBuilder(settings, universe).Build()
	StoreItems(settings.TenantID, "pl", settings, items)
	return items, nil
}

// TransactionReport builds the transaction report. The universe is
// loaded up to the end date; fx and price lookups are not used by this
// builder.
func TransactionReport(settings TransactionReportSettings) ([]TransactionReportRow, error) {
	if rows, ok := CachedRows(settings.TenantID, settings); ok {
		return rows, nil
	}
	load := ReportSettings{
		TenantID:     settings.TenantID,
		ReportDate:   settings.EndDate,
		PortfolioIDs: settings.PortfolioIDs,
	}
	universe, err := LoadUniverse(&load)
	if err != nil {
		return nil, err
	}
	rows := NewTransactionReportBuilder(settings, universe).Build()
	StoreRows(settings.TenantID, settings, rows)
	return rows, nil
}
