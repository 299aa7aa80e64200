package types

// Consolidation axes of the balance and P&L builders. IGNORE folds the
// axis into the tenant default entity, CONSOLIDATE keeps it in the
// group-by key.
type ConsolidationMode = string

var (
	ModeIgnore      ConsolidationMode = "ignore"
	ModeConsolidate ConsolidationMode = "consolidate"
)

type CostMethod = string

var (
	CostMethodAvco CostMethod = "avco"
	CostMethodFifo CostMethod = "fifo"
)

type DepthLevel = string

var (
	DepthComplexTransaction DepthLevel = "complex_transaction"
	DepthBaseTransaction    DepthLevel = "base_transaction"
	DepthEntry              DepthLevel = "entry"
)

type DateFieldKey = string

var (
	DateFieldAccountingDate  DateFieldKey = "accounting_date"
	DateFieldCashDate        DateFieldKey = "cash_date"
	DateFieldTransactionDate DateFieldKey = "transaction_date"
)

type ItemType = string

var (
	ItemTypeInstrument ItemType = "instrument"
	ItemTypeCurrency   ItemType = "currency"
)

type EntryItemType = string

var (
	EntryItemInstrument    EntryItemType = "instrument"
	EntryItemCurrency      EntryItemType = "currency"
	EntryItemFXVariations  EntryItemType = "fx_variations"
	EntryItemFXTrades      EntryItemType = "fx_trades"
	EntryItemTransactionPL EntryItemType = "transaction_pl"
	EntryItemMismatch      EntryItemType = "mismatch"
	EntryItemExposureCopy  EntryItemType = "exposure_copy"
)

type ErrorHandler = string

var (
	ErrorHandlerBreak    ErrorHandler = "break"
	ErrorHandlerContinue ErrorHandler = "continue"
)

type RebookReaction = string

var (
	RebookFullReplay          RebookReaction = "full_replay"
	RebookPreserveManualEdits RebookReaction = "preserve_manual_edits"
	RebookSkip                RebookReaction = "skip"
)

type MessageType = string

var (
	MessageInfo    MessageType = "info"
	MessageWarning MessageType = "warning"
	MessageError   MessageType = "error"
	MessageSuccess MessageType = "success"
)

type PricingProvider = string

var (
	ProviderBloombergInstrument PricingProvider = "bloomberg_instrument"
	ProviderBloombergCurrency   PricingProvider = "bloomberg_currency"
	ProviderBloombergForwards   PricingProvider = "bloomberg_forwards"
	ProviderWtrade              PricingProvider = "wtrade"
	ProviderFixer               PricingProvider = "fixer"
	ProviderAlphav              PricingProvider = "alphav"
	ProviderCbondsInstrument    PricingProvider = "cbonds_instrument"
	ProviderCbondsCurrency      PricingProvider = "cbonds_currency"
)

type AccrualCalculationMethod = string

var (
	AccrualNone        AccrualCalculationMethod = "none"
	AccrualPerSchedule AccrualCalculationMethod = "per_schedule"
	AccrualPerFormula  AccrualCalculationMethod = "per_formula"
)

type ExposureCalculationModel = string

var (
	ExposureMarketValue         ExposureCalculationModel = "market_value"
	ExposurePriceExposure       ExposureCalculationModel = "price_exposure"
	ExposureDeltaAdjusted       ExposureCalculationModel = "delta_adjusted"
	ExposureUnderlyingLongShort ExposureCalculationModel = "underlying_long_short"
)
