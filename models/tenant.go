package models

import (
	"time"

	"github.com/finastack/folio/config"
)

// Tenant is the outermost isolation unit. Every user_code is unique
// within one tenant, and every report falls back to the tenant defaults
// for axes excluded from consolidation.
type Tenant struct {
	ID                    uint64    `json:"id" gorm:"primaryKey"`
	Name                  string    `json:"name"`
	Status                int32     `json:"status" gorm:"default:0"`
	Timezone              string    `json:"timezone" gorm:"default:UTC"`
	DefaultCurrencyID     uint64    `json:"default_currency_id"`
	DefaultAccountID      uint64    `json:"default_account_id"`
	DefaultPortfolioID    uint64    `json:"default_portfolio_id"`
	DefaultInstrumentID   uint64    `json:"default_instrument_id"`
	DefaultCounterpartyID uint64    `json:"default_counterparty_id"`
	DefaultResponsibleID  uint64    `json:"default_responsible_id"`
	DefaultStrategy1ID    uint64    `json:"default_strategy1_id"`
	DefaultStrategy2ID    uint64    `json:"default_strategy2_id"`
	DefaultStrategy3ID    uint64    `json:"default_strategy3_id"`
	DefaultPricingPolicyID uint64   `json:"default_pricing_policy_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Member is a principal inside a tenant, referenced as booking actor
// and audit subject.
type Member struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	TenantID  uint64    `json:"tenant_id" gorm:"index"`
	Username  string    `json:"username" gorm:"index"`
	IsOwner   bool      `json:"is_owner" gorm:"default:false"`
	IsAdmin   bool      `json:"is_admin" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tenant) DefaultCurrency() *Currency {
	currency := &Currency{}
	config.DataBase.First(currency, "id = ?", t.DefaultCurrencyID)
	return currency
}
