package models

import "time"

type AttributeValueType = string

var (
	AttributeString     AttributeValueType = "string"
	AttributeNumber     AttributeValueType = "number"
	AttributeDate       AttributeValueType = "date"
	AttributeClassifier AttributeValueType = "classifier"
)

type GenericAttributeType struct {
	ID          uint64 `json:"id" gorm:"primaryKey"`
	NamedEntity `gorm:"embedded"`
	ContentType string             `json:"content_type" gorm:"index"`
	ValueType   AttributeValueType `json:"value_type" gorm:"default:string"`
	Order       int32              `json:"order" gorm:"default:0"`
}

// GenericClassifier is one node of an attribute-type classifier tree.
type GenericClassifier struct {
	ID              uint64  `json:"id" gorm:"primaryKey"`
	TenantID        uint64  `json:"tenant_id" gorm:"index"`
	AttributeTypeID uint64  `json:"attribute_type_id" gorm:"index"`
	ParentID        *uint64 `json:"parent_id"`
	Name            string  `json:"name"`
	Level           int32   `json:"level" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GenericAttribute attaches one typed value to any owning entity via
// (content_type, object_id). Exactly one of the value columns is set,
// dictated by the attribute type's value_type.
type GenericAttribute struct {
	ID              uint64     `json:"id" gorm:"primaryKey"`
	TenantID        uint64     `json:"tenant_id" gorm:"index"`
	AttributeTypeID uint64     `json:"attribute_type_id" gorm:"index:,unique,composite:attr_owner"`
	ContentType     string     `json:"content_type" gorm:"index:,unique,composite:attr_owner"`
	ObjectID        uint64     `json:"object_id" gorm:"index:,unique,composite:attr_owner"`
	ValueString     *string    `json:"value_string"`
	ValueFloat      *float64   `json:"value_float"`
	ValueDate       *time.Time `json:"value_date" gorm:"type:date"`
	ClassifierID    *uint64    `json:"classifier_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AttributeOwner is implemented by entities that carry generic
// attributes; owner refs are dispatched through it instead of reflect.
type AttributeOwner interface {
	AttributeContentType() string
	AttributeObjectID() uint64
}

func (a *Account) AttributeContentType() string    { return "accounts.account" }
func (a *Account) AttributeObjectID() uint64       { return a.ID }
func (i *Instrument) AttributeContentType() string { return "instruments.instrument" }
func (i *Instrument) AttributeObjectID() uint64    { return i.ID }
func (p *Portfolio) AttributeContentType() string  { return "portfolios.portfolio" }
func (p *Portfolio) AttributeObjectID() uint64     { return p.ID }
func (c *Currency) AttributeContentType() string   { return "currencies.currency" }
func (c *Currency) AttributeObjectID() uint64      { return c.ID }
func (c *Counterparty) AttributeContentType() string { return "counterparties.counterparty" }
func (c *Counterparty) AttributeObjectID() uint64    { return c.ID }
func (r *Responsible) AttributeContentType() string  { return "counterparties.responsible" }
func (r *Responsible) AttributeObjectID() uint64     { return r.ID }
