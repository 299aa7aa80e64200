package datatypes

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// FieldMap is a column-name → expression map stored as JSONB, need to
// implements driver.Valuer, sql.Scanner interface
type FieldMap map[string]string

// Value return json value, implement driver.Valuer interface
func (m FieldMap) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	return string(data), err
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (m *FieldMap) Scan(val interface{}) error {
	if val == nil {
		*m = FieldMap{}
		return nil
	}
	var ba []byte
	switch v := val.(type) {
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", val))
	}
	t := FieldMap{}
	err := json.Unmarshal(ba, &t)
	*m = FieldMap(t)
	return err
}

// GormDataType gorm common data type
func (m FieldMap) GormDataType() string {
	return "jsonmap"
}

// GormDBDataType gorm db data type
func (FieldMap) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "JSON"
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	}
	return ""
}
