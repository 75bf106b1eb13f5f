package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// UUIDArray is a []uuid.UUID that implements GORM Scanner/Valuer for JSONB storage
type UUIDArray []uuid.UUID

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a UUIDArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *UUIDArray) Scan(value interface{}) error {
	if value == nil {
		*a = UUIDArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan UUIDArray: unsupported type")
	}

	return json.Unmarshal(bytes, a)
}

// StringArray is a []string that implements GORM Scanner/Valuer for JSONB storage
type StringArray []string

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan StringArray: unsupported type")
	}

	return json.Unmarshal(bytes, a)
}
