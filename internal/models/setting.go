package models

import (
	"encoding/json"
	"time"
)

// Setting stores a JSON-encoded configuration value keyed by name.
type Setting struct {
	Key   string          `gorm:"primaryKey;type:varchar(255)"` // Setting key.
	Value json.RawMessage `gorm:"type:jsonb"`                   // JSON-encoded value.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
