package settings

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/edu-smartai/edusmartai/internal/models"
	"gorm.io/gorm"
)

// LoadString reads a string setting, falling back to the default on miss.
func LoadString(conn *gorm.DB, key, fallback string) string {
	raw, ok := loadRaw(conn, key)
	if !ok {
		return fallback
	}
	var value string
	if errUnmarshal := json.Unmarshal(raw, &value); errUnmarshal != nil {
		return fallback
	}
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// LoadInt reads an integer setting, falling back to the default on miss.
func LoadInt(conn *gorm.DB, key string, fallback int) int {
	raw, ok := loadRaw(conn, key)
	if !ok {
		return fallback
	}
	var value int
	if errUnmarshal := json.Unmarshal(raw, &value); errUnmarshal != nil {
		return fallback
	}
	return value
}

// LoadFloat reads a float setting, falling back to the default on miss.
func LoadFloat(conn *gorm.DB, key string, fallback float64) float64 {
	raw, ok := loadRaw(conn, key)
	if !ok {
		return fallback
	}
	var value float64
	if errUnmarshal := json.Unmarshal(raw, &value); errUnmarshal != nil {
		return fallback
	}
	return value
}

func loadRaw(conn *gorm.DB, key string) (json.RawMessage, bool) {
	if conn == nil {
		return nil, false
	}
	var row models.Setting
	if errFind := conn.Where("key = ?", key).First(&row).Error; errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, false
		}
		return nil, false
	}
	if len(row.Value) == 0 {
		return nil, false
	}
	return row.Value, true
}
