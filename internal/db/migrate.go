package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edu-smartai/edusmartai/internal/models"
	internalsettings "github.com/edu-smartai/edusmartai/internal/settings"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// autoMigrateModels applies schema updates for all persisted models.
func autoMigrateModels(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.LessonPlan{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}

// seedDefaultSettings ensures baseline settings rows exist.
func seedDefaultSettings(conn *gorm.DB) error {
	if errSeed := ensureStringSetting(conn, internalsettings.SiteNameKey, internalsettings.DefaultSiteName); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureIntSetting(conn, internalsettings.DefaultMonthlyLessonsKey, internalsettings.DefaultMonthlyLessons); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureFloatSetting(conn, internalsettings.LessonCostUSDKey, internalsettings.DefaultLessonCostUSD); errSeed != nil {
		return errSeed
	}
	return nil
}

// ddl defines an index or DDL statement to apply.
type ddl struct {
	name string // Human-readable name for error reporting.
	sql  string // SQL to execute.
}

// sharedIndexes are index statements valid on both dialects.
var sharedIndexes = []ddl{
	{
		name: "idx_lesson_plans_org_created_at",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_lesson_plans_org_created_at
			ON lesson_plans (organization_id, created_at DESC)
		`,
	},
	{
		name: "idx_lesson_plans_user_created_at",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_lesson_plans_user_created_at
			ON lesson_plans (user_id, created_at DESC)
		`,
	},
	{
		name: "idx_users_org_active",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_users_org_active
			ON users (organization_id, active)
		`,
	},
	{
		name: "idx_organizations_active",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_organizations_active
			ON organizations (id)
			WHERE active = true
		`,
	},
	{
		name: "idx_settings_updated_at_key",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_settings_updated_at_key
			ON settings (updated_at DESC, key DESC)
		`,
	},
}

// migratePostgres applies PostgreSQL-specific schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrateModels(conn); errAutoMigrate != nil {
		return errAutoMigrate
	}
	if errSeed := seedDefaultSettings(conn); errSeed != nil {
		return errSeed
	}

	for _, item := range sharedIndexes {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	_ = conn.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error

	// trgmIndex defines trigram and fallback index statements.
	type trgmIndex struct {
		name     string // Logical index name.
		trgmSQL  string // Trigram index SQL.
		lowerSQL string // Lowercase fallback index SQL.
	}
	trgmIndexes := []trgmIndex{
		{
			name: "idx_users_email",
			trgmSQL: `
				CREATE INDEX IF NOT EXISTS idx_users_email_trgm
				ON users USING gin (LOWER(email) gin_trgm_ops)
			`,
			lowerSQL: `
				CREATE INDEX IF NOT EXISTS idx_users_email_lower
				ON users (LOWER(email))
			`,
		},
		{
			name: "idx_organizations_name",
			trgmSQL: `
				CREATE INDEX IF NOT EXISTS idx_organizations_name_trgm
				ON organizations USING gin (LOWER(name) gin_trgm_ops)
			`,
			lowerSQL: `
				CREATE INDEX IF NOT EXISTS idx_organizations_name_lower
				ON organizations (LOWER(name))
			`,
		},
	}
	for _, item := range trgmIndexes {
		if errIdx := conn.Exec(item.trgmSQL).Error; errIdx != nil {
			if errLower := conn.Exec(item.lowerSQL).Error; errLower != nil {
				return fmt.Errorf("db: create index %s: %w", item.name, errLower)
			}
		}
	}

	return nil
}

// migrateSQLite applies SQLite-specific schema updates and indexes.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrateModels(conn); errAutoMigrate != nil {
		return errAutoMigrate
	}
	if errSeed := seedDefaultSettings(conn); errSeed != nil {
		return errSeed
	}

	for _, item := range sharedIndexes {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}

// ensureStringSetting ensures a string setting exists and defaults when empty.
func ensureStringSetting(conn *gorm.DB, key, value string) error {
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal %s setting: %w", key, errMarshal)
	}
	return ensureSetting(conn, key, json.RawMessage(payload))
}

// ensureIntSetting ensures an integer setting exists and defaults when empty.
func ensureIntSetting(conn *gorm.DB, key string, value int) error {
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal %s setting: %w", key, errMarshal)
	}
	return ensureSetting(conn, key, json.RawMessage(payload))
}

// ensureFloatSetting ensures a float setting exists and defaults when empty.
func ensureFloatSetting(conn *gorm.DB, key string, value float64) error {
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal %s setting: %w", key, errMarshal)
	}
	return ensureSetting(conn, key, json.RawMessage(payload))
}

// ensureSetting creates the setting or backfills an empty value.
func ensureSetting(conn *gorm.DB, key string, rawValue json.RawMessage) error {
	var existing models.Setting
	if errFind := conn.Where("key = ?", key).First(&existing).Error; errFind == nil {
		trimmed := strings.TrimSpace(string(existing.Value))
		if len(existing.Value) == 0 || trimmed == "" || trimmed == "null" {
			if errUpdate := conn.Model(&existing).Updates(map[string]any{
				"value":      rawValue,
				"updated_at": time.Now().UTC(),
			}).Error; errUpdate != nil {
				return fmt.Errorf("db: update %s setting: %w", key, errUpdate)
			}
		}
		return nil
	} else if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query %s setting: %w", key, errFind)
	}

	setting := models.Setting{
		Key:       key,
		Value:     rawValue,
		UpdatedAt: time.Now().UTC(),
	}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create %s setting: %w", key, errCreate)
	}
	return nil
}
