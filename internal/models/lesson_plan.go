package models

import (
	"time"

	"gorm.io/datatypes"
)

// Language modes for generated lesson content.
const (
	LanguageEnglish   = "english"
	LanguageSpanish   = "spanish"
	LanguageBilingual = "bilingual"
)

// LessonPlan represents one generated lesson artifact.
type LessonPlan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID         uint64 `gorm:"index;not null" json:"user_id"`         // Owning user ID.
	OrganizationID uint64 `gorm:"index;not null" json:"organization_id"` // Owning tenant ID, equals the owner's tenant.

	User         *User         `gorm:"foreignKey:UserID" json:"-"`         // Owning user.
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"` // Owning tenant.

	GradeLevel        string `gorm:"type:varchar(10);not null" json:"grade_level"`       // K or 1-8.
	Subject           string `gorm:"type:varchar(100);not null" json:"subject"`          // Subject name.
	TeksStandard      string `gorm:"type:varchar(100)" json:"teks_standard"`             // TEKS standard code.
	LearningObjective string `gorm:"type:text;not null" json:"learning_objective"`       // Teacher-supplied objective.
	Duration          int    `gorm:"not null;default:45" json:"duration"`                // Lesson length in minutes.
	Language          string `gorm:"type:varchar(20);not null;default:'bilingual'" json:"language"` // english, spanish, bilingual.

	Content datatypes.JSON `gorm:"not null" json:"lesson_content"` // Generated section payload.

	APICost float64 `gorm:"type:decimal(10,4);not null;default:0" json:"api_cost"` // Estimated generation cost in USD.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

// ValidLanguage reports whether the language is one of the known modes.
func ValidLanguage(language string) bool {
	switch language {
	case LanguageEnglish, LanguageSpanish, LanguageBilingual:
		return true
	}
	return false
}
