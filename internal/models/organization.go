package models

import "time"

// Subscription tiers assignable to an organization.
const (
	TierTrial      = "trial"
	TierBasic      = "basic"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

// Organization represents a tenant (charter school) and its billing limits.
type Organization struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Name         string `gorm:"type:varchar(255);not null" json:"name"`          // Display name.
	ContactEmail string `gorm:"type:varchar(255);not null" json:"contact_email"` // Billing contact email.
	ContactName  string `gorm:"type:varchar(255)" json:"contact_name"`           // Billing contact name.

	SubscriptionTier  string `gorm:"type:varchar(50);not null;default:'trial'" json:"subscription_tier"` // trial, basic, pro, enterprise.
	MaxMonthlyLessons int    `gorm:"not null;default:50" json:"max_monthly_lessons"`                     // Monthly generation quota.

	Active                bool `gorm:"not null;default:true" json:"is_active"`          // Whether the tenant is active.
	TotalLessonsGenerated int  `gorm:"not null;default:0" json:"total_lessons_generated"` // Lifetime generation counter.

	Users       []User       `gorm:"foreignKey:OrganizationID" json:"-"` // Member accounts.
	LessonPlans []LessonPlan `gorm:"foreignKey:OrganizationID" json:"-"` // Generated artifacts.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

// ValidTier reports whether the tier is one of the known subscription tiers.
func ValidTier(tier string) bool {
	switch tier {
	case TierTrial, TierBasic, TierPro, TierEnterprise:
		return true
	}
	return false
}
