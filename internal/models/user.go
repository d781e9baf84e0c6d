package models

import "time"

// Roles assignable to a user account.
const (
	RoleTeacher    = "teacher"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User represents a teacher or admin account scoped to one organization.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Email    string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"` // Unique login email.
	Password string `gorm:"type:varchar(255);not null" json:"-"`                 // Hashed password.
	FullName string `gorm:"type:varchar(255);not null" json:"full_name"`         // Display name.

	Role string `gorm:"type:varchar(50);not null;default:'teacher'" json:"role"` // teacher, admin, super_admin.

	OrganizationID uint64        `gorm:"index;not null" json:"organization_id"`        // Owning tenant ID.
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"-"`           // Owning tenant.

	Active    bool       `gorm:"not null;default:true" json:"is_active"` // Whether the user can sign in.
	LastLogin *time.Time `json:"last_login"`                             // Last successful login.

	LessonPlans []LessonPlan `gorm:"foreignKey:UserID" json:"-"` // Generated artifacts.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

// ValidRole reports whether the role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleTeacher, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the user holds the admin or super_admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// IsSuperAdmin reports whether the user holds the super_admin role.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
