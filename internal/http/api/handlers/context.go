package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edu-smartai/edusmartai/internal/models"
)

// ContextUserKey is the gin context key holding the authenticated user.
const ContextUserKey = "currentUser"

// CurrentUser returns the authenticated user from the request context, or
// nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// userBody serializes a user for API responses.
func userBody(user *models.User) gin.H {
	return gin.H{
		"id":              user.ID,
		"email":           user.Email,
		"full_name":       user.FullName,
		"role":            user.Role,
		"organization_id": user.OrganizationID,
		"is_active":       user.Active,
		"last_login":      user.LastLogin,
		"created_at":      user.CreatedAt,
	}
}
