package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edu-smartai/edusmartai/internal/lesson"
	"github.com/edu-smartai/edusmartai/internal/models"
	"github.com/edu-smartai/edusmartai/internal/settings"
)

// OrganizationHandler manages organization endpoints.
type OrganizationHandler struct {
	db *gorm.DB
}

// NewOrganizationHandler constructs an OrganizationHandler.
func NewOrganizationHandler(db *gorm.DB) *OrganizationHandler {
	return &OrganizationHandler{db: db}
}

// createOrganizationRequest defines the request body for organization
// creation.
type createOrganizationRequest struct {
	Name              string `json:"name"`
	ContactEmail      string `json:"contact_email"`
	ContactName       string `json:"contact_name"`
	SubscriptionTier  string `json:"subscription_tier"`
	MaxMonthlyLessons int    `json:"max_monthly_lessons"`
}

// Create creates a new organization (charter school).
func (h *OrganizationHandler) Create(c *gin.Context) {
	var body createOrganizationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	tier := strings.TrimSpace(body.SubscriptionTier)
	if tier == "" {
		tier = models.TierTrial
	}
	if !models.ValidTier(tier) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription tier"})
		return
	}
	maxMonthly := body.MaxMonthlyLessons
	if maxMonthly <= 0 {
		maxMonthly = settings.LoadInt(h.db, settings.DefaultMonthlyLessonsKey, 50)
	}

	now := time.Now().UTC()
	org := models.Organization{
		Name:              name,
		ContactEmail:      strings.TrimSpace(body.ContactEmail),
		ContactName:       strings.TrimSpace(body.ContactName),
		SubscriptionTier:  tier,
		MaxMonthlyLessons: maxMonthly,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&org).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create organization failed"})
		return
	}
	c.JSON(http.StatusCreated, organizationBody(&org))
}

// Get returns organization details. Members see their own organization;
// super admins see any.
func (h *OrganizationHandler) Get(c *gin.Context) {
	user := CurrentUser(c)
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if user.OrganizationID != id && !user.IsSuperAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var org models.Organization
	if errFind := h.db.WithContext(c.Request.Context()).First(&org, "id = ?", id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, organizationBody(&org))
}

// Usage returns the organization's current-month lesson usage.
func (h *OrganizationHandler) Usage(c *gin.Context) {
	user := CurrentUser(c)
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if user.OrganizationID != id && !user.IsSuperAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	ctx := c.Request.Context()

	var org models.Organization
	if errFind := h.db.WithContext(ctx).First(&org, "id = ?", id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	used, limit, errUsage := lesson.MonthlyUsage(h.db.WithContext(ctx), &org)
	if errUsage != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var totalLessons int64
	if errCount := h.db.WithContext(ctx).Model(&models.LessonPlan{}).
		Where("organization_id = ?", id).
		Count(&totalLessons).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var activeUsers int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).
		Where("organization_id = ? AND active = ?", id, true).
		Count(&activeUsers).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization_id":       org.ID,
		"monthly_lessons_used":  used,
		"monthly_lessons_limit": limit,
		"total_lessons":         totalLessons,
		"active_users":          activeUsers,
		"subscription_tier":     org.SubscriptionTier,
	})
}

// organizationBody serializes an organization for API responses.
func organizationBody(org *models.Organization) gin.H {
	return gin.H{
		"id":                      org.ID,
		"name":                    org.Name,
		"contact_email":           org.ContactEmail,
		"contact_name":            org.ContactName,
		"subscription_tier":       org.SubscriptionTier,
		"max_monthly_lessons":     org.MaxMonthlyLessons,
		"is_active":               org.Active,
		"total_lessons_generated": org.TotalLessonsGenerated,
		"created_at":              org.CreatedAt,
	}
}
