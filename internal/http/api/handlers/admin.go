package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbutil "github.com/edu-smartai/edusmartai/internal/db"
	"github.com/edu-smartai/edusmartai/internal/models"
)

// AdminHandler manages platform administration endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListOrganizations returns organizations on the platform, optionally
// filtered by a case-insensitive name search.
func (h *AdminHandler) ListOrganizations(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Organization{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}

	var rows []models.Organization
	errFind := q.Order("created_at ASC").Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list organizations failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, organizationBody(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"organizations": out})
}

// Stats returns platform-wide counts and spend.
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var totalOrgs, totalUsers, totalLessons, monthlyLessons int64
	if errCount := h.db.WithContext(ctx).Model(&models.Organization{}).Count(&totalOrgs).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).Count(&totalUsers).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errCount := h.db.WithContext(ctx).Model(&models.LessonPlan{}).Count(&totalLessons).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if errCount := h.db.WithContext(ctx).Model(&models.LessonPlan{}).
		Where("created_at >= ?", monthStart).
		Count(&monthlyLessons).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var totalCost float64
	if errSum := h.db.WithContext(ctx).Model(&models.LessonPlan{}).
		Select("COALESCE(SUM(api_cost), 0)").
		Scan(&totalCost).Error; errSum != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_organizations": totalOrgs,
		"total_users":         totalUsers,
		"total_lessons":       totalLessons,
		"monthly_lessons":     monthlyLessons,
		"total_api_cost":      totalCost,
	})
}
