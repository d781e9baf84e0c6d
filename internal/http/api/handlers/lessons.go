package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edu-smartai/edusmartai/internal/lesson"
	"github.com/edu-smartai/edusmartai/internal/models"
)

// LessonHandler manages lesson plan endpoints.
type LessonHandler struct {
	db        *gorm.DB
	generator *lesson.Generator
}

// NewLessonHandler constructs a LessonHandler. generator may be nil when
// no model is configured; Generate then reports the service unavailable.
func NewLessonHandler(db *gorm.DB, generator *lesson.Generator) *LessonHandler {
	return &LessonHandler{db: db, generator: generator}
}

// generateLessonRequest defines the request body for lesson generation.
// Section flags are pointers so an omitted flag falls back to its default
// rather than false.
type generateLessonRequest struct {
	GradeLevel        string `json:"grade_level"`
	Subject           string `json:"subject"`
	TeksStandard      string `json:"teks_standard"`
	LearningObjective string `json:"learning_objective"`
	Duration          int    `json:"duration"`
	Language          string `json:"language"`
	TeacherNotes      string `json:"teacher_notes"`

	IncludeMainLesson          *bool `json:"include_main_lesson"`
	IncludeGuidedPractice      *bool `json:"include_guided_practice"`
	IncludeIndependentPractice *bool `json:"include_independent_practice"`
	IncludeLearningStations    *bool `json:"include_learning_stations"`
	IncludeSmallGroup          *bool `json:"include_small_group"`
	IncludeTier2               *bool `json:"include_tier2"`
	IncludeTier3               *bool `json:"include_tier3"`
}

func (r generateLessonRequest) sections() lesson.SectionSet {
	s := lesson.DefaultSections()
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&s.MainLesson, r.IncludeMainLesson)
	apply(&s.GuidedPractice, r.IncludeGuidedPractice)
	apply(&s.IndependentPractice, r.IncludeIndependentPractice)
	apply(&s.LearningStations, r.IncludeLearningStations)
	apply(&s.SmallGroup, r.IncludeSmallGroup)
	apply(&s.Tier2, r.IncludeTier2)
	apply(&s.Tier3, r.IncludeTier3)
	return s
}

// Generate creates a new lesson plan via the model and stores it.
func (h *LessonHandler) Generate(c *gin.Context) {
	user := CurrentUser(c)

	var body generateLessonRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req := lesson.Request{
		GradeLevel:        strings.TrimSpace(body.GradeLevel),
		Subject:           strings.TrimSpace(body.Subject),
		TeksStandard:      strings.TrimSpace(body.TeksStandard),
		LearningObjective: strings.TrimSpace(body.LearningObjective),
		Duration:          body.Duration,
		Language:          strings.ToLower(strings.TrimSpace(body.Language)),
		TeacherNotes:      strings.TrimSpace(body.TeacherNotes),
		Sections:          body.sections(),
	}

	plan, errGen := h.generator.Generate(c.Request.Context(), user, req)
	if errGen != nil {
		var quotaErr *lesson.QuotaExceededError
		var parseErr *lesson.ParseError
		switch {
		case errors.As(errGen, &quotaErr):
			c.JSON(http.StatusForbidden, gin.H{"error": quotaErr.Error()})
		case errors.Is(errGen, lesson.ErrInvalidGrade),
			errors.Is(errGen, lesson.ErrInvalidSubject),
			errors.Is(errGen, lesson.ErrInvalidLanguage),
			errors.Is(errGen, lesson.ErrMissingStandard),
			errors.Is(errGen, lesson.ErrMissingObjective):
			c.JSON(http.StatusBadRequest, gin.H{"error": errGen.Error()})
		case errors.Is(errGen, lesson.ErrNoClient):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lesson generation is not configured"})
		case errors.As(errGen, &parseErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model returned an unusable lesson plan"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lesson generation failed"})
		}
		return
	}

	// PureJSON keeps Spanish characters readable instead of \uXXXX escapes.
	c.PureJSON(http.StatusCreated, lessonBody(plan))
}

// List returns the caller's lesson plans, newest first.
func (h *LessonHandler) List(c *gin.Context) {
	user := CurrentUser(c)

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if skip < 0 {
		skip = 0
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var rows []models.LessonPlan
	errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list lessons failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, lessonBody(&rows[i]))
	}
	c.PureJSON(http.StatusOK, gin.H{"lessons": out})
}

// Get returns a lesson plan. The owner, admins of the same organization,
// and super admins may read it.
func (h *LessonHandler) Get(c *gin.Context) {
	user := CurrentUser(c)
	plan, ok := h.loadAuthorized(c, user)
	if !ok {
		return
	}
	c.PureJSON(http.StatusOK, lessonBody(plan))
}

// Delete removes a lesson plan. Same access rule as Get.
func (h *LessonHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)
	plan, ok := h.loadAuthorized(c, user)
	if !ok {
		return
	}
	if errDel := h.db.WithContext(c.Request.Context()).Delete(&models.LessonPlan{}, plan.ID).Error; errDel != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lesson plan deleted"})
}

// loadAuthorized fetches the lesson plan in the :id param and enforces the
// owner-or-admin access rule, writing the error response itself on
// failure.
func (h *LessonHandler) loadAuthorized(c *gin.Context, user *models.User) (*models.LessonPlan, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	var plan models.LessonPlan
	errFind := h.db.WithContext(c.Request.Context()).First(&plan, "id = ?", id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson plan not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}

	switch {
	case plan.UserID == user.ID:
	case user.IsSuperAdmin():
	case user.IsAdmin() && plan.OrganizationID == user.OrganizationID:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}
	return &plan, true
}

// lessonBody serializes a lesson plan for API responses.
func lessonBody(plan *models.LessonPlan) gin.H {
	return gin.H{
		"id":                 plan.ID,
		"user_id":            plan.UserID,
		"organization_id":    plan.OrganizationID,
		"grade_level":        plan.GradeLevel,
		"subject":            plan.Subject,
		"teks_standard":      plan.TeksStandard,
		"learning_objective": plan.LearningObjective,
		"duration":           plan.Duration,
		"language":           plan.Language,
		"lesson_content":     plan.Content,
		"api_cost":           plan.APICost,
		"created_at":         plan.CreatedAt,
	}
}
