package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edu-smartai/edusmartai/internal/db"
	"github.com/edu-smartai/edusmartai/internal/llm"
	"github.com/edu-smartai/edusmartai/internal/models"
	"github.com/edu-smartai/edusmartai/internal/settings"
)

var (
	ErrInvalidGrade     = errors.New("lesson: grade level must be K or 1-8")
	ErrInvalidSubject   = errors.New("lesson: unknown subject")
	ErrInvalidLanguage  = errors.New("lesson: language must be english, spanish, or bilingual")
	ErrMissingStandard  = errors.New("lesson: TEKS standard is required")
	ErrMissingObjective = errors.New("lesson: learning objective is required")
	ErrNoClient         = errors.New("lesson: generation is not configured")
)

// QuotaExceededError reports that the organization hit its monthly lesson
// limit. Limit carries the configured cap for the error message shown to
// the teacher.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly lesson limit reached (%d lessons). Contact your administrator to upgrade your plan", e.Limit)
}

// ParseError reports that the model returned something other than the
// requested JSON document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("lesson: model response was not valid lesson JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Request describes one lesson generation.
type Request struct {
	GradeLevel        string
	Subject           string
	TeksStandard      string
	LearningObjective string
	Duration          int
	Language          string
	TeacherNotes      string
	Sections          SectionSet
}

// Validate checks the request fields and applies defaults in place.
func (r *Request) Validate() error {
	if !ValidGrade(r.GradeLevel) {
		return ErrInvalidGrade
	}
	if !ValidSubject(r.Subject) {
		return ErrInvalidSubject
	}
	if !SubjectOfferedInGrade(r.Subject, r.GradeLevel) {
		return fmt.Errorf("%w: %s is not offered in grade %s", ErrInvalidSubject, r.Subject, r.GradeLevel)
	}
	if r.TeksStandard == "" {
		return ErrMissingStandard
	}
	if r.LearningObjective == "" {
		return ErrMissingObjective
	}
	if r.Duration <= 0 {
		r.Duration = 45
	}
	if r.Language == "" {
		r.Language = models.LanguageBilingual
	}
	if !models.ValidLanguage(r.Language) {
		return ErrInvalidLanguage
	}
	r.Sections = r.Sections.Normalize(r.Subject)
	return nil
}

// Generator turns validated requests into persisted lesson plans.
type Generator struct {
	conn    *gorm.DB
	client  llm.Client
	timeout time.Duration
}

// NewGenerator builds a Generator. client may be nil when no model is
// configured; Generate then fails with ErrNoClient.
func NewGenerator(conn *gorm.DB, client llm.Client, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Generator{conn: conn, client: client, timeout: timeout}
}

const (
	generationTemperature = 0.7
	generationMaxTokens   = 4000
)

// Generate validates the request, enforces the organization's monthly
// quota, calls the model, and persists the resulting lesson plan. The
// quota is re-checked inside the persisting transaction so concurrent
// requests cannot overshoot the cap.
func (g *Generator) Generate(ctx context.Context, user *models.User, req Request) (*models.LessonPlan, error) {
	if g.client == nil {
		return nil, ErrNoClient
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	org, err := g.loadOrganization(user.OrganizationID)
	if err != nil {
		return nil, err
	}
	used, err := monthlyLessonCount(g.conn, org.ID)
	if err != nil {
		return nil, err
	}
	if used >= int64(org.MaxMonthlyLessons) {
		return nil, &QuotaExceededError{Limit: org.MaxMonthlyLessons}
	}

	intent := ClassifyNotes(req.TeacherNotes)
	prompt := BuildPrompt(req, req.Sections, intent)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := generationTemperature
	resp, err := g.client.Complete(callCtx, llm.Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    generationMaxTokens,
		Temperature:  &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("lesson: generation failed: %w", err)
	}

	var content Content
	raw := llm.StripFences(resp.Content)
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := content.ValidateSections(req.Sections); err != nil {
		return nil, &ParseError{Err: err}
	}

	encoded, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("lesson: encode content: %w", err)
	}

	cost := settings.LoadFloat(g.conn, settings.LessonCostUSDKey, 0.25)

	plan := &models.LessonPlan{
		UserID:            user.ID,
		OrganizationID:    user.OrganizationID,
		GradeLevel:        req.GradeLevel,
		Subject:           req.Subject,
		TeksStandard:      req.TeksStandard,
		LearningObjective: req.LearningObjective,
		Duration:          req.Duration,
		Language:          req.Language,
		Content:           datatypes.JSON(encoded),
		APICost:           cost,
	}

	if err := g.persist(plan); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":         user.Email,
		"organization": org.ID,
		"grade":        req.GradeLevel,
		"subject":      req.Subject,
		"standard":     req.TeksStandard,
		"intent":       intent.String(),
		"tokens":       resp.PromptTokens + resp.CompletionTokens,
	}).Info("lesson plan generated")

	return plan, nil
}

// persist inserts the plan and bumps the organization counter in one
// transaction, re-checking the monthly quota while holding the row lock.
// SQLite has no FOR UPDATE; its single-writer model gives the same
// guarantee.
func (g *Generator) persist(plan *models.LessonPlan) error {
	return g.conn.Transaction(func(tx *gorm.DB) error {
		orgQuery := tx
		if !db.IsSQLite(tx) {
			orgQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var org models.Organization
		if err := orgQuery.First(&org, "id = ?", plan.OrganizationID).Error; err != nil {
			return fmt.Errorf("lesson: load organization: %w", err)
		}

		used, err := monthlyLessonCount(tx, org.ID)
		if err != nil {
			return err
		}
		if used >= int64(org.MaxMonthlyLessons) {
			return &QuotaExceededError{Limit: org.MaxMonthlyLessons}
		}

		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("lesson: save lesson plan: %w", err)
		}
		if err := tx.Model(&models.Organization{}).
			Where("id = ?", org.ID).
			UpdateColumn("total_lessons_generated", gorm.Expr("total_lessons_generated + ?", 1)).Error; err != nil {
			return fmt.Errorf("lesson: update organization counter: %w", err)
		}
		return nil
	})
}

func (g *Generator) loadOrganization(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := g.conn.First(&org, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("lesson: load organization: %w", err)
	}
	if !org.Active {
		return nil, fmt.Errorf("lesson: organization %d is disabled", id)
	}
	return &org, nil
}

// monthlyLessonCount counts the organization's lessons created since the
// start of the current calendar month (UTC).
func monthlyLessonCount(tx *gorm.DB, orgID uint64) (int64, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var count int64
	err := tx.Model(&models.LessonPlan{}).
		Where("organization_id = ? AND created_at >= ?", orgID, monthStart).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("lesson: count monthly lessons: %w", err)
	}
	return count, nil
}

// MonthlyUsage reports lessons used this month and the configured limit
// for an organization.
func MonthlyUsage(conn *gorm.DB, org *models.Organization) (used int64, limit int, err error) {
	used, err = monthlyLessonCount(conn, org.ID)
	if err != nil {
		return 0, 0, err
	}
	return used, org.MaxMonthlyLessons, nil
}
