package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edu-smartai/edusmartai/internal/config"
	dbutil "github.com/edu-smartai/edusmartai/internal/db"
	"github.com/edu-smartai/edusmartai/internal/models"
	"github.com/edu-smartai/edusmartai/internal/security"
)

// AuthHandler manages registration, login, and account lookup endpoints.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// registerRequest defines the request body for teacher registration.
type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	OrganizationID uint64 `json:"organization_id"`
	Role           string `json:"role"`
}

// Register creates a new teacher account within an existing organization.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	password := strings.TrimSpace(body.Password)
	if password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing password"})
		return
	}
	role := strings.TrimSpace(body.Role)
	if role == "" {
		role = models.RoleTeacher
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	ctx := c.Request.Context()

	var existing models.User
	errLookup := h.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if errLookup == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}
	if !errors.Is(errLookup, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var org models.Organization
	if errOrg := h.db.WithContext(ctx).First(&org, "id = ?", body.OrganizationID).Error; errOrg != nil {
		if errors.Is(errOrg, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organization not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		Email:          email,
		Password:       hash,
		FullName:       strings.TrimSpace(body.FullName),
		Role:           role,
		OrganizationID: org.ID,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	c.JSON(http.StatusCreated, userBody(&user))
}

// Token authenticates a user and issues a bearer token. Credentials come
// form-encoded as username/password, with username carrying the email.
func (h *AuthHandler) Token(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.PostForm("username")))
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing credentials"})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind != nil || !security.VerifyPassword(user.Password, password) {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account disabled"})
		return
	}

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"last_login": now, "updated_at": now}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update last login failed"})
		return
	}

	token, errToken := security.IssueUserToken(h.jwtCfg.Secret, user.Email, h.jwtCfg.Expiry)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, userBody(user))
}
