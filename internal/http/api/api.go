package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edu-smartai/edusmartai/internal/config"
	"github.com/edu-smartai/edusmartai/internal/http/api/handlers"
	"github.com/edu-smartai/edusmartai/internal/lesson"
	"github.com/edu-smartai/edusmartai/internal/models"
	"github.com/edu-smartai/edusmartai/internal/security"
	"github.com/edu-smartai/edusmartai/internal/teks"
)

// RegisterRoutes registers all API routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, standards *teks.Service, generator *lesson.Generator, aiConfigured bool) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db, aiConfigured)
	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)

	teksHandler := handlers.NewTEKSHandler(standards)
	teksGroup := r.Group("/api/teks")
	teksGroup.GET("/grades", teksHandler.Grades)
	teksGroup.GET("/stats", teksHandler.Stats)
	teksGroup.GET("/code/:code", teksHandler.StandardByCode)
	teksGroup.GET("/:grade/subjects", teksHandler.Subjects)
	teksGroup.GET("/:grade/:subject", teksHandler.Standards)

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/token", authHandler.Token)

	authed := r.Group("/api")
	authed.Use(userAuthMiddleware(db, jwtCfg))

	authed.GET("/auth/me", authHandler.Me)

	orgHandler := handlers.NewOrganizationHandler(db)
	authed.POST("/organizations", requireSuperAdmin(), orgHandler.Create)
	authed.GET("/organizations/:id", orgHandler.Get)
	authed.GET("/organizations/:id/usage", orgHandler.Usage)

	lessonHandler := handlers.NewLessonHandler(db, generator)
	authed.POST("/lessons/generate", lessonHandler.Generate)
	authed.GET("/lessons", lessonHandler.List)
	authed.GET("/lessons/:id", lessonHandler.Get)
	authed.DELETE("/lessons/:id", lessonHandler.Delete)

	adminHandler := handlers.NewAdminHandler(db)
	adminGroup := authed.Group("/admin")
	adminGroup.Use(requireSuperAdmin())
	adminGroup.GET("/organizations", adminHandler.ListOrganizations)
	adminGroup.GET("/stats", adminHandler.Stats)
}

// userAuthMiddleware validates user JWTs and loads the account into the
// request context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		errFind := db.WithContext(c.Request.Context()).
			Where("email = ?", claims.Subject).
			First(&user).Error
		if errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account disabled"})
			return
		}

		c.Set(handlers.ContextUserKey, &user)
		c.Next()
	}
}

// requireSuperAdmin gates a route group to super admin accounts. It must
// run after userAuthMiddleware.
func requireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handlers.CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if !user.IsSuperAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "super admin access required"})
			return
		}
		c.Next()
	}
}
