package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/edu-smartai/edusmartai/internal/config"
	"github.com/edu-smartai/edusmartai/internal/db"
	"github.com/edu-smartai/edusmartai/internal/http/api"
	"github.com/edu-smartai/edusmartai/internal/lesson"
	"github.com/edu-smartai/edusmartai/internal/llm"
	"github.com/edu-smartai/edusmartai/internal/teks"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the lesson plan API server with database-backed
// components and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtConfig, _ := config.LoadJWTConfig(configPath)
	if jwtConfig.Secret == "" {
		return errors.New("app: JWT secret is required (set jwt.secret or JWT_SECRET)")
	}

	standards := teks.Load(config.LoadTEKSDataPath(configPath))

	openAICfg, _ := config.LoadOpenAIConfig(configPath)
	var client llm.Client
	if openAICfg.Configured() {
		client, err = llm.New(llm.Config{
			APIKey:  openAICfg.APIKey,
			BaseURL: openAICfg.BaseURL,
			Model:   openAICfg.Model,
		})
		if err != nil {
			return err
		}
		log.Infof("lesson generation enabled with model %s", client.Model())
	} else {
		log.Warn("no OpenAI API key configured, lesson generation disabled")
	}
	generator := lesson.NewGenerator(conn, client, 2*time.Minute)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	api.RegisterRoutes(engine, conn, jwtConfig, standards, generator, openAICfg.Configured())

	if port <= 0 {
		port = 8000
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}

// requestLogger logs each request with method, path, status, and latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
