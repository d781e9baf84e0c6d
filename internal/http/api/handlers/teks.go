package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edu-smartai/edusmartai/internal/teks"
)

// TEKSHandler serves the Texas Essential Knowledge and Skills lookup
// endpoints.
type TEKSHandler struct {
	standards *teks.Service
}

// NewTEKSHandler constructs a TEKSHandler.
func NewTEKSHandler(standards *teks.Service) *TEKSHandler {
	return &TEKSHandler{standards: standards}
}

// Grades lists the available grade levels.
func (h *TEKSHandler) Grades(c *gin.Context) {
	grades := h.standards.Grades()
	c.JSON(http.StatusOK, gin.H{
		"grades": grades,
		"count":  len(grades),
	})
}

// Subjects lists the subjects available for a grade.
func (h *TEKSHandler) Subjects(c *gin.Context) {
	grade := strings.TrimSpace(c.Param("grade"))
	if !h.standards.HasGrade(grade) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("grade '%s' not found. Available grades: %s",
				grade, strings.Join(h.standards.Grades(), ", ")),
		})
		return
	}
	subjects := h.standards.Subjects(grade)
	c.JSON(http.StatusOK, gin.H{
		"grade":    grade,
		"subjects": subjects,
		"count":    len(subjects),
	})
}

// Standards lists the standards for a grade and subject.
func (h *TEKSHandler) Standards(c *gin.Context) {
	grade := strings.TrimSpace(c.Param("grade"))
	subject := strings.TrimSpace(c.Param("subject"))
	if !h.standards.HasGrade(grade) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("grade '%s' not found. Available grades: %s",
				grade, strings.Join(h.standards.Grades(), ", ")),
		})
		return
	}
	if !h.standards.HasSubject(grade, subject) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("subject '%s' not found for grade %s. Available subjects: %s",
				subject, grade, strings.Join(h.standards.Subjects(grade), ", ")),
		})
		return
	}
	standards := h.standards.Standards(grade, subject)
	c.JSON(http.StatusOK, gin.H{
		"grade":     grade,
		"subject":   subject,
		"standards": standards,
		"count":     len(standards),
	})
}

// StandardByCode looks up a single standard by its code, e.g. "4.7(D)".
func (h *TEKSHandler) StandardByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	standard, ok := h.standards.FindByCode(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("TEKS standard '%s' not found", code),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":     code,
		"standard": standard,
	})
}

// Stats reports totals over the standards table.
func (h *TEKSHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.standards.Stats())
}
