package settings

// DB config keys and defaults for settings.
const (
	// SiteNameKey is the DB config key for the service display name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback service display name.
	DefaultSiteName = "Edu-SmartAI"
	// DefaultMonthlyLessonsKey controls the quota assigned to new organizations.
	DefaultMonthlyLessonsKey = "DEFAULT_MONTHLY_LESSONS"
	// LessonCostUSDKey controls the per-generation cost estimate in USD.
	LessonCostUSDKey = "LESSON_COST_USD"
	// DefaultMonthlyLessons is the fallback monthly quota for new organizations.
	DefaultMonthlyLessons = 50
	// DefaultLessonCostUSD is the fallback per-generation cost estimate.
	DefaultLessonCostUSD = 0.25
)
