package usecase

import "time"

// Cache keys shared with the dashboard read side. Per-user dashboard keys
// are built by appending the user id to the prefix.
const (
	CacheKeyRules          = "transactionRules:all"
	CacheKeyUsers          = "users:all"
	CacheKeyAdminDashboard = "dashboard:admin"

	CacheKeyTeacherDashboardPrefix = "professor-dashboard:"
	CacheKeyStudentDashboardPrefix = "student-dashboard:"
)

const (
	// DefaultRuleCacheTTL is how long a rule listing stays cached.
	DefaultRuleCacheTTL = time.Hour

	// DefaultListLimit bounds read-side listings.
	DefaultListLimit = 50

	// MaxListLimit caps caller-supplied page sizes.
	MaxListLimit = 500
)
