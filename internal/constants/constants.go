package constants

// Session and context keys
const (
	SessionCookieName = "toondo_session"
	ContextKeyUserID  = "user_id"
	ContextKeyTask    = "task"
	ContextKeyActor   = "actor"
)

// Storage keys for the persisted collections
const (
	StorageKeyTasks       = "toondo-tasks"
	StorageKeyUsers       = "toondo-users"
	StorageKeyCurrentUser = "toondo-current-user"
)

// Auth limits
const (
	MinPasswordLength = 6
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// Checklist limits
const (
	MaxLabelsPerItem         = 6
	DescriptionPreviewLength = 30
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// AI limits
const (
	MaxAIGeneratedTasks = 20
	MaxAIBreakdownSteps = 12
)
