package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserID      = "user_id"
	KeyIsAdmin     = "isAdmin"
	KeyAuthMethod  = "auth_method"
)

const AuthMethodAPIKey = "api_key"
