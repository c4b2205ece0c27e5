package auth

// Scopes checked by the JSON API.
const (
	ScopeDashboardRead = "dashboard:read"
	ScopeUsersWrite    = "users:write"
)
