package contextkeys

type contextKey string

const (
	UserIDKey       contextKey = "UserID"
	UserRoleKey     contextKey = "UserRole"
	TechnicianIDKey contextKey = "TechnicianID"
	RequestIDKey    contextKey = "RequestID"
)
