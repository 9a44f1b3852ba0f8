package kernel

// AuthContext is the authenticated identity injected into each request by the
// auth middleware. The job service only ever sees the UserID; the rest is
// carried for logging and notifications.
type AuthContext struct {
	UserID UserID `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// IsValid reports whether the context carries a usable identity.
func (ac *AuthContext) IsValid() bool {
	return ac != nil && !ac.UserID.IsEmpty()
}

type ContextKey string

const (
	// AuthContextKey stores the AuthContext in fiber locals / context.Context.
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey stores the request id assigned by the HTTP layer.
	RequestIDKey ContextKey = "request_id"
)
