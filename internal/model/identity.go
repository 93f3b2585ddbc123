package model

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

// Identity is the caller as resolved by the session layer.
type Identity struct {
	UserID string
	Role   Role
}

func (id Identity) IsTeacher() bool { return id.Role == RoleTeacher || id.Role == RoleAdmin }
func (id Identity) IsStudent() bool { return id.Role == RoleStudent }

// RequireTeacher rejects callers that may not author or grade problems.
func (id Identity) RequireTeacher() error {
	if id.UserID == "" || !id.IsTeacher() {
		return NewAuthorizationError("teacher role required")
	}
	return nil
}

// RequireStudent rejects callers that may not attempt problems.
func (id Identity) RequireStudent() error {
	if id.UserID == "" || !id.IsStudent() {
		return NewAuthorizationError("student role required")
	}
	return nil
}
