package models

// UserRole represents the two application roles.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// User is the application-level profile record stored in the users
// collection. Its ID is the identity-assigned credential ID, which is why
// deleting the profile does not touch the credential itself.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	SubjectID string   `json:"subjectId,omitempty"`
}
