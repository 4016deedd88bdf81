package domain

type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Session is the read-only view of who is logged in.
type Session struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	Role            Role `json:"role"`
}

// SessionDescriptor is what the backend returns on login and what is
// persisted under the session key.
type SessionDescriptor struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
	Email string `json:"email,omitempty"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Password    string `validate:"required"`
	Picture     []byte
	PictureName string
}
