package account

import "time"

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleLandlord      Role = "landlord"
	RoleStudent       Role = "student"
)

type Status string

const (
	StatusActive Status = "active"
	StatusBanned Status = "banned"
)

// Account is the domain representation of a registered user. It mirrors the
// accounts table and carries no JSON annotations so it can be reused by
// different presentation layers.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	Status       Status
	CreatedAt    time.Time
}

// Summary is the admin-facing account row joined with whichever profile the
// role implies. Profile fields are nil when no profile row exists yet.
type Summary struct {
	ID       int64
	Email    string
	Role     Role
	Status   Status
	FullName *string
	Phone    *string
	School   *string
	Verified *bool
}

// RegisterRequest contains registration data supplied by callers.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the session-less login answer: identity is carried as an
// email string on later requests, so login only reports the role and where
// the front-end should land.
type LoginResult struct {
	AccountID int64
	Role      Role
	Redirect  string
}
