package domain

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Actor is the authenticated caller as asserted by the identity provider.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// SystemActor is used by scheduled jobs such as the expiry sweep.
var SystemActor = Actor{UserID: "system", IsAdmin: true}
