package models

import "time"

// Role is the authorization tier stored on a user and carried in the session claim
type Role string

// UserRole constants
const (
	RolePatient    Role = "PATIENT"
	RolePrescriber Role = "PRESCRIBER"
	RoleAdmin      Role = "ADMIN"
)

// SelfRegistrableRoles are the roles a user may pick when registering
var SelfRegistrableRoles = []Role{RolePatient, RolePrescriber}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RolePrescriber, RoleAdmin:
		return true
	}
	return false
}

// Store names reported back to registration callers
const (
	StoreDatabase = "db"
	StoreFile     = "file"
)

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity returns the client-safe view of the user
func (u *User) Identity() *Identity {
	return &Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// Identity is the result of a successful authentication or registration
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// DevUser is an entry of the development fallback users file
//
// Unlike User it serializes the password hash, because the file is the store itself.
type DevUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToUser converts the file entry to a User; UpdatedAt mirrors CreatedAt since entries are never updated
func (d *DevUser) ToUser() *User {
	return &User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.CreatedAt,
	}
}

// NewDevUser builds a file entry from a User
func NewDevUser(u *User) DevUser {
	return DevUser{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// LoginRequest represents a login or credential check request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult reports the created identity and which store persisted it
type RegisterResult struct {
	Identity  *Identity
	CreatedIn string
}
