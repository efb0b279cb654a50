package models

// RegisteredUser is the user part of a registration response
type RegisteredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RegisterResponse represents a successful registration
type RegisterResponse struct {
	Message   string         `json:"message"`
	User      RegisteredUser `json:"user"`
	CreatedIn string         `json:"createdIn"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message string    `json:"message"`
	User    *Identity `json:"user"`
}

// SessionUser is the identity carried by the current session
type SessionUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// SessionResponse represents the current session
type SessionResponse struct {
	User SessionUser `json:"user"`
}

// CredentialCheckResponse is returned by the development credential check
type CredentialCheckResponse struct {
	OK    bool      `json:"ok"`
	User  *Identity `json:"user,omitempty"`
	Error string    `json:"error,omitempty"`
}

// RegisterTestResponse is returned by the development registration endpoint
type RegisterTestResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedIn string `json:"createdIn"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
