package services

import (
	"context"

	"github.com/healthportal/backend/internal/models"
)

// CredentialBackend is the interface that wraps methods for a store of user credentials
type CredentialBackend interface {
	// Method Name returns the short store name reported in registration results ("db" or "file").
	Name() string
	// Method GetByEmail retrieves a user by exact email match.
	//
	// "email" parameter is used to look the user up.
	//
	// If the user does not exist, models.ErrUserNotFound is returned together with "nil" value.
	// If the store cannot be reached, an error wrapping models.ErrStoreUnavailable is returned.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method Create persists a new user.
	//
	// "user" parameter is the fully populated user, including id and password hash.
	//
	// If the email is taken, models.ErrEmailTaken is returned.
	// If the store cannot be reached, an error wrapping models.ErrStoreUnavailable is returned.
	Create(ctx context.Context, user *models.User) error
}

// FallbackPolicy decides whether fallback backends may be used
type FallbackPolicy struct {
	Production bool
}

// AllowFallback is false in production
func (p FallbackPolicy) AllowFallback() bool {
	return !p.Production
}

// BackendChain is the ordered list of credential backends consulted by authentication and registration
type BackendChain struct {
	primary   CredentialBackend
	fallbacks []CredentialBackend
	policy    FallbackPolicy
}

// NewBackendChain creates a chain with a primary backend and optional fallbacks
func NewBackendChain(primary CredentialBackend, policy FallbackPolicy, fallbacks ...CredentialBackend) *BackendChain {
	return &BackendChain{
		primary:   primary,
		fallbacks: fallbacks,
		policy:    policy,
	}
}

// Primary returns the first backend of the chain
func (c *BackendChain) Primary() CredentialBackend {
	return c.primary
}

// Fallbacks returns the fallback backends the policy allows, in order
func (c *BackendChain) Fallbacks() []CredentialBackend {
	if !c.policy.AllowFallback() {
		return nil
	}
	return c.fallbacks
}

// Backends returns the primary followed by the allowed fallbacks
func (c *BackendChain) Backends() []CredentialBackend {
	fallbacks := c.Fallbacks()
	backends := make([]CredentialBackend, 0, 1+len(fallbacks))
	backends = append(backends, c.primary)
	return append(backends, fallbacks...)
}
