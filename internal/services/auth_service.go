package services

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/healthportal/backend/internal/models"
	"go.uber.org/zap"
)

// Defaults applied by RegisterTest to missing fields
const (
	TestUserEmail    = "test@example.com"
	TestUserPassword = "password123"
	TestUserName     = "Test User"
	TestUserRole     = models.RolePatient
)

// PasswordHasher is the interface that wraps methods for password hashing
type PasswordHasher interface {
	// Method Hash returns a salted hash of the password.
	//
	// If hashing fails, the error will be returned together with empty string.
	Hash(password string) (string, error)
	// Method Verify checks a password against a stored hash.
	//
	// A mismatch is reported as "false" with nil error.
	Verify(password, hash string) (bool, error)
}

// authService implements credential authentication and registration over a backend chain
type authService struct {
	backends *BackendChain
	hasher   PasswordHasher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(backends *BackendChain, hasher PasswordHasher, logger *zap.Logger) *authService {
	return &authService{
		backends: backends,
		hasher:   hasher,
		logger:   logger,
		now:      time.Now,
	}
}

// Authenticate resolves an identity from an email and password
//
// Backends are consulted in chain order. Only an unavailable backend moves the lookup
// to the next one; an unknown email or a wrong password ends it with ErrInvalidCredentials.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMalformed
	}

	for _, backend := range s.backends.Backends() {
		user, err := backend.GetByEmail(ctx, email)
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			s.logger.Warn("credential backend unavailable during login",
				zap.String("backend", backend.Name()),
				zap.Error(err),
			)
			continue
		}

		ok, err := s.hasher.Verify(password, user.PasswordHash)
		if err != nil {
			s.logger.Error("stored password hash is unusable",
				zap.String("backend", backend.Name()),
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
			return nil, ErrInvalidCredentials
		}
		if !ok {
			return nil, ErrInvalidCredentials
		}

		return user.Identity(), nil
	}

	return nil, ErrStoreUnavailable
}

// Register creates a new user in the first backend able to persist it
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	// With the primary down the uniqueness check is skipped and only fallbacks are written
	targets := s.backends.Backends()
	primary := s.backends.Primary()
	primaryDown := false
	exists, err := primary.ExistsByEmail(ctx, req.Email)
	switch {
	case err != nil:
		s.logger.Warn("credential backend unavailable during registration",
			zap.String("backend", primary.Name()),
			zap.Error(err),
		)
		targets = s.backends.Fallbacks()
		primaryDown = true
	case exists:
		return nil, ErrDuplicateEmail
	}

	if len(targets) == 0 {
		return nil, ErrStoreUnavailable
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, backend := range targets {
		if primaryDown {
			s.warnFallbackDuplicate(ctx, backend, user.Email)
		}

		err := backend.Create(ctx, user)
		if err == nil {
			s.logger.Info("user registered",
				zap.String("user_id", user.ID),
				zap.String("role", string(user.Role)),
				zap.String("created_in", backend.Name()),
			)
			return &models.RegisterResult{
				Identity:  user.Identity(),
				CreatedIn: backend.Name(),
			}, nil
		}
		if errors.Is(err, models.ErrEmailTaken) {
			return nil, ErrDuplicateEmail
		}
		s.logger.Warn("failed to persist user",
			zap.String("backend", backend.Name()),
			zap.Error(err),
		)
	}

	return nil, ErrStoreUnavailable
}

// warnFallbackDuplicate logs an email that is about to be stored twice in a fallback backend
// Fallback backends do not enforce uniqueness; login resolves to the first stored entry.
func (s *authService) warnFallbackDuplicate(ctx context.Context, backend CredentialBackend, email string) {
	exists, err := backend.ExistsByEmail(ctx, email)
	if err != nil || !exists {
		return
	}
	s.logger.Warn("email already registered in fallback backend, storing duplicate entry",
		zap.String("backend", backend.Name()),
	)
}

// RegisterTest registers a user, filling missing fields with fixed test values
func (s *authService) RegisterTest(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResult, error) {
	if req == nil {
		req = &models.RegisterRequest{}
	}
	if strings.TrimSpace(req.Email) == "" {
		req.Email = TestUserEmail
	}
	if req.Password == "" {
		req.Password = TestUserPassword
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = TestUserName
	}
	if req.Role == "" {
		req.Role = TestUserRole
	}

	return s.Register(ctx, req)
}

func validateRegisterRequest(req *models.RegisterRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password,
			validation.Required,
			validation.Length(8, 0).Error("password must be at least 8 characters"),
			validation.By(maxBytes(MaxPasswordBytes, "password must be at most 72 bytes")),
		),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(2, 0).Error("name must be at least 2 characters"),
		),
		validation.Field(&req.Role,
			validation.Required,
			validation.In(toInterfaces(models.SelfRegistrableRoles)...).Error("role must be PATIENT or PRESCRIBER"),
		),
	)
	if err != nil {
		return newValidationError(err)
	}
	return nil
}

// maxBytes limits the encoded length of a string, unlike validation.Length which counts runes
func maxBytes(limit int, message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if len(s) > limit {
			return errors.New(message)
		}
		return nil
	}
}

func toInterfaces(roles []models.Role) []interface{} {
	out := make([]interface{}, len(roles))
	for i, r := range roles {
		out[i] = r
	}
	return out
}

