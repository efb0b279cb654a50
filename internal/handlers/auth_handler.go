package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/healthportal/backend/internal/models"
	"github.com/healthportal/backend/internal/services"
	"github.com/healthportal/backend/libs/auth/middleware"
	"github.com/healthportal/backend/libs/handlers"
	"go.uber.org/zap"
)

// loginRateLimit caps credential checks per client IP per minute
const loginRateLimit = 10

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Authenticate checks an email and password against the credential backends.
	//
	// "email" and "password" parameters are the submitted credentials.
	//
	// If credentials are missing, services.ErrMalformed is returned.
	// If the user does not exist or the password is wrong, services.ErrInvalidCredentials is returned.
	// If no backend could be reached, services.ErrStoreUnavailable is returned.
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
	// Method Register validates the request and creates a new user.
	//
	// "req" parameter contains email, password, name and role.
	//
	// If the request is invalid, a *services.ValidationError is returned.
	// If the email is taken, services.ErrDuplicateEmail is returned.
	// If no backend could persist the user, services.ErrStoreUnavailable is returned.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResult, error)
	// Method RegisterTest is Register with fixed test values for missing fields.
	RegisterTest(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResult, error)
}

// SessionManager is the interface that wraps methods for session tokens.
type SessionManager interface {
	// Method Issue signs a session token for the user and returns it together with its expiry time.
	Issue(userID, role string) (string, time.Time, error)
	middleware.SessionReader
}

// AuthHandlerOptions configures an AuthHandler
type AuthHandlerOptions struct {
	CookieName string
	Production bool
	APIKey     string
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	handlers.BaseHandler
	authService AuthService
	sessions    SessionManager
	opts        AuthHandlerOptions
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService AuthService,
	sessions SessionManager,
	opts AuthHandlerOptions,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		authService: authService,
		sessions:    sessions,
		opts:        opts,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.With(httprate.LimitByIP(loginRateLimit, time.Minute)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(middleware.SessionMiddleware(h.sessions, h.opts.CookieName)).Get("/session", h.Session)

		// Development helpers
		r.Group(func(r chi.Router) {
			r.Use(h.devOnly)
			r.Use(middleware.APIKeyMiddleware(h.opts.APIKey))
			r.With(httprate.LimitByIP(loginRateLimit, time.Minute)).Post("/test-credentials", h.TestCredentials)
			r.Post("/register-test", h.RegisterTest)
		})
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new user with email, password, name and role (PATIENT or PRESCRIBER). Outside production the user may be stored in the development fallback file when the database is unreachable; createdIn reports which store was used.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.RegisterResponse "User registered successfully"
// @Failure 400 {object} models.ErrorResponse "Invalid request body, validation failed or user already exists"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.respondRegisterError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, models.RegisterResponse{
		Message:   "user registered successfully",
		User:      models.RegisteredUser{ID: result.Identity.ID, Email: result.Identity.Email},
		CreatedIn: result.CreatedIn,
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with email and password. The session token is returned as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrMalformed):
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		h.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		h.Logger.Error("failed to authenticate user", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, expiresAt, err := h.sessions.Issue(identity.ID, string(identity.Role))
	if err != nil {
		h.Logger.Error("failed to issue session", zap.String("user_id", identity.ID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.setSessionCookie(w, token, expiresAt)

	h.RespondJSON(w, http.StatusOK, models.LoginResponse{
		Message: "login successful",
		User:    identity,
	})
}

// Session handles GET /auth/session
// @Summary Current session
// @Description Returns the id and role carried by the session token (cookie or Bearer header).
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.SessionResponse "Current session"
// @Failure 401 {object} models.ErrorResponse "No valid session"
// @Router /auth/session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claim, ok := middleware.GetClaim(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.SessionResponse{
		User: models.SessionUser{ID: claim.UserID, Role: claim.Role},
	})
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Clears the session cookie. Tokens are stateless, so a copied token stays valid until it expires.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.opts.Production,
		SameSite: http.SameSiteLaxMode,
	})

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// TestCredentials handles POST /auth/test-credentials
// @Summary Check credentials (development only)
// @Description Runs the credential check without issuing a session. Not available in production.
// @Tags dev
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.CredentialCheckResponse "Credentials are valid"
// @Failure 400 {object} models.CredentialCheckResponse "Invalid request body"
// @Failure 401 {object} models.CredentialCheckResponse "Invalid credentials"
// @Failure 403 {object} models.ErrorResponse "Production environment"
// @Failure 500 {object} models.CredentialCheckResponse "Internal error"
// @Router /auth/test-credentials [post]
func (h *AuthHandler) TestCredentials(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondJSON(w, http.StatusBadRequest, models.CredentialCheckResponse{Error: "invalid request body"})
		return
	}

	identity, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrMalformed):
		h.RespondJSON(w, http.StatusBadRequest, models.CredentialCheckResponse{Error: err.Error()})
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		h.RespondJSON(w, http.StatusUnauthorized, models.CredentialCheckResponse{})
		return
	case err != nil:
		h.Logger.Error("credential check failed", zap.Error(err))
		h.RespondJSON(w, http.StatusInternalServerError, models.CredentialCheckResponse{Error: "internal"})
		return
	}

	h.RespondJSON(w, http.StatusOK, models.CredentialCheckResponse{OK: true, User: identity})
}

// RegisterTest handles POST /auth/register-test
// @Summary Register a test user (development only)
// @Description Registers a user, filling missing fields with test@example.com / password123 / Test User / PATIENT. Not available in production.
// @Tags dev
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest false "Optional overrides"
// @Success 200 {object} models.RegisterTestResponse "User registered"
// @Failure 400 {object} models.ErrorResponse "Invalid request body, validation failed or user already exists"
// @Failure 403 {object} models.ErrorResponse "Production environment"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/register-test [post]
func (h *AuthHandler) RegisterTest(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.RegisterTest(r.Context(), &req)
	if err != nil {
		h.respondRegisterError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.RegisterTestResponse{
		ID:        result.Identity.ID,
		Email:     result.Identity.Email,
		CreatedIn: result.CreatedIn,
	})
}

func (h *AuthHandler) respondRegisterError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.RespondErrorDetails(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
	case errors.Is(err, services.ErrDuplicateEmail):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("failed to register user", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// devOnly hides development helpers in production
func (h *AuthHandler) devOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.Production {
			h.RespondError(w, http.StatusForbidden, "not available in production")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setSessionCookie sets the session token as an HTTP-only cookie
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.opts.Production,
		SameSite: http.SameSiteLaxMode,
	})
}
