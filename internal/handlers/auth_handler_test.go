package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/healthportal/backend/internal/models"
	"github.com/healthportal/backend/internal/services"
	"github.com/healthportal/backend/libs/auth/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCookieName = "session_token"

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	identity     *models.Identity
	result       *models.RegisterResult
	err          error
	lastEmail    string
	lastPassword string
	lastRegister *models.RegisterRequest
	testCalled   bool
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	m.lastEmail, m.lastPassword = email, password
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResult, error) {
	m.lastRegister = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAuthService) RegisterTest(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResult, error) {
	m.testCalled = true
	return m.Register(ctx, req)
}

var testIdentity = &models.Identity{
	ID:    "4b0c1d0e-6f2b-4b7e-9f0a-1e2d3c4b5a69",
	Email: "jane@example.com",
	Name:  "Jane Doe",
	Role:  models.RolePrescriber,
}

func setupAuthTestRouter(svc *mockAuthService, opts AuthHandlerOptions) (chi.Router, *service.SessionIssuer) {
	issuer := service.NewSessionIssuer("handler-test-secret", time.Hour)
	if opts.CookieName == "" {
		opts.CookieName = testCookieName
	}
	h := NewAuthHandler(svc, issuer, opts, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r, issuer
}

func doJSON(r http.Handler, method, path, body string, setup ...func(*http.Request)) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, s := range setup {
		s(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		result         *models.RegisterResult
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "created in database",
			body: `{"email":"jane@example.com","password":"password123","name":"Jane Doe","role":"PATIENT"}`,
			result: &models.RegisterResult{
				Identity:  &models.Identity{ID: "id-1", Email: "jane@example.com", Name: "Jane Doe", Role: models.RolePatient},
				CreatedIn: models.StoreDatabase,
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"message":"user registered successfully","user":{"id":"id-1","email":"jane@example.com"},"createdIn":"db"}`,
		},
		{
			name: "created in fallback file",
			body: `{"email":"jane@example.com","password":"password123","name":"Jane Doe","role":"PATIENT"}`,
			result: &models.RegisterResult{
				Identity:  &models.Identity{ID: "id-2", Email: "jane@example.com"},
				CreatedIn: models.StoreFile,
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"message":"user registered successfully","user":{"id":"id-2","email":"jane@example.com"},"createdIn":"file"}`,
		},
		{
			name:           "empty body",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request body"}`,
		},
		{
			name:           "malformed json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request body"}`,
		},
		{
			name:           "validation error",
			body:           `{"email":"nope","password":"short","name":"Jane Doe","role":"PATIENT"}`,
			err:            &services.ValidationError{Fields: map[string]string{"email": "must be a valid email address", "password": "password must be at least 8 characters"}},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"validation failed","details":{"email":"must be a valid email address","password":"password must be at least 8 characters"}}`,
		},
		{
			name:           "password too long",
			body:           `{"email":"jane@example.com","password":"` + strings.Repeat("a", 73) + `","name":"Jane Doe","role":"PATIENT"}`,
			err:            &services.ValidationError{Fields: map[string]string{"password": "password must be at most 72 bytes"}},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"validation failed","details":{"password":"password must be at most 72 bytes"}}`,
		},
		{
			name:           "duplicate email",
			body:           `{"email":"jane@example.com","password":"password123","name":"Jane Doe","role":"PATIENT"}`,
			err:            services.ErrDuplicateEmail,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"user with this email already exists"}`,
		},
		{
			name:           "stores unavailable",
			body:           `{"email":"jane@example.com","password":"password123","name":"Jane Doe","role":"PATIENT"}`,
			err:            services.ErrStoreUnavailable,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{result: tt.result, err: tt.err}
			r, _ := setupAuthTestRouter(svc, AuthHandlerOptions{})

			w := doJSON(r, http.MethodPost, "/api/v1/auth/register", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Nil(t, findCookie(w, testCookieName), "registration does not sign in")
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
		expectedBody   string
		expectCookie   bool
	}{
		{
			name:           "success",
			body:           `{"email":"jane@example.com","password":"password123"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"login successful","user":{"id":"4b0c1d0e-6f2b-4b7e-9f0a-1e2d3c4b5a69","email":"jane@example.com","name":"Jane Doe","role":"PRESCRIBER"}}`,
			expectCookie:   true,
		},
		{
			name:           "invalid credentials",
			body:           `{"email":"jane@example.com","password":"wrong"}`,
			err:            services.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"invalid credentials"}`,
		},
		{
			name:           "missing fields",
			body:           `{"email":""}`,
			err:            services.ErrMalformed,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"email and password are required"}`,
		},
		{
			name:           "malformed json",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request body"}`,
		},
		{
			name:           "stores unavailable",
			body:           `{"email":"jane@example.com","password":"password123"}`,
			err:            services.ErrStoreUnavailable,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{identity: testIdentity, err: tt.err}
			r, issuer := setupAuthTestRouter(svc, AuthHandlerOptions{})

			w := doJSON(r, http.MethodPost, "/api/v1/auth/login", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())

			cookie := findCookie(w, testCookieName)
			if !tt.expectCookie {
				assert.Nil(t, cookie)
				return
			}
			require.NotNil(t, cookie)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, "/", cookie.Path)
			assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
			assert.False(t, cookie.Secure)

			claim, err := issuer.Read(cookie.Value)
			require.NoError(t, err)
			assert.Equal(t, testIdentity.ID, claim.UserID)
			assert.Equal(t, string(testIdentity.Role), claim.Role)
		})
	}
}

func TestAuthHandler_Login_SecureCookieInProduction(t *testing.T) {
	svc := &mockAuthService{identity: testIdentity}
	r, _ := setupAuthTestRouter(svc, AuthHandlerOptions{Production: true})

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"password123"}`)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := findCookie(w, testCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func TestAuthHandler_Login_RateLimited(t *testing.T) {
	svc := &mockAuthService{err: services.ErrInvalidCredentials}
	r, _ := setupAuthTestRouter(svc, AuthHandlerOptions{})

	var last int
	for i := 0; i <= loginRateLimit; i++ {
		last = doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"x"}`).Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestAuthHandler_SessionAndLogout(t *testing.T) {
	svc := &mockAuthService{identity: testIdentity}
	r, issuer := setupAuthTestRouter(svc, AuthHandlerOptions{})

	t.Run("no session", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/v1/auth/session", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("cookie session", func(t *testing.T) {
		login := doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"password123"}`)
		cookie := findCookie(login, testCookieName)
		require.NotNil(t, cookie)

		w := doJSON(r, http.MethodGet, "/api/v1/auth/session", "", func(req *http.Request) { req.AddCookie(cookie) })

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":{"id":"4b0c1d0e-6f2b-4b7e-9f0a-1e2d3c4b5a69","role":"PRESCRIBER"}}`, w.Body.String())
	})

	t.Run("bearer session", func(t *testing.T) {
		token, _, err := issuer.Issue("user-7", "ADMIN")
		require.NoError(t, err)

		w := doJSON(r, http.MethodGet, "/api/v1/auth/session", "", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":{"id":"user-7","role":"ADMIN"}}`, w.Body.String())
	})

	t.Run("tampered token", func(t *testing.T) {
		token, _, err := issuer.Issue("user-7", "PATIENT")
		require.NoError(t, err)

		w := doJSON(r, http.MethodGet, "/api/v1/auth/session", "", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token+"x")
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/auth/logout", "")

		assert.Equal(t, http.StatusOK, w.Code)
		cookie := findCookie(w, testCookieName)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	})
}

func TestAuthHandler_TestCredentials(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "ok",
			body:           `{"email":"jane@example.com","password":"password123"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"ok":true,"user":{"id":"4b0c1d0e-6f2b-4b7e-9f0a-1e2d3c4b5a69","email":"jane@example.com","name":"Jane Doe","role":"PRESCRIBER"}}`,
		},
		{
			name:           "invalid credentials",
			body:           `{"email":"jane@example.com","password":"wrong"}`,
			err:            services.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"ok":false}`,
		},
		{
			name:           "missing fields",
			body:           `{}`,
			err:            services.ErrMalformed,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"ok":false,"error":"email and password are required"}`,
		},
		{
			name:           "malformed json",
			body:           `[`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"ok":false,"error":"invalid request body"}`,
		},
		{
			name:           "stores unavailable",
			body:           `{"email":"jane@example.com","password":"password123"}`,
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"ok":false,"error":"internal"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{identity: testIdentity, err: tt.err}
			r, _ := setupAuthTestRouter(svc, AuthHandlerOptions{})

			w := doJSON(r, http.MethodPost, "/api/v1/auth/test-credentials", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Nil(t, findCookie(w, testCookieName))
		})
	}
}

func TestAuthHandler_RegisterTest(t *testing.T) {
	result := &models.RegisterResult{
		Identity:  &models.Identity{ID: "id-9", Email: "test@example.com"},
		CreatedIn: models.StoreFile,
	}

	t.Run("empty body uses defaults", func(t *testing.T) {
		svc := &mockAuthService{result: result}
		r, _ := setupAuthTestRouter(svc, AuthHandlerOptions{})

		w := doJSON(r, http.MethodPost, "/api/v1/auth/register-test", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"id-9","email":"test@example.com","createdIn":"file"}`, w.Body.String())
		assert.True(t, svc.testCalled)
	})

	t.Run("overrides are passed through", func(t *testing.T) {
		svc := &mockAuthService{result: result}
		r, _ := setupAuthTestRouter(svc, AuthHandlerOptions{})

		w := doJSON(r, http.MethodPost, "/api/v1/auth/register-test", `{"email":"doc@example.com","role":"PRESCRIBER"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.lastRegister)
		assert.Equal(t, "doc@example.com", svc.lastRegister.Email)
		assert.Equal(t, models.RolePrescriber, svc.lastRegister.Role)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc := &mockAuthService{err: services.ErrDuplicateEmail}
		r, _ := setupAuthTestRouter(svc, AuthHandlerOptions{})

		w := doJSON(r, http.MethodPost, "/api/v1/auth/register-test", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_DevRoutes(t *testing.T) {
	tests := []struct {
		name           string
		opts           AuthHandlerOptions
		apiKey         string
		expectedStatus int
	}{
		{name: "forbidden in production", opts: AuthHandlerOptions{Production: true}, expectedStatus: http.StatusForbidden},
		{name: "forbidden in production even with key", opts: AuthHandlerOptions{Production: true, APIKey: "k"}, apiKey: "k", expectedStatus: http.StatusForbidden},
		{name: "api key required when configured", opts: AuthHandlerOptions{APIKey: "k"}, expectedStatus: http.StatusUnauthorized},
		{name: "api key accepted", opts: AuthHandlerOptions{APIKey: "k"}, apiKey: "k", expectedStatus: http.StatusOK},
		{name: "open without key configured", opts: AuthHandlerOptions{}, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		for _, path := range []string{"/api/v1/auth/test-credentials", "/api/v1/auth/register-test"} {
			t.Run(tt.name+" "+path, func(t *testing.T) {
				svc := &mockAuthService{
					identity: testIdentity,
					result:   &models.RegisterResult{Identity: testIdentity, CreatedIn: models.StoreDatabase},
				}
				r, _ := setupAuthTestRouter(svc, tt.opts)

				w := doJSON(r, http.MethodPost, path, `{"email":"jane@example.com","password":"password123"}`, func(req *http.Request) {
					if tt.apiKey != "" {
						req.Header.Set("X-API-Key", tt.apiKey)
					}
				})

				assert.Equal(t, tt.expectedStatus, w.Code)
				if tt.expectedStatus == http.StatusForbidden {
					var body map[string]string
					require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
					assert.Equal(t, "not available in production", body["error"])
					assert.Nil(t, svc.lastRegister)
					assert.Empty(t, svc.lastEmail)
				}
			})
		}
	}
}
