package middleware

import (
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/healthportal/backend/libs/auth/service"
	"go.uber.org/zap"
)

// GuardState is the outcome of evaluating a request against the route guard
type GuardState int

const (
	// GuardPublic means the path needs no session
	GuardPublic GuardState = iota
	// GuardAuthenticatedAllowed means the session satisfies every rule for the path
	GuardAuthenticatedAllowed
	// GuardAuthenticatedDenied means the session role is not allowed on the path
	GuardAuthenticatedDenied
	// GuardUnauthenticated means the session is absent or invalid
	GuardUnauthenticated
)

func (s GuardState) String() string {
	switch s {
	case GuardPublic:
		return "public"
	case GuardAuthenticatedAllowed:
		return "authenticated_allowed"
	case GuardAuthenticatedDenied:
		return "authenticated_denied"
	case GuardUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// RoleRule restricts every path under Prefix to the listed roles
type RoleRule struct {
	Prefix string
	Roles  []string
}

// GuardOptions configures a RouteGuard
type GuardOptions struct {
	// ExcludedPrefixes are never evaluated (static assets, API, docs)
	ExcludedPrefixes []string
	// PublicPaths are reachable without a session; "/" only matches itself
	PublicPaths []string
	RoleRules   []RoleRule
	SignInPath  string
	DeniedPath  string
	CookieName  string
}

// RouteGuard gates page requests on the session claim before any handler runs
type RouteGuard struct {
	opts     GuardOptions
	sessions SessionReader
	logger   *zap.Logger
}

// NewRouteGuard creates a new route guard
func NewRouteGuard(sessions SessionReader, opts GuardOptions, logger *zap.Logger) *RouteGuard {
	if opts.SignInPath == "" {
		opts.SignInPath = "/"
	}
	if opts.DeniedPath == "" {
		opts.DeniedPath = "/"
	}
	return &RouteGuard{
		opts:     opts,
		sessions: sessions,
		logger:   logger,
	}
}

// Evaluate decides the guard state for a request
// The claim is returned for authenticated states, nil otherwise.
// Rules are matched against the cleaned path, the same one the page handler serves.
func (g *RouteGuard) Evaluate(r *http.Request) (GuardState, *service.Claim) {
	reqPath := cleanPath(r.URL.Path)

	if g.isPublic(reqPath) {
		return GuardPublic, nil
	}

	token := TokenFromRequest(r, g.opts.CookieName)
	if token == "" {
		return GuardUnauthenticated, nil
	}

	claim, err := g.sessions.Read(token)
	if err != nil {
		g.logger.Debug("route guard rejected session", zap.String("path", reqPath), zap.Error(err))
		return GuardUnauthenticated, nil
	}

	for _, rule := range g.opts.RoleRules {
		if matchPrefix(reqPath, rule.Prefix) && !slices.Contains(rule.Roles, claim.Role) {
			return GuardAuthenticatedDenied, claim
		}
	}

	return GuardAuthenticatedAllowed, claim
}

// Middleware applies the guard to every non-excluded request
func (g *RouteGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.isExcluded(cleanPath(r.URL.Path)) {
			next.ServeHTTP(w, r)
			return
		}

		state, claim := g.Evaluate(r)
		switch state {
		case GuardUnauthenticated:
			http.Redirect(w, r, g.opts.SignInPath, http.StatusTemporaryRedirect)
		case GuardAuthenticatedDenied:
			g.logger.Info("route guard denied access",
				zap.String("path", r.URL.Path),
				zap.String("user_id", claim.UserID),
				zap.String("role", claim.Role),
			)
			http.Redirect(w, r, g.opts.DeniedPath, http.StatusTemporaryRedirect)
		case GuardAuthenticatedAllowed:
			next.ServeHTTP(w, r.WithContext(WithClaim(r.Context(), claim)))
		case GuardPublic:
			next.ServeHTTP(w, r)
		default:
			g.logger.Error("route guard returned unknown state", zap.Stringer("state", state))
			http.Redirect(w, r, g.opts.SignInPath, http.StatusTemporaryRedirect)
		}
	})
}

func (g *RouteGuard) isExcluded(p string) bool {
	for _, prefix := range g.opts.ExcludedPrefixes {
		if matchPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (g *RouteGuard) isPublic(p string) bool {
	for _, public := range g.opts.PublicPaths {
		if public == "/" {
			if p == "/" {
				return true
			}
			continue
		}
		if matchPrefix(p, public) {
			return true
		}
	}
	return false
}

// cleanPath resolves dot segments and duplicate slashes, always rooted at "/"
func cleanPath(p string) string {
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// matchPrefix reports whether path equals prefix or lies below it on a segment boundary
func matchPrefix(p, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return false
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
