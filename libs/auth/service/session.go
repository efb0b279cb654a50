// Package service issues and reads signed session tokens
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionInvalid is wrapped by every Read failure: bad signature, expiry or malformed token
var ErrSessionInvalid = errors.New("invalid session")

const sessionTokenType = "session"

// Claim is the identity carried by a session token
type Claim struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
}

// sessionClaims is the JWT payload of a session token
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
}

// SessionIssuer handles session token issuance and validation
//
// The role is captured at issuance and trusted until the token expires;
// it is not re-read from the user store on later requests.
type SessionIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSessionIssuer creates a new session issuer
func NewSessionIssuer(secret string, expiry time.Duration) *SessionIssuer {
	return &SessionIssuer{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns the lifetime of issued tokens
func (s *SessionIssuer) Expiry() time.Duration {
	return s.expiry
}

// Issue creates a signed session token carrying userID and role
func (s *SessionIssuer) Issue(userID, role string) (string, time.Time, error) {
	if userID == "" || role == "" {
		return "", time.Time{}, fmt.Errorf("user id and role are required")
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Role:   role,
		Type:   sessionTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Read validates a session token and returns its claim
func (s *SessionIssuer) Read(tokenString string) (*Claim, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	if !token.Valid {
		return nil, ErrSessionInvalid
	}

	if claims.Type != sessionTokenType {
		return nil, fmt.Errorf("%w: token is not a session token", ErrSessionInvalid)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: id not found in token", ErrSessionInvalid)
	}

	if claims.Role == "" {
		return nil, fmt.Errorf("%w: role not found in token", ErrSessionInvalid)
	}

	return &Claim{UserID: claims.UserID, Role: claims.Role}, nil
}
