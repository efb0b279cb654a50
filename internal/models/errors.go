package models

import "errors"

// Store errors shared by every credential backend
var (
	// ErrUserNotFound means the store answered and holds no such user
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken means the store rejected a write on its unique email key
	ErrEmailTaken = errors.New("email already exists")
	// ErrStoreUnavailable means the store could not be reached or failed operationally
	ErrStoreUnavailable = errors.New("store unavailable")
)
