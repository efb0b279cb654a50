package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/healthportal/backend/internal/models"
	"go.uber.org/zap"
)

// devUserRepository is the development fallback store: a JSON array of users in a single file
//
// Entries are only ever appended. Email uniqueness is not enforced and lookups
// return the first match in file order. Read-modify-write cycles are serialized
// within the process; separate processes sharing the file can still lose writes.
type devUserRepository struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewDevUserRepository creates a fallback repository backed by the file at path
func NewDevUserRepository(path string, logger *zap.Logger) *devUserRepository {
	return &devUserRepository{
		path:   path,
		logger: logger,
	}
}

// Name identifies the store in registration results
func (r *devUserRepository) Name() string {
	return models.StoreFile
}

// Path returns the absolute location of the users file, or the configured path if it cannot be resolved
func (r *devUserRepository) Path() string {
	if abs, err := filepath.Abs(r.path); err == nil {
		return abs
	}
	return r.path
}

// Create appends a user to the file
func (r *devUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.readAll()
	if err != nil {
		return err
	}

	list = append(list, models.NewDevUser(user))

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dev users: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		r.logger.Error("failed to write dev users file", zap.String("path", r.path), zap.Error(err))
		return fmt.Errorf("failed to write dev users file: %w: %w", models.ErrStoreUnavailable, err)
	}

	return nil
}

// GetByEmail returns the first entry whose email matches exactly
func (r *devUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.readAll()
	if err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].Email == email {
			return list[i].ToUser(), nil
		}
	}

	return nil, models.ErrUserNotFound
}

// ExistsByEmail checks if any entry has the given email
func (r *devUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// readAll loads every entry; a missing or empty file is an empty list
func (r *devUserRepository) readAll() ([]models.DevUser, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.DevUser{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dev users file: %w: %w", models.ErrStoreUnavailable, err)
	}

	if len(data) == 0 {
		return []models.DevUser{}, nil
	}

	var list []models.DevUser
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse dev users file: %w: %w", models.ErrStoreUnavailable, err)
	}

	return list, nil
}
