// Package store provides PostgreSQL access for the wallpaper studio. Each
// store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/quota"
)

// UserStore handles user lookups.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByID retrieves a user. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, subscription_tier, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.SubscriptionTier, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Create inserts a user with the given tier.
func (s *UserStore) Create(ctx context.Context, id, email string, tier models.Tier) (*models.User, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("create user: invalid tier %q", tier)
	}
	u := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, subscription_tier)
		VALUES ($1, $2, $3)
		RETURNING id, email, subscription_tier, created_at, updated_at
	`, id, email, tier).Scan(&u.ID, &u.Email, &u.SubscriptionTier, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateTier changes a user's subscription tier. Today's limit keeps the
// allowance it was created with.
func (s *UserStore) UpdateTier(ctx context.Context, id string, tier models.Tier) error {
	if !tier.Valid() {
		return fmt.Errorf("update tier: invalid tier %q", tier)
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET subscription_tier = $2, updated_at = now() WHERE id = $1
	`, id, tier)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	return nil
}

// Tier returns the user's subscription tier; unknown users are free.
func (s *UserStore) Tier(ctx context.Context, userID string) (quota.Tier, error) {
	var tier string
	err := s.db.QueryRowContext(ctx, `SELECT subscription_tier FROM users WHERE id = $1`, userID).Scan(&tier)
	if errors.Is(err, sql.ErrNoRows) {
		return quota.TierFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("load tier: %w", err)
	}
	return quota.Tier(tier), nil
}
