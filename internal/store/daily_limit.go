// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/quota"
)

// DailyLimitStore persists per-(user, date) generation counters.
type DailyLimitStore struct {
	db *sql.DB
}

// NewDailyLimitStore creates a new DailyLimitStore.
func NewDailyLimitStore(db *sql.DB) *DailyLimitStore {
	return &DailyLimitStore{db: db}
}

// Ensure returns the record for (userID, date), creating it with max when
// absent. An existing record keeps its original max.
func (s *DailyLimitStore) Ensure(ctx context.Context, userID, date string, max int) (quota.Record, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_limits (user_id, date, generations_used, max_generations)
		VALUES ($1, $2::date, 0, $3)
		ON CONFLICT (user_id, date) DO NOTHING
	`, userID, date, max)
	if err != nil {
		return quota.Record{}, fmt.Errorf("ensure daily limit: %w", err)
	}

	var r quota.Record
	err = s.db.QueryRowContext(ctx, `
		SELECT user_id, date::text, generations_used, max_generations
		FROM daily_limits WHERE user_id = $1 AND date = $2::date
	`, userID, date).Scan(&r.UserID, &r.Date, &r.Used, &r.Max)
	if err != nil {
		return quota.Record{}, fmt.Errorf("load daily limit: %w", err)
	}
	return r, nil
}

// Increment adds one generation if the cap allows it. The check and the
// write are a single conditional UPDATE; ok is false when the cap is
// already reached.
func (s *DailyLimitStore) Increment(ctx context.Context, userID, date string) (quota.Record, bool, error) {
	var r quota.Record
	err := s.db.QueryRowContext(ctx, `
		UPDATE daily_limits
		SET generations_used = generations_used + 1
		WHERE user_id = $1 AND date = $2::date AND generations_used < max_generations
		RETURNING user_id, date::text, generations_used, max_generations
	`, userID, date).Scan(&r.UserID, &r.Date, &r.Used, &r.Max)
	if errors.Is(err, sql.ErrNoRows) {
		return quota.Record{}, false, nil
	}
	if err != nil {
		return quota.Record{}, false, fmt.Errorf("increment daily limit: %w", err)
	}
	return r, true, nil
}
