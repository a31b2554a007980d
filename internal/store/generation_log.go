// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
)

// GenerationLogStore records generation outcomes for audit and debugging.
type GenerationLogStore struct {
	db *sql.DB
}

// NewGenerationLogStore creates a new GenerationLogStore.
func NewGenerationLogStore(db *sql.DB) *GenerationLogStore {
	return &GenerationLogStore{db: db}
}

// Log records one generation outcome.
func (s *GenerationLogStore) Log(ctx context.Context, ev models.GenerationEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_log (id, user_id, fingerprint, outcome, vendor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.ID, ev.UserID, ev.Fingerprint, ev.Outcome, ev.Vendor, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("log generation: %w", err)
	}
	slog.Debug("generation logged", "user_id", ev.UserID, "outcome", ev.Outcome)
	return nil
}

// Recent returns the latest events, newest first.
func (s *GenerationLogStore) Recent(ctx context.Context, limit int) ([]models.GenerationEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, fingerprint, outcome, vendor, created_at
		FROM generation_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generation log: %w", err)
	}
	defer rows.Close()

	var events []models.GenerationEvent
	for rows.Next() {
		var ev models.GenerationEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Fingerprint, &ev.Outcome, &ev.Vendor, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
