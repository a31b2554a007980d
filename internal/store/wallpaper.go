// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// WallpaperStore handles a user's generation history.
type WallpaperStore struct {
	db *sql.DB
}

// NewWallpaperStore creates a new WallpaperStore.
func NewWallpaperStore(db *sql.DB) *WallpaperStore {
	return &WallpaperStore{db: db}
}

// Insert saves a generated wallpaper.
func (s *WallpaperStore) Insert(ctx context.Context, w *models.Wallpaper) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallpapers (id, user_id, image_url, thumbnail_base64, style_universe,
			palette_name, pattern_name, time_of_day, vibe, personal_text, custom_prompt,
			prompt_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, w.ID, w.UserID, w.ImageURL, w.ThumbnailBase64, w.StyleUniverse,
		w.PaletteName, w.PatternName, w.TimeOfDay, w.Vibe, w.PersonalText, w.CustomPrompt,
		w.PromptSent, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert wallpaper: %w", err)
	}
	return nil
}

// ListByUser returns one page of a user's wallpapers, newest first. page is
// 1-based; out-of-range values fall back to the defaults.
func (s *WallpaperStore) ListByUser(ctx context.Context, userID string, page, pageSize int) (*models.WallpaperPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallpapers WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, fmt.Errorf("count wallpapers: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, image_url, thumbnail_base64, style_universe, palette_name,
			pattern_name, time_of_day, vibe, personal_text, custom_prompt, prompt_sent, created_at
		FROM wallpapers
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list wallpapers: %w", err)
	}
	defer rows.Close()

	out := &models.WallpaperPage{Wallpapers: []models.Wallpaper{}, Total: total, Page: page, PageSize: pageSize}
	for rows.Next() {
		var w models.Wallpaper
		if err := rows.Scan(&w.ID, &w.UserID, &w.ImageURL, &w.ThumbnailBase64, &w.StyleUniverse,
			&w.PaletteName, &w.PatternName, &w.TimeOfDay, &w.Vibe, &w.PersonalText,
			&w.CustomPrompt, &w.PromptSent, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallpaper: %w", err)
		}
		out.Wallpapers = append(out.Wallpapers, w)
	}
	return out, rows.Err()
}
