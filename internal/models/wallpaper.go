// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallpaper is one generated image in a user's history.
type Wallpaper struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	ImageURL        string    `json:"image_url"`
	ThumbnailBase64 string    `json:"thumbnail_base64,omitempty"`
	StyleUniverse   string    `json:"style_universe"`
	PaletteName     string    `json:"palette_name"`
	PatternName     string    `json:"pattern_name"`
	TimeOfDay       string    `json:"time_of_day"`
	Vibe            string    `json:"vibe"`
	PersonalText    string    `json:"personal_text,omitempty"`
	CustomPrompt    string    `json:"custom_prompt,omitempty"`
	PromptSent      string    `json:"prompt_sent"`
	CreatedAt       time.Time `json:"created_at"`
}

// WallpaperPage is one page of a user's history.
type WallpaperPage struct {
	Wallpapers []Wallpaper `json:"wallpapers"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
}
