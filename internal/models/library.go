// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// LibraryEntry is a curated wallpaper in the shared catalog. Entries are
// append-only.
type LibraryEntry struct {
	ID              uuid.UUID `json:"id"`
	ImageURL        string    `json:"image_url"`
	ThumbnailBase64 string    `json:"thumbnail_base64,omitempty"`
	StyleUniverse   string    `json:"style_universe"`
	Palette         string    `json:"palette"`
	Pattern         string    `json:"pattern"`
	TimeOfDay       string    `json:"time_of_day"`
	Vibe            string    `json:"vibe"`
	PromptHash      string    `json:"prompt_hash"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
}

// LibraryFilter narrows a catalog query. Empty fields match everything.
type LibraryFilter struct {
	Style     string
	Vibe      string
	TimeOfDay string
}

// LibraryStats summarizes the catalog.
type LibraryStats struct {
	Total   int            `json:"total"`
	ByStyle map[string]int `json:"byStyle"`
}
