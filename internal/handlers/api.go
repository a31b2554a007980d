// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API of the wallpaper studio: daily
// allowance, generation, the design-assistant conversation, history, the
// shared library and the static style catalog. Handlers read the caller's
// identity from the request context set by middleware.Identify.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/cache"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/conversation"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/gateway"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/quota"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

// User-facing messages not owned by the gateway.
const (
	MsgInternal          = "An unexpected error occurred. Please try again."
	MsgChatUnconfigured  = "The design assistant is not configured. Please contact support."
	MsgRateLimited       = "Rate limited, please wait a moment and try again."
	MsgInvalidBody       = "Invalid request body."
	MsgConversationStale = "A newer message replaced this one."
)

// Generator runs one wallpaper generation.
type Generator interface {
	Generate(ctx context.Context, req gateway.Request) (*gateway.Result, error)
}

// QuotaReporter reports a user's allowance without reserving.
type QuotaReporter interface {
	Status(ctx context.Context, userID string) quota.Status
}

// Conversation runs design-assistant turns scoped to a session.
type Conversation interface {
	Turn(ctx context.Context, sessionID string, messages []ai.Message) (conversation.Result, error)
	Reset(ctx context.Context, sessionID string) error
}

// HistoryStore lists a user's wallpapers.
type HistoryStore interface {
	ListByUser(ctx context.Context, userID string, page, pageSize int) (*models.WallpaperPage, error)
}

// LibraryStore reads the shared catalog.
type LibraryStore interface {
	Browse(ctx context.Context, f models.LibraryFilter) ([]models.LibraryEntry, error)
	Random(ctx context.Context, f models.LibraryFilter) (*models.LibraryEntry, error)
	Stats(ctx context.Context) (*models.LibraryStats, error)
}

// CacheReporter summarises the image cache.
type CacheReporter interface {
	Stats(ctx context.Context) (cache.Stats, error)
}

// Deps are the API collaborators. Conversation, History, Library and Cache
// may be nil; their endpoints then answer with an error.
type Deps struct {
	Styles       *style.Registry
	Generator    Generator
	Quota        QuotaReporter
	Conversation Conversation
	History      HistoryStore
	Library      LibraryStore
	Cache        CacheReporter

	// Pick chooses a surprise idea; nil uses math/rand.
	Pick func(n int) int
}

// API groups the JSON endpoints.
type API struct {
	styles  *style.Registry
	gen     Generator
	quota   QuotaReporter
	chat    Conversation
	history HistoryStore
	library LibraryStore
	cache   CacheReporter
	pick    func(n int) int
}

// NewAPI creates the API handler group.
func NewAPI(d Deps) *API {
	styles := d.Styles
	if styles == nil {
		styles = style.Default()
	}
	return &API{
		styles:  styles,
		gen:     d.Generator,
		quota:   d.Quota,
		chat:    d.Conversation,
		history: d.History,
		library: d.Library,
		cache:   d.Cache,
		pick:    d.Pick,
	}
}

// response is the common envelope for mutating endpoints.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, response{Success: false, Error: msg})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// generationStatus maps a gateway failure to an HTTP status and message.
func generationStatus(err error) (int, string) {
	var gerr *gateway.GenerationError
	if !errors.As(err, &gerr) {
		return http.StatusInternalServerError, MsgInternal
	}
	switch gerr.Kind {
	case gateway.KindInvalidSelection:
		return http.StatusBadRequest, gerr.Message
	case gateway.KindQuotaExceeded:
		return http.StatusTooManyRequests, gerr.Message
	default:
		return http.StatusInternalServerError, gerr.Message
	}
}
