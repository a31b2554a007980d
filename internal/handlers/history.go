// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/middleware"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
)

// History lists the caller's wallpapers, newest first.
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		writeError(w, http.StatusServiceUnavailable, MsgInternal)
		return
	}

	page := queryInt(r, "page")
	pageSize := queryInt(r, "pageSize")
	userID := middleware.UserID(r.Context())

	result, err := a.history.ListByUser(r.Context(), userID, page, pageSize)
	if err != nil {
		slog.Error("list history failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Library browses the shared catalog. ?random=true returns one matching
// entry (or null), ?stats=true returns counts by style.
func (a *API) Library(w http.ResponseWriter, r *http.Request) {
	if a.library == nil {
		writeError(w, http.StatusServiceUnavailable, MsgInternal)
		return
	}

	q := r.URL.Query()
	ctx := r.Context()
	filter := models.LibraryFilter{
		Style:     q.Get("style"),
		Vibe:      q.Get("vibe"),
		TimeOfDay: q.Get("time"),
	}

	switch {
	case q.Get("stats") == "true":
		stats, err := a.library.Stats(ctx)
		if err != nil {
			slog.Error("library stats failed", "error", err)
			writeError(w, http.StatusInternalServerError, MsgInternal)
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: stats})

	case q.Get("random") == "true":
		entry, err := a.library.Random(ctx, filter)
		if err != nil {
			slog.Error("library random failed", "error", err)
			writeError(w, http.StatusInternalServerError, MsgInternal)
			return
		}
		// A nil entry encodes as "data": null.
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": entry})

	default:
		entries, err := a.library.Browse(ctx, filter)
		if err != nil {
			slog.Error("library browse failed", "error", err)
			writeError(w, http.StatusInternalServerError, MsgInternal)
			return
		}
		if entries == nil {
			entries = []models.LibraryEntry{}
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: entries})
	}
}

// queryInt parses a positive integer query parameter; anything else is 0
// and the store applies its default.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// CacheStats reports how many images the fingerprint cache holds and how
// often they were served.
func (a *API) CacheStats(w http.ResponseWriter, r *http.Request) {
	if a.cache == nil {
		writeError(w, http.StatusServiceUnavailable, MsgInternal)
		return
	}
	stats, err := a.cache.Stats(r.Context())
	if err != nil {
		slog.Error("cache stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: stats})
}
