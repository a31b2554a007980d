// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/gateway"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/middleware"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/prompt"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

type generateRequest struct {
	Selections  style.Selections `json:"selections"`
	SkipCache   bool             `json:"skipCache"`
	FinalPrompt string           `json:"finalPrompt"`
}

type generateResponse struct {
	Success         bool   `json:"success"`
	ImageURL        string `json:"imageUrl,omitempty"`
	ThumbnailBase64 string `json:"thumbnailBase64,omitempty"`
	WallpaperID     string `json:"wallpaperId,omitempty"`
	PromptSent      string `json:"promptSent,omitempty"`
	Cached          bool   `json:"cached,omitempty"`
	Error           string `json:"error,omitempty"`
}

// DailyStatus reports today's allowance. The quota guard fails open, so
// this endpoint always answers 200.
func (a *API) DailyStatus(w http.ResponseWriter, r *http.Request) {
	st := a.quota.Status(r.Context(), middleware.UserID(r.Context()))
	writeJSON(w, http.StatusOK, st)
}

// Generate renders a wallpaper from selections, or from a final prompt
// produced by the design assistant.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: MsgInvalidBody})
		return
	}

	greq := gateway.Request{
		UserID:     middleware.UserID(r.Context()),
		Selections: req.Selections,
		SkipCache:  req.SkipCache,
	}
	if final := strings.TrimSpace(req.FinalPrompt); final != "" {
		if msg := validateFinalPrompt(final); msg != "" {
			writeJSON(w, http.StatusBadRequest, generateResponse{Error: msg})
			return
		}
		greq.Prompt = prompt.StripUnsafe(final)
	} else if msg := validateSelections(req.Selections); msg != "" {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: msg})
		return
	}

	a.runGeneration(w, r, greq)
}

type wishRequest struct {
	prompt.Wish
	SkipCache bool `json:"skipCache"`
}

// Wish builds a prompt from the guided wish chips and renders it.
func (a *API) Wish(w http.ResponseWriter, r *http.Request) {
	var req wishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: MsgInvalidBody})
		return
	}
	if msg := validateWish(req.Style, req.Subject, req.Color, req.Text); msg != "" {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: msg})
		return
	}

	a.runGeneration(w, r, gateway.Request{
		UserID: middleware.UserID(r.Context()),
		Selections: style.Selections{
			StyleUniverse: style.CustomID,
			CustomPrompt:  prompt.BuildWish(req.Wish),
			PersonalText:  strings.TrimSpace(req.Text),
		},
		SkipCache: req.SkipCache,
	})
}

func (a *API) runGeneration(w http.ResponseWriter, r *http.Request, req gateway.Request) {
	res, err := a.gen.Generate(r.Context(), req)
	if err != nil {
		status, msg := generationStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("generation failed", "user_id", req.UserID, "error", err)
		}
		writeJSON(w, status, generateResponse{Error: msg})
		return
	}

	out := generateResponse{
		Success:         true,
		ImageURL:        res.ImageURL,
		ThumbnailBase64: res.ThumbnailBase64,
		PromptSent:      res.PromptSent,
		Cached:          res.Cached,
	}
	if res.WallpaperID != uuid.Nil {
		out.WallpaperID = res.WallpaperID.String()
	}
	writeJSON(w, http.StatusOK, out)
}
