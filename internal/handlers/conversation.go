// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/conversation"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/middleware"
)

type turnRequest struct {
	Messages []ai.Message `json:"messages"`
}

type turnData struct {
	Reply       string  `json:"reply"`
	FinalPrompt *string `json:"finalPrompt"`
}

type turnResponse struct {
	Success bool      `json:"success"`
	Data    *turnData `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Stale   bool      `json:"stale,omitempty"`
}

// ConversationTurn sends the history to the design assistant. finalPrompt
// stays null until the assistant is ready. A throttled vendor answers 429
// with the fallback prompt so the client can still continue.
func (a *API) ConversationTurn(w http.ResponseWriter, r *http.Request) {
	if a.chat == nil {
		writeJSON(w, http.StatusInternalServerError, turnResponse{Error: MsgChatUnconfigured})
		return
	}

	var req turnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, turnResponse{Error: MsgInvalidBody})
		return
	}
	if msg := validateMessages(req.Messages); msg != "" {
		writeJSON(w, http.StatusBadRequest, turnResponse{Error: msg})
		return
	}

	res, err := a.chat.Turn(r.Context(), middleware.SessionID(r.Context()), req.Messages)
	if err != nil {
		if errors.Is(err, conversation.ErrNoMessages) || errors.Is(err, conversation.ErrInvalidRole) {
			writeJSON(w, http.StatusBadRequest, turnResponse{Error: err.Error()})
			return
		}
		slog.Error("conversation turn failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, turnResponse{Error: MsgInternal})
		return
	}

	switch {
	case res.Stale:
		writeJSON(w, http.StatusConflict, turnResponse{Stale: true, Error: MsgConversationStale})
	case res.RateLimited:
		writeJSON(w, http.StatusTooManyRequests, turnResponse{
			Error: MsgRateLimited,
			Data:  &turnData{Reply: res.Reply, FinalPrompt: res.FinalPrompt},
		})
	default:
		if res.Ready() {
			slog.Info("conversation ready", "extractor", res.Extractor, "fallback", res.Fallback)
		}
		writeJSON(w, http.StatusOK, turnResponse{
			Success: true,
			Data:    &turnData{Reply: res.Reply, FinalPrompt: res.FinalPrompt},
		})
	}
}

// ConversationReset starts a fresh conversation; replies still in flight
// for the old one are discarded.
func (a *API) ConversationReset(w http.ResponseWriter, r *http.Request) {
	if a.chat != nil {
		if err := a.chat.Reset(r.Context(), middleware.SessionID(r.Context())); err != nil {
			slog.Warn("conversation reset failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, response{Success: true})
}
