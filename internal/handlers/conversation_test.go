// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/conversation"
)

const oneTurn = `{"messages":[{"role":"user","content":"a cozy cabin in snow"}]}`

func TestConversationTurnNegotiating(t *testing.T) {
	chat := &fakeChat{res: conversation.Result{Reply: "Love it! Warm lights inside?"}}
	api := newTestAPI(Deps{Conversation: chat})

	rec := call(t, api.ConversationTurn, http.MethodPost, "/api/conversation-turn", oneTurn)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data missing: %v", body)
	}
	if data["reply"] != "Love it! Warm lights inside?" {
		t.Errorf("reply: got %v", data["reply"])
	}
	if v, present := data["finalPrompt"]; !present || v != nil {
		t.Errorf("finalPrompt: want explicit null, got %v (present %v)", v, present)
	}
	if len(chat.sessions) != 1 || chat.sessions[0] != "s1" {
		t.Errorf("session scope: got %v, want [s1]", chat.sessions)
	}
}

func TestConversationTurnReady(t *testing.T) {
	final := "A phone wallpaper, vertical 9:16 aspect ratio, a cozy cabin"
	chat := &fakeChat{res: conversation.Result{Reply: "Perfect, creating that now!", FinalPrompt: &final, Extractor: "fenced-json"}}
	api := newTestAPI(Deps{Conversation: chat})

	rec := call(t, api.ConversationTurn, http.MethodPost, "/api/conversation-turn", oneTurn)

	resp := decode[turnResponse](t, rec)
	if !resp.Success || resp.Data == nil || resp.Data.FinalPrompt == nil || *resp.Data.FinalPrompt != final {
		t.Errorf("response: got %+v", resp)
	}
}

func TestConversationTurnRateLimited(t *testing.T) {
	final := "fallback prompt"
	chat := &fakeChat{res: conversation.Result{Reply: conversation.FailureReply, FinalPrompt: &final, Fallback: true, RateLimited: true}}
	api := newTestAPI(Deps{Conversation: chat})

	rec := call(t, api.ConversationTurn, http.MethodPost, "/api/conversation-turn", oneTurn)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status: got %d, want 429", rec.Code)
	}
	resp := decode[turnResponse](t, rec)
	if resp.Success || resp.Error != MsgRateLimited {
		t.Errorf("body: got %+v", resp)
	}
	if resp.Data == nil || resp.Data.FinalPrompt == nil || *resp.Data.FinalPrompt != final {
		t.Error("the fallback prompt should still be returned")
	}
}

func TestConversationTurnStale(t *testing.T) {
	api := newTestAPI(Deps{Conversation: &fakeChat{res: conversation.Result{Stale: true}}})

	rec := call(t, api.ConversationTurn, http.MethodPost, "/api/conversation-turn", oneTurn)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409", rec.Code)
	}
	resp := decode[turnResponse](t, rec)
	if resp.Success || !resp.Stale || resp.Data != nil {
		t.Errorf("body: got %+v", resp)
	}
}

func TestConversationTurnErrors(t *testing.T) {
	tests := []struct {
		name       string
		chat       Conversation
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"unconfigured", nil, oneTurn, http.StatusInternalServerError, MsgChatUnconfigured},
		{"malformed body", &fakeChat{}, `{"messages":`, http.StatusBadRequest, MsgInvalidBody},
		{"empty messages", &fakeChat{}, `{"messages":[]}`, http.StatusBadRequest, "Messages are required."},
		{"engine failure", &fakeChat{err: errors.New("boom")}, oneTurn, http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(Deps{Conversation: tt.chat})
			rec := call(t, api.ConversationTurn, http.MethodPost, "/api/conversation-turn", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp := decode[turnResponse](t, rec); resp.Error != tt.wantMsg {
				t.Errorf("error: got %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}

func TestConversationReset(t *testing.T) {
	chat := &fakeChat{resetErr: errors.New("valkey down")}
	api := newTestAPI(Deps{Conversation: chat})

	rec := call(t, api.ConversationReset, http.MethodPost, "/api/conversation-reset", "")

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if len(chat.resets) != 1 || chat.resets[0] != "s1" {
		t.Errorf("resets: got %v, want [s1]", chat.resets)
	}
}
