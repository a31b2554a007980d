// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/gateway"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/quota"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

func TestDailyStatus(t *testing.T) {
	resets := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	q := &fakeQuota{st: quota.Status{Allowed: true, Remaining: 2, Used: 1, Max: 3, ResetsAt: resets}}
	api := newTestAPI(Deps{Quota: q})

	rec := call(t, api.DailyStatus, http.MethodGet, "/api/daily-status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if q.userID != "u1" {
		t.Errorf("user: got %q, want u1", q.userID)
	}
	body := decode[map[string]any](t, rec)
	want := map[string]any{
		"generationsUsed": 1.0,
		"maxGenerations":  3.0,
		"remaining":       2.0,
		"canGenerate":     true,
		"resetsAt":        "2026-03-15T00:00:00Z",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s: got %v, want %v", k, body[k], v)
		}
	}
}

func TestGenerateSuccess(t *testing.T) {
	id := uuid.New()
	gen := &fakeGenerator{res: &gateway.Result{
		ImageURL:        "https://img.example/1.webp",
		ThumbnailBase64: "data:image/jpeg;base64,AA==",
		WallpaperID:     id,
		PromptSent:      "A minimal wallpaper",
	}}
	api := newTestAPI(Deps{Generator: gen})

	rec := call(t, api.Generate, http.MethodPost, "/api/generate",
		`{"selections":{"styleUniverse":"minimal","palette":"bone","pattern":"dot-matrix","timeOfDay":"dawn","vibe":"serene"},"skipCache":true}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	resp := decode[generateResponse](t, rec)
	if !resp.Success || resp.ImageURL != "https://img.example/1.webp" || resp.WallpaperID != id.String() {
		t.Errorf("response: got %+v", resp)
	}
	if len(gen.got) != 1 {
		t.Fatalf("generate calls: got %d, want 1", len(gen.got))
	}
	req := gen.got[0]
	if req.UserID != "u1" || !req.SkipCache || req.Selections.Palette != "bone" || req.Prompt != "" {
		t.Errorf("gateway request: got %+v", req)
	}
}

func TestGenerateOmitsNilWallpaperID(t *testing.T) {
	gen := &fakeGenerator{res: &gateway.Result{ImageURL: "https://img.example/1.webp", Cached: true}}
	api := newTestAPI(Deps{Generator: gen})

	rec := call(t, api.Generate, http.MethodPost, "/api/generate", `{"selections":{"styleUniverse":"minimal"}}`)

	if strings.Contains(rec.Body.String(), "wallpaperId") {
		t.Errorf("wallpaperId should be omitted: %s", rec.Body.String())
	}
	if !decode[generateResponse](t, rec).Cached {
		t.Error("cached flag lost")
	}
}

func TestGenerateFinalPrompt(t *testing.T) {
	gen := &fakeGenerator{res: &gateway.Result{ImageURL: "x"}}
	api := newTestAPI(Deps{Generator: gen})

	rec := call(t, api.Generate, http.MethodPost, "/api/generate",
		`{"finalPrompt":"  A phone wallpaper, <b>fox</b> under aurora  "}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := gen.got[0].Prompt; got != "A phone wallpaper, bfox/b under aurora" {
		t.Errorf("prompt: got %q", got)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		genErr     error
		wantStatus int
		wantMsg    string
	}{
		{"malformed body", `{"selections":`, nil, http.StatusBadRequest, MsgInvalidBody},
		{"missing style", `{"selections":{}}`, nil, http.StatusBadRequest, "A style is required."},
		{
			"invalid selection", `{"selections":{"styleUniverse":"nope"}}`,
			&gateway.GenerationError{Kind: gateway.KindInvalidSelection, Message: gateway.MsgInvalidSelections},
			http.StatusBadRequest, gateway.MsgInvalidSelections,
		},
		{
			"quota exceeded", `{"selections":{"styleUniverse":"minimal"}}`,
			&gateway.GenerationError{Kind: gateway.KindQuotaExceeded, Message: gateway.MsgQuotaExceeded},
			http.StatusTooManyRequests, gateway.MsgQuotaExceeded,
		},
		{
			"vendor throttled", `{"selections":{"styleUniverse":"minimal"}}`,
			&gateway.GenerationError{Kind: gateway.KindGenerationFailed, Message: gateway.MsgRateLimited},
			http.StatusInternalServerError, gateway.MsgRateLimited,
		},
		{"unexpected", `{"selections":{"styleUniverse":"minimal"}}`, errors.New("boom"), http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(Deps{Generator: &fakeGenerator{err: tt.genErr}})
			rec := call(t, api.Generate, http.MethodPost, "/api/generate", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decode[generateResponse](t, rec)
			if resp.Success || resp.Error != tt.wantMsg {
				t.Errorf("body: got %+v, want error %q", resp, tt.wantMsg)
			}
		})
	}
}

func TestWish(t *testing.T) {
	gen := &fakeGenerator{res: &gateway.Result{ImageURL: "x"}}
	api := newTestAPI(Deps{Generator: gen})

	rec := call(t, api.Wish, http.MethodPost, "/api/wish",
		`{"style":"cute","subject":"animals","color":"pastel","text":"hi mom"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	sel := gen.got[0].Selections
	if sel.StyleUniverse != style.CustomID {
		t.Errorf("universe: got %q, want custom", sel.StyleUniverse)
	}
	for _, want := range []string{"cute kawaii style", "adorable animals", "soft pastel", `"HI MOM"`} {
		if !strings.Contains(sel.CustomPrompt, want) {
			t.Errorf("prompt %q should contain %q", sel.CustomPrompt, want)
		}
	}
}

func TestWishRequiresAChip(t *testing.T) {
	gen := &fakeGenerator{}
	api := newTestAPI(Deps{Generator: gen})

	rec := call(t, api.Wish, http.MethodPost, "/api/wish", `{"text":"hello"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if len(gen.got) != 0 {
		t.Error("no generation should run")
	}
}
