// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/prompt"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

func TestStyles(t *testing.T) {
	api := newTestAPI(Deps{})

	rec := call(t, api.Styles, http.MethodGet, "/api/styles", "")

	body := decode[map[string][]map[string]any](t, rec)
	if len(body["universes"]) != 7 || len(body["timesOfDay"]) != 4 || len(body["vibes"]) != 6 {
		t.Errorf("counts: universes=%d times=%d vibes=%d",
			len(body["universes"]), len(body["timesOfDay"]), len(body["vibes"]))
	}
	if _, leaked := body["universes"][0]["PromptTemplate"]; leaked {
		t.Error("prompt templates must not be exposed")
	}
}

func TestPresets(t *testing.T) {
	api := newTestAPI(Deps{})

	t.Run("grouped", func(t *testing.T) {
		body := decode[map[string][]style.Preset](t, call(t, api.Presets, http.MethodGet, "/api/presets", ""))
		for _, cat := range presetCategories {
			if len(body[cat]) != 3 {
				t.Errorf("%s: got %d presets, want 3", cat, len(body[cat]))
			}
		}
	})

	t.Run("one category", func(t *testing.T) {
		body := decode[map[string][]style.Preset](t, call(t, api.Presets, http.MethodGet, "/api/presets?category=calm", ""))
		if len(body) != 1 || len(body["calm"]) != 3 {
			t.Errorf("got %v", body)
		}
	})
}

func TestWishOptions(t *testing.T) {
	api := newTestAPI(Deps{})

	body := decode[map[string][]string](t, call(t, api.WishOptions, http.MethodGet, "/api/wish-options", ""))

	if len(body["styles"]) != 8 || len(body["subjects"]) != 10 || len(body["colors"]) != 8 {
		t.Errorf("counts: got %d/%d/%d", len(body["styles"]), len(body["subjects"]), len(body["colors"]))
	}
	if body["subjects"][5] != "space & stars" {
		t.Errorf("subject order: got %q", body["subjects"][5])
	}
}

func TestSurprise(t *testing.T) {
	api := newTestAPI(Deps{Pick: func(n int) int { return 3 }})

	rec := call(t, api.Surprise, http.MethodGet, "/api/surprise", "")

	type surprise struct {
		Selections     style.Selections `json:"selections"`
		LoadingMessage string           `json:"loadingMessage"`
	}
	body := decode[surprise](t, rec)

	sel := body.Selections
	if sel.StyleUniverse != style.CustomID || sel.TimeOfDay != "daylight" || sel.Vibe != "serene" {
		t.Errorf("selections: got %+v", sel)
	}
	if want := prompt.CarrierPrefix + prompt.SurpriseIdeas[3]; len(sel.CustomPrompt) < len(want) || sel.CustomPrompt[:len(want)] != want {
		t.Errorf("prompt: got %q", sel.CustomPrompt)
	}
	if body.LoadingMessage == "" {
		t.Error("loading message missing")
	}
}

func TestLoadingMessage(t *testing.T) {
	api := newTestAPI(Deps{})

	tests := []struct {
		target string
		want   string
	}{
		{"/api/loading-message?style=nature&vibe=cozy&time=dusk", "Crafting your wallpaper... blending nature × cozy × dusk"},
		{"/api/loading-message?style=nature", "Crafting your wallpaper..."},
	}
	for _, tt := range tests {
		body := decode[map[string]string](t, call(t, api.LoadingMessage, http.MethodGet, tt.target, ""))
		if body["message"] != tt.want {
			t.Errorf("%s: got %q, want %q", tt.target, body["message"], tt.want)
		}
	}
}
