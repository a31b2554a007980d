// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/prompt"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

// presetCategories is the display order of preset groups.
var presetCategories = []string{"energy", "calm", "bold", "fresh"}

// Styles returns the style universes with their palettes and patterns,
// plus the time-of-day and vibe options.
func (a *API) Styles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"universes":  a.styles.Universes,
		"timesOfDay": a.styles.TimesOfDay,
		"vibes":      a.styles.Vibes,
	})
}

// Presets returns the quick presets grouped by category, or one category
// with ?category=.
func (a *API) Presets(w http.ResponseWriter, r *http.Request) {
	if cat := r.URL.Query().Get("category"); cat != "" {
		writeJSON(w, http.StatusOK, map[string][]style.Preset{cat: a.styles.PresetsByCategory(cat)})
		return
	}
	grouped := make(map[string][]style.Preset, len(presetCategories))
	for _, cat := range presetCategories {
		grouped[cat] = a.styles.PresetsByCategory(cat)
	}
	writeJSON(w, http.StatusOK, grouped)
}

// WishOptions lists the chips of the guided wish builder.
func (a *API) WishOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"styles":   prompt.WishLabels(prompt.WishStyles),
		"subjects": prompt.WishLabels(prompt.WishSubjects),
		"colors":   prompt.WishLabels(prompt.WishColors),
	})
}

// Surprise picks a curated idea and returns selections ready for
// /api/generate.
func (a *API) Surprise(w http.ResponseWriter, r *http.Request) {
	sel := prompt.Surprise(a.pick)
	writeJSON(w, http.StatusOK, map[string]any{
		"selections":     sel,
		"loadingMessage": a.styles.LoadingMessage(sel),
	})
}

// LoadingMessage describes the blend being rendered for
// ?style=&vibe=&time=.
func (a *API) LoadingMessage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	msg := a.styles.LoadingMessage(style.Selections{
		StyleUniverse: q.Get("style"),
		Vibe:          q.Get("vibe"),
		TimeOfDay:     q.Get("time"),
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
