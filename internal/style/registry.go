// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package style holds the static wallpaper style registry: style universes
// with their palettes and patterns, time-of-day and vibe descriptors, and the
// one-tap quick presets. The registry is parsed once from an embedded YAML
// document and is read-only afterwards, so it is safe for concurrent use.
package style

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// CustomID is the style universe that takes a freeform prompt instead of
// palette and pattern selections.
const CustomID = "custom"

//go:embed styles.yaml
var stylesYAML []byte

// Selections describes one wallpaper request as chosen in the UI.
type Selections struct {
	StyleUniverse string `json:"styleUniverse" yaml:"styleUniverse"`
	Palette       string `json:"palette,omitempty" yaml:"palette"`
	Pattern       string `json:"pattern,omitempty" yaml:"pattern"`
	TimeOfDay     string `json:"timeOfDay,omitempty" yaml:"timeOfDay"`
	Vibe          string `json:"vibe,omitempty" yaml:"vibe"`
	PersonalText  string `json:"personalText,omitempty" yaml:"personalText"`
	CustomPrompt  string `json:"customPrompt,omitempty" yaml:"customPrompt"`
}

// IsCustom reports whether the selections use the freeform custom universe.
func (s Selections) IsCustom() bool {
	return s.StyleUniverse == CustomID
}

// Option is a time-of-day or vibe descriptor.
type Option struct {
	ID             string `json:"id" yaml:"id"`
	Label          string `json:"label" yaml:"label"`
	PromptFragment string `json:"promptFragment" yaml:"promptFragment"`
}

// Palette is a named, ordered set of colours.
type Palette struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Colors      []string `json:"colors" yaml:"colors"`
	Description string   `json:"description" yaml:"description"`
}

// Pattern is a compositional motif with its prompt fragment.
type Pattern struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	PromptFragment string `json:"promptFragment" yaml:"promptFragment"`
}

// Universe is a named aesthetic template bundling compatible palettes and
// patterns with a prompt template and negative prompt.
type Universe struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Description    string    `json:"description" yaml:"description"`
	Tagline        string    `json:"tagline" yaml:"tagline"`
	Palettes       []Palette `json:"palettes" yaml:"palettes"`
	Patterns       []Pattern `json:"patterns" yaml:"patterns"`
	PromptTemplate string    `json:"-" yaml:"promptTemplate"`
	NegativePrompt string    `json:"-" yaml:"negativePrompt"`
}

// Preset is a ready-made selection combo.
type Preset struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Category    string     `json:"category" yaml:"category"`
	Selections  Selections `json:"selections" yaml:"selections"`
}

// Registry is the immutable lookup table for all style data.
type Registry struct {
	TimesOfDay []Option   `yaml:"timesOfDay"`
	Vibes      []Option   `yaml:"vibes"`
	Universes  []Universe `yaml:"universes"`
	Presets    []Preset   `yaml:"presets"`
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry parsed from the embedded styles.yaml.
// It panics if the embedded document is malformed, which can only happen
// at build time.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Parse(stylesYAML)
		if err != nil {
			panic(fmt.Sprintf("style: embedded registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("style: decode: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Registry) validate() error {
	if dup := lo.FindDuplicatesBy(r.Universes, func(u Universe) string { return u.ID }); len(dup) > 0 {
		return fmt.Errorf("style: duplicate universe %q", dup[0].ID)
	}
	for _, u := range r.Universes {
		if u.ID == "" || u.PromptTemplate == "" {
			return fmt.Errorf("style: universe %q missing id or template", u.ID)
		}
		if u.ID != CustomID && (len(u.Palettes) == 0 || len(u.Patterns) == 0) {
			return fmt.Errorf("style: universe %q has no palettes or patterns", u.ID)
		}
	}
	for _, p := range r.Presets {
		s := p.Selections
		if _, ok := r.Palette(s.StyleUniverse, s.Palette); !ok {
			return fmt.Errorf("style: preset %q: unknown palette %q/%q", p.ID, s.StyleUniverse, s.Palette)
		}
		if _, ok := r.Pattern(s.StyleUniverse, s.Pattern); !ok {
			return fmt.Errorf("style: preset %q: unknown pattern %q/%q", p.ID, s.StyleUniverse, s.Pattern)
		}
		if _, ok := r.TimeOfDay(s.TimeOfDay); !ok {
			return fmt.Errorf("style: preset %q: unknown time of day %q", p.ID, s.TimeOfDay)
		}
		if _, ok := r.Vibe(s.Vibe); !ok {
			return fmt.Errorf("style: preset %q: unknown vibe %q", p.ID, s.Vibe)
		}
	}
	return nil
}

// Universe looks up a style universe by id.
func (r *Registry) Universe(id string) (Universe, bool) {
	return lo.Find(r.Universes, func(u Universe) bool { return u.ID == id })
}

// Palette looks up a palette registered under the given universe.
func (r *Registry) Palette(universeID, paletteID string) (Palette, bool) {
	u, ok := r.Universe(universeID)
	if !ok {
		return Palette{}, false
	}
	return lo.Find(u.Palettes, func(p Palette) bool { return p.ID == paletteID })
}

// Pattern looks up a pattern registered under the given universe.
func (r *Registry) Pattern(universeID, patternID string) (Pattern, bool) {
	u, ok := r.Universe(universeID)
	if !ok {
		return Pattern{}, false
	}
	return lo.Find(u.Patterns, func(p Pattern) bool { return p.ID == patternID })
}

// TimeOfDay looks up a time-of-day descriptor.
func (r *Registry) TimeOfDay(id string) (Option, bool) {
	return lo.Find(r.TimesOfDay, func(o Option) bool { return o.ID == id })
}

// Vibe looks up a vibe descriptor.
func (r *Registry) Vibe(id string) (Option, bool) {
	return lo.Find(r.Vibes, func(o Option) bool { return o.ID == id })
}

// Preset looks up a quick preset by id.
func (r *Registry) Preset(id string) (Preset, bool) {
	return lo.Find(r.Presets, func(p Preset) bool { return p.ID == id })
}

// PresetsByCategory returns the presets in one category (energy, calm,
// bold, fresh) in registry order.
func (r *Registry) PresetsByCategory(category string) []Preset {
	return lo.Filter(r.Presets, func(p Preset, _ int) bool { return p.Category == category })
}

// LoadingMessage describes what is being blended while a wallpaper renders.
func (r *Registry) LoadingMessage(sel Selections) string {
	const base = "Crafting your wallpaper..."
	u, okU := r.Universe(sel.StyleUniverse)
	v, okV := r.Vibe(sel.Vibe)
	t, okT := r.TimeOfDay(sel.TimeOfDay)
	if !okU || !okV || !okT {
		return base
	}
	return fmt.Sprintf("%s blending %s × %s × %s", base,
		strings.ToLower(u.Name), strings.ToLower(v.Label), strings.ToLower(t.Label))
}
