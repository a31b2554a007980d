// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

// ErrInvalidSelection is returned when selections do not resolve against
// the style registry.
var ErrInvalidSelection = errors.New("invalid selection")

const (
	// DefaultNegativePrompt is used for custom prompts.
	DefaultNegativePrompt = "text, watermark, signature, low quality, blurry, pixelated, distorted, nsfw, inappropriate content"

	// CarrierPrefix opens every custom and synthesized prompt.
	CarrierPrefix = "A phone wallpaper, vertical 9:16 aspect ratio, "

	// CarrierSuffix closes every custom and synthesized prompt.
	CarrierSuffix = ". High quality, clean composition, suitable for phone lock screen, visually striking, professional design. Safe for all audiences."

	// MaxPersonalTextLen bounds on-image text.
	MaxPersonalTextLen = 20

	// completePromptLen marks a custom prompt as already engineered.
	completePromptLen = 200
)

// Compiled is a vendor-ready prompt pair.
type Compiled struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt"`
}

// Compiler fills style universe templates from selections.
type Compiler struct {
	reg *style.Registry
}

// NewCompiler creates a compiler backed by the given registry.
func NewCompiler(reg *style.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// Compile turns selections into a prompt and negative prompt. Non-custom
// selections must resolve universe, palette, pattern, time of day and
// vibe, otherwise the error wraps ErrInvalidSelection.
func (c *Compiler) Compile(sel style.Selections) (Compiled, error) {
	if sel.IsCustom() {
		if strings.TrimSpace(sel.CustomPrompt) == "" {
			return Compiled{}, fmt.Errorf("%w: custom style requires a prompt", ErrInvalidSelection)
		}
		return Compiled{
			Prompt:         c.CompileCustom(sel.CustomPrompt, sel.TimeOfDay, sel.Vibe),
			NegativePrompt: DefaultNegativePrompt,
		}, nil
	}

	universe, ok := c.reg.Universe(sel.StyleUniverse)
	if !ok {
		return Compiled{}, fmt.Errorf("%w: unknown style universe %q", ErrInvalidSelection, sel.StyleUniverse)
	}
	palette, ok := c.reg.Palette(sel.StyleUniverse, sel.Palette)
	if !ok {
		return Compiled{}, fmt.Errorf("%w: palette %q not in %q", ErrInvalidSelection, sel.Palette, sel.StyleUniverse)
	}
	pattern, ok := c.reg.Pattern(sel.StyleUniverse, sel.Pattern)
	if !ok {
		return Compiled{}, fmt.Errorf("%w: pattern %q not in %q", ErrInvalidSelection, sel.Pattern, sel.StyleUniverse)
	}
	tod, ok := c.reg.TimeOfDay(sel.TimeOfDay)
	if !ok {
		return Compiled{}, fmt.Errorf("%w: unknown time of day %q", ErrInvalidSelection, sel.TimeOfDay)
	}
	vibe, ok := c.reg.Vibe(sel.Vibe)
	if !ok {
		return Compiled{}, fmt.Errorf("%w: unknown vibe %q", ErrInvalidSelection, sel.Vibe)
	}

	p := universe.PromptTemplate
	p = strings.Replace(p, "{{pattern}}", pattern.PromptFragment, 1)
	p = strings.Replace(p, "{{palette}}", palette.Name, 1)
	p = strings.Replace(p, "{{colors}}", strings.Join(palette.Colors, ", "), 1)
	p = strings.Replace(p, "{{timeOfDay}}", tod.PromptFragment, 1)
	p = strings.Replace(p, "{{vibe}}", vibe.PromptFragment, 1)
	p = strings.Replace(p, "{{personalText}}", personalTextInstruction(sel.PersonalText), 1)

	return Compiled{
		Prompt:         CollapseSpace(p),
		NegativePrompt: universe.NegativePrompt,
	}, nil
}

// CompileCustom builds the custom-style prompt. Text that already reads
// like an engineered prompt is only stripped of unsafe characters; short
// ideas are sanitized, enhanced and wrapped in the carrier template with
// optional time-of-day and vibe fragments. Unknown ids are skipped.
func (c *Compiler) CompileCustom(text, timeOfDay, vibe string) string {
	if looksComplete(text) {
		return strings.TrimSpace(StripUnsafe(text))
	}

	body := Enhance(Sanitize(text, MaxFreeformLen))
	if t, ok := c.reg.TimeOfDay(timeOfDay); ok {
		body += ", " + t.PromptFragment
	}
	if v, ok := c.reg.Vibe(vibe); ok {
		body += ", " + v.PromptFragment
	}
	return WrapCarrier(body)
}

// WrapCarrier wraps a prompt body in the fixed phone-wallpaper carrier.
func WrapCarrier(body string) string {
	return CarrierPrefix + body + CarrierSuffix
}

// TextInstruction is the explicit on-image text directive. text is
// expected to be trimmed and upper-cased already.
func TextInstruction(text string) string {
	return `IMPORTANT: Include clearly readable text that says exactly "` + text +
		`" in large, bold, legible typography prominently displayed in the image.`
}

func personalTextInstruction(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	return TextInstruction(strings.ToUpper(truncateRunes(text, MaxPersonalTextLen)))
}

func looksComplete(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "high quality") ||
		strings.Contains(lower, "beautiful composition") ||
		utf8.RuneCountInString(text) > completePromptLen
}
