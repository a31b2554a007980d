// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompt

import (
	"strings"

	"github.com/samber/lo"
)

// WishOption is one chip in the guided wish builder.
type WishOption struct {
	Label    string `json:"label"`
	Fragment string `json:"-"`
}

// Wish is a guided request: a style, subject and color chip plus optional
// on-image text. Empty fields are skipped.
type Wish struct {
	Style   string `json:"style"`
	Subject string `json:"subject"`
	Color   string `json:"color"`
	Text    string `json:"text"`
}

// WishStyles lists the style chips.
var WishStyles = []WishOption{
	{"cute", "cute kawaii style, adorable, charming illustration"},
	{"elegant", "elegant sophisticated style, refined, graceful design"},
	{"bold", "bold striking style, high contrast, powerful visual impact"},
	{"dreamy", "dreamy ethereal style, soft focus, whimsical atmosphere"},
	{"minimal", "minimalist style, clean lines, generous negative space"},
	{"retro", "retro vintage style, nostalgic throwback aesthetic"},
	{"dark", "dark moody style, deep shadows, mysterious atmosphere"},
	{"playful", "playful fun style, bright and cheerful, full of energy"},
}

// WishSubjects lists the subject chips.
var WishSubjects = []WishOption{
	{"characters", "illustrated characters, friendly figures"},
	{"flowers", "beautiful flowers, floral arrangement, botanical"},
	{"landscape", "stunning landscape scenery, nature vista"},
	{"abstract shapes", "abstract flowing shapes, geometric forms, artistic composition"},
	{"animals", "adorable animals, wildlife illustration"},
	{"space & stars", "cosmic space scene, stars, nebula, galaxy"},
	{"ocean & waves", "ocean waves, sea, coastal scenery"},
	{"city & buildings", "urban cityscape, architecture, skyline"},
	{"food & sweets", "delicious food, sweets, desserts illustration"},
	{"patterns", "repeating pattern design, decorative motif"},
}

// WishColors lists the color chips.
var WishColors = []WishOption{
	{"pink & purple", "pink and purple color palette, rose, magenta, violet tones"},
	{"blue & teal", "blue and teal color palette, ocean blues, cyan, aqua tones"},
	{"warm sunset", "warm sunset color palette, orange, golden, amber tones"},
	{"pastel", "soft pastel color palette, light pink, lavender, baby blue, mint"},
	{"black & gold", "black and gold color palette, luxurious dark with metallic gold accents"},
	{"green & earth", "green and earth tones, forest green, olive, natural brown"},
	{"rainbow", "rainbow color palette, full spectrum of vibrant colors"},
	{"monochrome", "monochromatic grayscale, black white and gray tones"},
}

const wishSuffix = ". High quality, beautiful composition, visually striking, professional design. Safe for all audiences."

// BuildWish assembles a complete prompt from wish chips. Unknown labels
// are ignored. The result contains "high quality", so CompileCustom
// passes it through unchanged.
func BuildWish(w Wish) string {
	parts := []string{"A phone wallpaper, vertical 9:16 aspect ratio"}
	for _, pick := range []struct {
		options []WishOption
		label   string
	}{
		{WishStyles, w.Style},
		{WishSubjects, w.Subject},
		{WishColors, w.Color},
	} {
		if opt, ok := lo.Find(pick.options, func(o WishOption) bool { return o.Label == pick.label }); ok {
			parts = append(parts, opt.Fragment)
		}
	}

	p := strings.Join(parts, ", ")
	if text := strings.ToUpper(strings.TrimSpace(StripUnsafe(w.Text))); text != "" {
		p += ". " + strings.TrimSuffix(TextInstruction(truncateRunes(text, MaxPersonalTextLen)), ".")
	}
	return p + wishSuffix
}

// WishLabels returns the chip labels of a wish option list.
func WishLabels(opts []WishOption) []string {
	return lo.Map(opts, func(o WishOption, _ int) string { return o.Label })
}
