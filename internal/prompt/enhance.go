// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompt

import "strings"

// enhancement maps any of its keywords to a descriptor phrase.
type enhancement struct {
	keywords  []string
	additions string
}

// enhancements is ordered; earlier groups win when more than two match.
var enhancements = []enhancement{
	{[]string{"calm", "peaceful", "serene", "chill", "relaxing"}, "tranquil atmosphere, soothing color transitions, gentle visual flow"},
	{[]string{"bold", "vibrant", "energetic", "powerful", "strong"}, "high contrast, dynamic composition, striking visual impact"},
	{[]string{"dreamy", "soft", "ethereal", "magical", "fantasy"}, "soft ethereal glow, gentle gradients, mystical atmosphere"},
	{[]string{"minimal", "clean", "simple", "modern"}, "minimalist design, clean lines, balanced negative space"},
	{[]string{"neon", "cyber", "futuristic", "tech"}, "neon glow effects, cyberpunk aesthetic, electric color accents"},
	{[]string{"nature", "forest", "ocean", "mountain", "landscape"}, "natural beauty, organic forms, immersive scenery"},
	{[]string{"retro", "80s", "vintage", "nostalgic"}, "retro aesthetic, nostalgic color palette, vintage vibes"},
	{[]string{"abstract", "artistic", "creative"}, "abstract artistic interpretation, creative composition, unique visual style"},
	{[]string{"sunset", "sunrise", "golden"}, "warm golden hour lighting, beautiful sky gradients"},
	{[]string{"night", "dark", "midnight"}, "nighttime atmosphere, deep shadows, ambient lighting"},
	{[]string{"pastel", "soft colors", "light"}, "soft pastel colors, gentle tones, light and airy feel"},
	{[]string{"cozy", "warm", "comfort"}, "warm cozy atmosphere, inviting color palette, comfortable aesthetic"},
}

const (
	maxEnhancements    = 2
	genericDescriptors = "beautiful composition, smooth gradients, aesthetically pleasing"
)

// Enhance appends up to two keyword-matched descriptor groups to clean,
// or a generic descriptor when nothing matches.
func Enhance(clean string) string {
	lower := strings.ToLower(clean)

	var matched []string
	for _, e := range enhancements {
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, e.additions)
				break
			}
		}
		if len(matched) == maxEnhancements {
			break
		}
	}

	if len(matched) == 0 {
		return clean + ", " + genericDescriptors
	}
	return clean + ", " + strings.Join(matched, ", ")
}
