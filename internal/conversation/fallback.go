// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conversation

import (
	"strings"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/prompt"
)

// mood is a keyword bucket mapped to a style, lighting and mood triple.
type mood struct {
	name     string
	keywords []string
	style    string
	lighting string
	feel     string
}

// moods are mutually exclusive; the first bucket with a keyword hit wins.
var moods = []mood{
	{
		name:     "moody",
		keywords: []string{"dark", "moody", "night", "mysterious", "gothic", "rain", "storm", "shadow", "melancholy"},
		style:    "cinematic digital painting",
		lighting: "low-key lighting with deep shadows and subtle highlights",
		feel:     "mysterious, atmospheric mood",
	},
	{
		name:     "dreamy",
		keywords: []string{"dream", "soft", "pastel", "ethereal", "magical", "fairy", "cloud", "whimsical", "gentle"},
		style:    "soft-focus illustration",
		lighting: "diffused glowing light",
		feel:     "dreamy, ethereal mood",
	},
	{
		name:     "bold",
		keywords: []string{"bold", "neon", "vibrant", "bright", "electric", "energetic", "pop", "loud", "intense"},
		style:    "vivid graphic art",
		lighting: "high-contrast dramatic lighting",
		feel:     "bold, energetic mood",
	},
}

var defaultMood = mood{
	name:     "default",
	style:    "detailed digital art",
	lighting: "soft natural lighting",
	feel:     "calm, balanced mood",
}

const emptyIdea = "an abstract flow of soft colors"

// FallbackPrompt synthesizes a complete wallpaper prompt from the user turns
// alone. It always returns a usable prompt.
func FallbackPrompt(userTurns []string) string {
	var ideas []string
	for _, t := range userTurns {
		if s := prompt.Sanitize(t, prompt.MaxFreeformLen); s != "" {
			ideas = append(ideas, s)
		}
	}
	combined := strings.Join(ideas, ", ")
	if combined == "" {
		combined = emptyIdea
	}

	m := detectMood(combined)
	return prompt.WrapCarrier(combined + ", " + m.style + ", " + m.lighting + ", " + m.feel)
}

func detectMood(text string) mood {
	lower := strings.ToLower(text)
	for _, m := range moods {
		for _, kw := range m.keywords {
			if strings.Contains(lower, kw) {
				return m
			}
		}
	}
	return defaultMood
}
