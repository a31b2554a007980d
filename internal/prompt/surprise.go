// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompt

import (
	"math/rand/v2"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

// SurpriseIdeas are the curated "surprise me" seeds.
var SurpriseIdeas = []string{
	"cosmic galaxy with swirling nebula colors, dreamy ethereal style",
	"serene japanese zen garden at golden hour, peaceful atmosphere",
	"magical forest with glowing fireflies at dusk, mystical mood",
	"neon cyberpunk city at night, vibrant colors",
	"underwater coral reef with tropical fish, bright and colorful",
	"northern lights over snowy mountains, dramatic and majestic",
	"cherry blossom trees in spring, soft pink tones, romantic",
	"abstract geometric patterns, bold colors, modern art style",
}

const surpriseSuffix = ". High quality, beautiful composition, visually striking. Safe for all audiences."

// Surprise picks a curated idea with pick (nil uses math/rand) and
// returns custom selections ready for the generation gateway.
func Surprise(pick func(n int) int) style.Selections {
	if pick == nil {
		pick = rand.IntN
	}
	idea := SurpriseIdeas[pick(len(SurpriseIdeas))]
	return style.Selections{
		StyleUniverse: style.CustomID,
		CustomPrompt:  CarrierPrefix + idea + surpriseSuffix,
		TimeOfDay:     "daylight",
		Vibe:          "serene",
	}
}
