// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conversation

import (
	"regexp"
	"strings"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/prompt"
)

// textTurn is the 1-based user turn that answers the on-image text question.
const textTurn = 4

const qualityTail = "High quality, beautiful composition, visually striking. Safe for all audiences."

var (
	declinedRe    = regexp.MustCompile(`(?i)^(no|none|clean|nope|skip|nothing)$`)
	qualityMarkRe = regexp.MustCompile(`(?i)high quality|beautiful composition`)
)

// Supplement injects the on-image text requested in the fourth user turn
// when the model left it out of the prompt. Declined answers and text that
// already appears in the prompt leave it unchanged.
func Supplement(p string, userTurns []string) string {
	if len(userTurns) < textTurn {
		return p
	}
	requested := strings.Trim(prompt.Sanitize(userTurns[textTurn-1], prompt.MaxFreeformLen), `"'`)
	if requested == "" || declinedRe.MatchString(requested) {
		return p
	}
	if strings.Contains(strings.ToLower(p), strings.ToLower(requested)) {
		return p
	}

	head := p
	if loc := qualityMarkRe.FindStringIndex(p); loc != nil {
		head = p[:loc[0]]
	}
	head = strings.TrimRight(strings.TrimSpace(head), " ,.;:")

	return head + ". " + prompt.TextInstruction(strings.ToUpper(requested)) + " " + qualityTail
}
