// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompt turns wallpaper selections and freeform ideas into
// vendor-ready image prompts. It sanitizes user text, expands short ideas
// with keyword-driven descriptors, and fills style universe templates.
// Everything here is pure and deterministic.
package prompt

import (
	"regexp"
	"strings"
)

// MaxFreeformLen bounds freeform snippets before enhancement.
const MaxFreeformLen = 150

// blockedPhrases are deleted (not rejected) wherever they occur.
var blockedPhrases = []string{
	"ignore previous",
	"disregard",
	"forget everything",
	"new instructions",
	"system prompt",
	"nsfw",
	"nude",
	"naked",
	"explicit",
	"violent",
	"gore",
	"blood",
}

var (
	blockedRe       = buildBlockedRe(blockedPhrases)
	unsafeCharsRe   = regexp.MustCompile("[<>{}\\[\\]|\\\\^`]")
	trailingPunctRe = regexp.MustCompile(`[.,:;!?]+$`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

func buildBlockedRe(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// Sanitize bounds raw user text to maxLen runes, deletes injection and
// unsafe phrases, strips template-breaking characters and trailing
// punctuation. It never fails; the result may be empty.
func Sanitize(raw string, maxLen int) string {
	s := truncateRunes(strings.TrimSpace(raw), maxLen)
	s = blockedRe.ReplaceAllString(s, "")
	s = StripUnsafe(s)
	s = strings.TrimSpace(s)
	s = trailingPunctRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// StripUnsafe removes the characters < > { } [ ] | \ ^ and backtick.
func StripUnsafe(s string) string {
	return unsafeCharsRe.ReplaceAllString(s, "")
}

// CollapseSpace folds every whitespace run to a single space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
