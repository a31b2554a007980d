// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conversation

import (
	"regexp"
	"strings"
	"unicode"
)

// Match is a final prompt found in a model reply. Before is the reply text
// that precedes the readiness signal.
type Match struct {
	Prompt string
	Before string
}

// Extractor is one named strategy for finding a readiness signal.
type Extractor struct {
	Name    string
	Extract func(reply string, userTurns []string) (Match, bool)
}

// Extractor names, most specific first.
const (
	FencedJSON   = "fenced-json"
	BareJSON     = "bare-json"
	PromptPrefix = "prompt-prefix"
	SoundsReady  = "sounds-ready"
)

// readyAfterTurns is how many user turns the sounds-ready heuristic needs.
const readyAfterTurns = 4

var (
	fencedJSONRe   = regexp.MustCompile("```(?:prompt|json)?\\s*\\{[\\s\\S]*?\"prompt\"\\s*:\\s*\"([\\s\\S]*?)\"\\s*\\}\\s*\\n?```")
	bareJSONRe     = regexp.MustCompile(`\{\s*"prompt"\s*:\s*"((?:[^"\\]|\\.)*)"\s*\}`)
	promptPrefixRe = regexp.MustCompile(`(?is)(?:^|\n)[ \t]*\**PROMPT\**:[ \t]*(.+)$`)
	readyWordsRe   = regexp.MustCompile(`(?i)\b(creating|love it|let me create|bring this to life)\b`)
)

// DefaultExtractors returns the extraction strategies in precedence order:
// fenced JSON, bare JSON, PROMPT: prefix, then the sounds-ready heuristic.
func DefaultExtractors() []Extractor {
	return []Extractor{
		{Name: FencedJSON, Extract: regexpExtractor(fencedJSONRe)},
		{Name: BareJSON, Extract: regexpExtractor(bareJSONRe)},
		{Name: PromptPrefix, Extract: extractPromptPrefix},
		{Name: SoundsReady, Extract: extractSoundsReady},
	}
}

// Extract runs the extractors in order and returns the first match.
func Extract(extractors []Extractor, reply string, userTurns []string) (string, Match, bool) {
	for _, ex := range extractors {
		if m, ok := ex.Extract(reply, userTurns); ok {
			return ex.Name, m, true
		}
	}
	return "", Match{}, false
}

func regexpExtractor(re *regexp.Regexp) func(string, []string) (Match, bool) {
	return func(reply string, _ []string) (Match, bool) {
		loc := re.FindStringSubmatchIndex(reply)
		if loc == nil {
			return Match{}, false
		}
		p := Unescape(reply[loc[2]:loc[3]])
		if p == "" {
			return Match{}, false
		}
		return Match{Prompt: p, Before: strings.TrimSpace(reply[:loc[0]])}, true
	}
}

func extractPromptPrefix(reply string, _ []string) (Match, bool) {
	loc := promptPrefixRe.FindStringSubmatchIndex(reply)
	if loc == nil {
		return Match{}, false
	}
	p := strings.Trim(Unescape(reply[loc[2]:loc[3]]), `"'`)
	if p == "" {
		return Match{}, false
	}
	return Match{Prompt: strings.TrimSpace(p), Before: strings.TrimSpace(reply[:loc[0]])}, true
}

// extractSoundsReady fires when the model talks as if it is about to
// generate but emitted no block. The prompt is synthesized from the user
// turns and the whole reply is kept.
func extractSoundsReady(reply string, userTurns []string) (Match, bool) {
	if len(userTurns) < readyAfterTurns || !readyWordsRe.MatchString(reply) {
		return Match{}, false
	}
	return Match{Prompt: FallbackPrompt(userTurns), Before: strings.TrimSpace(reply)}, true
}

var unescaper = strings.NewReplacer(`\n`, " ", `\"`, `"`, "`", "")

// Unescape turns JSON-escaped prompt text into plain text: \n becomes a
// space, \" a quote, backticks are dropped.
func Unescape(s string) string {
	return strings.TrimSpace(unescaper.Replace(s))
}

// degenerate reports whether a reply is too thin to show, such as an
// empty string or bare punctuation.
func degenerate(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if letters >= 2 {
				return false
			}
		}
	}
	return true
}
