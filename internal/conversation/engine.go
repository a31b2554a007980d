// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package conversation negotiates a final image prompt with a language model
// over several turns. Each turn sends the whole history, scans the reply with
// an ordered list of extractors and, once one matches, returns the final
// prompt. Vendor failures never reach the caller: the engine falls back to a
// prompt synthesized from the user's own words.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
)

var (
	// ErrNoMessages is returned for an empty history.
	ErrNoMessages = errors.New("conversation: no messages")

	// ErrInvalidRole is returned for a message that is neither user nor assistant.
	ErrInvalidRole = errors.New("conversation: invalid message role")
)

// Replies shown when the model gives nothing usable.
const (
	ReadyReply        = "Perfect, creating that now!"
	UnconfiguredReply = "I love that idea! I'm picturing something really beautiful. Let me create it for you."
	FailureReply      = "That sounds amazing, let me create something beautiful based on what you've told me."
)

// ChatSource hands out the active chat vendor.
type ChatSource interface {
	Chat() (ai.ChatVendor, error)
}

// Result is the outcome of one turn. FinalPrompt is nil while the
// conversation is still negotiating.
type Result struct {
	Reply       string
	FinalPrompt *string
	Extractor   string // name of the matching extractor, "fallback" or ""
	Fallback    bool   // the prompt was synthesized without the model
	RateLimited bool   // the vendor throttled the call; the fallback was used
	Stale       bool   // a newer turn or a reset superseded this one
}

// Ready reports whether the turn produced a final prompt.
func (r Result) Ready() bool { return r.FinalPrompt != nil }

// Engine runs conversation turns. It holds no per-session state and is safe
// for concurrent use.
type Engine struct {
	chats      ChatSource
	system     string
	opts       ai.ChatOptions
	extractors []Extractor
}

// NewEngine creates an engine with the default instruction, options and
// extractors.
func NewEngine(chats ChatSource) *Engine {
	return &Engine{
		chats:      chats,
		system:     SystemInstruction,
		opts:       ai.DefaultChatOptions,
		extractors: DefaultExtractors(),
	}
}

// Turn sends the full history to the model and interprets its reply. The
// error is non-nil only for a malformed history.
func (e *Engine) Turn(ctx context.Context, messages []ai.Message) (Result, error) {
	if len(messages) == 0 {
		return Result{}, ErrNoMessages
	}
	for i, m := range messages {
		if m.Role != ai.RoleUser && m.Role != ai.RoleAssistant {
			return Result{}, fmt.Errorf("%w: message %d has role %q", ErrInvalidRole, i, m.Role)
		}
	}
	userTurns := userContents(messages)

	vendor, err := e.chats.Chat()
	if err != nil {
		slog.Warn("chat vendor unavailable, using fallback prompt", "error", err)
		return fallbackResult(userTurns, UnconfiguredReply), nil
	}

	raw, err := vendor.Chat(ctx, e.system, messages, e.opts)
	if err != nil {
		err = ai.Classify(err)
		slog.Error("chat vendor failed, using fallback prompt", "vendor", vendor.Name(), "error", err)
		res := fallbackResult(userTurns, FailureReply)
		res.RateLimited = errors.Is(err, ai.ErrRateLimited)
		return res, nil
	}

	reply := strings.TrimSpace(raw)
	name, m, ok := Extract(e.extractors, reply, userTurns)
	if !ok {
		return Result{Reply: strings.TrimSpace(strings.ReplaceAll(reply, `\n`, "\n"))}, nil
	}

	shown := m.Before
	if degenerate(shown) {
		shown = ReadyReply
	}
	final := Supplement(m.Prompt, userTurns)
	slog.Debug("conversation ready", "extractor", name, "user_turns", len(userTurns))
	return Result{Reply: shown, FinalPrompt: &final, Extractor: name}, nil
}

func fallbackResult(userTurns []string, reply string) Result {
	p := Supplement(FallbackPrompt(userTurns), userTurns)
	return Result{Reply: reply, FinalPrompt: &p, Extractor: "fallback", Fallback: true}
}

func userContents(messages []ai.Message) []string {
	var out []string
	for _, m := range messages {
		if m.Role == ai.RoleUser {
			out = append(out, m.Content)
		}
	}
	return out
}
