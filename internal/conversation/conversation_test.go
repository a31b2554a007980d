// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
)

type stubVendor struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	system string
	last   []ai.Message
}

func (s *stubVendor) Name() string { return "stub" }

func (s *stubVendor) Chat(ctx context.Context, system string, messages []ai.Message, opts ai.ChatOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.system = system
	s.last = messages
	return s.reply, s.err
}

type stubChats struct {
	vendor ai.ChatVendor
	err    error
}

func (s stubChats) Chat() (ai.ChatVendor, error) { return s.vendor, s.err }

func userHistory(turns ...string) []ai.Message {
	var msgs []ai.Message
	for i, t := range turns {
		if i > 0 {
			msgs = append(msgs, ai.Message{Role: ai.RoleAssistant, Content: "Nice, tell me more?"})
		}
		msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: t})
	}
	return msgs
}

const fullPrompt = "A phone wallpaper, vertical 9:16 aspect ratio, a starry sky over a calm ocean. High quality, beautiful composition, visually striking. Safe for all audiences."

// ---------- Extractors ----------

func TestExtractPrecedenceFencedOverBare(t *testing.T) {
	reply := "Here's a thought {\"prompt\": \"bare version\"}\n" +
		"Ooh I can see it!\n```prompt\n{\"prompt\": \"fenced version\"}\n```"

	name, m, ok := Extract(DefaultExtractors(), reply, nil)
	require.True(t, ok)
	assert.Equal(t, FencedJSON, name)
	assert.Equal(t, "fenced version", m.Prompt)
}

func TestExtractFenceLanguageTags(t *testing.T) {
	for _, fence := range []string{"```json", "```prompt", "```"} {
		reply := "Love it, here it is!\n" + fence + "\n{\"prompt\": \"A glowing fox\"}\n```"

		name, m, ok := Extract(DefaultExtractors(), reply, nil)
		require.True(t, ok, fence)
		assert.Equal(t, FencedJSON, name, fence)
		assert.Equal(t, "A glowing fox", m.Prompt, fence)
		assert.Equal(t, "Love it, here it is!", m.Before, fence)
	}
}

func TestExtractFencedBeatsEarlierDraft(t *testing.T) {
	reply := "Earlier draft {\"prompt\": \"draft idea\"} but final:\n```json\n{\"prompt\": \"final idea\"}\n```"

	name, m, ok := Extract(DefaultExtractors(), reply, nil)
	require.True(t, ok)
	assert.Equal(t, FencedJSON, name)
	assert.Equal(t, "final idea", m.Prompt)
}

func TestExtractBareJSON(t *testing.T) {
	reply := `Love it. {"prompt": "A \"glowing\" koi pond,\nat night"}`

	name, m, ok := Extract(DefaultExtractors(), reply, nil)
	require.True(t, ok)
	assert.Equal(t, BareJSON, name)
	assert.Equal(t, `A "glowing" koi pond, at night`, m.Prompt)
	assert.Equal(t, "Love it.", m.Before)
}

func TestExtractPromptPrefix(t *testing.T) {
	reply := "Going with a misty forest.\nPROMPT: \"A phone wallpaper, vertical 9:16 aspect ratio, misty forest\""

	name, m, ok := Extract(DefaultExtractors(), reply, nil)
	require.True(t, ok)
	assert.Equal(t, PromptPrefix, name)
	assert.Equal(t, "A phone wallpaper, vertical 9:16 aspect ratio, misty forest", m.Prompt)
	assert.Equal(t, "Going with a misty forest.", m.Before)
}

func TestExtractSoundsReadyNeedsFourTurns(t *testing.T) {
	reply := "I love it! Creating your wallpaper now."

	_, _, ok := Extract(DefaultExtractors(), reply, []string{"beach", "sunset", "warm"})
	assert.False(t, ok, "three user turns are not enough")

	name, m, ok := Extract(DefaultExtractors(), reply, []string{"beach", "sunset", "warm", "no"})
	require.True(t, ok)
	assert.Equal(t, SoundsReady, name)
	assert.Equal(t, reply, m.Before)
	assert.True(t, strings.HasPrefix(m.Prompt, "A phone wallpaper, vertical 9:16 aspect ratio, beach, sunset, warm, no"))
}

func TestExtractNothing(t *testing.T) {
	_, _, ok := Extract(DefaultExtractors(), "Ooh, moody or bright?", []string{"a city"})
	assert.False(t, ok)
}

func TestExtractDeterministic(t *testing.T) {
	reply := "ok\n```prompt\n{\"prompt\": \"x y z\"}\n```\nPROMPT: other"
	_, a, _ := Extract(DefaultExtractors(), reply, nil)
	_, b, _ := Extract(DefaultExtractors(), reply, nil)
	assert.Equal(t, a, b)
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, `a "b" c d`, Unescape("  a \\\"b\\\" `c`\\nd "))
}

// ---------- Supplementation ----------

func TestSupplementInjectsMissingText(t *testing.T) {
	got := Supplement(fullPrompt, []string{"starry sky", "calm ocean", "deep blues", "Forever"})

	assert.Contains(t, got, `says exactly "FOREVER"`)
	assert.True(t, strings.HasPrefix(got, "A phone wallpaper, vertical 9:16 aspect ratio, a starry sky over a calm ocean. IMPORTANT:"), got)
	assert.True(t, strings.HasSuffix(got, "High quality, beautiful composition, visually striking. Safe for all audiences."), got)
	assert.Equal(t, 1, strings.Count(strings.ToLower(got), "high quality"))
}

func TestSupplementLeavesPromptAlone(t *testing.T) {
	tests := []struct {
		name  string
		turns []string
	}{
		{"too few turns", []string{"a", "b", "forever"}},
		{"declined", []string{"a", "b", "c", "Nope"}},
		{"declined with punctuation", []string{"a", "b", "c", "none."}},
		{"already present", []string{"a", "b", "c", "calm OCEAN"}},
		{"blank", []string{"a", "b", "c", "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, fullPrompt, Supplement(fullPrompt, tt.turns))
		})
	}
}

// ---------- Fallback ----------

func TestFallbackPromptMoods(t *testing.T) {
	tests := []struct {
		turns []string
		want  string
	}{
		{[]string{"a dark rainy alley"}, "mysterious, atmospheric mood"},
		{[]string{"pastel clouds"}, "dreamy, ethereal mood"},
		{[]string{"neon tiger"}, "bold, energetic mood"},
		{[]string{"a lighthouse"}, "calm, balanced mood"},
	}
	for _, tt := range tests {
		got := FallbackPrompt(tt.turns)
		assert.Contains(t, got, tt.want, tt.turns)
		assert.True(t, strings.HasPrefix(got, "A phone wallpaper, vertical 9:16 aspect ratio, "+tt.turns[0]))
		assert.True(t, strings.HasSuffix(got, "Safe for all audiences."))
	}
}

func TestFallbackPromptEmptyInput(t *testing.T) {
	got := FallbackPrompt([]string{"   ", "<>"})
	assert.Contains(t, got, emptyIdea)
}

// ---------- Engine ----------

func TestEngineTurnNegotiating(t *testing.T) {
	v := &stubVendor{reply: "  Ooh, a city! Rainy neon or quiet dawn?  "}
	e := NewEngine(stubChats{vendor: v})

	res, err := e.Turn(context.Background(), userHistory("a city"))
	require.NoError(t, err)
	assert.False(t, res.Ready())
	assert.Equal(t, "Ooh, a city! Rainy neon or quiet dawn?", res.Reply)
	assert.Equal(t, SystemInstruction, v.system)
	assert.Len(t, v.last, 1)
}

func TestEngineTurnReady(t *testing.T) {
	v := &stubVendor{reply: "Yes! Here it comes.\n```prompt\n{\"prompt\": \"" + fullPrompt + "\"}\n```"}
	e := NewEngine(stubChats{vendor: v})

	res, err := e.Turn(context.Background(), userHistory("starry ocean"))
	require.NoError(t, err)
	require.True(t, res.Ready())
	assert.Equal(t, fullPrompt, *res.FinalPrompt)
	assert.Equal(t, "Yes! Here it comes.", res.Reply)
	assert.Equal(t, FencedJSON, res.Extractor)
	assert.False(t, res.Fallback)
}

func TestEngineTurnDegenerateReply(t *testing.T) {
	v := &stubVendor{reply: "...\n```prompt\n{\"prompt\": \"x\"}\n```"}
	res, err := NewEngine(stubChats{vendor: v}).Turn(context.Background(), userHistory("x"))
	require.NoError(t, err)
	assert.Equal(t, ReadyReply, res.Reply)
}

func TestEngineTextPreservation(t *testing.T) {
	v := &stubVendor{reply: "Done!\n```prompt\n{\"prompt\": \"" + fullPrompt + "\"}\n```"}
	e := NewEngine(stubChats{vendor: v})

	res, err := e.Turn(context.Background(), userHistory("starry sky", "ocean", "deep blue", "Forever"))
	require.NoError(t, err)
	require.True(t, res.Ready())
	assert.Contains(t, *res.FinalPrompt, "FOREVER")
}

func TestEngineFallbackAlwaysSucceeds(t *testing.T) {
	v := &stubVendor{err: errors.New("connection refused")}
	e := NewEngine(stubChats{vendor: v})

	history := []ai.Message{}
	for i, turn := range []string{"neon city", "rainy", "purple", "no"} {
		history = append(history, ai.Message{Role: ai.RoleUser, Content: turn})

		res, err := e.Turn(context.Background(), history)
		require.NoError(t, err, "turn %d", i+1)
		require.True(t, res.Ready(), "turn %d", i+1)
		assert.True(t, res.Fallback)
		assert.Equal(t, FailureReply, res.Reply)
		assert.True(t, strings.HasPrefix(*res.FinalPrompt, "A phone wallpaper, vertical 9:16 aspect ratio, neon city"))
		assert.True(t, strings.HasSuffix(*res.FinalPrompt, "Safe for all audiences."))

		history = append(history, ai.Message{Role: ai.RoleAssistant, Content: res.Reply})
	}
	assert.Equal(t, 4, v.calls)
}

func TestEngineUnconfigured(t *testing.T) {
	e := NewEngine(stubChats{err: ai.ErrNotConfigured})

	res, err := e.Turn(context.Background(), userHistory("cozy cabin"))
	require.NoError(t, err)
	require.True(t, res.Ready())
	assert.Equal(t, UnconfiguredReply, res.Reply)
	assert.Contains(t, *res.FinalPrompt, "cozy cabin")
}

func TestEngineRateLimited(t *testing.T) {
	v := &stubVendor{err: &ai.APIError{Vendor: "openai", StatusCode: 429, Body: "slow down"}}

	res, err := NewEngine(stubChats{vendor: v}).Turn(context.Background(), userHistory("x"))
	require.NoError(t, err)
	assert.True(t, res.RateLimited)
	assert.True(t, res.Ready())
}

func TestEngineRejectsBadHistory(t *testing.T) {
	e := NewEngine(stubChats{vendor: &stubVendor{}})

	_, err := e.Turn(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoMessages)

	_, err = e.Turn(context.Background(), []ai.Message{{Role: "system", Content: "x"}})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

// ---------- Epoch guard ----------

type memEpochs struct {
	mu     sync.Mutex
	epochs map[string]uint64
	err    error
}

func (m *memEpochs) Advance(ctx context.Context, id string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.epochs == nil {
		m.epochs = map[string]uint64{}
	}
	m.epochs[id]++
	return m.epochs[id], nil
}

func (m *memEpochs) Current(ctx context.Context, id string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epochs[id], m.err
}

// turnFunc adapts a function to Turner.
type turnFunc func(ctx context.Context, messages []ai.Message) (Result, error)

func (f turnFunc) Turn(ctx context.Context, messages []ai.Message) (Result, error) {
	return f(ctx, messages)
}

func TestGuardPassesCurrentTurn(t *testing.T) {
	epochs := &memEpochs{}
	e := NewEngine(stubChats{vendor: &stubVendor{reply: "Tell me more?"}})
	g := NewGuard(e, epochs)

	res, err := g.Turn(context.Background(), "s1", userHistory("hi"))
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Equal(t, "Tell me more?", res.Reply)
}

func TestGuardDiscardsStaleTurn(t *testing.T) {
	epochs := &memEpochs{}
	var g *Guard
	slow := turnFunc(func(ctx context.Context, _ []ai.Message) (Result, error) {
		// the user resets while the model is still thinking
		require.NoError(t, g.Reset(ctx, "s1"))
		p := "late prompt"
		return Result{Reply: "late", FinalPrompt: &p}, nil
	})
	g = NewGuard(slow, epochs)

	res, err := g.Turn(context.Background(), "s1", userHistory("hi"))
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Nil(t, res.FinalPrompt)
	assert.Empty(t, res.Reply)
}

func TestGuardSessionsAreIndependent(t *testing.T) {
	epochs := &memEpochs{}
	var g *Guard
	other := turnFunc(func(ctx context.Context, _ []ai.Message) (Result, error) {
		_, _ = epochs.Advance(ctx, "s2")
		return Result{Reply: "fine"}, nil
	})
	g = NewGuard(other, epochs)

	res, err := g.Turn(context.Background(), "s1", userHistory("hi"))
	require.NoError(t, err)
	assert.False(t, res.Stale)
}

func TestGuardRunsUnguardedWithoutEpochStore(t *testing.T) {
	epochs := &memEpochs{err: errors.New("valkey down")}
	g := NewGuard(NewEngine(stubChats{vendor: &stubVendor{reply: "hey"}}), epochs)

	res, err := g.Turn(context.Background(), "s1", userHistory("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hey", res.Reply)
}
