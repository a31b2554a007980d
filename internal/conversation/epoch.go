// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conversation

import (
	"context"
	"log/slog"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
)

// EpochSource keeps a monotonically increasing epoch per session.
type EpochSource interface {
	Advance(ctx context.Context, sessionID string) (uint64, error)
	Current(ctx context.Context, sessionID string) (uint64, error)
}

// Turner runs one conversation turn.
type Turner interface {
	Turn(ctx context.Context, messages []ai.Message) (Result, error)
}

// Guard discards turns that finished after a newer turn or a reset started
// for the same session. The model call itself is never cancelled.
type Guard struct {
	engine Turner
	epochs EpochSource
}

// NewGuard wraps an engine with stale-response detection.
func NewGuard(engine Turner, epochs EpochSource) *Guard {
	return &Guard{engine: engine, epochs: epochs}
}

// Turn advances the session epoch, runs the turn and marks the result
// Stale if the epoch moved while it was in flight. When the epoch store is
// unavailable the turn runs unguarded.
func (g *Guard) Turn(ctx context.Context, sessionID string, messages []ai.Message) (Result, error) {
	epoch, err := g.epochs.Advance(ctx, sessionID)
	if err != nil {
		slog.Warn("conversation epoch unavailable, turn unguarded", "session", sessionID, "error", err)
		return g.engine.Turn(ctx, messages)
	}

	res, err := g.engine.Turn(ctx, messages)
	if err != nil {
		return res, err
	}

	current, err := g.epochs.Current(ctx, sessionID)
	if err != nil {
		slog.Warn("conversation epoch check failed", "session", sessionID, "error", err)
		return res, nil
	}
	if current != epoch {
		slog.Info("discarding stale conversation turn", "session", sessionID, "epoch", epoch, "current", current)
		return Result{Stale: true}, nil
	}
	return res, nil
}

// Reset starts a new conversation for the session; in-flight turns become
// stale.
func (g *Guard) Reset(ctx context.Context, sessionID string) error {
	_, err := g.epochs.Advance(ctx, sessionID)
	return err
}
