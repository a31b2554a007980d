// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package quota enforces the per-user daily generation allowance. A day is
// a UTC calendar date. The allowance is fixed from the user's tier when the
// day's record is first created. Commits are a single conditional increment
// in the store, so concurrent requests can never push usage past the cap.
package quota

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
)

// ErrLimitReached is returned by a commit that found the day's allowance
// already used up.
var ErrLimitReached = errors.New("quota: daily limit reached")

// Tier is a subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierCarrier Tier = "carrier"
)

// MaxGenerations is the daily allowance for the tier. Unknown tiers get the
// free allowance.
func (t Tier) MaxGenerations() int {
	switch t {
	case TierPremium:
		return 3
	case TierCarrier:
		return 5
	default:
		return 1
	}
}

// Today returns the quota date for now.
func Today(now time.Time) string {
	return now.UTC().Format(time.DateOnly)
}

// ResetsAt returns the next UTC midnight after now.
func ResetsAt(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// Record is one user's usage for one day.
type Record struct {
	UserID string
	Date   string
	Used   int
	Max    int
}

// Store persists daily records.
type Store interface {
	// Ensure returns the record for (userID, date), creating it with max
	// when missing. An existing record keeps its original max.
	Ensure(ctx context.Context, userID, date string, max int) (Record, error)

	// Increment adds one use if the record is below its max, atomically.
	// ok is false when the record is full or missing.
	Increment(ctx context.Context, userID, date string) (rec Record, ok bool, err error)
}

// TierSource resolves a user's current tier.
type TierSource interface {
	Tier(ctx context.Context, userID string) (Tier, error)
}

// Status is a user's allowance as reported to clients.
type Status struct {
	Allowed   bool      `json:"canGenerate"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"generationsUsed"`
	Max       int       `json:"maxGenerations"`
	ResetsAt  time.Time `json:"resetsAt"`
}

// Guard checks and commits daily usage.
type Guard struct {
	store Store
	tiers TierSource
	now   func() time.Time

	// stripes serialize check-and-reserve against commit for one user and
	// date, so a commit cannot land between another request's read and its
	// reservation.
	stripes [lockStripes]sync.Mutex

	mu       sync.Mutex
	inflight map[string]int // reservations not yet committed, per user and date
}

const lockStripes = 64

func (g *Guard) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &g.stripes[h.Sum32()%lockStripes]
}

// NewGuard creates a quota guard.
func NewGuard(store Store, tiers TierSource) *Guard {
	return &Guard{
		store:    store,
		tiers:    tiers,
		now:      time.Now,
		inflight: make(map[string]int),
	}
}

// failOpen is the permissive status used when the store is unavailable.
// It resets a full day from now rather than at midnight.
func failOpen(now time.Time) Status {
	return Status{Allowed: true, Remaining: 1, Used: 0, Max: 1, ResetsAt: now.Add(24 * time.Hour)}
}

func (g *Guard) load(ctx context.Context, userID, date string) (Record, error) {
	tier, err := g.tiers.Tier(ctx, userID)
	if err != nil {
		slog.Warn("tier lookup failed, assuming free", "user_id", userID, "error", err)
		tier = TierFree
	}
	return g.store.Ensure(ctx, userID, date, tier.MaxGenerations())
}

// Status reports today's allowance without reserving anything.
func (g *Guard) Status(ctx context.Context, userID string) Status {
	now := g.now()
	rec, err := g.load(ctx, userID, Today(now))
	if err != nil {
		slog.Warn("quota store unavailable, failing open", "user_id", userID, "error", err)
		return failOpen(now)
	}
	return Status{
		Allowed:   rec.Max-rec.Used > 0,
		Remaining: max(rec.Max-rec.Used, 0),
		Used:      rec.Used,
		Max:       rec.Max,
		ResetsAt:  ResetsAt(now),
	}
}

// CheckAndReserve reports today's allowance and, when a generation is
// allowed, holds one slot until the reservation is committed or released.
// Reservations held in this process count against the remaining allowance.
// A nil reservation means the user is out of generations.
func (g *Guard) CheckAndReserve(ctx context.Context, userID string) (*Reservation, Status) {
	now := g.now()
	date := Today(now)
	key := userID + "|" + date

	lock := g.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	rec, err := g.load(ctx, userID, date)
	if err != nil {
		slog.Warn("quota store unavailable, failing open", "user_id", userID, "error", err)
		return &Reservation{g: g, userID: userID, date: date}, failOpen(now)
	}

	st := Status{
		Remaining: max(rec.Max-rec.Used, 0),
		Used:      rec.Used,
		Max:       rec.Max,
		ResetsAt:  ResetsAt(now),
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if rec.Max-rec.Used-g.inflight[key] <= 0 {
		return nil, st
	}
	g.inflight[key]++
	st.Allowed = true
	return &Reservation{g: g, userID: userID, date: date, key: key}, st
}

// Commit records one generation for today without a reservation.
func (g *Guard) Commit(ctx context.Context, userID string) error {
	date := Today(g.now())
	lock := g.stripe(userID + "|" + date)
	lock.Lock()
	defer lock.Unlock()
	return g.commit(ctx, userID, date)
}

func (g *Guard) commit(ctx context.Context, userID, date string) error {
	rec, ok, err := g.store.Increment(ctx, userID, date)
	if err != nil {
		return fmt.Errorf("quota: commit: %w", err)
	}
	if !ok {
		return ErrLimitReached
	}
	slog.Debug("quota committed", "user_id", userID, "date", date, "used", rec.Used, "max", rec.Max)
	return nil
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight[key] <= 1 {
		delete(g.inflight, key)
		return
	}
	g.inflight[key]--
}

// Reservation is one held generation slot.
type Reservation struct {
	g      *Guard
	userID string
	date   string
	key    string // empty when the guard failed open
	once   sync.Once
}

// Commit increments the day's usage and releases the slot. Call it once,
// only after a generation has been served.
func (r *Reservation) Commit(ctx context.Context) error {
	if r.key == "" {
		return r.g.commit(ctx, r.userID, r.date)
	}
	lock := r.g.stripe(r.key)
	lock.Lock()
	defer lock.Unlock()

	err := r.g.commit(ctx, r.userID, r.date)
	r.Release()
	return err
}

// Release frees the slot without counting a generation. It is safe to call
// after Commit and more than once.
func (r *Reservation) Release() {
	r.once.Do(func() {
		if r.key != "" {
			r.g.release(r.key)
		}
	})
}
