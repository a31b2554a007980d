// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides fakes and request helpers shared by the
// handler tests. No database or Valkey is needed.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/cache"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/conversation"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/gateway"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/middleware"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/quota"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

type fakeGenerator struct {
	res *gateway.Result
	err error
	got []gateway.Request
}

func (g *fakeGenerator) Generate(ctx context.Context, req gateway.Request) (*gateway.Result, error) {
	g.got = append(g.got, req)
	return g.res, g.err
}

type fakeQuota struct {
	st     quota.Status
	userID string
}

func (q *fakeQuota) Status(ctx context.Context, userID string) quota.Status {
	q.userID = userID
	return q.st
}

type fakeChat struct {
	res      conversation.Result
	err      error
	sessions []string
	resets   []string
	resetErr error
}

func (c *fakeChat) Turn(ctx context.Context, sessionID string, messages []ai.Message) (conversation.Result, error) {
	c.sessions = append(c.sessions, sessionID)
	return c.res, c.err
}

func (c *fakeChat) Reset(ctx context.Context, sessionID string) error {
	c.resets = append(c.resets, sessionID)
	return c.resetErr
}

type fakeHistory struct {
	page             *models.WallpaperPage
	err              error
	gotUser          string
	gotPage, gotSize int
}

func (h *fakeHistory) ListByUser(ctx context.Context, userID string, page, pageSize int) (*models.WallpaperPage, error) {
	h.gotUser, h.gotPage, h.gotSize = userID, page, pageSize
	return h.page, h.err
}

type fakeLibrary struct {
	entries   []models.LibraryEntry
	random    *models.LibraryEntry
	stats     *models.LibraryStats
	err       error
	gotFilter models.LibraryFilter
}

func (l *fakeLibrary) Browse(ctx context.Context, f models.LibraryFilter) ([]models.LibraryEntry, error) {
	l.gotFilter = f
	return l.entries, l.err
}

func (l *fakeLibrary) Random(ctx context.Context, f models.LibraryFilter) (*models.LibraryEntry, error) {
	l.gotFilter = f
	return l.random, l.err
}

func (l *fakeLibrary) Stats(ctx context.Context) (*models.LibraryStats, error) {
	return l.stats, l.err
}

type fakeCacheStats struct {
	stats cache.Stats
	err   error
}

func (c fakeCacheStats) Stats(ctx context.Context) (cache.Stats, error) {
	return c.stats, c.err
}

func newTestAPI(d Deps) *API {
	d.Styles = style.Default()
	return NewAPI(d)
}

// call runs h with identity u1 / session s1 already resolved.
func call(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithIdentity(req.Context(), "u1", "s1"))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}
