// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/session"
)

type fakeSessions struct {
	data *session.Data
	err  error
}

func (f *fakeSessions) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) (*session.Data, error) {
	return f.data, f.err
}

func identify(t *testing.T, sessions Sessions, header string) (user, sess string) {
	t.Helper()
	handler := Identify(sessions, "demo-user-id")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserID(r.Context())
		sess = SessionID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/daily-status", nil)
	if header != "" {
		req.Header.Set(UserIDHeader, header)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return user, sess
}

func TestIdentify(t *testing.T) {
	visitor := &fakeSessions{data: &session.Data{ID: "sess-1", UserID: "visitor-7"}}

	tests := []struct {
		name      string
		sessions  Sessions
		header    string
		wantUser  string
		wantScope string
	}{
		{"header wins", visitor, "u-header", "u-header", "sess-1"},
		{"session user", visitor, "", "visitor-7", "sess-1"},
		{"no session store", nil, "", "demo-user-id", "user:demo-user-id"},
		{"session store down", &fakeSessions{err: errors.New("valkey down")}, "", "demo-user-id", "user:demo-user-id"},
		{"header without session", nil, " u-9 ", "u-9", "user:u-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, scope := identify(t, tt.sessions, tt.header)
			if user != tt.wantUser {
				t.Errorf("user: got %q, want %q", user, tt.wantUser)
			}
			if scope != tt.wantScope {
				t.Errorf("session scope: got %q, want %q", scope, tt.wantScope)
			}
		})
	}
}

func TestIdentityOutsideMiddleware(t *testing.T) {
	if UserID(context.Background()) != "" || SessionID(context.Background()) != "" {
		t.Error("expected empty identity outside Identify")
	}
	ctx := WithIdentity(context.Background(), "u", "s")
	if UserID(ctx) != "u" || SessionID(ctx) != "s" {
		t.Error("WithIdentity did not round-trip")
	}
}
