// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/session"
)

type contextKey int

const (
	userIDKey contextKey = iota
	sessionIDKey
)

// UserIDHeader lets trusted callers name the user explicitly.
const UserIDHeader = "X-User-ID"

// Sessions is the part of session.Store that Identify needs.
type Sessions interface {
	Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) (*session.Data, error)
}

// Identify resolves who is calling: the X-User-ID header, else the visitor
// session's user, else demoUserID. Authentication is stubbed; the visitor
// session also scopes conversation epochs. sessions may be nil.
func Identify(sessions Sessions, demoUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := demoUserID
			var sessionID string

			if sessions != nil {
				data, err := sessions.Ensure(r.Context(), w, r, demoUserID)
				if err != nil {
					slog.Warn("visitor session unavailable", "error", err)
				} else if data != nil {
					sessionID = data.ID
					if data.UserID != "" {
						userID = data.UserID
					}
				}
			}
			if h := strings.TrimSpace(r.Header.Get(UserIDHeader)); h != "" {
				userID = h
			}
			if sessionID == "" {
				sessionID = "user:" + userID
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the caller's user id, or "" outside Identify.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// SessionID returns the conversation scope for the caller. Without a
// visitor session it falls back to a per-user scope.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// WithIdentity returns ctx carrying the given identity.
func WithIdentity(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}
