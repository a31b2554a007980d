// Package session keeps anonymous visitor sessions in Valkey. A session
// binds a browser cookie to a user id and carries the conversation epoch
// used to discard stale assistant replies.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the visitor session cookie.
	CookieName = "wp_session"

	// DefaultTTL is how long an idle visitor session lives.
	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix   = "session:"
	epochPrefix = "epoch:"

	// epochTTL bounds how long an idle conversation epoch is kept.
	epochTTL = 24 * time.Hour

	idLength = 32
)

// Data is the session payload stored in Valkey.
type Data struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages visitor sessions and conversation epochs.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store. secure marks the cookie Secure, for
// deployments behind TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

// Get loads the session named by the request cookie. Returns nil if there
// is no valid session.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	data.ID = cookie.Value
	return &data, nil
}

// Ensure returns the request's session, creating one for userID when the
// visitor has none.
func (s *Store) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) (*Data, error) {
	data, err := s.Get(ctx, r)
	if err != nil || data != nil {
		return data, err
	}

	data = &Data{UserID: userID}
	if _, err := s.Create(ctx, w, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Create stores a new session and sets its cookie. Returns the session id.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.ID = id
	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return id, nil
}

// Destroy removes the session and its epoch and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	if err := s.client.Del(ctx, keyPrefix+cookie.Value, epochPrefix+cookie.Value).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return nil
}

// Advance bumps the session's conversation epoch and returns the new
// value.
func (s *Store) Advance(ctx context.Context, sessionID string) (uint64, error) {
	key := epochPrefix + sessionID
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, epochTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("epoch advance: %w", err)
	}
	return uint64(incr.Val()), nil
}

// Current returns the session's conversation epoch, zero if none.
func (s *Store) Current(ctx context.Context, sessionID string) (uint64, error) {
	n, err := s.client.Get(ctx, epochPrefix+sessionID).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("epoch current: %w", err)
	}
	return n, nil
}

func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
