package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient connects to DB 15 and skips when Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{keyPrefix + "*", epochPrefix + "*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requestWithCookies replays the cookies set on w into a new request.
func requestWithCookies(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSessionCreateAndGet(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	id, err := store.Create(ctx, w, &Data{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != idLength*2 {
		t.Errorf("session id length: got %d, want %d", len(id), idLength*2)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || !cookies[0].HttpOnly {
		t.Fatalf("cookie: got %+v", cookies)
	}

	got, err := store.Get(ctx, requestWithCookies(w))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.UserID != "user-1" || got.ID != id {
		t.Errorf("Get: got %+v", got)
	}
}

func TestSessionGetWithoutCookie(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)

	got, err := store.Get(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || got != nil {
		t.Errorf("Get: got (%v, %v), want (nil, nil)", got, err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "expired"})
	got, err = store.Get(context.Background(), r)
	if err != nil || got != nil {
		t.Errorf("Get unknown id: got (%v, %v), want (nil, nil)", got, err)
	}
}

func TestSessionEnsure(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	first, err := store.Ensure(ctx, w, httptest.NewRequest(http.MethodGet, "/", nil), "demo-user-id")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if first.UserID != "demo-user-id" {
		t.Errorf("UserID: got %q", first.UserID)
	}

	w2 := httptest.NewRecorder()
	second, err := store.Ensure(ctx, w2, requestWithCookies(w), "someone-else")
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if second.ID != first.ID || second.UserID != "demo-user-id" {
		t.Errorf("Ensure should reuse the session: got %+v", second)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Error("an existing session should not be re-issued")
	}
}

func TestSessionDestroy(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	w := httptest.NewRecorder()
	id, _ := store.Create(ctx, w, &Data{UserID: "user-1"})
	store.Advance(ctx, id)

	r := requestWithCookies(w)
	if err := store.Destroy(ctx, httptest.NewRecorder(), r); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if got, _ := store.Get(ctx, r); got != nil {
		t.Error("session should be gone after Destroy")
	}
	if n, _ := store.Current(ctx, id); n != 0 {
		t.Errorf("epoch after Destroy: got %d, want 0", n)
	}
}

func TestEpochs(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	if n, err := store.Current(ctx, "s1"); err != nil || n != 0 {
		t.Fatalf("Current on a new session: got (%d, %v)", n, err)
	}
	for want := uint64(1); want <= 3; want++ {
		n, err := store.Advance(ctx, "s1")
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if n != want {
			t.Errorf("Advance: got %d, want %d", n, want)
		}
	}
	if n, _ := store.Current(ctx, "s1"); n != 3 {
		t.Errorf("Current: got %d, want 3", n)
	}
	if n, _ := store.Current(ctx, "s2"); n != 0 {
		t.Errorf("sessions share epochs: got %d for s2", n)
	}
}
