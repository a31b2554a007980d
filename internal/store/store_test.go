// store_test.go provides the shared test database helper. Tests are
// skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/database"
)

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "wallpaper")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "wallpaper")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the test database and runs migrations. Skips when the
// database is unreachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testUserID returns a unique user id and removes its rows on cleanup.
func testUserID(t *testing.T, db *sql.DB) string {
	t.Helper()
	id := "store-test-" + uuid.NewString()
	t.Cleanup(func() {
		db.Exec("DELETE FROM wallpapers WHERE user_id = $1", id)
		db.Exec("DELETE FROM daily_limits WHERE user_id = $1", id)
		db.Exec("DELETE FROM generation_log WHERE user_id = $1", id)
		db.Exec("DELETE FROM users WHERE id = $1", id)
	})
	return id
}
