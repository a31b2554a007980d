package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed makes sure the stub identity used when no user is signed in exists.
// It is idempotent.
func Seed(db *sql.DB, demoUserID string) error {
	res, err := db.Exec(`
		INSERT INTO users (id, email, subscription_tier)
		VALUES ($1, $2, 'free')
		ON CONFLICT DO NOTHING
	`, demoUserID, demoUserID+"@wallpaper.local")
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("database seeded with demo user", "user_id", demoUserID)
	}
	return nil
}
