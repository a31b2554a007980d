// Package models defines the records persisted in PostgreSQL and returned
// by the JSON API.
package models

import "time"

// Tier is a user's subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierCarrier Tier = "carrier"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPremium, TierCarrier:
		return true
	}
	return false
}

// User is a wallpaper studio account. Authentication is stubbed, so the id
// is an opaque string rather than a UUID.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	SubscriptionTier Tier      `json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
