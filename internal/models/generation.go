// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of one generation attempt.
type Outcome string

const (
	OutcomeCacheHit  Outcome = "cache_hit"
	OutcomeGenerated Outcome = "generated"
	OutcomeFailed    Outcome = "failed"
)

// GenerationEvent is an audit row in generation_log.
type GenerationEvent struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Fingerprint string    `json:"fingerprint"`
	Outcome     Outcome   `json:"outcome"`
	Vendor      string    `json:"vendor,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
