// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured means the requested vendor has no credentials.
	ErrNotConfigured = errors.New("ai: vendor not configured")

	// ErrRateLimited means the vendor throttled the request.
	ErrRateLimited = errors.New("ai: rate limited")

	// ErrSafetyRejected means the vendor refused the prompt on policy grounds.
	ErrSafetyRejected = errors.New("ai: rejected by safety filter")

	// ErrModelLoading means the vendor is warming the model up.
	ErrModelLoading = errors.New("ai: model loading")
)

// APIError is a non-success response from a vendor API.
type APIError struct {
	Vendor     string
	StatusCode int
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Vendor, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is match a loading response against ErrModelLoading.
func (e *APIError) Is(target error) bool {
	return target == ErrModelLoading && e.StatusCode == http.StatusServiceUnavailable && e.RetryAfter > 0
}

var (
	rateLimitMarkers = []string{"429", "throttled", "rate limit"}
	safetyMarkers    = []string{"content_policy", "safety", "nsfw"}
)

// Classify maps a vendor error onto ErrRateLimited or ErrSafetyRejected when
// its status or message says so. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrSafetyRejected) {
		return err
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, rateLimitMarkers) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	if containsAny(msg, safetyMarkers) {
		return fmt.Errorf("%w: %w", ErrSafetyRejected, err)
	}
	return err
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
