// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gateway

import (
	"errors"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
)

// Kind classifies a failed generation for the HTTP layer.
type Kind string

const (
	KindInvalidSelection Kind = "invalid_selection"
	KindQuotaExceeded    Kind = "quota_exceeded"
	KindGenerationFailed Kind = "generation_failed"
)

// User-facing messages. Raw vendor text is never returned.
const (
	MsgInvalidSelections = "Invalid selections provided"
	MsgBuildFailed       = "Failed to build prompt. Please check your selections."
	MsgQuotaExceeded     = "Daily limit reached. Come back tomorrow for a fresh wallpaper!"
	MsgRateLimited       = "Rate limited, please wait a moment and try again."
	MsgSafetyRejected    = "That idea was blocked by the content filter. Please try a different description."
	MsgGenerationFailed  = "Image generation failed. Please try again."
)

// ErrQuotaExceeded is wrapped by every QuotaExceeded GenerationError.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// GenerationError is a failed generation with its taxonomy kind and the
// message shown to the user.
type GenerationError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

func invalid(msg string, err error) *GenerationError {
	return &GenerationError{Kind: KindInvalidSelection, Message: msg, Err: err}
}

// vendorFailure maps a vendor error onto the user-facing message.
func vendorFailure(err error) *GenerationError {
	err = ai.Classify(err)
	msg := MsgGenerationFailed
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		msg = MsgRateLimited
	case errors.Is(err, ai.ErrSafetyRejected):
		msg = MsgSafetyRejected
	}
	return &GenerationError{Kind: KindGenerationFailed, Message: msg, Err: err}
}
