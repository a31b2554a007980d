// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
)

// ModerationResult is the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool
	Categories []string // flagged categories, empty when safe
}

// Moderator checks custom prompts before they reach an image vendor.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// httpModerator calls an OpenAI-shaped POST /moderations endpoint. OpenAI
// and Mistral differ only in URL, model and how "flagged" is reported.
type httpModerator struct {
	name     string
	url      string
	model    string
	apiKey   string
	client   *http.Client
	useFlag  bool // OpenAI reports a top-level flagged bool
	labelFor func(category string) string
}

func newOpenAIModerator(apiKey, baseURL string) *httpModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &httpModerator{
		name:    "openai",
		url:     strings.TrimSuffix(baseURL, "/") + "/moderations",
		model:   "omni-moderation-latest",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		useFlag: true,
		labelFor: func(cat string) string {
			// "hate/threatening" reads as "hate (threatening)"
			if before, after, ok := strings.Cut(cat, "/"); ok {
				cat = before + " (" + after + ")"
			}
			return strings.ReplaceAll(cat, "_", " ")
		},
	}
}

func newMistralModerator(apiKey, baseURL string) *httpModerator {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	return &httpModerator{
		name:     "mistral",
		url:      strings.TrimSuffix(baseURL, "/") + "/moderations",
		model:    "mistral-moderation-latest",
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		labelFor: func(cat string) string { return strings.ReplaceAll(cat, "_", " ") },
	}
}

func (m *httpModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	payload, err := json.Marshal(moderationRequest{Model: m.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%s moderation marshal: %w", m.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s moderation request: %w", m.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s moderation http: %w", m.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s moderation read body: %w", m.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Vendor: m.name + " moderation", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result moderationResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%s moderation unmarshal: %w", m.name, err)
	}
	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}

	r := result.Results[0]
	if m.useFlag && !r.Flagged {
		return &ModerationResult{Safe: true}, nil
	}

	var flagged []string
	for cat, hit := range r.Categories {
		if hit {
			flagged = append(flagged, m.labelFor(cat))
		}
	}
	slices.Sort(flagged)
	return &ModerationResult{Safe: len(flagged) == 0, Categories: flagged}, nil
}

// fallbackModerator switches to the secondary moderator when the primary
// rejects our credentials (project-scoped OpenAI keys cannot moderate).
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator
}

func newFallbackModerator(primary, secondary Moderator) *fallbackModerator {
	return &fallbackModerator{primary: primary, secondary: secondary}
}

func (f *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	res, err := f.primary.CheckSafety(ctx, text)
	if err == nil {
		return res, nil
	}
	slog.Warn("primary moderator failed, using fallback", "error", err)
	return f.secondary.CheckSafety(ctx, text)
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}
