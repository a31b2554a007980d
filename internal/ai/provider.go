// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai wraps the external chat and image generation vendors behind two
// capability interfaces. ChatVendor drives the design-assistant conversation;
// ImageVendor renders wallpapers. The Registry builds one implementation per
// configured vendor at startup and routes requests by configuration, never
// by inspecting the request.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Roles accepted in a chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AspectPortrait is the phone wallpaper aspect ratio.
const AspectPortrait = "9:16"

const defaultTimeout = 60 * time.Second

// Message is one turn of a chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes a single chat completion.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

// DefaultChatOptions are used by the design assistant.
var DefaultChatOptions = ChatOptions{MaxTokens: 300, Temperature: 0.85}

// ChatVendor sends a system instruction plus an ordered history to a
// language model and returns its free-text reply.
type ChatVendor interface {
	Name() string
	Chat(ctx context.Context, system string, messages []Message, opts ChatOptions) (string, error)
}

// ImageRequest describes one image generation.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
}

// ImageResult is a generated image, either hosted by the vendor (URL) or
// returned inline (Data).
type ImageResult struct {
	URL         string
	Data        []byte
	ContentType string
	Vendor      string
}

// Ref returns a reference usable by a browser: the hosted URL, or a data URI
// for inline bytes.
func (r *ImageResult) Ref() string {
	if r.URL != "" {
		return r.URL
	}
	ct := r.ContentType
	if ct == "" {
		ct = "image/png"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// ImageVendor renders an image from a prompt.
type ImageVendor interface {
	Name() string
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// VendorConfig holds the credentials and settings for a single vendor.
type VendorConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
	Timeout    time.Duration
}

func (c VendorConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// Config selects the active vendors by name.
type Config struct {
	Chat        string // openai, claude, gemini, mistral
	Image       string // image vendor for template styles
	CustomImage string // image vendor for the custom style, falls back to Image
	Vendors     map[string]VendorConfig
}

// Registry holds every configured vendor and the routing choices.
// All methods are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	chats       map[string]ChatVendor
	images      map[string]ImageVendor
	activeChat  string
	image       string
	customImage string
	moderator   Moderator // nil when no moderation API is available
}

// NewRegistry creates vendors for every config with a non-empty API key.
// Vendors without keys are skipped. A moderator is configured from the
// OpenAI key (free endpoint) with Mistral as fallback.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		chats:       make(map[string]ChatVendor),
		images:      make(map[string]ImageVendor),
		activeChat:  cfg.Chat,
		image:       cfg.Image,
		customImage: cfg.CustomImage,
	}

	for name, vc := range cfg.Vendors {
		if vc.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			v := newOpenAI(vc)
			r.chats[name] = v
			r.images[name] = v
		case "claude":
			r.chats[name] = newClaude(vc)
		case "gemini":
			v := newGemini(vc)
			r.chats[name] = v
			if vc.ImageModel != "" {
				r.images[name] = v
			}
		case "mistral":
			r.chats[name] = newMistral(vc)
		case "replicate":
			r.images[name] = newReplicate(vc)
		}
	}

	openaiCfg := cfg.Vendors["openai"]
	mistralCfg := cfg.Vendors["mistral"]
	switch {
	case openaiCfg.APIKey != "" && mistralCfg.APIKey != "":
		r.moderator = newFallbackModerator(
			newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL),
			newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL),
		)
	case openaiCfg.APIKey != "":
		r.moderator = newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL)
	case mistralCfg.APIKey != "":
		r.moderator = newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL)
	}

	return r
}

// Chat returns the active chat vendor.
func (r *Registry) Chat() (ChatVendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.chats[r.activeChat]
	if !ok {
		return nil, fmt.Errorf("%w: chat vendor %q", ErrNotConfigured, r.activeChat)
	}
	return v, nil
}

// ImageFor returns the image vendor for a request. Custom-style requests try
// the custom vendor first and fall back to the default one; template styles
// use the default vendor only.
func (r *Registry) ImageFor(custom bool) (ImageVendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := []string{r.image}
	if custom {
		names = []string{r.customImage, r.image}
	}

	var chain []ImageVendor
	for _, name := range slices.Compact(names) {
		if v, ok := r.images[name]; ok {
			chain = append(chain, v)
		}
	}

	switch len(chain) {
	case 0:
		return nil, fmt.Errorf("%w: image vendor %q", ErrNotConfigured, names[0])
	case 1:
		return chain[0], nil
	default:
		return &fallbackImage{chain: chain}, nil
	}
}

// SetActiveChat switches the chat vendor at runtime.
func (r *Registry) SetActiveChat(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[name]; !ok {
		return fmt.Errorf("ai: chat vendor %q is not available (no API key?)", name)
	}
	r.activeChat = name
	return nil
}

// ActiveChatName returns the configured chat vendor name.
func (r *Registry) ActiveChatName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeChat
}

// RegisterChat adds or replaces a chat vendor.
func (r *Registry) RegisterChat(name string, v ChatVendor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[name] = v
}

// RegisterImage adds or replaces an image vendor.
func (r *Registry) RegisterImage(name string, v ImageVendor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[name] = v
}

// Available lists configured chat and image vendor names, sorted.
func (r *Registry) Available() (chat, image []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name := range r.chats {
		chat = append(chat, name)
	}
	for name := range r.images {
		image = append(image, name)
	}
	slices.Sort(chat)
	slices.Sort(image)
	return chat, image
}

// CheckPrompt runs a prompt through the moderation API. A missing moderator
// reports the prompt as safe; vendors still apply their own filters.
func (r *Registry) CheckPrompt(ctx context.Context, prompt string) (*ModerationResult, error) {
	if r.moderator == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return r.moderator.CheckSafety(ctx, prompt)
}

// fallbackImage tries each vendor in order until one succeeds.
type fallbackImage struct {
	chain []ImageVendor
}

func (f *fallbackImage) Name() string { return f.chain[0].Name() }

func (f *fallbackImage) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	var err error
	for i, v := range f.chain {
		var res *ImageResult
		res, err = v.GenerateImage(ctx, req)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if i < len(f.chain)-1 {
			slog.Warn("image vendor failed, trying fallback",
				"vendor", v.Name(), "fallback", f.chain[i+1].Name(), "error", err)
		}
	}
	return nil, err
}
