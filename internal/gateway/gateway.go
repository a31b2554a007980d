// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gateway orchestrates one wallpaper generation: prompt
// compilation, quota reservation, the fingerprint cache, the image vendor
// and the best-effort history write. Every collaborator is an interface so
// the sequence can be exercised with fakes.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/cache"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/prompt"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/quota"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

// Reservation is a held quota slot.
type Reservation interface {
	Commit(ctx context.Context) error
	Release()
}

// Quota reserves a generation slot. A nil Reservation means the user has
// no generations left today.
type Quota interface {
	Reserve(ctx context.Context, userID string) (Reservation, quota.Status)
}

// GuardQuota adapts a quota.Guard to Quota.
type GuardQuota struct {
	Guard *quota.Guard
}

// Reserve implements Quota.
func (q GuardQuota) Reserve(ctx context.Context, userID string) (Reservation, quota.Status) {
	r, st := q.Guard.CheckAndReserve(ctx, userID)
	if r == nil {
		return nil, st
	}
	return r, st
}

// ImageCache looks up and stores images by prompt.
type ImageCache interface {
	Get(ctx context.Context, prompt string) (*cache.Entry, bool)
	Put(ctx context.Context, prompt, imageURL, thumbnail string)
}

// VendorRouter picks the image vendor for a request.
type VendorRouter interface {
	ImageFor(custom bool) (ai.ImageVendor, error)
}

// Moderator screens freeform prompts.
type Moderator interface {
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// Thumbnailer derives a data URI thumbnail from an image reference.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, ref string) (string, error)
}

// Rehoster copies a vendor image to permanent storage.
type Rehoster interface {
	Rehost(ctx context.Context, sourceURL string, data []byte, contentType string) (string, error)
}

// Recorder persists generated wallpapers.
type Recorder interface {
	Insert(ctx context.Context, w *models.Wallpaper) error
}

// Catalog collects template-style renders into the shared library.
type Catalog interface {
	Add(ctx context.Context, e *models.LibraryEntry) error
}

// EventLog records generation outcomes.
type EventLog interface {
	Log(ctx context.Context, ev models.GenerationEvent) error
}

// Request is one generation request. A non-empty Prompt is an already
// compiled prompt from the conversation flow and skips compilation.
type Request struct {
	UserID     string
	Selections style.Selections
	SkipCache  bool
	Prompt     string
}

// Result is a successful generation.
type Result struct {
	ImageURL        string    `json:"imageUrl"`
	ThumbnailBase64 string    `json:"thumbnailBase64,omitempty"`
	WallpaperID     uuid.UUID `json:"wallpaperId"`
	PromptSent      string    `json:"promptSent"`
	Cached          bool      `json:"cached"`
}

// Deps are the gateway's collaborators. Moderator, Rehoster, Recorder,
// Catalog and EventLog are optional. Styles defaults to style.Default().
type Deps struct {
	Compiler    *prompt.Compiler
	Styles      *style.Registry
	Quota       Quota
	Cache       ImageCache
	Vendors     VendorRouter
	Thumbnailer Thumbnailer
	Moderator   Moderator
	Rehoster    Rehoster
	Recorder    Recorder
	Catalog     Catalog
	EventLog    EventLog
}

// Gateway runs generations.
type Gateway struct {
	Deps
	now func() time.Time
}

// New creates a gateway.
func New(d Deps) *Gateway {
	if d.Styles == nil {
		d.Styles = style.Default()
	}
	return &Gateway{Deps: d, now: time.Now}
}

// Generate runs one generation. Failures are *GenerationError values.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Result, error) {
	compiled, custom, gerr := g.compile(req)
	if gerr != nil {
		return nil, gerr
	}

	if custom {
		if gerr := g.moderate(ctx, compiled.Prompt); gerr != nil {
			return nil, gerr
		}
	}

	res, st := g.Quota.Reserve(ctx, req.UserID)
	if res == nil {
		slog.Info("generation denied by quota", "user_id", req.UserID, "used", st.Used, "max", st.Max)
		return nil, &GenerationError{Kind: KindQuotaExceeded, Message: MsgQuotaExceeded, Err: ErrQuotaExceeded}
	}
	// Release is a no-op after a successful Commit.
	defer res.Release()

	fp := cache.Fingerprint(compiled.Prompt)

	if !req.SkipCache {
		if entry, ok := g.Cache.Get(ctx, compiled.Prompt); ok {
			g.commit(ctx, res, req.UserID)
			slog.Info("cache_hit", "user_id", req.UserID, "fingerprint", fp, "hits", entry.Hits)
			g.logEvent(ctx, req.UserID, fp, models.OutcomeCacheHit, "")
			return &Result{
				ImageURL:        entry.ImageURL,
				ThumbnailBase64: entry.ThumbnailBase64,
				PromptSent:      compiled.Prompt,
				Cached:          true,
			}, nil
		}
	}

	vendor, err := g.Vendors.ImageFor(custom)
	if err != nil {
		slog.Error("no image vendor configured", "error", err)
		g.logEvent(ctx, req.UserID, fp, models.OutcomeFailed, "")
		return nil, &GenerationError{Kind: KindGenerationFailed, Message: MsgGenerationFailed, Err: err}
	}

	img, err := vendor.GenerateImage(ctx, ai.ImageRequest{
		Prompt:         compiled.Prompt,
		NegativePrompt: compiled.NegativePrompt,
		AspectRatio:    ai.AspectPortrait,
	})
	if err != nil {
		slog.Error("image generation failed", "user_id", req.UserID, "vendor", vendor.Name(), "error", err)
		g.logEvent(ctx, req.UserID, fp, models.OutcomeFailed, vendor.Name())
		return nil, vendorFailure(err)
	}

	imageURL := g.rehost(ctx, img)
	thumb := g.thumbnail(ctx, imageURL)

	g.Cache.Put(ctx, compiled.Prompt, imageURL, thumb)

	wp := g.record(ctx, req, custom, imageURL, thumb, compiled.Prompt)
	if !custom {
		g.catalog(ctx, req.Selections, imageURL, thumb, fp)
	}

	g.commit(ctx, res, req.UserID)

	slog.Info("wallpaper generated", "user_id", req.UserID, "vendor", img.Vendor, "fingerprint", fp, "skip_cache", req.SkipCache)
	g.logEvent(ctx, req.UserID, fp, models.OutcomeGenerated, img.Vendor)

	return &Result{
		ImageURL:        imageURL,
		ThumbnailBase64: thumb,
		WallpaperID:     wp,
		PromptSent:      compiled.Prompt,
	}, nil
}

// compile validates the request and produces the prompt pair. custom
// reports whether the prompt came from freeform text.
func (g *Gateway) compile(req Request) (prompt.Compiled, bool, *GenerationError) {
	if p := strings.TrimSpace(req.Prompt); p != "" {
		return prompt.Compiled{Prompt: p, NegativePrompt: prompt.DefaultNegativePrompt}, true, nil
	}
	if req.Selections.StyleUniverse == "" {
		return prompt.Compiled{}, false, invalid(MsgInvalidSelections, errors.New("style universe is required"))
	}
	compiled, err := g.Compiler.Compile(req.Selections)
	if err != nil {
		return prompt.Compiled{}, false, invalid(MsgBuildFailed, err)
	}
	return compiled, req.Selections.IsCustom(), nil
}

// moderate rejects flagged prompts before any quota is reserved. A
// moderation outage lets the prompt through.
func (g *Gateway) moderate(ctx context.Context, p string) *GenerationError {
	if g.Moderator == nil {
		return nil
	}
	mod, err := g.Moderator.CheckPrompt(ctx, p)
	if err != nil {
		slog.Warn("prompt moderation unavailable", "error", err)
		return nil
	}
	if mod.Safe {
		return nil
	}
	slog.Info("prompt flagged by moderation", "categories", mod.Categories)
	return &GenerationError{
		Kind:    KindGenerationFailed,
		Message: MsgSafetyRejected,
		Err:     fmt.Errorf("%w: %s", ai.ErrSafetyRejected, strings.Join(mod.Categories, ", ")),
	}
}

func (g *Gateway) rehost(ctx context.Context, img *ai.ImageResult) string {
	if g.Rehoster == nil {
		return img.Ref()
	}
	url, err := g.Rehoster.Rehost(ctx, img.URL, img.Data, img.ContentType)
	if err != nil {
		slog.Warn("image rehost failed, keeping vendor reference", "vendor", img.Vendor, "error", err)
		return img.Ref()
	}
	return url
}

func (g *Gateway) thumbnail(ctx context.Context, ref string) string {
	if g.Thumbnailer == nil {
		return ""
	}
	thumb, err := g.Thumbnailer.Thumbnail(ctx, ref)
	if err != nil {
		slog.Warn("thumbnail failed", "error", err)
		return ""
	}
	return thumb
}

// record writes the history row with resolved palette and pattern names.
// Failure is logged and the zero UUID is returned.
func (g *Gateway) record(ctx context.Context, req Request, custom bool, imageURL, thumb, sent string) uuid.UUID {
	if g.Recorder == nil {
		return uuid.Nil
	}
	sel := req.Selections
	wp := &models.Wallpaper{
		ID:              uuid.New(),
		UserID:          req.UserID,
		ImageURL:        imageURL,
		ThumbnailBase64: thumb,
		StyleUniverse:   sel.StyleUniverse,
		TimeOfDay:       sel.TimeOfDay,
		Vibe:            sel.Vibe,
		PersonalText:    sel.PersonalText,
		CustomPrompt:    sel.CustomPrompt,
		PromptSent:      sent,
		CreatedAt:       g.now(),
	}
	if req.Prompt != "" && wp.StyleUniverse == "" {
		wp.StyleUniverse = style.CustomID
	}
	if !custom {
		if p, ok := g.Styles.Palette(sel.StyleUniverse, sel.Palette); ok {
			wp.PaletteName = p.Name
		}
		if p, ok := g.Styles.Pattern(sel.StyleUniverse, sel.Pattern); ok {
			wp.PatternName = p.Name
		}
	}
	if err := g.Recorder.Insert(ctx, wp); err != nil {
		slog.Warn("wallpaper history write failed", "user_id", req.UserID, "error", err)
		return uuid.Nil
	}
	return wp.ID
}

// catalog adds a template-style render to the library. Failure is logged.
func (g *Gateway) catalog(ctx context.Context, sel style.Selections, imageURL, thumb, fp string) {
	if g.Catalog == nil {
		return
	}
	e := &models.LibraryEntry{
		ID:              uuid.New(),
		ImageURL:        imageURL,
		ThumbnailBase64: thumb,
		StyleUniverse:   sel.StyleUniverse,
		Palette:         sel.Palette,
		Pattern:         sel.Pattern,
		TimeOfDay:       sel.TimeOfDay,
		Vibe:            sel.Vibe,
		PromptHash:      fp,
		Tags:            []string{sel.StyleUniverse, sel.Vibe, sel.TimeOfDay},
		CreatedAt:       g.now(),
	}
	if err := g.Catalog.Add(ctx, e); err != nil {
		slog.Warn("library write failed", "fingerprint", fp, "error", err)
	}
}

func (g *Gateway) logEvent(ctx context.Context, userID, fp string, outcome models.Outcome, vendor string) {
	if g.EventLog == nil {
		return
	}
	ev := models.GenerationEvent{
		ID:          uuid.New(),
		UserID:      userID,
		Fingerprint: fp,
		Outcome:     outcome,
		Vendor:      vendor,
		CreatedAt:   g.now(),
	}
	if err := g.EventLog.Log(ctx, ev); err != nil {
		slog.Warn("generation log write failed", "outcome", outcome, "error", err)
	}
}

// commit counts the generation once the image exists. A commit that
// loses the last slot or hits a store outage is logged and the generation
// stands.
func (g *Gateway) commit(ctx context.Context, res Reservation, userID string) {
	err := res.Commit(ctx)
	switch {
	case err == nil:
	case errors.Is(err, quota.ErrLimitReached):
		slog.Warn("quota exhausted at commit, serving image", "user_id", userID)
	default:
		slog.Warn("quota commit failed", "user_id", userID, "error", err)
	}
}
