// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "imgcache:"

	// DefaultTTL is how long a generated image may be reused.
	DefaultTTL = 7 * 24 * time.Hour

	fieldImageURL  = "imageUrl"
	fieldThumbnail = "thumbnail"
	fieldCreatedAt = "createdAt"
	fieldHits      = "hits"

	scanBatch = 100
)

var spaceRe = regexp.MustCompile(`\s+`)

// Fingerprint normalizes a prompt (lowercase, trim, collapse whitespace)
// and returns the first 16 hex characters of its SHA-256.
func Fingerprint(prompt string) string {
	norm := spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(prompt)), " ")
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])[:16]
}

// Entry is one cached generation.
type Entry struct {
	Fingerprint     string    `json:"fingerprint"`
	ImageURL        string    `json:"imageUrl"`
	ThumbnailBase64 string    `json:"thumbnailBase64,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	Hits            int64     `json:"hitCount"`
}

// Stats summarizes the cache.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalHits int64 `json:"totalHits"`
}

// ImageCache maps prompt fingerprints to generated images in Valkey. Every
// entry is a hash; the key also carries a Valkey expiry as a backstop to
// the lazy and periodic eviction done here. Backend errors degrade to a
// miss and are logged.
type ImageCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewImageCache creates an image cache. A zero ttl uses DefaultTTL.
func NewImageCache(client *redis.Client, ttl time.Duration) *ImageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ImageCache{client: client, ttl: ttl, now: time.Now}
}

func key(fp string) string { return keyPrefix + fp }

// Get returns the live entry for a prompt and counts the hit. Expired
// entries are deleted and reported as a miss.
func (c *ImageCache) Get(ctx context.Context, prompt string) (*Entry, bool) {
	fp := Fingerprint(prompt)
	k := key(fp)

	vals, err := c.client.HGetAll(ctx, k).Result()
	if err != nil {
		slog.Warn("image cache get error", "fingerprint", fp, "error", err)
		return nil, false
	}
	if len(vals) == 0 || vals[fieldImageURL] == "" {
		slog.Debug("image cache miss", "fingerprint", fp)
		return nil, false
	}

	e := decodeEntry(fp, vals)
	if c.expired(e) {
		if err := c.client.Del(ctx, k).Err(); err != nil {
			slog.Warn("image cache evict error", "fingerprint", fp, "error", err)
		}
		slog.Debug("image cache expired", "fingerprint", fp)
		return nil, false
	}

	hits, err := c.client.HIncrBy(ctx, k, fieldHits, 1).Result()
	if err != nil {
		slog.Warn("image cache hit count error", "fingerprint", fp, "error", err)
		hits = e.Hits + 1
	}
	e.Hits = hits

	slog.Debug("image cache hit", "fingerprint", fp, "hits", hits)
	return e, true
}

// Put stores an image for a prompt, replacing any earlier entry and
// resetting its hit count.
func (c *ImageCache) Put(ctx context.Context, prompt, imageURL, thumbnail string) {
	fp := Fingerprint(prompt)
	k := key(fp)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k,
		fieldImageURL, imageURL,
		fieldThumbnail, thumbnail,
		fieldCreatedAt, c.now().UnixMilli(),
		fieldHits, 0,
	)
	pipe.PExpire(ctx, k, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("image cache put error", "fingerprint", fp, "error", err)
		return
	}
	slog.Debug("image cache stored", "fingerprint", fp)
}

// Sweep deletes every expired entry and returns how many were removed.
func (c *ImageCache) Sweep(ctx context.Context) (int, error) {
	var removed int
	err := c.scan(ctx, func(k string, vals map[string]string) error {
		if !c.expired(decodeEntry(strings.TrimPrefix(k, keyPrefix), vals)) {
			return nil
		}
		if err := c.client.Del(ctx, k).Err(); err != nil {
			return err
		}
		removed++
		return nil
	})
	if removed > 0 {
		slog.Info("image cache swept", "removed", removed)
	}
	return removed, err
}

// Stats counts live entries and their accumulated hits.
func (c *ImageCache) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := c.scan(ctx, func(k string, vals map[string]string) error {
		e := decodeEntry(strings.TrimPrefix(k, keyPrefix), vals)
		if c.expired(e) {
			return nil
		}
		st.Entries++
		st.TotalHits += e.Hits
		return nil
	})
	return st, err
}

// scan visits every cache hash. Keys that vanish between SCAN and HGETALL
// are skipped.
func (c *ImageCache) scan(ctx context.Context, visit func(k string, vals map[string]string) error) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}
		for _, k := range keys {
			vals, err := c.client.HGetAll(ctx, k).Result()
			if err != nil {
				return err
			}
			if len(vals) == 0 {
				continue
			}
			if err := visit(k, vals); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *ImageCache) expired(e *Entry) bool {
	return c.now().Sub(e.CreatedAt) > c.ttl
}

func decodeEntry(fp string, vals map[string]string) *Entry {
	ms, _ := strconv.ParseInt(vals[fieldCreatedAt], 10, 64)
	hits, _ := strconv.ParseInt(vals[fieldHits], 10, 64)
	return &Entry{
		Fingerprint:     fp,
		ImageURL:        vals[fieldImageURL],
		ThumbnailBase64: vals[fieldThumbnail],
		CreatedAt:       time.UnixMilli(ms),
		Hits:            hits,
	}
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func StartSweeper(ctx context.Context, c *ImageCache, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := c.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Warn("image cache sweep failed", "error", err)
				}
			}
		}
	}()
}
