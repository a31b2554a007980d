// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging derives small JPEG thumbnails from generated wallpapers
// and returns them as data URIs suitable for history and cache records.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// ThumbWidth is the thumbnail width in pixels.
	ThumbWidth = 256

	// ThumbQuality is the JPEG quality for thumbnails.
	ThumbQuality = 75

	// maxImagePixels caps decoded size to avoid memory bombs.
	maxImagePixels = 50_000_000

	// maxFetchBytes bounds a downloaded source image.
	maxFetchBytes = 25 << 20

	fetchTimeout = 20 * time.Second
)

// Thumbnailer fetches a generated image and scales it down.
type Thumbnailer struct {
	client *http.Client
	width  int
}

// NewThumbnailer creates a thumbnailer. A nil client gets a bounded default.
func NewThumbnailer(client *http.Client) *Thumbnailer {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Thumbnailer{client: client, width: ThumbWidth}
}

// Thumbnail returns a data URI thumbnail for an image reference. Inline
// data URIs are scaled without a fetch. A payload that cannot be decoded
// is passed through base64-encoded under its own content type.
func (t *Thumbnailer) Thumbnail(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "data:") {
		data, _, err := DecodeDataURI(ref)
		if err != nil {
			return ref, nil
		}
		thumb, err := Scale(data, t.width)
		if err != nil {
			return ref, nil
		}
		return DataURI("image/jpeg", thumb), nil
	}

	data, contentType, err := t.fetch(ctx, ref)
	if err != nil {
		return "", err
	}

	thumb, err := Scale(data, t.width)
	if err != nil {
		return DataURI(contentType, data), nil
	}
	return DataURI("image/jpeg", thumb), nil
}

func (t *Thumbnailer) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("thumbnail request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("thumbnail fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("thumbnail fetch: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("thumbnail read: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Scale decodes an image (png, jpeg, gif or webp), resizes it to width
// preserving the aspect ratio and re-encodes it as JPEG. Images already
// narrower than width are re-encoded at their own size.
func Scale(data []byte, width int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		h = int(float64(h) * float64(width) / float64(w))
		w = width
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: ThumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI encodes data as a base64 data URI.
func DataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its content type and bytes.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("data URI is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}
	return data, contentType, nil
}
