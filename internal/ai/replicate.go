// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxLoadingWait caps how long a model-loading retry waits.
const maxLoadingWait = 30 * time.Second

// replicateVendor runs FLUX Schnell predictions on Replicate using the
// synchronous "Prefer: wait" mode.
type replicateVendor struct {
	config VendorConfig
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
}

func newReplicate(cfg VendorConfig) *replicateVendor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.replicate.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "black-forest-labs/flux-schnell"
	}
	return &replicateVendor{
		config: cfg,
		client: &http.Client{Timeout: cfg.timeout()},
		sleep:  sleepCtx,
	}
}

func (v *replicateVendor) Name() string { return "replicate" }

// GenerateImage runs one prediction. When the model is still loading the
// call waits for the advertised time (capped) and retries exactly once.
func (v *replicateVendor) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	pred, err := v.predict(ctx, req)

	var apiErr *APIError
	if errors.Is(err, ErrModelLoading) && errors.As(err, &apiErr) {
		wait := min(apiErr.RetryAfter, maxLoadingWait)
		slog.Info("replicate model loading, retrying once", "wait", wait)
		if err := v.sleep(ctx, wait); err != nil {
			return nil, err
		}
		pred, err = v.predict(ctx, req)
	} else if err == nil && pred.pending() && pred.URLs.Get != "" {
		slog.Info("replicate prediction still running, polling once", "id", pred.ID, "status", pred.Status)
		if err := v.sleep(ctx, maxLoadingWait/3); err != nil {
			return nil, err
		}
		pred, err = v.fetch(ctx, pred.URLs.Get)
	}
	if err != nil {
		return nil, err
	}

	if pred.Status == "failed" || pred.Status == "canceled" {
		return nil, fmt.Errorf("replicate prediction %s: %v", pred.Status, pred.Error)
	}
	url := pred.firstOutput()
	if url == "" {
		return nil, fmt.Errorf("replicate: no image generated (status %q)", pred.Status)
	}
	return &ImageResult{URL: url, ContentType: "image/webp", Vendor: v.Name()}, nil
}

func (v *replicateVendor) predict(ctx context.Context, req ImageRequest) (*replicatePrediction, error) {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = AspectPortrait
	}
	body := replicateRequest{Input: replicateInput{
		Prompt:            req.Prompt,
		NumInferenceSteps: 4,
		NumOutputs:        1,
		AspectRatio:       aspect,
		OutputFormat:      "webp",
		OutputQuality:     85,
		GoFast:            true,
	}}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("replicate marshal: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", v.config.BaseURL, v.config.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("replicate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Prefer", "wait")

	return v.do(httpReq)
}

func (v *replicateVendor) fetch(ctx context.Context, url string) (*replicatePrediction, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("replicate request: %w", err)
	}
	return v.do(httpReq)
}

func (v *replicateVendor) do(req *http.Request) (*replicatePrediction, error) {
	req.Header.Set("Authorization", "Bearer "+v.config.APIKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Vendor: "replicate", StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusServiceUnavailable {
			var loading struct {
				EstimatedTime float64 `json:"estimated_time"`
			}
			if json.Unmarshal(respBody, &loading) == nil && loading.EstimatedTime > 0 {
				apiErr.RetryAfter = time.Duration(loading.EstimatedTime * float64(time.Second))
			}
		}
		return nil, apiErr
	}

	var pred replicatePrediction
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, fmt.Errorf("replicate unmarshal: %w", err)
	}
	return &pred, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// --- Replicate API types ---

type replicateInput struct {
	Prompt            string `json:"prompt"`
	NumInferenceSteps int    `json:"num_inference_steps"`
	NumOutputs        int    `json:"num_outputs"`
	AspectRatio       string `json:"aspect_ratio"`
	OutputFormat      string `json:"output_format"`
	OutputQuality     int    `json:"output_quality"`
	GoFast            bool   `json:"go_fast"`
}

type replicateRequest struct {
	Input replicateInput `json:"input"`
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (p *replicatePrediction) pending() bool {
	return p.Status == "starting" || p.Status == "processing"
}

// firstOutput handles both a single URL and a list of URLs.
func (p *replicatePrediction) firstOutput() string {
	if len(p.Output) == 0 {
		return ""
	}
	var list []string
	if json.Unmarshal(p.Output, &list) == nil && len(list) > 0 {
		return list[0]
	}
	var single string
	if json.Unmarshal(p.Output, &single) == nil {
		return single
	}
	return ""
}
