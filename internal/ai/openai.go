package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIVendor serves chat completions and DALL·E images through the
// official SDK.
type openAIVendor struct {
	client     openai.Client
	model      string
	imageModel string
}

func newOpenAI(cfg VendorConfig) *openAIVendor {
	if cfg.Model == "" {
		cfg.Model = string(openai.ChatModelGPT4oMini)
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = string(openai.ImageModelDallE3)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.timeout()),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openAIVendor{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
}

func (v *openAIVendor) Name() string { return "openai" }

// Chat sends the system instruction and history as one chat completion.
func (v *openAIVendor) Chat(ctx context.Context, system string, messages []Message, opts ChatOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(v.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1),
	}
	params.Messages = append(params.Messages, openai.SystemMessage(system))
	for _, m := range messages {
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		} else {
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	resp, err := v.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage renders a portrait image. DALL·E has no negative prompt, so
// req.NegativePrompt is ignored.
func (v *openAIVendor) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	size := openai.ImageGenerateParamsSize1024x1792
	if req.AspectRatio != "" && req.AspectRatio != AspectPortrait {
		size = openai.ImageGenerateParamsSize1024x1024
	}

	resp, err := v.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(v.imageModel),
		N:              openai.Int(1),
		Size:           size,
		Quality:        openai.ImageGenerateParamsQualityStandard,
		Style:          openai.ImageGenerateParamsStyleVivid,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai image: no data returned")
	}

	img := resp.Data[0]
	if img.URL != "" {
		return &ImageResult{URL: img.URL, Vendor: v.Name()}, nil
	}
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("openai image decode base64: %w", err)
		}
		return &ImageResult{Data: data, ContentType: "image/png", Vendor: v.Name()}, nil
	}
	return nil, fmt.Errorf("openai image: empty image in response")
}

// openAIError converts SDK errors into *APIError so Classify sees the status.
func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{Vendor: "openai", StatusCode: apiErr.StatusCode, Body: apiErr.Error(), Err: err}
	}
	return fmt.Errorf("openai: %w", err)
}
