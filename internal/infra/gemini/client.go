package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"gemini-audio/internal/domain"
	"gemini-audio/internal/infra"
)

// Client talks to the Gemini API through the genai SDK. The SDK client is
// created on first use so a Client can be built before the key is known
// to be valid.
type Client struct {
	apiKey  string
	baseURL string
	retry   infra.RetryConfig

	once   sync.Once
	sdk    *genai.Client
	sdkErr error
}

// NewClientWithURL overrides the API endpoint. An empty baseURL keeps the
// SDK default.
func NewClientWithURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		retry:   infra.DefaultRetryConfig(),
	}
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:     c.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		}
		if c.baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
		}
		c.sdk, c.sdkErr = genai.NewClient(ctx, cfg)
		if c.sdkErr != nil {
			c.sdkErr = fmt.Errorf("creating gemini client: %w", c.sdkErr)
		}
	})
	return c.sdk, c.sdkErr
}

func (c *Client) Upload(ctx context.Context, path, contentType string) (*domain.UploadedFile, error) {
	sdk, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	// Not retried: a lost response to a completed upload would leave a
	// duplicate file on the service.
	file, err := sdk.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: contentType})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", path, err)
	}

	return toUploadedFile(file), nil
}

func (c *Client) GetFile(ctx context.Context, name string) (*domain.UploadedFile, error) {
	sdk, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	var file *genai.File
	err = infra.WithRetry(ctx, c.retry, func() error {
		var getErr error
		file, getErr = sdk.Files.Get(ctx, name, nil)
		return classify(getErr)
	})
	if err != nil {
		return nil, fmt.Errorf("getting file %s: %w", name, err)
	}

	return toUploadedFile(file), nil
}

// Generate issues one generateContent call. It is not retried.
func (c *Client) Generate(ctx context.Context, model string, cfg domain.GenerationConfig, systemInstruction string, parts []domain.PromptPart) (string, error) {
	sdk, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	contents, err := toContents(parts)
	if err != nil {
		return "", err
	}

	resp, err := sdk.Models.GenerateContent(ctx, model, contents, toGenerateConfig(cfg, systemInstruction))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	return resp.Text(), nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && !infra.IsRetryableHTTPStatus(apiErr.Code) {
		return infra.Permanent(err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && !infra.IsRetryableHTTPStatus(apiErrPtr.Code) {
		return infra.Permanent(err)
	}
	return err
}

func toUploadedFile(f *genai.File) *domain.UploadedFile {
	if f == nil {
		return &domain.UploadedFile{State: domain.FileStateUnspecified}
	}
	return &domain.UploadedFile{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		URI:         f.URI,
		MIMEType:    f.MIMEType,
		State:       toFileState(f.State),
	}
}

func toFileState(s genai.FileState) domain.FileState {
	switch s {
	case genai.FileStateProcessing:
		return domain.FileStateProcessing
	case genai.FileStateActive:
		return domain.FileStateActive
	case genai.FileStateFailed:
		return domain.FileStateFailed
	default:
		return domain.FileStateUnspecified
	}
}

func toContents(parts []domain.PromptPart) ([]*genai.Content, error) {
	sdkParts := make([]*genai.Part, 0, len(parts))
	for i, p := range parts {
		switch p.Kind {
		case domain.PartKindText:
			sdkParts = append(sdkParts, genai.NewPartFromText(p.Text))
		case domain.PartKindFile:
			if p.File == nil || p.File.URI == "" {
				return nil, fmt.Errorf("prompt part %d: file reference without URI", i)
			}
			sdkParts = append(sdkParts, genai.NewPartFromURI(p.File.URI, p.File.MIMEType))
		default:
			return nil, fmt.Errorf("prompt part %d: unknown kind %q", i, p.Kind)
		}
	}
	return []*genai.Content{genai.NewContentFromParts(sdkParts, genai.RoleUser)}, nil
}

func toGenerateConfig(cfg domain.GenerationConfig, systemInstruction string) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(cfg.Temperature),
		TopP:             genai.Ptr(cfg.TopP),
		TopK:             genai.Ptr(cfg.TopK),
		MaxOutputTokens:  cfg.MaxOutputTokens,
		ResponseMIMEType: cfg.ResponseMIMEType,
	}
	if systemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	return gc
}
