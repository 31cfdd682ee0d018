package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

const (
	backendName = "gemini"

	DefaultModel = "gemini-2.5-flash"
)

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL   string
	MaxTokens int32
	Timeout   time.Duration
}

// Client judges syllabi with Gemini. PDFs are sent as inline data parts.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "gemini client", errors.New("GEMINI_API_KEY is required"))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "gemini client", err)
	}
	return &Client{client: client, model: cfg.Model, maxTokens: cfg.MaxTokens}, nil
}

func (c *Client) Name() string { return backendName }

func (c *Client) SupportsInlineDocuments() bool { return true }

func (c *Client) Judge(ctx context.Context, req domain.JudgmentRequest) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts(requestParts(req), genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  c.maxTokens,
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", serviceError(err)
	}
	return resp.Text(), nil
}

func requestParts(req domain.JudgmentRequest) []*genai.Part {
	parts := make([]*genai.Part, 0, 2)
	if req.Inline() {
		mediaType := req.MediaType
		if mediaType == "" {
			mediaType = domain.MediaTypePDF
		}
		parts = append(parts, genai.NewPartFromBytes(req.Document, mediaType))
	}
	return append(parts, genai.NewPartFromText(req.Prompt))
}

func serviceError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ServiceError{Backend: backendName, StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.ServiceError{Backend: backendName, StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return &domain.ServiceError{Backend: backendName, Err: err}
}
