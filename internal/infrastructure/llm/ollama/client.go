package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

const backendName = "ollama"

// Client judges extracted syllabus text with a local Ollama model. It cannot
// read documents, so PDFs reach it as text.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return backendName }

func (c *Client) SupportsInlineDocuments() bool { return false }

func (c *Client) Judge(ctx context.Context, req domain.JudgmentRequest) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"system": req.System,
		"prompt": req.Prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
