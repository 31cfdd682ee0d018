// Package judgment submits syllabi to the configured judgment backend.
package judgment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/judgment/prompt"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/resilience"
)

type Config struct {
	// System is the rubric instruction sent with every call.
	System string
	// RequestsPerMinute paces calls to the backend. Zero disables pacing.
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client implements ports.JudgmentClient on top of a backend. It builds one
// request per document, paces and times out calls, and guards the backend
// with a circuit breaker.
type Client struct {
	backend   ports.JudgmentBackend
	extractor ports.TextExtractor
	executor  *resilience.Executor
	limiter   *rate.Limiter
	system    string
	timeout   time.Duration
	logger    *slog.Logger
}

func NewClient(
	backend ports.JudgmentBackend,
	extractor ports.TextExtractor,
	executor *resilience.Executor,
	cfg Config,
	logger *slog.Logger,
) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 600 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		backend:   backend,
		extractor: extractor,
		executor:  executor,
		limiter:   limiter,
		system:    cfg.System,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

func (c *Client) Submit(ctx context.Context, doc domain.InputDocument) (string, error) {
	req, err := c.buildRequest(ctx, doc)
	if err != nil {
		return "", err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", domain.WrapError(domain.ErrService, "pace judgment", err)
		}
	}

	operation := "judgment." + c.backend.Name()
	var raw string
	err = c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		out, err := c.backend.Judge(callCtx, req)
		if err != nil {
			return err
		}
		raw = out
		return nil
	}, countsAgainstBreaker)

	switch {
	case err == nil:
	case resilience.IsCircuitOpen(err):
		// Recorded like any other service failure; the batch moves on without
		// calling the backend until the breaker half-opens.
		return "", &domain.ServiceError{Backend: c.backend.Name(), Err: err}
	case ctx.Err() != nil:
		return "", ctx.Err()
	case domain.IsKind(err, domain.ErrService):
		return "", err
	default:
		return "", domain.WrapError(domain.ErrService, operation, err)
	}

	if strings.TrimSpace(raw) == "" {
		return "", &domain.ServiceError{Backend: c.backend.Name(), Err: errors.New("empty response")}
	}
	return raw, nil
}

// buildRequest picks the submission path by format. PDFs go inline when the
// backend reads documents and through text extraction otherwise.
func (c *Client) buildRequest(ctx context.Context, doc domain.InputDocument) (domain.JudgmentRequest, error) {
	req := domain.JudgmentRequest{DocumentName: doc.Name, System: c.system}

	switch doc.Format {
	case domain.FormatPDF:
		if c.backend.SupportsInlineDocuments() {
			data, err := os.ReadFile(doc.Path)
			if err != nil {
				return req, domain.WrapError(domain.ErrExtraction, "read document", err)
			}
			req.Document = data
			req.MediaType = domain.MediaTypePDF
			req.Prompt = prompt.Instruction
			return req, nil
		}
		c.logger.Debug("pdf_text_fallback", "source_file", doc.Key(), "backend", c.backend.Name())
		fallthrough
	case domain.FormatDOCX:
		text, err := c.extractor.ExtractText(ctx, doc)
		if err != nil {
			return req, err
		}
		req.Prompt = prompt.TextMessage(doc.Name, text)
		return req, nil
	default:
		return req, domain.WrapError(domain.ErrUnsupportedFormat, "build judgment request", fmt.Errorf("unsupported file type: %s", doc.Name))
	}
}

// countsAgainstBreaker is true for failures that would repeat for any
// document. Rejections of one document leave the breaker alone.
func countsAgainstBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Systemic()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
