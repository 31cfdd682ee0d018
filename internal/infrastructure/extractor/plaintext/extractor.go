package plaintext

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// Extractor converts syllabi to plain text by format.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractText(ctx context.Context, doc domain.InputDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch doc.Format {
	case domain.FormatDOCX:
		text, err = DOCXText(doc.Path)
	case domain.FormatPDF:
		text, err = PDFText(doc.Path)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text", fmt.Errorf("unsupported file type: %s", doc.Name))
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract text", fmt.Errorf("%s: %w", doc.Name, err))
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrExtraction, "extract text", fmt.Errorf("%s: no text content", doc.Name))
	}
	return text, nil
}
