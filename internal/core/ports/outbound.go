package ports

import (
	"context"
	"time"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// DocumentDiscoverer lists the syllabi belonging to a scope in stable order.
type DocumentDiscoverer interface {
	Discover(ctx context.Context, scope domain.Scope) ([]domain.InputDocument, error)
}

// JudgmentClient submits one document to the external judgment service and
// returns its raw output.
type JudgmentClient interface {
	Submit(ctx context.Context, doc domain.InputDocument) (string, error)
}

// TextExtractor converts a text-bearing document to plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, doc domain.InputDocument) (string, error)
}

// ResultStore persists records per scope key.
type ResultStore interface {
	Load(ctx context.Context, scopeKey string) ([]domain.Record, error)
	CompletedKeys(ctx context.Context, scopeKey string) (map[string]struct{}, error)
	// Append adds one record and durably rewrites the scope file before returning.
	Append(ctx context.Context, scopeKey string, rec domain.Record) error
	ListScopes(ctx context.Context) ([]string, error)
}

// ProgramCatalog is the static program membership mapping.
type ProgramCatalog interface {
	Programs(ctx context.Context) ([]string, error)
	Courses(ctx context.Context, program string) ([]string, error)
}

// MissingReportWriter persists a missing-course report and returns its location.
type MissingReportWriter interface {
	WriteMissingReport(ctx context.Context, report domain.MissingReport) (string, error)
}

// CommitObserver is notified after a record has been committed to the Result Store.
type CommitObserver interface {
	RecordCommitted(ctx context.Context, scopeKey string, rec domain.Record) error
}

// AnalysisMetrics records batch progress.
type AnalysisMetrics interface {
	ItemSkipped(scopeKey string)
	ItemStarted(scopeKey string)
	ItemCommitted(scopeKey, outcome, errorKind string, elapsed time.Duration)
}

// JudgmentBackend is one hosted or local model API.
type JudgmentBackend interface {
	Name() string
	// SupportsInlineDocuments reports whether PDFs can be sent as raw bytes.
	SupportsInlineDocuments() bool
	Judge(ctx context.Context, req domain.JudgmentRequest) (string, error)
}
