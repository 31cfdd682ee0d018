package ports

import (
	"context"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// Analyzer is the inbound contract for batch analysis. Every operation is
// resumable: documents already present in the Result Store are skipped.
type Analyzer interface {
	AnalyzeDepartment(ctx context.Context, dept string) (domain.BatchResult, error)
	AnalyzeProgram(ctx context.Context, program string) (domain.ProgramResult, error)
	// AnalyzeAll processes the listed departments, or every department on disk
	// when none are given.
	AnalyzeAll(ctx context.Context, departments ...string) ([]domain.BatchResult, error)
}

// MissingCourseReporter computes and persists missing-course reports.
type MissingCourseReporter interface {
	ReportMissing(ctx context.Context, program string) (domain.MissingReport, string, error)
}

// ReviewReader is the read model behind the viewer, summary and export surfaces.
type ReviewReader interface {
	Scopes(ctx context.Context) ([]domain.ScopeOverview, error)
	Records(ctx context.Context, scopeKey string) ([]domain.Record, error)
	Errors(ctx context.Context, scopeKey string) ([]domain.Record, error)
	Summary(ctx context.Context, scopeKey string) (domain.ScopeSummary, error)
	Programs(ctx context.Context) ([]string, error)
	ProgramView(ctx context.Context, program string) (domain.ProgramView, error)
}
