package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
)

// AnalyzeHooks are optional collaborators of the batch orchestrator.
type AnalyzeHooks struct {
	Logger    *slog.Logger
	Metrics   ports.AnalysisMetrics
	Observers []ports.CommitObserver
	// Progress receives one terminal event per discovered document, preceded
	// by a started event for documents that go to judgment.
	Progress func(domain.ItemEvent)
}

// AnalyzeUseCase drives discovery, judgment, validation and persistence one
// document at a time.
type AnalyzeUseCase struct {
	discoverer ports.DocumentDiscoverer
	client     ports.JudgmentClient
	store      ports.ResultStore
	catalog    ports.ProgramCatalog

	logger    *slog.Logger
	metrics   ports.AnalysisMetrics
	observers []ports.CommitObserver
	progress  func(domain.ItemEvent)
}

func NewAnalyzeUseCase(
	discoverer ports.DocumentDiscoverer,
	client ports.JudgmentClient,
	store ports.ResultStore,
	catalog ports.ProgramCatalog,
	hooks AnalyzeHooks,
) *AnalyzeUseCase {
	if hooks.Logger == nil {
		hooks.Logger = slog.New(slog.DiscardHandler)
	}
	if hooks.Metrics == nil {
		hooks.Metrics = noopMetrics{}
	}
	if hooks.Progress == nil {
		hooks.Progress = func(domain.ItemEvent) {}
	}

	return &AnalyzeUseCase{
		discoverer: discoverer,
		client:     client,
		store:      store,
		catalog:    catalog,
		logger:     hooks.Logger,
		metrics:    hooks.Metrics,
		observers:  hooks.Observers,
		progress:   hooks.Progress,
	}
}

func (uc *AnalyzeUseCase) AnalyzeDepartment(ctx context.Context, dept string) (domain.BatchResult, error) {
	dept = strings.ToUpper(strings.TrimSpace(dept))
	if dept == "" {
		return domain.BatchResult{}, domain.WrapError(domain.ErrInvalidInput, "analyze department", errors.New("department is required"))
	}

	docs, err := uc.discoverer.Discover(ctx, domain.DepartmentScope(dept))
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("discover department %s: %w", dept, err)
	}
	return uc.runScope(ctx, dept, docs)
}

// AnalyzeProgram fans a program out to independent department scopes, run in
// sorted department order.
func (uc *AnalyzeUseCase) AnalyzeProgram(ctx context.Context, program string) (domain.ProgramResult, error) {
	courses, err := uc.catalog.Courses(ctx, program)
	if err != nil {
		return domain.ProgramResult{}, err
	}

	docs, err := uc.discoverer.Discover(ctx, domain.ProgramScope(program, courses))
	if err != nil {
		return domain.ProgramResult{}, fmt.Errorf("discover program %s: %w", program, err)
	}

	result := domain.ProgramResult{Program: program, Departments: []domain.BatchResult{}}
	groups := uc.groupByDepartment(docs)
	for _, dept := range sortedKeys(groups) {
		batch, err := uc.runScope(ctx, dept, groups[dept])
		result.Departments = append(result.Departments, batch)
		if err != nil {
			return result, err
		}
	}

	uc.logger.Info("program_finished",
		"program", program,
		"departments", len(result.Departments),
		"total_records", result.TotalRecords(),
	)
	return result, nil
}

func (uc *AnalyzeUseCase) AnalyzeAll(ctx context.Context, departments ...string) ([]domain.BatchResult, error) {
	docs, err := uc.discoverer.Discover(ctx, domain.AllScope())
	if err != nil {
		return nil, fmt.Errorf("discover all: %w", err)
	}
	groups := uc.groupByDepartment(docs)

	order := sortedKeys(groups)
	if len(departments) > 0 {
		order = dedupeUpper(departments)
	}

	results := make([]domain.BatchResult, 0, len(order))
	for _, dept := range order {
		batch, err := uc.runScope(ctx, dept, groups[dept])
		results = append(results, batch)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// runScope processes docs against the scope's Result Store file. It returns
// early only for run-level failures; item failures become Error Records.
func (uc *AnalyzeUseCase) runScope(ctx context.Context, scopeKey string, docs []domain.InputDocument) (domain.BatchResult, error) {
	result := domain.BatchResult{Scope: scopeKey, Discovered: len(docs)}
	logger := uc.logger.With("scope", scopeKey)

	records, err := uc.store.Load(ctx, scopeKey)
	if err != nil {
		return result, ensureKind(domain.ErrStore, "load results", err)
	}
	done := domain.CompletedKeys(records)
	result.TotalRecords = len(records)

	if len(docs) == 0 {
		logger.Info("scope_empty")
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		event := domain.ItemEvent{Scope: scopeKey, Document: doc, Index: i + 1, Total: len(docs)}

		if _, ok := done[doc.Key()]; ok {
			result.Skipped++
			uc.metrics.ItemSkipped(scopeKey)
			logger.Debug("item_skipped", "source_file", doc.Key())
			event.Outcome = domain.OutcomeSkipped
			uc.progress(event)
			continue
		}

		logger.Info("item_started", "source_file", doc.Key(), "index", i+1, "total", len(docs))
		uc.metrics.ItemStarted(scopeKey)
		started := time.Now()
		event.Outcome = domain.OutcomeStarted
		uc.progress(event)

		item, err := uc.analyzeItem(ctx, doc)
		if err != nil {
			uc.metrics.ItemCommitted(scopeKey, "aborted", domain.ErrorKindOf(err), time.Since(started))
			logger.Error("item_aborted", "source_file", doc.Key(), "error", err)
			return result, err
		}

		// A finished judgment is committed even if cancellation arrived meanwhile.
		if err := uc.store.Append(context.WithoutCancel(ctx), scopeKey, item.record); err != nil {
			uc.metrics.ItemCommitted(scopeKey, "aborted", "store", time.Since(started))
			return result, ensureKind(domain.ErrStore, "append result", err)
		}
		done[doc.Key()] = struct{}{}
		result.TotalRecords++

		outcome := domain.OutcomeReviewed
		kind := ""
		if item.failure != nil {
			outcome = domain.OutcomeError
			kind = domain.ErrorKindOf(item.failure)
			result.Failed++
			logger.Warn("item_committed",
				"source_file", doc.Key(),
				"outcome", outcome,
				"error_kind", kind,
				"error", item.failure,
			)
		} else {
			result.Reviewed++
			logger.Info("item_committed", "source_file", doc.Key(), "outcome", outcome)
		}
		uc.metrics.ItemCommitted(scopeKey, string(outcome), kind, time.Since(started))

		uc.notify(ctx, logger, scopeKey, item.record)

		event.Outcome = outcome
		event.Err = item.failure
		uc.progress(event)
	}

	logger.Info("scope_finished",
		"discovered", result.Discovered,
		"skipped", result.Skipped,
		"reviewed", result.Reviewed,
		"failed", result.Failed,
		"total_records", result.TotalRecords,
	)
	return result, nil
}

// itemResult is the outcome of one document: a record to commit and, for
// Error Records, the failure behind it.
type itemResult struct {
	record  domain.Record
	failure error
}

// analyzeItem never returns item failures as errors. A non-nil error is a
// run-level failure and nothing is committed.
func (uc *AnalyzeUseCase) analyzeItem(ctx context.Context, doc domain.InputDocument) (itemResult, error) {
	raw, err := uc.client.Submit(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return itemResult{}, ctxErr
		}
		if !domain.IsItemFailure(err) {
			return itemResult{}, err
		}
		return itemResult{record: domain.ErrorRecord(doc.Key(), err), failure: err}, nil
	}

	review, err := domain.ParseReview(raw)
	if err != nil {
		return itemResult{record: domain.ErrorRecord(doc.Key(), err), failure: err}, nil
	}
	return itemResult{record: domain.ReviewRecord(doc.Key(), review)}, nil
}

func (uc *AnalyzeUseCase) notify(ctx context.Context, logger *slog.Logger, scopeKey string, rec domain.Record) {
	for _, observer := range uc.observers {
		if err := observer.RecordCommitted(ctx, scopeKey, rec); err != nil {
			logger.Warn("commit_observer_failed", "source_file", rec.SourceFile, "error", err)
		}
	}
}

func (uc *AnalyzeUseCase) groupByDepartment(docs []domain.InputDocument) map[string][]domain.InputDocument {
	groups := make(map[string][]domain.InputDocument)
	for _, doc := range docs {
		dept, ok := doc.Department()
		if !ok {
			uc.logger.Warn("document_without_department", "source_file", doc.Key())
			continue
		}
		groups[dept] = append(groups[dept], doc)
	}
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupeUpper(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func ensureKind(kind error, operation string, err error) error {
	if domain.IsKind(err, kind) {
		return err
	}
	return domain.WrapError(kind, operation, err)
}

type noopMetrics struct{}

func (noopMetrics) ItemSkipped(string) {}
func (noopMetrics) ItemStarted(string) {}
func (noopMetrics) ItemCommitted(string, string, string, time.Duration) {}
