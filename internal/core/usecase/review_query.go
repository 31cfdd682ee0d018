package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
)

// ReviewQueryService is the read side over persisted results. Error Records
// are listed separately and never enter analytical views.
type ReviewQueryService struct {
	store   ports.ResultStore
	catalog ports.ProgramCatalog
	missing *MissingCoursesUseCase
}

func NewReviewQueryService(store ports.ResultStore, catalog ports.ProgramCatalog, missing *MissingCoursesUseCase) *ReviewQueryService {
	return &ReviewQueryService{
		store:   store,
		catalog: catalog,
		missing: missing,
	}
}

func (s *ReviewQueryService) Scopes(ctx context.Context) ([]domain.ScopeOverview, error) {
	keys, err := s.store.ListScopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}

	out := make([]domain.ScopeOverview, 0, len(keys))
	for _, key := range keys {
		records, err := s.store.Load(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load scope %s: %w", key, err)
		}
		reviews, failures := domain.SplitRecords(records)
		out = append(out, domain.ScopeOverview{Scope: key, Reviews: len(reviews), Errors: len(failures)})
	}
	return out, nil
}

func (s *ReviewQueryService) Records(ctx context.Context, scopeKey string) ([]domain.Record, error) {
	reviews, _, err := s.split(ctx, scopeKey)
	return reviews, err
}

func (s *ReviewQueryService) Errors(ctx context.Context, scopeKey string) ([]domain.Record, error) {
	_, failures, err := s.split(ctx, scopeKey)
	return failures, err
}

func (s *ReviewQueryService) Summary(ctx context.Context, scopeKey string) (domain.ScopeSummary, error) {
	records, err := s.load(ctx, scopeKey)
	if err != nil {
		return domain.ScopeSummary{}, err
	}
	return domain.Summarize(scopeKey, records), nil
}

func (s *ReviewQueryService) Programs(ctx context.Context) ([]string, error) {
	return s.catalog.Programs(ctx)
}

// ProgramView gathers the reviews of a program's courses across every scope,
// matched on the reported course number.
func (s *ReviewQueryService) ProgramView(ctx context.Context, program string) (domain.ProgramView, error) {
	courses, err := s.catalog.Courses(ctx, program)
	if err != nil {
		return domain.ProgramView{}, err
	}

	keys, err := s.store.ListScopes(ctx)
	if err != nil {
		return domain.ProgramView{}, fmt.Errorf("list scopes: %w", err)
	}

	view := domain.ProgramView{Program: program, Records: []domain.Record{}}
	for _, key := range keys {
		records, err := s.store.Load(ctx, key)
		if err != nil {
			return domain.ProgramView{}, fmt.Errorf("load scope %s: %w", key, err)
		}
		view.Records = append(view.Records, domain.FilterByCourses(records, courses)...)
	}

	if s.missing != nil {
		report, err := s.missing.Compute(ctx, program)
		if err != nil {
			return domain.ProgramView{}, err
		}
		view.Missing = report
	} else {
		view.Missing = domain.BuildMissingReport(program, courses, nil)
	}
	return view, nil
}

// load fails with ErrNotFound for scopes that have no result file.
func (s *ReviewQueryService) load(ctx context.Context, scopeKey string) ([]domain.Record, error) {
	keys, err := s.store.ListScopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	if !slices.Contains(keys, scopeKey) {
		return nil, domain.WrapError(domain.ErrNotFound, "load scope", fmt.Errorf("no results for scope %q", scopeKey))
	}

	records, err := s.store.Load(ctx, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("load scope %s: %w", scopeKey, err)
	}
	return records, nil
}

func (s *ReviewQueryService) split(ctx context.Context, scopeKey string) ([]domain.Record, []domain.Record, error) {
	records, err := s.load(ctx, scopeKey)
	if err != nil {
		return nil, nil, err
	}
	reviews, failures := domain.SplitRecords(records)
	if reviews == nil {
		reviews = []domain.Record{}
	}
	if failures == nil {
		failures = []domain.Record{}
	}
	return reviews, failures, nil
}
