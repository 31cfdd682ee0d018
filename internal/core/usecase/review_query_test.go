package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain/domaintest"
)

func seededStore() *storeFake {
	store := newStoreFake()
	store.records["ABE"] = []domain.Record{
		domain.ReviewRecord("ABE20100_a.pdf", domaintest.Review("ABE 20100", domain.DecisionApproved)),
		domain.ErrorRecord("ABE30000_b.pdf", errors.New("parse error")),
	}
	store.records["POL"] = []domain.Record{
		domain.ReviewRecord("POL10100_a.pdf", domaintest.Review("POL 10100", domain.DecisionDeferred)),
	}
	return store
}

func TestReviewQueryScopes(t *testing.T) {
	svc := NewReviewQueryService(seededStore(), catalogFake{}, nil)

	scopes, err := svc.Scopes(context.Background())
	if err != nil {
		t.Fatalf("Scopes() error = %v", err)
	}
	want := []domain.ScopeOverview{
		{Scope: "ABE", Reviews: 1, Errors: 1},
		{Scope: "POL", Reviews: 1, Errors: 0},
	}
	if diff := cmp.Diff(want, scopes); diff != "" {
		t.Fatalf("unexpected scopes (-want +got):\n%s", diff)
	}
}

func TestReviewQuerySeparatesErrors(t *testing.T) {
	svc := NewReviewQueryService(seededStore(), catalogFake{}, nil)

	records, err := svc.Records(context.Background(), "ABE")
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if diff := cmp.Diff([]string{"ABE20100_a.pdf"}, sourceFiles(records)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}

	failures, err := svc.Errors(context.Background(), "POL")
	if err != nil {
		t.Fatalf("Errors() error = %v", err)
	}
	if failures == nil || len(failures) != 0 {
		t.Fatalf("expected empty, non-nil error list, got %v", failures)
	}

	summary, err := svc.Summary(context.Background(), "ABE")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Reviews != 1 || summary.Errors != 1 || summary.Decisions[domain.DecisionApproved] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestReviewQueryUnknownScope(t *testing.T) {
	svc := NewReviewQueryService(seededStore(), catalogFake{}, nil)
	if _, err := svc.Records(context.Background(), "CS"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReviewQueryProgramView(t *testing.T) {
	catalog := catalogFake{"Honors": {"ABE 201", "POL 101", "XYZ 999"}}
	discoverer := &discovererFake{docs: docs("ABE20100_a.pdf", "POL10100_a.pdf")}
	missing := NewMissingCoursesUseCase(catalog, discoverer, &missingWriterFake{})
	svc := NewReviewQueryService(seededStore(), catalog, missing)

	view, err := svc.ProgramView(context.Background(), "Honors")
	if err != nil {
		t.Fatalf("ProgramView() error = %v", err)
	}
	if diff := cmp.Diff([]string{"ABE20100_a.pdf", "POL10100_a.pdf"}, sourceFiles(view.Records)); diff != "" {
		t.Fatalf("unexpected program records (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"XYZ 999"}, view.Missing.MissingCourses); diff != "" {
		t.Fatalf("unexpected missing courses (-want +got):\n%s", diff)
	}

	if _, err := svc.ProgramView(context.Background(), "Nope"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
