package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain/domaintest"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
)

type discovererFake struct {
	docs   []domain.InputDocument
	err    error
	scopes []domain.Scope
}

func (f *discovererFake) Discover(_ context.Context, scope domain.Scope) ([]domain.InputDocument, error) {
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return nil, f.err
	}
	match := scope.Matcher()
	out := make([]domain.InputDocument, 0)
	for _, doc := range f.docs {
		if match(doc.Name) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type clientFake struct {
	responses map[string]string
	errs      map[string]error
	onSubmit  func(doc domain.InputDocument)
	calls     []string
}

func (f *clientFake) Submit(_ context.Context, doc domain.InputDocument) (string, error) {
	f.calls = append(f.calls, doc.Key())
	if f.onSubmit != nil {
		f.onSubmit(doc)
	}
	if err, ok := f.errs[doc.Key()]; ok {
		return "", err
	}
	if raw, ok := f.responses[doc.Key()]; ok {
		return raw, nil
	}
	return domaintest.ReviewJSON(domain.CourseCodeOf(doc.Name), domain.DecisionApproved), nil
}

type storeFake struct {
	records map[string][]domain.Record
	loadErr error
	// failAfter makes Append fail once this many records were appended.
	failAfter int
	appended  int
}

func newStoreFake() *storeFake {
	return &storeFake{records: map[string][]domain.Record{}, failAfter: -1}
}

func (f *storeFake) Load(_ context.Context, scopeKey string) ([]domain.Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]domain.Record(nil), f.records[scopeKey]...), nil
}

func (f *storeFake) CompletedKeys(ctx context.Context, scopeKey string) (map[string]struct{}, error) {
	records, err := f.Load(ctx, scopeKey)
	if err != nil {
		return nil, err
	}
	return domain.CompletedKeys(records), nil
}

func (f *storeFake) Append(_ context.Context, scopeKey string, rec domain.Record) error {
	if f.failAfter >= 0 && f.appended >= f.failAfter {
		return domain.WrapError(domain.ErrStore, "write results", errors.New("disk full"))
	}
	f.records[scopeKey] = append(f.records[scopeKey], rec)
	f.appended++
	return nil
}

func (f *storeFake) ListScopes(context.Context) ([]string, error) {
	return sortedKeys(f.records), nil
}

type catalogFake map[string][]string

func (f catalogFake) Programs(context.Context) ([]string, error) {
	return sortedKeys(f), nil
}

func (f catalogFake) Courses(_ context.Context, program string) ([]string, error) {
	courses, ok := f[program]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "lookup program", fmt.Errorf("unknown program %q", program))
	}
	return courses, nil
}

type observerFake struct {
	err       error
	committed []string
}

func (f *observerFake) RecordCommitted(_ context.Context, scopeKey string, rec domain.Record) error {
	f.committed = append(f.committed, scopeKey+"/"+rec.SourceFile)
	return f.err
}

type metricsFake struct {
	skipped   int
	started   int
	committed map[string]int
}

func (f *metricsFake) ItemSkipped(string) { f.skipped++ }
func (f *metricsFake) ItemStarted(string) { f.started++ }
func (f *metricsFake) ItemCommitted(_ string, outcome, _ string, _ time.Duration) {
	if f.committed == nil {
		f.committed = map[string]int{}
	}
	f.committed[outcome]++
}

func docs(names ...string) []domain.InputDocument {
	out := make([]domain.InputDocument, 0, len(names))
	for _, name := range names {
		format, _ := domain.FormatOf(name)
		out = append(out, domain.InputDocument{Name: name, RelPath: name, Path: "/syllabi/" + name, Format: format})
	}
	return out
}

func sourceFiles(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.SourceFile)
	}
	return out
}

func TestAnalyzeDepartmentIsolatesItemFailures(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "POL20000_b.docx", "POL30000_c.pdf", "ABE20100_x.pdf")}
	client := &clientFake{responses: map[string]string{"POL20000_b.docx": `{"course_information": {}}`}}
	store := newStoreFake()
	metrics := &metricsFake{}

	var events []domain.ItemEvent
	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{
		Metrics:  metrics,
		Progress: func(ev domain.ItemEvent) { events = append(events, ev) },
	})

	result, err := uc.AnalyzeDepartment(context.Background(), " pol ")
	if err != nil {
		t.Fatalf("AnalyzeDepartment() error = %v", err)
	}

	want := domain.BatchResult{Scope: "POL", Discovered: 3, Reviewed: 2, Failed: 1, TotalRecords: 3}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	records := store.records["POL"]
	if diff := cmp.Diff([]string{"POL10100_a.pdf", "POL20000_b.docx", "POL30000_c.pdf"}, sourceFiles(records)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
	if !records[1].IsError() || records[0].IsError() || records[2].IsError() {
		t.Fatalf("expected only the second record to be an error record")
	}
	if len(client.calls) != 3 {
		t.Fatalf("expected 3 judgment calls, got %d", len(client.calls))
	}
	if metrics.committed["reviewed"] != 2 || metrics.committed["error"] != 1 {
		t.Fatalf("unexpected metrics: %+v", metrics.committed)
	}
	if len(events) != 6 || events[0].Outcome != domain.OutcomeStarted {
		t.Fatalf("expected started and terminal events per item, got %+v", events)
	}
	if events[3].Outcome != domain.OutcomeError || !domain.IsKind(events[3].Err, domain.ErrSchema) {
		t.Fatalf("unexpected progress events: %+v", events)
	}
}

func TestAnalyzeDepartmentRecordsServiceErrorVerbatim(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf")}
	serviceErr := domain.WrapError(domain.ErrService, "submit judgment", errors.New("529 overloaded"))
	client := &clientFake{errs: map[string]error{"POL10100_a.pdf": serviceErr}}
	store := newStoreFake()

	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{})
	if _, err := uc.AnalyzeDepartment(context.Background(), "POL"); err != nil {
		t.Fatalf("AnalyzeDepartment() error = %v", err)
	}

	rec := store.records["POL"][0]
	if !rec.IsError() || rec.Error != serviceErr.Error() {
		t.Fatalf("expected verbatim service error, got %+v", rec)
	}
}

func TestAnalyzeDepartmentResumeIsIdempotent(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "POL20000_b.pdf")}
	client := &clientFake{}
	store := newStoreFake()
	metrics := &metricsFake{}
	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{Metrics: metrics})

	if _, err := uc.AnalyzeDepartment(context.Background(), "POL"); err != nil {
		t.Fatalf("first AnalyzeDepartment() error = %v", err)
	}
	before := sourceFiles(store.records["POL"])

	result, err := uc.AnalyzeDepartment(context.Background(), "POL")
	if err != nil {
		t.Fatalf("second AnalyzeDepartment() error = %v", err)
	}
	if result.Skipped != 2 || result.Processed() != 0 || result.TotalRecords != 2 {
		t.Fatalf("unexpected second run result: %+v", result)
	}
	if len(client.calls) != 2 {
		t.Fatalf("second run must not call the service, got %d calls", len(client.calls))
	}
	if diff := cmp.Diff(before, sourceFiles(store.records["POL"])); diff != "" {
		t.Fatalf("store changed on resume (-before +after):\n%s", diff)
	}
	if metrics.skipped != 2 {
		t.Fatalf("expected 2 skipped items, got %d", metrics.skipped)
	}
}

func TestAnalyzeDepartmentErrorRecordsAreNotRetried(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf")}
	client := &clientFake{responses: map[string]string{"POL10100_a.pdf": "not json"}}
	store := newStoreFake()
	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{})

	for i := 0; i < 2; i++ {
		if _, err := uc.AnalyzeDepartment(context.Background(), "POL"); err != nil {
			t.Fatalf("AnalyzeDepartment() error = %v", err)
		}
	}
	if len(client.calls) != 1 || len(store.records["POL"]) != 1 {
		t.Fatalf("error record must count as done: %d calls, %d records", len(client.calls), len(store.records["POL"]))
	}
}

func TestAnalyzeDepartmentCrashRecovery(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "POL20000_b.pdf", "POL30000_c.pdf", "POL40000_d.pdf")}
	client := &clientFake{}
	store := newStoreFake()
	store.failAfter = 2
	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{})

	result, err := uc.AnalyzeDepartment(context.Background(), "POL")
	if !domain.IsKind(err, domain.ErrStore) {
		t.Fatalf("expected store failure to abort the batch, got %v", err)
	}
	if result.Reviewed != 2 || len(store.records["POL"]) != 2 {
		t.Fatalf("expected 2 committed items before the failure, got %+v", result)
	}

	store.failAfter = -1
	client.calls = nil
	result, err = uc.AnalyzeDepartment(context.Background(), "POL")
	if err != nil {
		t.Fatalf("AnalyzeDepartment() error = %v", err)
	}
	if result.Skipped != 2 || result.Reviewed != 2 || result.TotalRecords != 4 {
		t.Fatalf("unexpected resumed result: %+v", result)
	}
	if diff := cmp.Diff([]string{"POL30000_c.pdf", "POL40000_d.pdf"}, client.calls); diff != "" {
		t.Fatalf("resume must process only remaining items (-want +got):\n%s", diff)
	}
	want := []string{"POL10100_a.pdf", "POL20000_b.pdf", "POL30000_c.pdf", "POL40000_d.pdf"}
	if diff := cmp.Diff(want, sourceFiles(store.records["POL"])); diff != "" {
		t.Fatalf("unexpected final store (-want +got):\n%s", diff)
	}
}

func TestAnalyzeDepartmentRecordsOpenBreakerAndContinues(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "POL20000_b.pdf", "POL30000_c.pdf")}
	breakerOpen := &domain.ServiceError{Backend: "anthropic", Err: errors.New("circuit breaker is open")}
	client := &clientFake{
		errs: map[string]error{"POL10100_a.pdf": breakerOpen, "POL20000_b.pdf": breakerOpen},
		responses: map[string]string{
			"POL30000_c.pdf": domaintest.ReviewJSON("POL 30000", domain.DecisionApproved),
		},
	}
	store := newStoreFake()
	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{})

	result, err := uc.AnalyzeDepartment(context.Background(), "POL")
	if err != nil {
		t.Fatalf("AnalyzeDepartment() error = %v", err)
	}
	if result.Failed != 2 || result.Reviewed != 1 || result.TotalRecords != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	records := store.records["POL"]
	if records[0].Error != "anthropic: circuit breaker is open" || records[2].IsError() {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestAnalyzeDepartmentCancellationLeavesItemPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "POL20000_b.pdf")}
	client := &clientFake{
		errs: map[string]error{
			"POL20000_b.pdf": domain.WrapError(domain.ErrService, "submit judgment", context.Canceled),
		},
		onSubmit: func(doc domain.InputDocument) {
			if doc.Name == "POL20000_b.pdf" {
				cancel()
			}
		},
	}
	store := newStoreFake()
	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{})

	_, err := uc.AnalyzeDepartment(ctx, "POL")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if diff := cmp.Diff([]string{"POL10100_a.pdf"}, sourceFiles(store.records["POL"])); diff != "" {
		t.Fatalf("in-flight item must not be recorded (-want +got):\n%s", diff)
	}
}

func TestAnalyzeDepartmentRejectsEmptyDepartment(t *testing.T) {
	uc := NewAnalyzeUseCase(&discovererFake{}, &clientFake{}, newStoreFake(), catalogFake{}, AnalyzeHooks{})
	if _, err := uc.AnalyzeDepartment(context.Background(), "  "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAnalyzeDepartmentEmptyScopeReportsZeroWork(t *testing.T) {
	store := newStoreFake()
	uc := NewAnalyzeUseCase(&discovererFake{}, &clientFake{}, store, catalogFake{}, AnalyzeHooks{})

	result, err := uc.AnalyzeDepartment(context.Background(), "CS")
	if err != nil {
		t.Fatalf("AnalyzeDepartment() error = %v", err)
	}
	if result.Discovered != 0 || result.Processed() != 0 {
		t.Fatalf("expected zero work, got %+v", result)
	}
	if _, ok := store.records["CS"]; ok {
		t.Fatalf("empty scope must not create a result file")
	}
}

func TestAnalyzeDepartmentLoadFailureIsStoreError(t *testing.T) {
	store := newStoreFake()
	store.loadErr = errors.New("permission denied")
	uc := NewAnalyzeUseCase(&discovererFake{docs: docs("POL10100_a.pdf")}, &clientFake{}, store, catalogFake{}, AnalyzeHooks{})

	if _, err := uc.AnalyzeDepartment(context.Background(), "POL"); !domain.IsKind(err, domain.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAnalyzeDepartmentObserverFailureDoesNotStopBatch(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "POL20000_b.pdf")}
	store := newStoreFake()
	observer := &observerFake{err: errors.New("nats down")}
	uc := NewAnalyzeUseCase(discoverer, &clientFake{}, store, catalogFake{}, AnalyzeHooks{
		Observers: []ports.CommitObserver{observer},
	})

	result, err := uc.AnalyzeDepartment(context.Background(), "POL")
	if err != nil {
		t.Fatalf("AnalyzeDepartment() error = %v", err)
	}
	if result.Reviewed != 2 || len(observer.committed) != 2 {
		t.Fatalf("expected both items committed and observed, got %+v / %v", result, observer.committed)
	}
}

func TestAnalyzeProgramFansOutByDepartment(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "ABE30000_c.pdf", "ABE20100_b.docx", "CS18000_z.pdf")}
	client := &clientFake{}
	store := newStoreFake()
	catalog := catalogFake{"Honors": {"POL 101", "ABE 201", "ABE 300", "XYZ 999"}}
	uc := NewAnalyzeUseCase(discoverer, client, store, catalog, AnalyzeHooks{})

	result, err := uc.AnalyzeProgram(context.Background(), "Honors")
	if err != nil {
		t.Fatalf("AnalyzeProgram() error = %v", err)
	}

	var scopes []string
	for _, d := range result.Departments {
		scopes = append(scopes, d.Scope)
	}
	if diff := cmp.Diff([]string{"ABE", "POL"}, scopes); diff != "" {
		t.Fatalf("unexpected department order (-want +got):\n%s", diff)
	}
	if result.TotalRecords() != 3 {
		t.Fatalf("expected 3 total records, got %d", result.TotalRecords())
	}
	if diff := cmp.Diff([]string{"ABE20100_b.docx", "ABE30000_c.pdf"}, sourceFiles(store.records["ABE"])); diff != "" {
		t.Fatalf("unexpected ABE records (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ABE20100_b.docx", "ABE30000_c.pdf", "POL10100_a.pdf"}, client.calls); diff != "" {
		t.Fatalf("unexpected call order (-want +got):\n%s", diff)
	}
}

func TestAnalyzeProgramUnknownProgram(t *testing.T) {
	uc := NewAnalyzeUseCase(&discovererFake{}, &clientFake{}, newStoreFake(), catalogFake{}, AnalyzeHooks{})
	if _, err := uc.AnalyzeProgram(context.Background(), "Nope"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnalyzeAllProcessesEveryDepartmentSorted(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "ABE20100_b.pdf", "readme.pdf")}
	store := newStoreFake()
	uc := NewAnalyzeUseCase(discoverer, &clientFake{}, store, catalogFake{}, AnalyzeHooks{})

	results, err := uc.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeAll() error = %v", err)
	}
	if len(results) != 2 || results[0].Scope != "ABE" || results[1].Scope != "POL" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestAnalyzeAllWithExplicitDepartments(t *testing.T) {
	discoverer := &discovererFake{docs: docs("POL10100_a.pdf", "ABE20100_b.pdf", "CS18000_c.pdf")}
	client := &clientFake{}
	store := newStoreFake()
	uc := NewAnalyzeUseCase(discoverer, client, store, catalogFake{}, AnalyzeHooks{})

	results, err := uc.AnalyzeAll(context.Background(), "pol", "CS", "POL")
	if err != nil {
		t.Fatalf("AnalyzeAll() error = %v", err)
	}
	if len(results) != 2 || results[0].Scope != "POL" || results[1].Scope != "CS" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if _, ok := store.records["ABE"]; ok {
		t.Fatalf("unlisted department must not be processed")
	}
}
