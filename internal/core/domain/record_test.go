package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain/domaintest"
)

func TestRecordJSONShape(t *testing.T) {
	rec := domain.ReviewRecord("POL10100_Spring2026_X.pdf", domaintest.Review("POL 10100", domain.DecisionApproved))
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if tree["_source_file"] != "POL10100_Spring2026_X.pdf" {
		t.Fatalf("expected _source_file tag, got %v", tree["_source_file"])
	}
	if _, ok := tree["course_analysis"]; !ok {
		t.Fatalf("expected course_analysis in %s", raw)
	}
	if _, ok := tree["_error"]; ok {
		t.Fatalf("review record must not carry _error")
	}

	errRec := domain.ErrorRecord("ABE20100.docx", errors.New("service error: 529 overloaded"))
	raw, err = json.Marshal(errRec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `{"_source_file":"ABE20100.docx","_error":"service error: 529 overloaded"}` {
		t.Fatalf("unexpected error record json: %s", raw)
	}
}

func TestRecordRoundTripKeepsStoredBytes(t *testing.T) {
	stored := `{"course_information":{"course_number":"X 1","course_title":null,"department":null,"college":null,"review_date":null},` +
		`"course_analysis":{"review_decision":{"decision":"deferred","rationale":"r"}},"legacy_field":true,"_source_file":"X1.pdf"}`

	var rec domain.Record
	if err := json.Unmarshal([]byte(stored), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if rec.IsError() || rec.SourceFile != "X1.pdf" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Review.CourseAnalysis.ReviewDecision.Decision != domain.DecisionDeferred {
		t.Fatalf("expected decoded decision")
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != stored {
		t.Fatalf("stored element was rewritten:\n%s\n%s", stored, out)
	}
}

func TestRecordUnmarshalErrorRecord(t *testing.T) {
	var rec domain.Record
	if err := json.Unmarshal([]byte(`{"_source_file":"A1.pdf","_error":"boom"}`), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !rec.IsError() || rec.Error != "boom" {
		t.Fatalf("expected error record, got %+v", rec)
	}
}

func TestRecordUnmarshalNullErrorIsStillErrorRecord(t *testing.T) {
	var records []domain.Record
	data := `[{"_source_file":"A1.pdf","_error":null},{"_source_file":"A2.pdf","_error":""}]`
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, rec := range records {
		if !rec.IsError() || rec.Review != nil {
			t.Fatalf("expected error record for %s, got %+v", rec.SourceFile, rec)
		}
	}
	if records[0].Error != "null" {
		t.Fatalf("Error = %q, want raw value", records[0].Error)
	}

	reviews, failures := domain.SplitRecords(records)
	if len(reviews) != 0 || len(failures) != 2 {
		t.Fatalf("unexpected split: %d reviews, %d failures", len(reviews), len(failures))
	}
	if summary := domain.Summarize("A", records); summary.Reviews != 0 || summary.Errors != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRecordUnmarshalRequiresSourceFile(t *testing.T) {
	var rec domain.Record
	err := json.Unmarshal([]byte(`{"_error":"boom"}`), &rec)
	if err == nil || !strings.Contains(err.Error(), "_source_file") {
		t.Fatalf("expected missing _source_file error, got %v", err)
	}
}

func TestCompletedKeysAndSplit(t *testing.T) {
	records := []domain.Record{
		domain.ReviewRecord("A1.pdf", domaintest.Review("A 1", domain.DecisionApproved)),
		domain.ErrorRecord("A2.pdf", errors.New("bad")),
		domain.ReviewRecord("A3.pdf", domaintest.Review("A 3", domain.DecisionNotApproved)),
	}
	done := domain.CompletedKeys(records)
	for _, key := range []string{"A1.pdf", "A2.pdf", "A3.pdf"} {
		if _, ok := done[key]; !ok {
			t.Fatalf("expected %s in completed keys", key)
		}
	}

	reviews, failures := domain.SplitRecords(records)
	if len(reviews) != 2 || len(failures) != 1 || failures[0].SourceFile != "A2.pdf" {
		t.Fatalf("unexpected split: %d reviews, %d failures", len(reviews), len(failures))
	}
}
