package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain/domaintest"
)

func newMirrorWithMock(t *testing.T) (*RecordMirror, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	mirror := NewRecordMirror(db)
	mirror.now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }
	return mirror, mock, func() { _ = db.Close() }
}

func TestRecordCommittedUpsertsReview(t *testing.T) {
	mirror, mock, done := newMirrorWithMock(t)
	defer done()

	rec := domain.ReviewRecord("POL10100.pdf", domaintest.Review("POL 10100", domain.DecisionApproved))
	mock.ExpectExec("INSERT INTO syllabus_records").
		WithArgs("POL", "POL10100.pdf", false, nil, "POL 10100", "approved", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := mirror.RecordCommitted(context.Background(), "POL", rec); err != nil {
		t.Fatalf("RecordCommitted() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordCommittedUpsertsErrorRecord(t *testing.T) {
	mirror, mock, done := newMirrorWithMock(t)
	defer done()

	rec := domain.ErrorRecord("ABE20100.docx", errors.New("schema error: course_analysis.review_decision: missing"))
	mock.ExpectExec("INSERT INTO syllabus_records").
		WithArgs("ABE", "ABE20100.docx", true, rec.Error, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := mirror.RecordCommitted(context.Background(), "ABE", rec); err != nil {
		t.Fatalf("RecordCommitted() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordCommittedReportsDatabaseError(t *testing.T) {
	mirror, mock, done := newMirrorWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO syllabus_records").WillReturnError(errors.New("connection reset"))

	err := mirror.RecordCommitted(context.Background(), "POL", domain.ErrorRecord("A1.pdf", errors.New("x")))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	mirror, mock, done := newMirrorWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs(int64(2026101601)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS syllabus_records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := mirror.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
