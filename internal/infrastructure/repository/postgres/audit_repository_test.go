package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/finsolve/knowledge-assistant/internal/core/ports"
)

func newRepoWithMock(t *testing.T) (*AuditRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &AuditRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestRecordQueryInsertsOutcomeRow(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO query_audit").
		WithArgs("finance", 42, false, 5, int64(120), "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.RecordQuery(context.Background(), ports.AuditEntry{
		CallerRole:     "finance",
		QuestionLength: 42,
		RetrievedCount: 5,
		DurationMillis: 120,
	})
	if err != nil {
		t.Fatalf("RecordQuery() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordQueryPersistsDenialWithErrorKind(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO query_audit").
		WithArgs("unknown_role", 17, true, 0, int64(3), "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.RecordQuery(context.Background(), ports.AuditEntry{
		CallerRole:     "unknown_role",
		QuestionLength: 17,
		Denied:         true,
		DurationMillis: 3,
	})
	if err != nil {
		t.Fatalf("RecordQuery() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordQueryWrapsDriverError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO query_audit").
		WillReturnError(errors.New("connection reset"))

	if err := repo.RecordQuery(context.Background(), ports.AuditEntry{CallerRole: "hr"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(int64(2026083101)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS query_audit").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
