package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/slidespace/backend/internal/core/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentGetOwnedForeignDocumentIsForbidden(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "stored_filename", "mime_type", "created_at"}).
		AddRow("doc-1", "owner-1", "report", "uploads/1_report.pdf", domain.MimePDF, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, title, stored_filename, mime_type, created_at")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	_, err := repo.GetOwned(context.Background(), "doc-1", "intruder")
	if !domain.IsKind(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestDocumentGetOwnedMissingDocumentIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, title, stored_filename, mime_type, created_at")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetOwned(context.Background(), "missing", "owner-1")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestWorkflowSaveUpserts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkflowRepository(db)

	state := &domain.WorkflowState{
		DocumentID:     "doc-1",
		Stage:          domain.StageTitlesExtracted,
		MLSessionID:    "handle-7",
		NextTitleIndex: 5,
		UpdatedAt:      time.Now(),
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO workflow_states")).
		WithArgs(state.DocumentID, string(state.Stage), state.MLSessionID, state.TitlesSaved, state.NextTitleIndex, state.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), state); err != nil {
		t.Fatalf("save workflow: %v", err)
	}
	expectationsMet(t, mock)
}

func TestWorkflowGetMapsStage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkflowRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"document_id", "stage", "ml_session_id", "titles_saved", "next_title_index", "updated_at"}).
		AddRow("doc-1", "titles_saved", "handle-7", true, 4, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM workflow_states")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	state, err := repo.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("get workflow: %v", err)
	}
	if state.Stage != domain.StageTitlesSaved || !state.TitlesSaved || state.NextTitleIndex != 4 {
		t.Fatalf("unexpected state: %+v", state)
	}
	expectationsMet(t, mock)
}

func TestTitleReplaceWritesEntriesAsJSON(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTitleRepository(db)

	set := &domain.TitleSet{
		DocumentID: "doc-1",
		Entries: []domain.TitleEntry{
			{Index: 0, Title: "Introduction"},
			{Index: 5, Title: "Summary"},
		},
		UpdatedAt: time.Now(),
	}
	payload := []byte(`[{"index":0,"title":"Introduction"},{"index":5,"title":"Summary"}]`)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_titles")).
		WithArgs("doc-1", payload, set.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Replace(context.Background(), set); err != nil {
		t.Fatalf("replace titles: %v", err)
	}
	expectationsMet(t, mock)
}

func TestTitleGetRoundTrip(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTitleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"titles", "updated_at"}).
		AddRow([]byte(`[{"index":2,"title":"Methods"}]`), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM document_titles")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	set, err := repo.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("get titles: %v", err)
	}
	if len(set.Entries) != 1 || set.Entries[0].Index != 2 || set.Entries[0].Title != "Methods" {
		t.Fatalf("unexpected entries: %+v", set.Entries)
	}
	expectationsMet(t, mock)
}

func TestSlideDeckReplaceReturnsPreviousPath(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSlideDeckRepository(db)

	rows := sqlmock.NewRows([]string{"content_path"}).AddRow("slides/doc-1_old.json")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO slide_decks")).
		WithArgs("doc-1", "slides/doc-1_new.json", sqlmock.AnyArg()).
		WillReturnRows(rows)

	previous, err := repo.Replace(context.Background(), "doc-1", "slides/doc-1_new.json")
	if err != nil {
		t.Fatalf("replace deck: %v", err)
	}
	if previous != "slides/doc-1_old.json" {
		t.Fatalf("previous path = %q", previous)
	}
	expectationsMet(t, mock)
}

func TestSlideDeckReplaceFirstWriteHasNoPrevious(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSlideDeckRepository(db)

	rows := sqlmock.NewRows([]string{"content_path"}).AddRow(nil)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO slide_decks")).
		WithArgs("doc-1", "slides/doc-1.json", sqlmock.AnyArg()).
		WillReturnRows(rows)

	previous, err := repo.Replace(context.Background(), "doc-1", "slides/doc-1.json")
	if err != nil {
		t.Fatalf("replace deck: %v", err)
	}
	if previous != "" {
		t.Fatalf("previous path = %q, want empty", previous)
	}
	expectationsMet(t, mock)
}

func TestSlideDeckDeleteMissingRowIsNoop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSlideDeckRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM slide_decks")).
		WithArgs("doc-1").
		WillReturnError(sql.ErrNoRows)

	previous, err := repo.Delete(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("delete deck: %v", err)
	}
	if previous != "" {
		t.Fatalf("previous path = %q, want empty", previous)
	}
	expectationsMet(t, mock)
}

func TestArtifactGetOwnedForeignOwnerIsForbidden(t *testing.T) {
	db, mock := newMock(t)
	repo := NewArtifactRepository(db)

	rows := sqlmock.NewRows([]string{"id", "document_id", "variant", "filename", "created_at", "user_id"}).
		AddRow("art-1", "doc-1", "default", "default_pptx_doc-1_1.pptx", time.Now(), "owner-1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM pptx_artifacts a")).
		WithArgs("art-1").
		WillReturnRows(rows)

	_, err := repo.GetOwned(context.Background(), "art-1", "intruder", "")
	if !domain.IsKind(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestArtifactGetOwnedVariantMismatchIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewArtifactRepository(db)

	rows := sqlmock.NewRows([]string{"id", "document_id", "variant", "filename", "created_at", "user_id"}).
		AddRow("art-1", "doc-1", "default", "default_pptx_doc-1_1.pptx", time.Now(), "owner-1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM pptx_artifacts a")).
		WithArgs("art-1").
		WillReturnRows(rows)

	_, err := repo.GetOwned(context.Background(), "art-1", "owner-1", domain.VariantGA)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestArtifactListOwnedFiltersByVariant(t *testing.T) {
	db, mock := newMock(t)
	repo := NewArtifactRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "document_id", "variant", "filename", "created_at"}).
		AddRow("art-2", "doc-1", "ga", "ga_pptx_doc-1_2.pptx", now).
		AddRow("art-1", "doc-1", "ga", "ga_pptx_doc-1_1.pptx", now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("FROM pptx_artifacts a")).
		WithArgs("doc-1", "owner-1", "ga").
		WillReturnRows(rows)

	artifacts, err := repo.ListOwned(context.Background(), "doc-1", "owner-1", domain.VariantGA)
	if err != nil {
		t.Fatalf("list artifacts: %v", err)
	}
	if len(artifacts) != 2 || artifacts[0].ID != "art-2" {
		t.Fatalf("unexpected artifacts: %+v", artifacts)
	}
	expectationsMet(t, mock)
}

func TestUserCreateDuplicateEmailIsInvalidInput(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	user := &domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: domain.RoleUser, CreatedAt: time.Now()}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, "user", user.CreatedAt).
		WillReturnError(errForTest("duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), user)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUsageReportNullLastUploadStaysZero(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"name", "email", "documents", "exports", "last_upload"}).
		AddRow("Ada", "ada@example.com", 3, 5, time.Now()).
		AddRow("Ben", "ben@example.com", 0, 0, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users u")).
		WithArgs(100).
		WillReturnRows(rows)

	report, err := repo.UsageReport(context.Background(), 100)
	if err != nil {
		t.Fatalf("usage report: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("rows = %d, want 2", len(report))
	}
	if !report[1].LastUploadAt.IsZero() {
		t.Fatalf("expected zero last upload, got %v", report[1].LastUploadAt)
	}
	expectationsMet(t, mock)
}

type errForTest string

func (e errForTest) Error() string { return string(e) }
