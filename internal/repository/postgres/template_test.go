package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/bee-importer/internal/domain"
	"github.com/ignite/bee-importer/internal/pkg/distlock"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectLock(mock sqlmock.Sqlmock, orgID, name string) {
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(distlock.KeyID(distlock.ImportKey(orgID, name))).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func sampleTemplate() *domain.EmailTemplate {
	content := "<html><body></body></html>"
	return &domain.EmailTemplate{
		ID:             "tmpl-1",
		OrganizationID: "org-1",
		Name:           "Welcome",
		EditorType:     domain.EditorVisual,
		BeeEditorJSON:  json.RawMessage(`{"page":{}}`),
		Content:        &content,
		Subject:        "Hello",
		Category:       "Other",
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateTemplate(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)
	tmpl := sampleTemplate()

	mock.ExpectBegin()
	expectLock(mock, "org-1", "Welcome")
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("org-1", "Welcome").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO email_templates`).
		WithArgs("tmpl-1", "org-1", "Welcome", domain.EditorVisual, []byte(`{"page":{}}`), tmpl.Content,
			"Hello", "Other", tmpl.CreatedBy, tmpl.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateTemplate(context.Background(), tmpl))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTemplate_Duplicate(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)

	mock.ExpectBegin()
	expectLock(mock, "org-1", "Welcome")
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.CreateTemplate(context.Background(), sampleTemplate())
	assert.ErrorIs(t, err, conversion.ErrDuplicateName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTemplate_UniqueViolationRace(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)

	mock.ExpectBegin()
	expectLock(mock, "org-1", "Welcome")
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO email_templates`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateTemplate(context.Background(), sampleTemplate())
	assert.ErrorIs(t, err, conversion.ErrDuplicateName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTemplate_InsertFailureRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)

	mock.ExpectBegin()
	expectLock(mock, "org-1", "Welcome")
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO email_templates`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateTemplate(context.Background(), sampleTemplate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTemplate_InvalidNeverTouchesDB(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)

	tmpl := sampleTemplate()
	tmpl.Subject = ""
	err := repo.CreateTemplate(context.Background(), tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject is required")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTemplate(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, organization_id, name`).
		WithArgs("tmpl-1", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization_id", "name", "editor_type", "bee_editor_json", "content",
			"subject", "category", "created_by", "created_at",
		}).AddRow("tmpl-1", "org-1", "Welcome", "visual", []byte(`{"page":{}}`), nil,
			"Hello", "Other", "user-7", created))

	got, err := repo.GetTemplate(context.Background(), "org-1", "tmpl-1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", got.Name)
	assert.Equal(t, domain.EditorVisual, got.EditorType)
	assert.JSONEq(t, `{"page":{}}`, string(got.BeeEditorJSON))
	assert.Nil(t, got.Content)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "user-7", *got.CreatedBy)
	assert.Equal(t, created, got.CreatedAt)
}

func TestGetTemplate_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)

	mock.ExpectQuery(`SELECT id, organization_id, name`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTemplate(context.Background(), "org-1", "missing")
	assert.ErrorIs(t, err, conversion.ErrNotFound)
}

func TestCreateTemplate_LockFailureRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTemplateRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnError(errors.New("canceling statement due to statement timeout"))
	mock.ExpectRollback()

	err := repo.CreateTemplate(context.Background(), sampleTemplate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "advisory lock")
	require.NoError(t, mock.ExpectationsWereMet())
}
