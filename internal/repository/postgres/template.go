package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/bee-importer/internal/domain"
	"github.com/ignite/bee-importer/internal/pkg/distlock"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// TemplateRepo implements conversion.Repository against PostgreSQL.
type TemplateRepo struct{ db *sql.DB }

// NewTemplateRepo creates a Postgres-backed template repository.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

// CreateTemplate validates t, checks the (organization, name) pair is free
// and inserts the record in one transaction. A transaction-scoped advisory
// lock on the pair serializes concurrent writers on the same connection
// that performs the insert.
func (r *TemplateRepo) CreateTemplate(ctx context.Context, t *domain.EmailTemplate) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.EditorType == "" {
		t.EditorType = domain.EditorVisual
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := distlock.LockTx(ctx, tx, distlock.ImportKey(t.OrganizationID, t.Name)); err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM email_templates
			WHERE organization_id = $1 AND name = $2
		)
	`, t.OrganizationID, t.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check template name: %w", err)
	}
	if exists {
		return conversion.ErrDuplicateName
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO email_templates
			(id, organization_id, name, editor_type, bee_editor_json, content,
			 subject, category, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, t.ID, t.OrganizationID, t.Name, t.EditorType, []byte(t.BeeEditorJSON), t.Content,
		t.Subject, t.Category, t.CreatedBy, t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return conversion.ErrDuplicateName
		}
		return fmt.Errorf("insert template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit template: %w", err)
	}
	return nil
}

func (r *TemplateRepo) GetTemplate(ctx context.Context, orgID, id string) (*domain.EmailTemplate, error) {
	t := &domain.EmailTemplate{}
	var (
		raw       []byte
		content   sql.NullString
		createdBy sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, organization_id, name, editor_type, bee_editor_json, content,
		       subject, category, created_by, created_at
		FROM email_templates
		WHERE id = $1 AND organization_id = $2
	`, id, orgID).Scan(
		&t.ID, &t.OrganizationID, &t.Name, &t.EditorType, &raw, &content,
		&t.Subject, &t.Category, &createdBy, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, conversion.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	t.BeeEditorJSON = raw
	if content.Valid {
		t.Content = &content.String
	}
	if createdBy.Valid {
		t.CreatedBy = &createdBy.String
	}
	return t, nil
}
