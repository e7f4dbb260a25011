package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// EditorType identifies which editor owns a template's content.
type EditorType string

const (
	EditorVisual EditorType = "visual"
	EditorHTML   EditorType = "html"
)

// DefaultCategory is used when an import does not name a category.
const DefaultCategory = "Other"

// EmailTemplate is a reusable template record created from an HTML import.
// It is created exactly once per successful conversion and never mutated by
// the import pipeline afterwards.
type EmailTemplate struct {
	ID             string          `json:"id" db:"id"`
	OrganizationID string          `json:"organization_id" db:"organization_id"`
	Name           string          `json:"name" db:"name"`
	EditorType     EditorType      `json:"editor_type" db:"editor_type"`
	BeeEditorJSON  json.RawMessage `json:"bee_editor_json" db:"bee_editor_json"`
	Content        *string         `json:"content,omitempty" db:"content"`
	Subject        string          `json:"subject" db:"subject"`
	Category       string          `json:"category" db:"category"`
	CreatedBy      *string         `json:"created_by,omitempty" db:"created_by"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Validate checks the fields every stored template must carry.
func (t *EmailTemplate) Validate() error {
	switch {
	case t.OrganizationID == "":
		return errors.New("organization_id is required")
	case t.Name == "":
		return errors.New("name is required")
	case t.Subject == "":
		return errors.New("subject is required")
	case len(t.BeeEditorJSON) == 0:
		return errors.New("bee_editor_json is required")
	case !json.Valid(t.BeeEditorJSON):
		return errors.New("bee_editor_json is not valid JSON")
	}
	return nil
}
