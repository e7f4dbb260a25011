package conversion

import (
	"context"

	"github.com/ignite/bee-importer/internal/domain"
)

// Repository defines the data access contract for imported templates.
// Implementations must be safe for concurrent use.
type Repository interface {
	// CreateTemplate validates and inserts t atomically. Returns
	// ErrDuplicateName if the organization already has a template with the
	// same name. On any error nothing is persisted.
	CreateTemplate(ctx context.Context, t *domain.EmailTemplate) error

	// GetTemplate returns a single template. Returns ErrNotFound if it
	// doesn't exist.
	GetTemplate(ctx context.Context, orgID, id string) (*domain.EmailTemplate, error)
}
