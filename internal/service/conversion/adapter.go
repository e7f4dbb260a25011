package conversion

import (
	"maps"
	"time"

	"github.com/ignite/bee-importer/internal/domain"
	"github.com/ignite/bee-importer/internal/mergetag"
)

const (
	provenanceVersion = "1.0"
	provenanceSource  = "html_import"
)

// AdaptedDocument is Bee JSON carrying a provenance block.
type AdaptedDocument map[string]any

// Provenance records how and when a document was imported.
type Provenance struct {
	Version            string             `json:"version"`
	EditorType         domain.EditorType  `json:"editor_type"`
	OrganizationID     string             `json:"organization_id"`
	ConversionMetadata ConversionMetadata `json:"conversion_metadata"`
}

// ConversionMetadata describes the source HTML of an import.
type ConversionMetadata struct {
	Source           string `json:"source"`
	ConvertedAt      string `json:"converted_at"`
	OriginalHTMLSize int    `json:"original_html_size"`
	MergeTagsCount   int    `json:"merge_tags_count"`
}

// Adapter injects organization provenance into converted Bee JSON.
type Adapter struct {
	key string
	now func() time.Time
}

// NewAdapter creates an Adapter writing its block under key.
func NewAdapter(key string, now func() time.Time) *Adapter {
	if key == "" {
		key = "provenance"
	}
	if now == nil {
		now = time.Now
	}
	return &Adapter{key: key, now: now}
}

// Key is the top-level key the provenance block is stored under.
func (a *Adapter) Key() string { return a.key }

// Adapt returns a copy of doc with the provenance block set. An existing
// block under the same key is replaced, never nested. doc is not modified.
func (a *Adapter) Adapt(doc map[string]any, originalHTML, orgID string) AdaptedDocument {
	out := AdaptedDocument(maps.Clone(doc))
	if out == nil {
		out = AdaptedDocument{}
	}
	out[a.key] = Provenance{
		Version:        provenanceVersion,
		EditorType:     domain.EditorVisual,
		OrganizationID: orgID,
		ConversionMetadata: ConversionMetadata{
			Source:           provenanceSource,
			ConvertedAt:      a.now().UTC().Format(time.RFC3339),
			OriginalHTMLSize: len(originalHTML),
			MergeTagsCount:   mergetag.Count(originalHTML),
		},
	}
	return out
}
