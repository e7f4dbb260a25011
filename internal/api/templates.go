package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/bee-importer/internal/beefree"
	"github.com/ignite/bee-importer/internal/htmlnorm"
	"github.com/ignite/bee-importer/internal/pkg/httputil"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

type importRequest struct {
	HTML     string          `json:"html"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Options  beefree.Options `json:"options"`
}

type batchRequest struct {
	Templates []conversion.BatchItem `json:"templates"`
}

type previewRequest struct {
	HTML           string         `json:"html"`
	MergeTagFormat string         `json:"merge_tag_format"`
	Variables      map[string]any `json:"variables"`
}

type previewResponse struct {
	PreprocessedHTML string   `json:"preprocessed_html"`
	RenderedHTML     string   `json:"rendered_html"`
	Rendered         bool     `json:"rendered"`
	MergeTags        []string `json:"merge_tags"`
	Subject          string   `json:"subject"`
}

// HandleImport converts one HTML document and stores it as a template.
//
//	POST /api/templates/import
func (s *Server) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !httputil.Decode(w, r, &req, s.maxBodyBytes) {
		return
	}

	out, err := s.importer.Convert(r.Context(), conversion.Input{
		OrganizationID: OrgID(r.Context()),
		CreatedBy:      UserID(r.Context()),
		HTML:           req.HTML,
		Name:           strings.TrimSpace(req.Name),
		Category:       strings.TrimSpace(req.Category),
		Options:        req.Options,
	})
	if err != nil {
		s.writeConversionError(w, err)
		return
	}
	httputil.Created(w, out)
}

// HandleBatchImport converts every document in the request. Per-item
// failures are reported in the body; the response is 200 unless the batch
// itself could not run.
//
//	POST /api/templates/import/batch
func (s *Server) HandleBatchImport(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !httputil.Decode(w, r, &req, s.maxBodyBytes*maxBatchItems) {
		return
	}
	if len(req.Templates) > maxBatchItems {
		httputil.BadRequest(w, "batch exceeds the maximum of 50 templates")
		return
	}

	out, err := s.importer.BatchConvert(r.Context(), OrgID(r.Context()), UserID(r.Context()), req.Templates)
	if err != nil {
		s.log.Error("batch import aborted", "org_id", OrgID(r.Context()), "error", err)
		httputil.Coded(w, http.StatusServiceUnavailable, "batch_aborted", "batch import could not complete", nil)
		return
	}
	httputil.OK(w, out)
}

// HandleGetTemplate returns one imported template.
//
//	GET /api/templates/{id}
func (s *Server) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.importer.GetTemplate(r.Context(), OrgID(r.Context()), id)
	if errors.Is(err, conversion.ErrNotFound) {
		httputil.NotFound(w, "template not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, t)
}

// HandlePreview shows what the importer would send upstream and how the
// merge tags render against sample data. Nothing is stored.
//
//	POST /api/templates/preview
func (s *Server) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !httputil.Decode(w, r, &req, s.maxBodyBytes) {
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		httputil.BadRequest(w, "html is required")
		return
	}
	format := beefree.MergeTagFormat(req.MergeTagFormat)
	if format == "" {
		format = s.mergeTagFormat
	}
	if !format.Valid() {
		httputil.BadRequest(w, "unsupported merge_tag_format: "+req.MergeTagFormat)
		return
	}

	normalized := htmlnorm.Normalize(req.HTML)
	p, err := s.renderer.Preview(normalized, string(format), req.Variables)
	if err != nil {
		httputil.Coded(w, http.StatusUnprocessableEntity, "template_syntax_error", err.Error(), nil)
		return
	}
	httputil.OK(w, previewResponse{
		PreprocessedHTML: normalized,
		RenderedHTML:     p.HTML,
		Rendered:         p.Rendered,
		MergeTags:        p.Tags,
		Subject:          htmlnorm.ExtractSubject(req.HTML),
	})
}

// HandleConversionStatus checks connectivity to the Beefree API.
//
//	GET /api/conversion/status
func (s *Server) HandleConversionStatus(w http.ResponseWriter, r *http.Request) {
	if s.tester == nil {
		httputil.JSON(w, http.StatusServiceUnavailable, beefree.ConnectionStatus{
			Status:  "error",
			Message: "Beefree client is not configured",
		})
		return
	}
	st := s.tester.TestConnection(r.Context())
	status := http.StatusOK
	if st.Status != "connected" {
		status = http.StatusBadGateway
	}
	httputil.JSON(w, status, st)
}
