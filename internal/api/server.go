package api

import (
	"context"

	"github.com/ignite/bee-importer/internal/beefree"
	"github.com/ignite/bee-importer/internal/domain"
	"github.com/ignite/bee-importer/internal/mergetag"
	"github.com/ignite/bee-importer/internal/pkg/logger"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

// Importer is the conversion pipeline as seen by the handlers.
// *conversion.Service satisfies it.
type Importer interface {
	Convert(ctx context.Context, in conversion.Input) (*conversion.Outcome, error)
	BatchConvert(ctx context.Context, orgID, createdBy string, items []conversion.BatchItem) (*conversion.BatchOutcome, error)
	GetTemplate(ctx context.Context, orgID, id string) (*domain.EmailTemplate, error)
}

// ConnectionTester reports whether the remote converter is reachable.
// *beefree.Client satisfies it.
type ConnectionTester interface {
	TestConnection(ctx context.Context) beefree.ConnectionStatus
}

// maxBatchItems caps a single batch request.
const maxBatchItems = 50

// Server holds the dependencies shared by all handlers.
type Server struct {
	importer       Importer
	tester         ConnectionTester
	renderer       *mergetag.Renderer
	health         *HealthChecker
	maxBodyBytes   int64
	mergeTagFormat beefree.MergeTagFormat
	log            *logger.Scoped
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithHealthChecker serves dependency checks on /health. Without one the
// endpoint only reports liveness.
func WithHealthChecker(hc *HealthChecker) ServerOption {
	return func(s *Server) { s.health = hc }
}

// WithMaxBodyBytes bounds request bodies. Batch requests get maxBatchItems
// times this limit.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) { s.maxBodyBytes = n }
}

// WithMergeTagFormat sets the format previews assume when the request
// names none.
func WithMergeTagFormat(f beefree.MergeTagFormat) ServerOption {
	return func(s *Server) { s.mergeTagFormat = f }
}

// NewServer creates the HTTP handler set.
func NewServer(importer Importer, tester ConnectionTester, opts ...ServerOption) *Server {
	s := &Server{
		importer:       importer,
		tester:         tester,
		renderer:       mergetag.NewRenderer(),
		maxBodyBytes:   4 << 20,
		mergeTagFormat: beefree.MergeTagLiquid,
		log:            logger.Component("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
