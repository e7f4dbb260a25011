package conversion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ignite/bee-importer/internal/beefree"
	"github.com/ignite/bee-importer/internal/config"
	"github.com/ignite/bee-importer/internal/domain"
	"github.com/ignite/bee-importer/internal/htmlnorm"
	"github.com/ignite/bee-importer/internal/pkg/distlock"
	"github.com/ignite/bee-importer/internal/pkg/logger"
)

// defaultPersistTimeout bounds one template write.
const defaultPersistTimeout = 15 * time.Second

// Converter turns normalized HTML into Bee JSON. *beefree.Client satisfies it.
type Converter interface {
	Convert(ctx context.Context, html string, opts beefree.Options) beefree.Result
}

// Config tunes the pipeline. Zero values fall back to the documented defaults.
type Config struct {
	MaxHTMLBytes   int
	MergeTagFormat beefree.MergeTagFormat
	PreserveHTML   bool
	ProvenanceKey  string
	Workers        int
	RatePerSecond  float64
}

// ConfigFrom maps the file/env configuration onto a service Config.
func ConfigFrom(c config.ConversionConfig) Config {
	return Config{
		MaxHTMLBytes:   c.MaxHTMLBytes,
		MergeTagFormat: beefree.MergeTagFormat(c.MergeTagFormat),
		PreserveHTML:   c.KeepSourceHTML(),
		ProvenanceKey:  c.ProvenanceKey,
		Workers:        c.Workers,
		RatePerSecond:  c.RatePerSecond,
	}
}

// Option customizes a Service.
type Option func(*Service)

// WithLocks guards each import with a lock keyed by organization and
// template name.
func WithLocks(f distlock.Factory) Option {
	return func(s *Service) { s.locks = f }
}

// WithPersistTimeout bounds the template write, including the wait for a
// pooled connection.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Service) { s.persistTimeout = d }
}

// WithClock replaces time.Now, for deterministic names and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service implements the import pipeline. All public methods are safe for
// concurrent use if the converter and repository are.
type Service struct {
	client  Converter
	repo    Repository
	cfg     Config
	adapter *Adapter
	locks   distlock.Factory
	limiter *rate.Limiter
	now     func() time.Time
	log     *logger.Scoped

	persistTimeout time.Duration
}

// NewService creates a conversion service backed by the given client and
// repository.
func NewService(client Converter, repo Repository, cfg Config, opts ...Option) *Service {
	if cfg.MaxHTMLBytes <= 0 {
		cfg.MaxHTMLBytes = config.DefaultMaxHTMLBytes
	}
	if cfg.MergeTagFormat == "" {
		cfg.MergeTagFormat = beefree.MergeTagLiquid
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	s := &Service{
		client: client,
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		log:    logger.Component("conversion"),

		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.adapter = NewAdapter(cfg.ProvenanceKey, s.now)
	if cfg.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return s
}

// Input is one template to import.
type Input struct {
	OrganizationID string
	CreatedBy      string
	HTML           string
	Name           string
	Category       string
	Options        beefree.Options
}

// Outcome is everything produced by a successful import.
type Outcome struct {
	PreprocessedHTML string                `json:"preprocessed_html"`
	BeeJSON          map[string]any        `json:"bee_json"`
	AdaptedJSON      AdaptedDocument       `json:"adapted_json"`
	Metadata         map[string]any        `json:"metadata"`
	Template         *domain.EmailTemplate `json:"email_template"`
}

// Convert imports one HTML document and persists it as an email template.
// Every failure is returned as a *ConversionError; no record is created
// unless the whole pipeline succeeds.
func (s *Service) Convert(ctx context.Context, in Input) (*Outcome, error) {
	opts := in.Options
	if opts.MergeTagFormat == "" {
		opts.MergeTagFormat = s.cfg.MergeTagFormat
	}

	if err := validateInput(in.HTML, s.cfg.MaxHTMLBytes, opts.MergeTagFormat); err != nil {
		return nil, s.failed(in, fail(StageValidating, KindValidation, err))
	}

	name := in.Name
	if name == "" {
		name = "HTML Import " + s.now().Format("20060102_150405")
	}
	category := in.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	s.log.Info("starting conversion",
		"org_id", in.OrganizationID, "template", name, "html_bytes", len(in.HTML))

	if s.locks != nil {
		lock := s.locks(distlock.ImportKey(in.OrganizationID, name))
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			return nil, s.failed(in, fail(StageValidating, KindInfrastructure, fmt.Errorf("acquire import lock: %w", err)))
		}
		if !acquired {
			return nil, s.failed(in, fail(StageValidating, KindImportInProgress,
				fmt.Errorf("another import of template %q is in progress", name)))
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("release import lock failed", "template", name, "error", err)
			}
		}()
	}

	preprocessed := htmlnorm.Normalize(in.HTML)

	result := s.client.Convert(ctx, preprocessed, opts)
	if result.Failure != nil {
		return nil, s.failed(in, fail(StageConverting, Kind(result.Failure.ErrorType), &RemoteError{Failure: *result.Failure}))
	}
	if result.Success == nil {
		return nil, s.failed(in, fail(StageConverting, Kind(beefree.TypeUnknown), errors.New("converter returned an empty result")))
	}

	adapted := s.adapter.Adapt(result.Success.JSON, in.HTML, in.OrganizationID)

	tmpl, err := s.buildTemplate(in, name, category, adapted)
	if err != nil {
		return nil, s.failed(in, fail(StagePersisting, KindPersistence, err))
	}

	// Persistence outlives caller cancellation but not persistTimeout.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()
	if err := s.repo.CreateTemplate(pctx, tmpl); err != nil {
		return nil, s.failed(in, fail(StagePersisting, KindPersistence, fmt.Errorf("create email template: %w", err)))
	}

	s.log.Info("conversion completed", "org_id", in.OrganizationID, "template_id", tmpl.ID)

	return &Outcome{
		PreprocessedHTML: preprocessed,
		BeeJSON:          result.Success.JSON,
		AdaptedJSON:      adapted,
		Metadata:         result.Success.Metadata,
		Template:         tmpl,
	}, nil
}

// GetTemplate returns a previously imported template.
func (s *Service) GetTemplate(ctx context.Context, orgID, id string) (*domain.EmailTemplate, error) {
	return s.repo.GetTemplate(ctx, orgID, id)
}

func (s *Service) buildTemplate(in Input, name, category string, doc AdaptedDocument) (*domain.EmailTemplate, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode bee json: %w", err)
	}

	t := &domain.EmailTemplate{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		Name:           name,
		EditorType:     domain.EditorVisual,
		BeeEditorJSON:  raw,
		Subject:        htmlnorm.ExtractSubject(in.HTML),
		Category:       category,
		CreatedAt:      s.now().UTC(),
	}
	if s.cfg.PreserveHTML {
		content := in.HTML
		t.Content = &content
	}
	if in.CreatedBy != "" {
		createdBy := in.CreatedBy
		t.CreatedBy = &createdBy
	}
	return t, nil
}

func (s *Service) failed(in Input, err *ConversionError) error {
	s.log.Error("conversion failed",
		"org_id", in.OrganizationID,
		"stage", err.Stage,
		"kind", err.Kind,
		"error", err.Err)
	return err
}
