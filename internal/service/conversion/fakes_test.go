package conversion_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/bee-importer/internal/beefree"
	"github.com/ignite/bee-importer/internal/domain"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

const (
	testOrg  = "org-1"
	testUser = "user-7"
)

const validHTML = `<html><head><title>Spring Sale</title></head><body><p>Hi {{first_name}}</p><a href="https://x.com/unsubscribe">u</a></body></html>`

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeConverter returns a canned Bee document unless the HTML contains the
// "FAIL:<type>" marker.
type fakeConverter struct {
	calls atomic.Int32
	mu    sync.Mutex
	seen  []string
}

func (f *fakeConverter) Convert(_ context.Context, html string, _ beefree.Options) beefree.Result {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, html)
	f.mu.Unlock()

	if i := strings.Index(html, "FAIL:"); i >= 0 {
		t := html[i+5:]
		t = t[:strings.IndexAny(t, " <")]
		return beefree.Result{Failure: &beefree.Failure{ErrorType: beefree.ErrorType(t), Message: "remote said " + t}}
	}
	return beefree.Result{Success: &beefree.Success{
		JSON:     map[string]any{"page": map[string]any{"rows": []any{}}},
		Metadata: map[string]any{"k": 1},
	}}
}

// memRepo is an in-memory template repository for unit testing.
type memRepo struct {
	mu        sync.Mutex
	templates map[string]*domain.EmailTemplate // keyed by id
	failWith  error
}

func newMemRepo() *memRepo {
	return &memRepo{templates: make(map[string]*domain.EmailTemplate)}
}

func (m *memRepo) CreateTemplate(_ context.Context, t *domain.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if err := t.Validate(); err != nil {
		return err
	}
	for _, existing := range m.templates {
		if existing.OrganizationID == t.OrganizationID && existing.Name == t.Name {
			return conversion.ErrDuplicateName
		}
	}
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *memRepo) GetTemplate(_ context.Context, orgID, id string) (*domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.OrganizationID != orgID {
		return nil, conversion.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.templates)
}

var errDBDown = errors.New("connection reset by peer")
