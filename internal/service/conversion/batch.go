package conversion

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/bee-importer/internal/beefree"
)

// BatchItem is one entry of a batch import.
type BatchItem struct {
	HTML     string          `json:"html"`
	Name     string          `json:"name,omitempty"`
	Category string          `json:"category,omitempty"`
	Options  beefree.Options `json:"options"`
}

// BatchSuccess pairs an import outcome with the item that produced it.
type BatchSuccess struct {
	Index    int       `json:"index"`
	Outcome  *Outcome  `json:"outcome"`
	Original BatchItem `json:"original_data"`
}

// BatchFailure records one item that failed to import.
type BatchFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
	Kind  Kind   `json:"kind"`
}

// BatchOutcome aggregates a batch import. Entries are ordered by input index.
type BatchOutcome struct {
	Successful  []BatchSuccess `json:"successful"`
	Failed      []BatchFailure `json:"failed"`
	Total       int            `json:"total"`
	SuccessRate float64        `json:"success_rate"`
}

type itemResult struct {
	outcome *Outcome
	err     *ConversionError
}

// BatchConvert imports every item independently on a bounded worker pool.
// Conversion failures are reported per item and never stop the batch; only
// infrastructure faults (lock backend, cancelled context while waiting for
// the rate limiter) abort it with an error.
func (s *Service) BatchConvert(ctx context.Context, orgID, createdBy string, items []BatchItem) (*BatchOutcome, error) {
	results := make([]itemResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, item := range items {
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					return fmt.Errorf("batch item %d: rate limiter: %w", i, err)
				}
			}

			name := item.Name
			if name == "" {
				name = fmt.Sprintf("Imported Template %d", i+1)
			}
			out, err := s.Convert(gctx, Input{
				OrganizationID: orgID,
				CreatedBy:      createdBy,
				HTML:           item.HTML,
				Name:           name,
				Category:       item.Category,
				Options:        item.Options,
			})
			if err == nil {
				results[i] = itemResult{outcome: out}
				return nil
			}

			var ce *ConversionError
			if errors.As(err, &ce) && ce.Kind != KindInfrastructure {
				results[i] = itemResult{err: ce}
				return nil
			}
			return fmt.Errorf("batch item %d: %w", i, err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome := &BatchOutcome{
		Successful: []BatchSuccess{},
		Failed:     []BatchFailure{},
		Total:      len(items),
	}
	for i, r := range results {
		if r.err != nil {
			outcome.Failed = append(outcome.Failed, BatchFailure{
				Index: i,
				Name:  items[i].Name,
				Error: r.err.Error(),
				Kind:  r.err.Kind,
			})
			continue
		}
		outcome.Successful = append(outcome.Successful, BatchSuccess{
			Index:    i,
			Outcome:  r.outcome,
			Original: items[i],
		})
	}
	outcome.SuccessRate = successRate(len(outcome.Successful), outcome.Total)

	s.log.Info("batch conversion completed",
		"org_id", orgID,
		"total", outcome.Total,
		"successful", len(outcome.Successful),
		"failed", len(outcome.Failed))
	return outcome, nil
}

// successRate is successes/total as a percentage rounded to one decimal.
// An empty batch is 0%.
func successRate(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(successes)/float64(total)*1000) / 10
}
