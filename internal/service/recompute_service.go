package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
)

// RecomputeFilter narrows which tickets a batch run recomputes. All fields
// are optional; an empty filter recomputes everything.
type RecomputeFilter struct {
	TeamID      *string
	Category    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// RecomputeFailure records one ticket that failed during a batch run.
type RecomputeFailure struct {
	TicketID string `json:"ticket_id"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// RecomputeReport summarizes one batch run.
type RecomputeReport struct {
	Processed int                `json:"processed"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	Failures  []RecomputeFailure `json:"failures,omitempty"`
	Duration  time.Duration      `json:"-"`
}

// RecomputeService drives batch recomputation over a fixed worker pool. One
// worker owns one ticket at a time; a failing ticket is recorded and never
// aborts the batch. Runs are idempotent, so overlapping or repeated runs are
// safe.
type RecomputeService struct {
	sla       *SlaService
	tickets   repository.TicketRepository
	workers   int
	batchSize int
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewRecomputeService constructs the batch runner.
func NewRecomputeService(
	sla *SlaService,
	tickets repository.TicketRepository,
	workers, batchSize int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RecomputeService {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &RecomputeService{
		sla:       sla,
		tickets:   tickets,
		workers:   workers,
		batchSize: batchSize,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run pages through the matching tickets and recomputes each one. Tickets
// without an applicable policy are skipped, not failed.
func (s *RecomputeService) Run(ctx context.Context, filter RecomputeFilter) (*RecomputeReport, error) {
	started := time.Now()
	report := &RecomputeReport{}

	ids := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticketID := range ids {
				_, err := s.sla.ComputeForTicket(ctx, ticketID)
				mu.Lock()
				switch {
				case err == nil:
					report.Processed++
				case isPolicyMiss(err):
					report.Skipped++
				default:
					report.Failed++
					report.Failures = append(report.Failures, RecomputeFailure{
						TicketID: ticketID,
						Kind:     failureKind(err),
						Message:  err.Error(),
					})
				}
				mu.Unlock()
			}
		}()
	}

	feedErr := s.feed(ctx, filter, ids)
	close(ids)
	wg.Wait()

	report.Duration = time.Since(started)
	s.metrics.RecordBatch(report.Duration, report.Processed, report.Failed)
	s.logger.Info("sla recompute batch finished",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))

	if feedErr != nil {
		return report, feedErr
	}
	return report, nil
}

// feed streams matching ticket ids into the pool, one page at a time.
func (s *RecomputeService) feed(ctx context.Context, filter RecomputeFilter, ids chan<- string) error {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.tickets.ListIDsWithFilter(ctx, repository.TicketFilter{
			TeamID:      filter.TeamID,
			Category:    filter.Category,
			CreatedFrom: filter.CreatedFrom,
			CreatedTo:   filter.CreatedTo,
			Limit:       s.batchSize,
			Offset:      offset,
		})
		if err != nil {
			return err
		}
		for _, id := range page {
			select {
			case ids <- id:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if len(page) < s.batchSize {
			return nil
		}
		offset += len(page)
	}
}
