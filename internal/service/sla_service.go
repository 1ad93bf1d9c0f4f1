package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/slaclock"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

const statsCacheKeyPrefix = "sla:stats:"

// SlaService drives the SLA pipeline around the pure engine: it owns ticket
// ingestion, status transitions, stat computation, persistence, the Redis
// stats cache and event emission. Every mutation ends in a full recompute,
// so stored stats are always a function of the current timeline.
type SlaService struct {
	engine     *slaclock.Engine
	tickets    repository.TicketRepository
	history    repository.StatusHistoryRepository
	calendars  repository.CalendarRepository
	slaRepo    repository.SlaRepository
	resolver   PolicyResolver
	dispatcher events.Dispatcher
	cache      *persistence.Redis
	cacheTTL   time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewSlaService wires the SLA pipeline. cache may be nil, in which case the
// stats cache is skipped entirely.
func NewSlaService(
	engine *slaclock.Engine,
	tickets repository.TicketRepository,
	history repository.StatusHistoryRepository,
	calendars repository.CalendarRepository,
	slaRepo repository.SlaRepository,
	resolver PolicyResolver,
	dispatcher events.Dispatcher,
	cache *persistence.Redis,
	cacheTTL time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SlaService {
	return &SlaService{
		engine:     engine,
		tickets:    tickets,
		history:    history,
		calendars:  calendars,
		slaRepo:    slaRepo,
		resolver:   resolver,
		dispatcher: dispatcher,
		cache:      cache,
		cacheTTL:   cacheTTL,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterTicket stores a new ticket together with its creation status as
// the first timeline row and starts the SLA clock. A ticket no active
// policy matches is stored without stats.
func (s *SlaService) RegisterTicket(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	ticket.Title = strings.TrimSpace(ticket.Title)
	if ticket.Title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = s.now()
	}
	if domain.IsTerminal(ticket.Status) {
		return nil, apperrors.NewValidationError("ticket cannot be created in a terminal status", nil)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.history.Append(ctx, &domain.TicketStatusChange{
		TicketID:  ticket.ID,
		Status:    ticket.Status,
		ChangedAt: ticket.CreatedAt,
	}); err != nil {
		return nil, err
	}

	result, err := s.refresh(ctx, ticket)
	if err != nil {
		if isPolicyMiss(err) {
			s.logger.Info("no sla policy matches ticket", zap.String("ticket_id", ticket.ID))
			return ticket, nil
		}
		return nil, err
	}

	s.publish(ctx, events.EventSlaStarted, ticket.ID, result.policy.ID, events.SlaStartedPayload{
		CalendarID: result.policy.CalendarID,
	})
	s.concludeIfTerminal(ctx, ticket.ID, result)
	return ticket, nil
}

// RecordStatusChange appends a status transition to the ticket timeline and
// recomputes the stats. Transitions between counted and paused statuses emit
// the matching clock marker event.
func (s *SlaService) RecordStatusChange(ctx context.Context, ticketID string, status domain.TicketStatus, changedAt time.Time) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if changedAt.IsZero() {
		changedAt = s.now()
	}
	if changedAt.Before(ticket.CreatedAt) {
		return nil, apperrors.NewValidationError("status change predates ticket creation", nil)
	}
	if ticket.Status == status {
		return ticket, nil
	}
	if domain.IsTerminal(ticket.Status) && !domain.IsTerminal(status) {
		// A reopen clears the resolution instant so the clock resumes.
		ticket.ResolvedAt = nil
	}

	previous := ticket.Status
	ticket.Status = status
	if domain.IsTerminal(status) && ticket.ResolvedAt == nil {
		at := changedAt
		ticket.ResolvedAt = &at
	}

	if err := s.history.Append(ctx, &domain.TicketStatusChange{
		TicketID:  ticket.ID,
		Status:    status,
		ChangedAt: changedAt,
	}); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	result, err := s.refresh(ctx, ticket)
	if err != nil {
		if isPolicyMiss(err) {
			return ticket, nil
		}
		return nil, err
	}

	switch {
	case s.engine.IsCounted(previous) && s.engine.IsPaused(status):
		s.publish(ctx, events.EventSlaPaused, ticket.ID, result.policy.ID, events.SlaClockPayload{
			Status:             status,
			AccumulatedMinutes: result.accumulated,
		})
	case s.engine.IsPaused(previous) && s.engine.IsCounted(status):
		s.publish(ctx, events.EventSlaResumed, ticket.ID, result.policy.ID, events.SlaClockPayload{
			Status:             status,
			AccumulatedMinutes: result.accumulated,
		})
	}
	s.concludeIfTerminal(ctx, ticket.ID, result)
	return ticket, nil
}

// RecordFirstResponse stamps the first response instant. Repeated calls keep
// the original instant; the first response happens once.
func (s *SlaService) RecordFirstResponse(ctx context.Context, ticketID string, at time.Time) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.FirstResponseAt != nil {
		return ticket, nil
	}
	if at.IsZero() {
		at = s.now()
	}
	if at.Before(ticket.CreatedAt) {
		return nil, apperrors.NewValidationError("first response predates ticket creation", nil)
	}
	ticket.FirstResponseAt = &at
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	result, err := s.refresh(ctx, ticket)
	if err != nil {
		if isPolicyMiss(err) {
			return ticket, nil
		}
		return nil, err
	}
	s.concludeIfTerminal(ctx, ticket.ID, result)
	return ticket, nil
}

// ComputeForTicket recomputes and persists the stats for one ticket. It is
// the entry point batch recomputation uses; repeating it over an unchanged
// timeline writes byte-identical stats.
func (s *SlaService) ComputeForTicket(ctx context.Context, ticketID string) (*domain.SlaStats, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	result, err := s.refresh(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.concludeIfTerminal(ctx, ticket.ID, result)
	return result.stats, nil
}

// GetStats returns the stored stats for a ticket, serving from the Redis
// cache when warm and computing on demand when nothing is stored yet.
func (s *SlaService) GetStats(ctx context.Context, ticketID string) (*domain.SlaStats, error) {
	if cached := s.cachedStats(ctx, ticketID); cached != nil {
		return cached, nil
	}

	stats, err := s.slaRepo.GetStats(ctx, ticketID)
	if err == nil {
		s.cacheStats(ctx, stats)
		return stats, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s.ComputeForTicket(ctx, ticketID)
}

// GetInstance returns the SLA instance of the policy the ticket currently
// resolves to.
func (s *SlaService) GetInstance(ctx context.Context, ticketID string) (*domain.SlaInstance, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	policy, err := s.resolver.ResolvePolicy(ctx, ticket)
	if err != nil {
		return nil, err
	}
	return s.slaRepo.GetInstance(ctx, ticketID, policy.ID)
}

// refreshResult carries everything one computation produced, so callers can
// emit events without reloading.
type refreshResult struct {
	stats       *domain.SlaStats
	policy      *domain.SlaPolicy
	status      domain.SlaInstanceStatus
	prior       domain.SlaInstanceStatus
	accumulated int
}

// refresh runs the full pipeline for a loaded ticket: timeline, policy,
// calendar, engine, transactional persist, cache write.
func (s *SlaService) refresh(ctx context.Context, ticket *domain.Ticket) (*refreshResult, error) {
	timeline, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	policy, err := s.resolver.ResolvePolicy(ctx, ticket)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	cal, err := s.calendars.GetByID(ctx, policy.CalendarID)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	now := s.now()
	stats, status, err := s.engine.ComputeStats(ticket, timeline, policy, cal, now)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	accumulated, err := s.engine.RunningMinutes(ticket, timeline, cal, now)
	if err != nil {
		return nil, err
	}

	prior := s.priorInstanceStatus(ctx, ticket.ID, policy.ID)

	instance := &domain.SlaInstance{
		TicketID:   ticket.ID,
		PolicyID:   policy.ID,
		Status:     status,
		StartedAt:  ticket.CreatedAt,
		ResolvedAt: ticket.ResolvedAt,
	}
	if err := s.slaRepo.SaveComputation(ctx, stats, instance); err != nil {
		return nil, err
	}
	s.cacheStats(ctx, stats)

	s.metrics.RecordComputation(string(instance.Status))
	if stats.Breached && stats.BreachReason != nil {
		s.metrics.RecordBreach(string(*stats.BreachReason))
	}

	return &refreshResult{
		stats:       stats,
		policy:      policy,
		status:      instance.Status,
		prior:       prior,
		accumulated: accumulated,
	}, nil
}

// concludeIfTerminal emits the MET or BREACHED event when this computation
// moved the instance out of RUNNING. A concluded instance stays concluded,
// so the event fires at most once per conclusion.
func (s *SlaService) concludeIfTerminal(ctx context.Context, ticketID string, result *refreshResult) {
	if result.status == domain.SlaInstanceRunning || result.prior == result.status {
		return
	}
	if result.prior != "" && result.prior != domain.SlaInstanceRunning {
		return
	}

	eventType := events.EventSlaMet
	if result.status == domain.SlaInstanceBreached {
		eventType = events.EventSlaBreached
	}
	s.publish(ctx, eventType, ticketID, result.policy.ID, events.SlaConcludedPayload{
		FirstResponseMinutes: result.stats.FirstResponseMinutes,
		ResolutionMinutes:    result.stats.ResolutionMinutes,
		BreachReason:         result.stats.BreachReason,
	})
}

func (s *SlaService) priorInstanceStatus(ctx context.Context, ticketID, policyID string) domain.SlaInstanceStatus {
	instance, err := s.slaRepo.GetInstance(ctx, ticketID, policyID)
	if err != nil {
		return ""
	}
	return instance.Status
}

func (s *SlaService) publish(ctx context.Context, eventType events.EventType, ticketID, policyID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		PolicyID:  policyID,
		Timestamp: s.now(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
}

func (s *SlaService) cacheStats(ctx context.Context, stats *domain.SlaStats) {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, statsCacheKeyPrefix+stats.TicketID, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("stats cache write failed", zap.String("ticket_id", stats.TicketID), zap.Error(err))
	}
}

func (s *SlaService) cachedStats(ctx context.Context, ticketID string) *domain.SlaStats {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return nil
	}
	payload, err := s.cache.Client.Get(ctx, statsCacheKeyPrefix+ticketID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("stats cache read failed", zap.String("ticket_id", ticketID), zap.Error(err))
		}
		return nil
	}
	var stats domain.SlaStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *SlaService) recordFailure(err error) {
	s.metrics.RecordComputeFailure(failureKind(err))
}

// failureKind buckets computation errors for metrics and batch reporting.
func failureKind(err error) string {
	var timelineErr *slaclock.InvalidTimelineError
	var calendarErr *slaclock.InvalidCalendarError
	var policyErr *slaclock.PolicyNotFoundError
	switch {
	case errors.As(err, &timelineErr):
		return "invalid_timeline"
	case errors.As(err, &calendarErr):
		return "invalid_calendar"
	case errors.As(err, &policyErr):
		return "policy_not_found"
	default:
		return "internal"
	}
}

func isPolicyMiss(err error) bool {
	var policyErr *slaclock.PolicyNotFoundError
	return errors.As(err, &policyErr)
}
