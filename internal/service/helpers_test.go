package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/slaclock"
)

func testEngine() *slaclock.Engine {
	return slaclock.NewEngine(
		domain.NewStatusSet(domain.TicketStatusOpen, domain.TicketStatusInProgress),
		domain.NewStatusSet(domain.TicketStatusPendingUser, domain.TicketStatusPendingThirdParty),
	)
}

// weekdayCalendar is Monday through Friday, 09:00 to 18:00.
func weekdayCalendar() *domain.BusinessCalendar {
	schedule := domain.WeeklySchedule{}
	for day := time.Monday; day <= time.Friday; day++ {
		schedule[day] = domain.WeekdayHours{Open: "09:00", Close: "18:00", Enabled: true}
	}
	return &domain.BusinessCalendar{
		ID:       "cal-1",
		Name:     "weekday",
		Timezone: "UTC",
		Schedule: schedule,
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	order   []string
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == "" {
		r.seq++
		ticket.ID = fmt.Sprintf("tck-%d", r.seq)
	}
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListIDsWithFilter(_ context.Context, filter repository.TicketFilter) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if filter.Offset >= len(r.order) {
		return nil, nil
	}
	end := len(r.order)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return append([]string{}, r.order[filter.Offset:end]...), nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	changes map[string][]domain.TicketStatusChange
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{changes: map[string][]domain.TicketStatusChange{}}
}

func (r *fakeHistoryRepo) Append(_ context.Context, change *domain.TicketStatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	change.ID = fmt.Sprintf("chg-%d", len(r.changes[change.TicketID])+1)
	r.changes[change.TicketID] = append(r.changes[change.TicketID], *change)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketStatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TicketStatusChange{}, r.changes[ticketID]...), nil
}

type fakeCalendarRepo struct {
	mu        sync.Mutex
	calendars map[string]*domain.BusinessCalendar
}

func newFakeCalendarRepo(cals ...*domain.BusinessCalendar) *fakeCalendarRepo {
	repo := &fakeCalendarRepo{calendars: map[string]*domain.BusinessCalendar{}}
	for _, cal := range cals {
		repo.calendars[cal.ID] = cal
	}
	return repo
}

func (r *fakeCalendarRepo) Create(_ context.Context, cal *domain.BusinessCalendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cal.ID == "" {
		cal.ID = fmt.Sprintf("cal-%d", len(r.calendars)+1)
	}
	r.calendars[cal.ID] = cal
	return nil
}

func (r *fakeCalendarRepo) Update(_ context.Context, cal *domain.BusinessCalendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calendars[cal.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.calendars[cal.ID] = cal
	return nil
}

func (r *fakeCalendarRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calendars[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.calendars, id)
	return nil
}

func (r *fakeCalendarRepo) GetByID(_ context.Context, id string) (*domain.BusinessCalendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cal, ok := r.calendars[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cal, nil
}

func (r *fakeCalendarRepo) GetDefault(_ context.Context) (*domain.BusinessCalendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cal := range r.calendars {
		if cal.IsDefault {
			return cal, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCalendarRepo) List(_ context.Context) ([]domain.BusinessCalendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BusinessCalendar, 0, len(r.calendars))
	for _, cal := range r.calendars {
		out = append(out, *cal)
	}
	return out, nil
}

func (r *fakeCalendarRepo) SetDefault(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.calendars[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, cal := range r.calendars {
		cal.IsDefault = false
	}
	target.IsDefault = true
	return nil
}

func (r *fakeCalendarRepo) AddException(_ context.Context, exc *domain.CalendarException) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cal, ok := r.calendars[exc.CalendarID]
	if !ok {
		return pgx.ErrNoRows
	}
	exc.ID = fmt.Sprintf("exc-%d", len(cal.Exceptions)+1)
	cal.Exceptions = append(cal.Exceptions, *exc)
	return nil
}

func (r *fakeCalendarRepo) RemoveException(_ context.Context, calendarID, exceptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cal, ok := r.calendars[calendarID]
	if !ok {
		return pgx.ErrNoRows
	}
	for i, exc := range cal.Exceptions {
		if exc.ID == exceptionID {
			cal.Exceptions = append(cal.Exceptions[:i], cal.Exceptions[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// fakeSlaRepo mirrors the production upsert: a concluded instance never
// regresses out of its terminal status.
type fakeSlaRepo struct {
	mu        sync.Mutex
	stats     map[string]*domain.SlaStats
	instances map[string]*domain.SlaInstance
	saves     int
}

func newFakeSlaRepo() *fakeSlaRepo {
	return &fakeSlaRepo{
		stats:     map[string]*domain.SlaStats{},
		instances: map[string]*domain.SlaInstance{},
	}
}

func instanceKey(ticketID, policyID string) string {
	return ticketID + "/" + policyID
}

func (r *fakeSlaRepo) SaveComputation(_ context.Context, stats *domain.SlaStats, instance *domain.SlaInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++

	key := instanceKey(instance.TicketID, instance.PolicyID)
	if existing, ok := r.instances[key]; ok {
		instance.ID = existing.ID
		if existing.Status != domain.SlaInstanceRunning {
			instance.Status = existing.Status
			instance.ResolvedAt = existing.ResolvedAt
		}
	} else {
		instance.ID = fmt.Sprintf("ins-%d", len(r.instances)+1)
	}
	copiedInstance := *instance
	r.instances[key] = &copiedInstance

	copiedStats := *stats
	r.stats[stats.TicketID] = &copiedStats
	return nil
}

func (r *fakeSlaRepo) GetStats(_ context.Context, ticketID string) (*domain.SlaStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stats
	return &copied, nil
}

func (r *fakeSlaRepo) GetInstance(_ context.Context, ticketID, policyID string) (*domain.SlaInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	instance, ok := r.instances[instanceKey(ticketID, policyID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *instance
	return &copied, nil
}

// fakeResolver hands out one fixed policy, except for ticket ids listed in
// noMatch.
type fakeResolver struct {
	policy  *domain.SlaPolicy
	noMatch map[string]bool
}

func (r *fakeResolver) ResolvePolicy(_ context.Context, ticket *domain.Ticket) (*domain.SlaPolicy, error) {
	if r.policy == nil || r.noMatch[ticket.ID] {
		return nil, &slaclock.PolicyNotFoundError{TicketID: ticket.ID}
	}
	return r.policy, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type slaFixture struct {
	service    *SlaService
	tickets    *fakeTicketRepo
	history    *fakeHistoryRepo
	slaRepo    *fakeSlaRepo
	resolver   *fakeResolver
	dispatcher *recordingDispatcher
	now        time.Time
}

func newSlaFixture(policy *domain.SlaPolicy) *slaFixture {
	fx := &slaFixture{
		tickets:    newFakeTicketRepo(),
		history:    newFakeHistoryRepo(),
		slaRepo:    newFakeSlaRepo(),
		resolver:   &fakeResolver{policy: policy, noMatch: map[string]bool{}},
		dispatcher: &recordingDispatcher{},
		now:        time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), // Monday 09:00
	}
	fx.service = NewSlaService(
		testEngine(),
		fx.tickets,
		fx.history,
		newFakeCalendarRepo(weekdayCalendar()),
		fx.slaRepo,
		fx.resolver,
		fx.dispatcher,
		nil,
		0,
		nil,
		zap.NewNop(),
	)
	fx.service.now = func() time.Time { return fx.now }
	return fx
}

func testPolicy(firstResponse *int, resolution int) *domain.SlaPolicy {
	return &domain.SlaPolicy{
		ID:                         "pol-1",
		Name:                       "standard",
		CalendarID:                 "cal-1",
		TargetFirstResponseMinutes: firstResponse,
		TargetResolutionMinutes:    resolution,
		Active:                     true,
	}
}
