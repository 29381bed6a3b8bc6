package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
)

const defaultSweepBatch = 200

// BreachStore is the slice of the ticket repository the sweeper needs.
type BreachStore interface {
	ListBreachCandidates(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error)
	MarkBreached(ctx context.Context, ids []string) ([]string, error)
}

// SLASweeper periodically flags running tickets whose resolution deadline has passed.
type SLASweeper struct {
	tickets    BreachStore
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	interval   time.Duration
	batch      int
	now        func() time.Time
}

// SweeperDependencies bundles collaborators for the sweeper.
type SweeperDependencies struct {
	Tickets    BreachStore
	History    repository.TicketHistoryRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Interval   time.Duration
	BatchSize  int
}

// NewSLASweeper builds a sweeper.
func NewSLASweeper(deps SweeperDependencies) *SLASweeper {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := deps.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	batch := deps.BatchSize
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &SLASweeper{
		tickets:    deps.Tickets,
		history:    deps.History,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		interval:   interval,
		batch:      batch,
		now:        time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *SLASweeper) Run(ctx context.Context) {
	s.logger.Info("sla sweeper started", zap.Duration("interval", s.interval))
	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sla sweeper stopped")
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *SLASweeper) sweepAndLog(ctx context.Context) {
	flagged, err := s.SweepOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("sla sweep failed", zap.Error(err))
		}
		return
	}
	if flagged > 0 {
		s.logger.Info("sla sweep flagged tickets", zap.Int("count", flagged))
	}
}

// SweepOnce flags overdue tickets batch by batch and returns how many it
// flagged. A ticket flagged concurrently elsewhere is not reported twice.
func (s *SLASweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	total := 0
	for {
		candidates, err := s.tickets.ListBreachCandidates(ctx, now, s.batch)
		if err != nil {
			return total, err
		}
		if len(candidates) == 0 {
			return total, nil
		}

		ids := make([]string, 0, len(candidates))
		byID := make(map[string]domain.Ticket, len(candidates))
		for _, ticket := range candidates {
			ids = append(ids, ticket.ID)
			byID[ticket.ID] = ticket
		}
		flipped, err := s.tickets.MarkBreached(ctx, ids)
		if err != nil {
			return total, err
		}
		for _, id := range flipped {
			s.announce(ctx, byID[id], now)
		}
		total += len(flipped)
		s.metrics.AddBreached(len(flipped))

		if len(candidates) < s.batch || len(flipped) == 0 {
			return total, nil
		}
	}
}

func (s *SLASweeper) announce(ctx context.Context, ticket domain.Ticket, now time.Time) {
	var due time.Time
	if ticket.ResolutionDueAt != nil {
		due = ticket.ResolutionDueAt.UTC()
	}
	overdue := now.Sub(due)

	if s.history != nil {
		entry := &domain.TicketHistory{
			TicketID:      ticket.ID,
			ChangedByType: domain.ActorTypeSystem,
			ChangeType:    domain.ChangeTypeBreach,
			OldValue:      map[string]any{"sla_breached": false},
			NewValue:      map[string]any{"sla_breached": true, "resolution_due_at": due},
		}
		if err := s.history.Create(ctx, entry); err != nil {
			s.logger.Warn("breach history write failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketSLABreached,
		TicketID:  ticket.ID,
		Actor:     events.SystemActor,
		Timestamp: now,
		Payload: events.TicketSLABreachedPayload{
			ResolutionDueAt: due,
			DetectedAt:      now,
			Overdue:         overdue,
		},
	})
	if err != nil {
		s.logger.Warn("ticket_sla_breached handlers failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}
