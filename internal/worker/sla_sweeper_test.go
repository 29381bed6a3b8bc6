package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
)

type mockBreachStore struct{ mock.Mock }

func (m *mockBreachStore) ListBreachCandidates(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockBreachStore) MarkBreached(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockHistory struct{ mock.Mock }

func (m *mockHistory) Create(ctx context.Context, entry *domain.TicketHistory) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockHistory) ListByTicket(ctx context.Context, ticketID string, changeType *domain.TicketChangeType) ([]domain.TicketHistory, error) {
	args := m.Called(ctx, ticketID, changeType)
	return args.Get(0).([]domain.TicketHistory), args.Error(1)
}

var sweepNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func overdueTicket(id string, due time.Time) domain.Ticket {
	return domain.Ticket{ID: id, Status: domain.TicketStatusOpen, ResolutionDueAt: &due}
}

func newTestSweeper(store BreachStore, history repository.TicketHistoryRepository, dispatcher events.Dispatcher, metrics *observability.Metrics, batch int) *SLASweeper {
	s := NewSLASweeper(SweeperDependencies{
		Tickets:    store,
		History:    history,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     zap.NewNop(),
		BatchSize:  batch,
	})
	s.now = func() time.Time { return sweepNow }
	return s
}

func TestSweepOnceFlagsOverdueTickets(t *testing.T) {
	store := &mockBreachStore{}
	store.On("ListBreachCandidates", mock.Anything, sweepNow, 10).Return([]domain.Ticket{
		overdueTicket("a", sweepNow.Add(-time.Hour)),
		overdueTicket("b", sweepNow.Add(-time.Minute)),
	}, nil).Once()
	// b was flagged by another replica between list and update.
	store.On("MarkBreached", mock.Anything, []string{"a", "b"}).Return([]string{"a"}, nil).Once()

	history := &mockHistory{}
	history.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.TicketHistory) bool {
		return e.TicketID == "a" && e.ChangeType == domain.ChangeTypeBreach && e.ChangedByType == domain.ActorTypeSystem
	})).Return(nil).Once()

	var published []events.Event
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventTicketSLABreached, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})
	metrics := observability.NewMetrics()

	flagged, err := newTestSweeper(store, history, dispatcher, metrics, 10).SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, flagged)
	require.Len(t, published, 1)
	assert.Equal(t, "a", published[0].TicketID)
	payload := published[0].Payload.(events.TicketSLABreachedPayload)
	assert.Equal(t, time.Hour, payload.Overdue)
	expected := `
# HELP sla_tickets_breached_total Tickets flagged as past their resolution due date.
# TYPE sla_tickets_breached_total counter
sla_tickets_breached_total 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "sla_tickets_breached_total"))
	store.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestSweepOnceDrainsFullBatches(t *testing.T) {
	store := &mockBreachStore{}
	store.On("ListBreachCandidates", mock.Anything, sweepNow, 2).Return([]domain.Ticket{
		overdueTicket("a", sweepNow.Add(-time.Hour)),
		overdueTicket("b", sweepNow.Add(-time.Hour)),
	}, nil).Once()
	store.On("ListBreachCandidates", mock.Anything, sweepNow, 2).Return([]domain.Ticket{
		overdueTicket("c", sweepNow.Add(-time.Hour)),
	}, nil).Once()
	store.On("MarkBreached", mock.Anything, []string{"a", "b"}).Return([]string{"a", "b"}, nil).Once()
	store.On("MarkBreached", mock.Anything, []string{"c"}).Return([]string{"c"}, nil).Once()

	flagged, err := newTestSweeper(store, nil, nil, nil, 2).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, flagged)
	store.AssertExpectations(t)
}

func TestSweepOnceNothingDue(t *testing.T) {
	store := &mockBreachStore{}
	store.On("ListBreachCandidates", mock.Anything, sweepNow, defaultSweepBatch).Return([]domain.Ticket{}, nil)

	flagged, err := newTestSweeper(store, nil, nil, nil, 0).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, flagged)
	store.AssertNotCalled(t, "MarkBreached", mock.Anything, mock.Anything)
}

func TestSweepOncePropagatesStoreErrors(t *testing.T) {
	store := &mockBreachStore{}
	store.On("ListBreachCandidates", mock.Anything, sweepNow, defaultSweepBatch).Return(nil, errors.New("db down"))

	_, err := newTestSweeper(store, nil, nil, nil, 0).SweepOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestRunStopsWithContext(t *testing.T) {
	store := &mockBreachStore{}
	store.On("ListBreachCandidates", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Ticket{}, nil)
	sweeper := newTestSweeper(store, nil, nil, nil, 0)
	sweeper.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	assert.GreaterOrEqual(t, len(store.Calls), 1)
}
