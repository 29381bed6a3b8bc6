package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
)

func newPolicyService(repo *mockPolicyRepo, hours domain.OperationalHours) *SLAPolicyService {
	return NewSLAPolicyService(repo, fixedCalendar{calc: mustCalculator(hours)}, zap.NewNop())
}

func TestCreatePolicyDerivesWorkingHours(t *testing.T) {
	repo := &mockPolicyRepo{}
	repo.On("GetActiveByPriority", mock.Anything, domain.TicketPriorityHigh).Return(nil, pgx.ErrNoRows)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.SLAPolicy")).Return(nil)

	policy, err := newPolicyService(repo, weekdayHours()).Create(context.Background(), SLAPolicyInput{
		Name:       " High ",
		Priority:   domain.TicketPriorityHigh,
		Response:   domain.DurationSpec{Minutes: 45},
		Resolution: domain.DurationSpec{Days: 1, Hours: 2, Minutes: 30},
		IsActive:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "High", policy.Name)
	assert.InDelta(t, 0.75, policy.Response.WorkingHours, 1e-9)
	assert.InDelta(t, 11.5, policy.Resolution.WorkingHours, 1e-9)
	repo.AssertExpectations(t)
}

func TestCreatePolicyConflictsWithActivePriority(t *testing.T) {
	repo := &mockPolicyRepo{}
	repo.On("GetActiveByPriority", mock.Anything, domain.TicketPriorityHigh).
		Return(&domain.SLAPolicy{ID: "existing"}, nil)

	_, err := newPolicyService(repo, weekdayHours()).Create(context.Background(), SLAPolicyInput{
		Name:       "Another",
		Priority:   domain.TicketPriorityHigh,
		Resolution: domain.DurationSpec{Hours: 8},
		IsActive:   true,
	})
	requireCode(t, err, "CONFLICT", http.StatusConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePolicyValidation(t *testing.T) {
	repo := &mockPolicyRepo{}
	_, err := newPolicyService(repo, weekdayHours()).Create(context.Background(), SLAPolicyInput{
		Name:     "Bad",
		Priority: domain.TicketPriorityLow,
		Response: domain.DurationSpec{Hours: -1},
	})
	requireCode(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
}

func TestCreatePolicyRejectsUnreachableDuration(t *testing.T) {
	repo := &mockPolicyRepo{}
	_, err := newPolicyService(repo, weekdayHours()).Create(context.Background(), SLAPolicyInput{
		Name:       "Forever",
		Priority:   domain.TicketPriorityLow,
		Resolution: domain.DurationSpec{Days: 400000},
	})
	requireCode(t, err, "DURATION_OUT_OF_RANGE", http.StatusBadRequest)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdatePolicyKeepsOwnPriority(t *testing.T) {
	repo := &mockPolicyRepo{}
	existing := &domain.SLAPolicy{ID: "p1", Priority: domain.TicketPriorityLow, IsActive: true}
	repo.On("GetByID", mock.Anything, "p1").Return(existing, nil)
	repo.On("GetActiveByPriority", mock.Anything, domain.TicketPriorityLow).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	updated, err := newPolicyService(repo, weekdayHours()).Update(context.Background(), "p1", SLAPolicyInput{
		Name:       "Low",
		Priority:   domain.TicketPriorityLow,
		Resolution: domain.DurationSpec{Days: 3},
		IsActive:   true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 27, updated.Resolution.WorkingHours, 1e-9)
}

func TestRecomputeOnCalendarUpdate(t *testing.T) {
	repo := &mockPolicyRepo{}
	stale := domain.SLAPolicy{ID: "stale", Resolution: domain.DurationSpec{Days: 1, WorkingHours: 9}}
	fresh := domain.SLAPolicy{ID: "fresh", Resolution: domain.DurationSpec{Hours: 4, WorkingHours: 4}}
	repo.On("List", mock.Anything).Return([]domain.SLAPolicy{stale, fresh}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.SLAPolicy) bool { return p.ID == "stale" })).Return(nil)

	shorter := weekdayHours()
	shorter.StandardWindow.End = "17:00"
	svc := newPolicyService(repo, shorter)

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventCalendarUpdated}))

	repo.AssertNumberOfCalls(t, "Update", 1)
	updated := repo.Calls[1].Arguments.Get(1).(*domain.SLAPolicy)
	assert.InDelta(t, 8, updated.Resolution.WorkingHours, 1e-9)
}
