package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

type mockHoursRepo struct{ mock.Mock }

func (m *mockHoursRepo) Get(ctx context.Context) (*domain.OperationalHours, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperationalHours), args.Error(1)
}

func (m *mockHoursRepo) Save(ctx context.Context, hours *domain.OperationalHours) error {
	return m.Called(ctx, hours).Error(0)
}

type mockHolidayRepo struct{ mock.Mock }

func (m *mockHolidayRepo) Create(ctx context.Context, holiday *domain.Holiday) error {
	return m.Called(ctx, holiday).Error(0)
}

func (m *mockHolidayRepo) Update(ctx context.Context, holiday *domain.Holiday) error {
	return m.Called(ctx, holiday).Error(0)
}

func (m *mockHolidayRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockHolidayRepo) GetByID(ctx context.Context, id string) (*domain.Holiday, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holiday), args.Error(1)
}

func (m *mockHolidayRepo) List(ctx context.Context, activeOnly bool) ([]domain.Holiday, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Holiday), args.Error(1)
}

type mockPolicyRepo struct{ mock.Mock }

func (m *mockPolicyRepo) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	return m.Called(ctx, policy).Error(0)
}

func (m *mockPolicyRepo) Update(ctx context.Context, policy *domain.SLAPolicy) error {
	return m.Called(ctx, policy).Error(0)
}

func (m *mockPolicyRepo) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SLAPolicy), args.Error(1)
}

func (m *mockPolicyRepo) GetActiveByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	args := m.Called(ctx, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SLAPolicy), args.Error(1)
}

func (m *mockPolicyRepo) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SLAPolicy), args.Error(1)
}

type mockTicketRepo struct{ mock.Mock }

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) ListBreachCandidates(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) MarkBreached(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockHistoryRepo struct{ mock.Mock }

func (m *mockHistoryRepo) Create(ctx context.Context, history *domain.TicketHistory) error {
	return m.Called(ctx, history).Error(0)
}

func (m *mockHistoryRepo) ListByTicket(ctx context.Context, ticketID string, changeType *domain.TicketChangeType) ([]domain.TicketHistory, error) {
	args := m.Called(ctx, ticketID, changeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketHistory), args.Error(1)
}

type mockTechnicianRepo struct{ mock.Mock }

func (m *mockTechnicianRepo) Create(ctx context.Context, tech *domain.Technician) error {
	return m.Called(ctx, tech).Error(0)
}

func (m *mockTechnicianRepo) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Technician), args.Error(1)
}

func (m *mockTechnicianRepo) GetByEmail(ctx context.Context, email string) (*domain.Technician, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Technician), args.Error(1)
}

func (m *mockTechnicianRepo) List(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Technician), args.Error(1)
}

// fixedCalendar serves one prebuilt calculator.
type fixedCalendar struct {
	calc *sla.Calculator
	err  error
}

func (f fixedCalendar) Calculator(context.Context) (*sla.Calculator, error) {
	return f.calc, f.err
}

var testZone = sla.FixedZone("ICT", 7*3600)

// weekdayHours is Monday to Friday 08:00-18:00 with lunch 12:00-13:00.
func weekdayHours() domain.OperationalHours {
	hours := domain.OperationalHours{
		Mode:           domain.OperatingModeStandard,
		StandardWindow: domain.TimeRange{Start: "08:00", End: "18:00"},
		StandardBreaks: []domain.TimeRange{{Start: "12:00", End: "13:00"}},
	}
	for i := range hours.WorkingDays {
		weekday := time.Weekday(i)
		enabled := weekday != time.Saturday && weekday != time.Sunday
		hours.WorkingDays[i] = domain.WorkingDay{Weekday: weekday, Enabled: enabled, Kind: domain.ScheduleKindStandard}
	}
	return hours
}

func mustCalculator(hours domain.OperationalHours, holidays ...domain.Holiday) *sla.Calculator {
	calc, err := sla.NewCalculator(hours, holidays, testZone)
	if err != nil {
		panic(err)
	}
	return calc
}

// local builds an instant at +07:00 in January 2025. The 15th is a Wednesday.
func local(day, hour, minute int) time.Time {
	return testZone.Date(2025, time.January, day, hour, minute)
}
