package repair

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/notification"
	"github.com/sugar258596/experiment-server/internal/user"
	"github.com/sugar258596/experiment-server/internal/workflow"
)

type fakeRepo struct {
	tickets map[string]*RepairTicket
	notices []*notification.Notification
	nextID  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tickets: map[string]*RepairTicket{}}
}

func (r *fakeRepo) Create(ctx context.Context, t *RepairTicket) error {
	r.nextID++
	t.ID = fmt.Sprintf("ticket-%d", r.nextID)
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	clone := *t
	r.tickets[t.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*RepairTicket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]*RepairTicket, int, error) {
	var out []*RepairTicket
	for _, t := range r.tickets {
		if filter.ReporterID != "" && t.ReporterID != filter.ReporterID {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateStatusTx(ctx context.Context, t *RepairTicket, n *notification.Notification) error {
	if _, ok := r.tickets[t.ID]; !ok {
		return ErrNotFound
	}
	clone := *t
	r.tickets[t.ID] = &clone
	r.notices = append(r.notices, n)
	return nil
}

type fakeInstrumentService struct {
	instruments map[string]*instrument.Instrument
}

func (s *fakeInstrumentService) Create(ctx context.Context, req instrument.CreateRequest) (*instrument.Instrument, error) {
	panic("not used")
}

func (s *fakeInstrumentService) GetByID(ctx context.Context, id string) (*instrument.Instrument, error) {
	ins, ok := s.instruments[id]
	if !ok {
		return nil, instrument.ErrNotFound
	}
	return ins, nil
}

func (s *fakeInstrumentService) List(ctx context.Context, filter instrument.Filter) ([]*instrument.Instrument, int, error) {
	panic("not used")
}

func (s *fakeInstrumentService) Update(ctx context.Context, id string, req instrument.UpdateRequest) (*instrument.Instrument, error) {
	panic("not used")
}

func (s *fakeInstrumentService) Delete(ctx context.Context, id string) error {
	panic("not used")
}

func newRepairService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	instruments := &fakeInstrumentService{instruments: map[string]*instrument.Instrument{
		"ins-1": {ID: "ins-1", Name: "Oscilloscope", Status: instrument.StatusActive},
	}}
	return NewService(repo, instruments, zap.NewNop()), repo
}

func TestReport(t *testing.T) {
	svc, _ := newRepairService(t)

	t.Run("success", func(t *testing.T) {
		ticket, err := svc.Report(context.Background(), ReportRequest{
			ReporterID:   "student-1",
			InstrumentID: "ins-1",
			FaultType:    "display",
			Urgency:      UrgencyHigh,
			Description:  "screen stays blank after power on",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, ticket.ID)
		assert.Equal(t, workflow.StatusPending, ticket.Status)
	})

	t.Run("unknown instrument", func(t *testing.T) {
		_, err := svc.Report(context.Background(), ReportRequest{
			ReporterID:   "student-1",
			InstrumentID: "ins-missing",
			FaultType:    "display",
			Urgency:      UrgencyLow,
		})
		assert.ErrorIs(t, err, ErrInstrumentNotFound)
	})

	t.Run("invalid urgency", func(t *testing.T) {
		_, err := svc.Report(context.Background(), ReportRequest{
			ReporterID:   "student-1",
			InstrumentID: "ins-1",
			FaultType:    "display",
			Urgency:      "critical",
		})
		assert.ErrorIs(t, err, ErrInvalidUrgency)
	})
}

func TestUpdateStatus(t *testing.T) {
	report := func(t *testing.T, svc Service) *RepairTicket {
		t.Helper()
		ticket, err := svc.Report(context.Background(), ReportRequest{
			ReporterID:   "student-1",
			InstrumentID: "ins-1",
			FaultType:    "laser",
			Urgency:      UrgencyMedium,
			Description:  "beam misaligned",
		})
		require.NoError(t, err)
		return ticket
	}

	t.Run("pending to in_progress notifies the reporter", func(t *testing.T) {
		svc, repo := newRepairService(t)
		ticket := report(t, svc)

		updated, err := svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusInProgress}, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		assert.Equal(t, workflow.StatusInProgress, updated.Status)
		require.NotNil(t, updated.HandledBy)
		assert.Equal(t, "teacher-1", *updated.HandledBy)

		require.Len(t, repo.notices, 1)
		assert.Equal(t, "student-1", repo.notices[0].RecipientID)
		assert.Equal(t, notification.RefRepair, repo.notices[0].Kind)
	})

	t.Run("in_progress may move back to pending", func(t *testing.T) {
		svc, _ := newRepairService(t)
		ticket := report(t, svc)

		_, err := svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusInProgress}, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		updated, err := svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusPending}, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusPending, updated.Status)
	})

	t.Run("completing records the summary and timestamp", func(t *testing.T) {
		svc, _ := newRepairService(t)
		ticket := report(t, svc)

		updated, err := svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusCompleted, Summary: "realigned optics"},
			"teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		assert.Equal(t, workflow.StatusCompleted, updated.Status)
		require.NotNil(t, updated.Summary)
		assert.Equal(t, "realigned optics", *updated.Summary)
		assert.NotNil(t, updated.CompletedAt)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		svc, _ := newRepairService(t)
		ticket := report(t, svc)

		_, err := svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusCompleted}, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		_, err = svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusInProgress}, "teacher-1", user.RoleTeacher)
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})

	t.Run("foreign statuses are rejected", func(t *testing.T) {
		svc, _ := newRepairService(t)
		ticket := report(t, svc)

		_, err := svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusApproved}, "teacher-1", user.RoleTeacher)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("students cannot update status", func(t *testing.T) {
		svc, _ := newRepairService(t)
		ticket := report(t, svc)

		_, err := svc.UpdateStatus(context.Background(), ticket.ID,
			UpdateStatusRequest{Status: workflow.StatusInProgress}, "student-1", user.RoleStudent)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}
