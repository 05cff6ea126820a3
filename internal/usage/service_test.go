package usage

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
	instruments map[string]instrument.Status
	requests    map[string]*UsageRequest
	notices     []*notification.Notification
	nextID      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		instruments: map[string]instrument.Status{},
		requests:    map[string]*UsageRequest{},
	}
}

func (r *fakeRepo) hasOverlap(u *UsageRequest) bool {
	for _, existing := range r.requests {
		if existing.InstrumentID != u.InstrumentID || existing.RequesterID != u.RequesterID {
			continue
		}
		if existing.Status != workflow.StatusPending && existing.Status != workflow.StatusApproved {
			continue
		}
		if existing.StartTime.Before(u.EndTime) && existing.EndTime.After(u.StartTime) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) ApplyTx(ctx context.Context, u *UsageRequest) error {
	status, ok := r.instruments[u.InstrumentID]
	if !ok {
		return ErrInstrumentNotFound
	}
	if status != instrument.StatusActive {
		return ErrInstrumentUnavailable
	}
	if r.hasOverlap(u) {
		return ErrDuplicateApplication
	}

	r.nextID++
	u.ID = fmt.Sprintf("usage-%d", r.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	clone := *u
	r.requests[u.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*UsageRequest, error) {
	u, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]*UsageRequest, int, error) {
	var out []*UsageRequest
	for _, u := range r.requests {
		if filter.RequesterID != "" && u.RequesterID != filter.RequesterID {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, u *UsageRequest) error {
	if _, ok := r.requests[u.ID]; !ok {
		return ErrNotFound
	}
	clone := *u
	r.requests[u.ID] = &clone
	return nil
}

func (r *fakeRepo) ReviewTx(ctx context.Context, u *UsageRequest, n *notification.Notification, markBorrowed bool) error {
	if markBorrowed {
		status, ok := r.instruments[u.InstrumentID]
		if !ok {
			return ErrInstrumentNotFound
		}
		if status != instrument.StatusActive {
			return ErrInstrumentUnavailable
		}
	}
	if err := r.UpdateStatus(ctx, u); err != nil {
		return err
	}
	r.notices = append(r.notices, n)
	if markBorrowed {
		r.instruments[u.InstrumentID] = instrument.StatusBorrowed
	}
	return nil
}

func newUsageService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	repo.instruments["ins-1"] = instrument.StatusActive
	repo.instruments["ins-2"] = instrument.StatusMaintenance
	return NewService(repo, zap.NewNop()), repo
}

func window(startHours, durationHours int) (time.Time, time.Time) {
	start := time.Now().UTC().Add(time.Duration(startHours) * time.Hour)
	return start, start.Add(time.Duration(durationHours) * time.Hour)
}

func TestApply(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, _ := newUsageService(t)
		start, end := window(24, 2)

		u, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-1",
			StartTime:    start,
			EndTime:      end,
			Purpose:      "spectrometry",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, workflow.StatusPending, u.Status)
	})

	t.Run("end before start", func(t *testing.T) {
		svc, _ := newUsageService(t)
		start, end := window(24, 2)

		_, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-1",
			StartTime:    end,
			EndTime:      start,
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("window entirely in the past", func(t *testing.T) {
		svc, _ := newUsageService(t)
		start, end := window(-48, 2)

		_, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-1",
			StartTime:    start,
			EndTime:      end,
		})
		assert.ErrorIs(t, err, ErrTimeInPast)
	})

	t.Run("unknown instrument", func(t *testing.T) {
		svc, _ := newUsageService(t)
		start, end := window(24, 2)

		_, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-missing",
			StartTime:    start,
			EndTime:      end,
		})
		assert.ErrorIs(t, err, ErrInstrumentNotFound)
	})

	t.Run("instrument under maintenance", func(t *testing.T) {
		svc, _ := newUsageService(t)
		start, end := window(24, 2)

		_, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-2",
			StartTime:    start,
			EndTime:      end,
		})
		assert.ErrorIs(t, err, ErrInstrumentUnavailable)
	})
}

func TestApplyOverlap(t *testing.T) {
	svc, _ := newUsageService(t)
	start, end := window(24, 4)

	_, err := svc.Apply(context.Background(), ApplyRequest{
		RequesterID:  "student-1",
		InstrumentID: "ins-1",
		StartTime:    start,
		EndTime:      end,
		Purpose:      "first run",
	})
	require.NoError(t, err)

	t.Run("same requester overlapping window", func(t *testing.T) {
		_, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-1",
			StartTime:    start.Add(time.Hour),
			EndTime:      end.Add(time.Hour),
			Purpose:      "second run",
		})
		assert.ErrorIs(t, err, ErrDuplicateApplication)
	})

	t.Run("other requester may overlap", func(t *testing.T) {
		_, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-2",
			InstrumentID: "ins-1",
			StartTime:    start,
			EndTime:      end,
			Purpose:      "parallel request",
		})
		assert.NoError(t, err)
	})

	t.Run("same requester disjoint window", func(t *testing.T) {
		_, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-1",
			StartTime:    end.Add(time.Hour),
			EndTime:      end.Add(3 * time.Hour),
			Purpose:      "later run",
		})
		assert.NoError(t, err)
	})
}

func TestReviewUsage(t *testing.T) {
	apply := func(t *testing.T, svc Service) *UsageRequest {
		t.Helper()
		start, end := window(24, 2)
		u, err := svc.Apply(context.Background(), ApplyRequest{
			RequesterID:  "student-1",
			InstrumentID: "ins-1",
			StartTime:    start,
			EndTime:      end,
			Purpose:      "analysis",
		})
		require.NoError(t, err)
		return u
	}

	t.Run("approve marks the instrument borrowed", func(t *testing.T) {
		svc, repo := newUsageService(t)
		u := apply(t, svc)

		reviewed, err := svc.Review(context.Background(), u.ID,
			ReviewRequest{Decision: DecisionApprove}, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		assert.Equal(t, workflow.StatusApproved, reviewed.Status)
		assert.Equal(t, instrument.StatusBorrowed, repo.instruments["ins-1"])

		require.Len(t, repo.notices, 1)
		assert.Equal(t, "student-1", repo.notices[0].RecipientID)
		assert.Equal(t, notification.RefUsage, repo.notices[0].Kind)
	})

	t.Run("approve fails when instrument became unavailable", func(t *testing.T) {
		svc, repo := newUsageService(t)
		u := apply(t, svc)

		repo.instruments["ins-1"] = instrument.StatusMaintenance
		_, err := svc.Review(context.Background(), u.ID,
			ReviewRequest{Decision: DecisionApprove}, "teacher-1", user.RoleTeacher)
		assert.ErrorIs(t, err, ErrInstrumentUnavailable)
	})

	t.Run("reject requires a reason and keeps instrument active", func(t *testing.T) {
		svc, repo := newUsageService(t)
		u := apply(t, svc)

		_, err := svc.Review(context.Background(), u.ID,
			ReviewRequest{Decision: DecisionReject}, "teacher-1", user.RoleTeacher)
		assert.ErrorIs(t, err, ErrReasonRequired)

		reviewed, err := svc.Review(context.Background(), u.ID,
			ReviewRequest{Decision: DecisionReject, Reason: "queue full"},
			"teacher-1", user.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusRejected, reviewed.Status)
		assert.Equal(t, instrument.StatusActive, repo.instruments["ins-1"])
	})

	t.Run("students cannot review", func(t *testing.T) {
		svc, _ := newUsageService(t)
		u := apply(t, svc)

		_, err := svc.Review(context.Background(), u.ID,
			ReviewRequest{Decision: DecisionApprove}, "student-2", user.RoleStudent)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("terminal requests cannot be re-reviewed", func(t *testing.T) {
		svc, _ := newUsageService(t)
		u := apply(t, svc)

		_, err := svc.Cancel(context.Background(), u.ID, "student-1", user.RoleStudent)
		require.NoError(t, err)

		_, err = svc.Review(context.Background(), u.ID,
			ReviewRequest{Decision: DecisionApprove}, "teacher-1", user.RoleTeacher)
		assert.ErrorIs(t, err, ErrAlreadyConcluded)
	})
}
