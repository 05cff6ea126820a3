package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugar258596/experiment-server/internal/lab"
	"github.com/sugar258596/experiment-server/internal/notification"
	"github.com/sugar258596/experiment-server/internal/user"
	"github.com/sugar258596/experiment-server/internal/workflow"
)

type fakeRepo struct {
	bookings map[string]*Booking
	notices  []*notification.Notification
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[string]*Booking{}}
}

func (r *fakeRepo) blocking(labID string, date time.Time, slot Timeslot) bool {
	for _, b := range r.bookings {
		if b.LabID != labID || !b.Date.Equal(date) || b.Timeslot != slot {
			continue
		}
		for _, st := range BlockingStatuses {
			if b.Status == st {
				return true
			}
		}
	}
	return false
}

func (r *fakeRepo) Create(ctx context.Context, b *Booking) error {
	if r.blocking(b.LabID, b.Date, b.Timeslot) {
		return ErrSlotConflict
	}
	r.nextID++
	b.ID = fmt.Sprintf("booking-%d", r.nextID)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if filter.RequesterID != "" && b.RequesterID != filter.RequesterID {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeRepo) HasSlotConflict(ctx context.Context, labID string, date time.Time, slot Timeslot) (bool, error) {
	return r.blocking(labID, date, slot), nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, b *Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepo) ReviewTx(ctx context.Context, b *Booking, n *notification.Notification) error {
	if err := r.UpdateStatus(ctx, b); err != nil {
		return err
	}
	r.notices = append(r.notices, n)
	return nil
}

type fakeLabService struct {
	labs map[string]*lab.Lab
}

func (s *fakeLabService) Create(ctx context.Context, req lab.CreateRequest) (*lab.Lab, error) {
	panic("not used")
}

func (s *fakeLabService) GetByID(ctx context.Context, id string) (*lab.Lab, error) {
	l, ok := s.labs[id]
	if !ok {
		return nil, lab.ErrNotFound
	}
	return l, nil
}

func (s *fakeLabService) List(ctx context.Context, filter lab.Filter) ([]*lab.Lab, int, error) {
	panic("not used")
}

func (s *fakeLabService) Update(ctx context.Context, id string, req lab.UpdateRequest) (*lab.Lab, error) {
	panic("not used")
}

func (s *fakeLabService) Delete(ctx context.Context, id string) error {
	panic("not used")
}

func newBookingService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	labs := &fakeLabService{labs: map[string]*lab.Lab{
		"lab-1": {ID: "lab-1", Name: "Chemistry Lab", Status: lab.StatusActive, Capacity: 30},
	}}
	return NewService(repo, labs, zap.NewNop()), repo
}

func tomorrow() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
}

func TestCreateBooking(t *testing.T) {
	svc, _ := newBookingService(t)

	t.Run("success", func(t *testing.T) {
		b, err := svc.Create(context.Background(), CreateRequest{
			RequesterID:      "student-1",
			LabID:            "lab-1",
			Date:             tomorrow(),
			Timeslot:         SlotMorning,
			Purpose:          "physics experiment",
			ParticipantCount: 4,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, workflow.StatusPending, b.Status)
	})

	t.Run("invalid timeslot", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateRequest{
			RequesterID: "student-1",
			LabID:       "lab-1",
			Date:        tomorrow(),
			Timeslot:    "midnight",
		})
		assert.ErrorIs(t, err, ErrInvalidTimeslot)
	})

	t.Run("past date", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateRequest{
			RequesterID: "student-1",
			LabID:       "lab-1",
			Date:        tomorrow().AddDate(0, 0, -7),
			Timeslot:    SlotMorning,
		})
		assert.ErrorIs(t, err, ErrDateInPast)
	})

	t.Run("unknown lab", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateRequest{
			RequesterID: "student-1",
			LabID:       "lab-missing",
			Date:        tomorrow(),
			Timeslot:    SlotMorning,
		})
		assert.ErrorIs(t, err, ErrLabNotFound)
	})

	t.Run("over lab capacity", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateRequest{
			RequesterID:      "student-1",
			LabID:            "lab-1",
			Date:             tomorrow(),
			Timeslot:         SlotEvening,
			ParticipantCount: 31,
		})
		assert.ErrorIs(t, err, ErrOverCapacity)
	})

	t.Run("conflicting slot is rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateRequest{
			RequesterID: "student-2",
			LabID:       "lab-1",
			Date:        tomorrow(),
			Timeslot:    SlotMorning,
			Purpose:     "same slot",
		})
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("different slot same day is fine", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateRequest{
			RequesterID: "student-2",
			LabID:       "lab-1",
			Date:        tomorrow(),
			Timeslot:    SlotAfternoon,
			Purpose:     "afternoon session",
		})
		assert.NoError(t, err)
	})
}

func TestCancelFreesSlot(t *testing.T) {
	svc, _ := newBookingService(t)

	first, err := svc.Create(context.Background(), CreateRequest{
		RequesterID: "student-1",
		LabID:       "lab-1",
		Date:        tomorrow(),
		Timeslot:    SlotEvening,
		Purpose:     "evening session",
	})
	require.NoError(t, err)

	// Slot occupied while the request is pending.
	_, err = svc.Create(context.Background(), CreateRequest{
		RequesterID: "student-2",
		LabID:       "lab-1",
		Date:        tomorrow(),
		Timeslot:    SlotEvening,
		Purpose:     "same slot",
	})
	require.ErrorIs(t, err, ErrSlotConflict)

	cancelled, err := svc.Cancel(context.Background(), first.ID, "student-1", user.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCancelled, cancelled.Status)

	// Cancellation frees the slot for the next requester.
	second, err := svc.Create(context.Background(), CreateRequest{
		RequesterID: "student-2",
		LabID:       "lab-1",
		Date:        tomorrow(),
		Timeslot:    SlotEvening,
		Purpose:     "retry",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending, second.Status)
}

func TestReviewBooking(t *testing.T) {
	newPending := func(t *testing.T, svc Service) *Booking {
		t.Helper()
		b, err := svc.Create(context.Background(), CreateRequest{
			RequesterID: "student-1",
			LabID:       "lab-1",
			Date:        tomorrow(),
			Timeslot:    SlotMorning,
			Purpose:     "experiment",
		})
		require.NoError(t, err)
		return b
	}

	t.Run("approve records reviewer and notifies requester", func(t *testing.T) {
		svc, repo := newBookingService(t)
		b := newPending(t, svc)

		reviewed, err := svc.Review(context.Background(), b.ID,
			ReviewRequest{Decision: DecisionApprove}, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		assert.Equal(t, workflow.StatusApproved, reviewed.Status)
		require.NotNil(t, reviewed.ReviewedBy)
		assert.Equal(t, "teacher-1", *reviewed.ReviewedBy)
		assert.NotNil(t, reviewed.ReviewedAt)

		require.Len(t, repo.notices, 1)
		notice := repo.notices[0]
		assert.Equal(t, "student-1", notice.RecipientID)
		assert.Equal(t, notification.RefRoomBooking, notice.Kind)
		require.NotNil(t, notice.RelatedID)
		assert.Equal(t, b.ID, *notice.RelatedID)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		svc, _ := newBookingService(t)
		b := newPending(t, svc)

		_, err := svc.Review(context.Background(), b.ID,
			ReviewRequest{Decision: DecisionReject}, "teacher-1", user.RoleTeacher)
		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("reject stores the reason", func(t *testing.T) {
		svc, repo := newBookingService(t)
		b := newPending(t, svc)

		reviewed, err := svc.Review(context.Background(), b.ID,
			ReviewRequest{Decision: DecisionReject, Reason: "lab under maintenance"},
			"teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		assert.Equal(t, workflow.StatusRejected, reviewed.Status)
		require.NotNil(t, reviewed.RejectionReason)
		assert.Equal(t, "lab under maintenance", *reviewed.RejectionReason)

		require.Len(t, repo.notices, 1)
		assert.Contains(t, repo.notices[0].Content, "lab under maintenance")
	})

	t.Run("students cannot review", func(t *testing.T) {
		svc, _ := newBookingService(t)
		b := newPending(t, svc)

		_, err := svc.Review(context.Background(), b.ID,
			ReviewRequest{Decision: DecisionApprove}, "student-2", user.RoleStudent)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("concluded requests stay concluded", func(t *testing.T) {
		svc, _ := newBookingService(t)
		b := newPending(t, svc)

		_, err := svc.Review(context.Background(), b.ID,
			ReviewRequest{Decision: DecisionReject, Reason: "full"}, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)

		_, err = svc.Review(context.Background(), b.ID,
			ReviewRequest{Decision: DecisionApprove}, "admin-1", user.RoleAdmin)
		assert.ErrorIs(t, err, ErrAlreadyConcluded)
	})
}

func TestCompleteBooking(t *testing.T) {
	svc, _ := newBookingService(t)

	b, err := svc.Create(context.Background(), CreateRequest{
		RequesterID: "student-1",
		LabID:       "lab-1",
		Date:        tomorrow(),
		Timeslot:    SlotMorning,
		Purpose:     "experiment",
	})
	require.NoError(t, err)

	t.Run("pending bookings cannot be completed", func(t *testing.T) {
		_, err := svc.Complete(context.Background(), b.ID, "teacher-1", user.RoleTeacher)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	_, err = svc.Review(context.Background(), b.ID,
		ReviewRequest{Decision: DecisionApprove}, "teacher-1", user.RoleTeacher)
	require.NoError(t, err)

	t.Run("only reviewers may complete", func(t *testing.T) {
		_, err := svc.Complete(context.Background(), b.ID, "student-1", user.RoleStudent)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("approved bookings complete", func(t *testing.T) {
		done, err := svc.Complete(context.Background(), b.ID, "teacher-1", user.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusCompleted, done.Status)
	})
}

func TestCancelPermissions(t *testing.T) {
	svc, _ := newBookingService(t)

	b, err := svc.Create(context.Background(), CreateRequest{
		RequesterID: "student-1",
		LabID:       "lab-1",
		Date:        tomorrow(),
		Timeslot:    SlotMorning,
		Purpose:     "experiment",
	})
	require.NoError(t, err)

	t.Run("another student cannot cancel", func(t *testing.T) {
		_, err := svc.Cancel(context.Background(), b.ID, "student-2", user.RoleStudent)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("owner can cancel", func(t *testing.T) {
		cancelled, err := svc.Cancel(context.Background(), b.ID, "student-1", user.RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusCancelled, cancelled.Status)
	})

	t.Run("cancel after conclusion fails", func(t *testing.T) {
		_, err := svc.Cancel(context.Background(), b.ID, "student-1", user.RoleStudent)
		assert.ErrorIs(t, err, ErrAlreadyConcluded)
	})
}
