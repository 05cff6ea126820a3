package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugar258596/experiment-server/internal/user"
)

type fakeRepo struct {
	notifications map[string]*Notification
	nextID        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{notifications: map[string]*Notification{}}
}

func (r *fakeRepo) Create(ctx context.Context, n *Notification) error {
	r.nextID++
	n.ID = fmt.Sprintf("notice-%d", r.nextID)
	n.CreatedAt = time.Now()
	clone := *n
	r.notifications[n.ID] = &clone
	return nil
}

func (r *fakeRepo) CreateBatch(ctx context.Context, ns []*Notification) (int, error) {
	for _, n := range ns {
		if err := r.Create(ctx, n); err != nil {
			return 0, err
		}
	}
	return len(ns), nil
}

func (r *fakeRepo) ListByRecipient(ctx context.Context, recipientID string, filter Filter) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		if filter.OnlyRelated && n.Related().Kind == RefNone {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeRepo) MarkAsRead(ctx context.Context, id, recipientID string) error {
	n, ok := r.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (r *fakeRepo) MarkAllAsRead(ctx context.Context, recipientID string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, id, recipientID string) error {
	n, ok := r.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}

type fakeUserService struct {
	users map[string]*user.User
}

func (s *fakeUserService) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	panic("not used")
}

func (s *fakeUserService) Login(ctx context.Context, email, password string) (*user.User, error) {
	panic("not used")
}

func (s *fakeUserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserService) List(ctx context.Context, filter user.Filter) ([]*user.User, int, error) {
	panic("not used")
}

func (s *fakeUserService) Update(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	panic("not used")
}

func (s *fakeUserService) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func newNotificationService(t *testing.T, resolve ResolveFunc) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	users := &fakeUserService{users: map[string]*user.User{
		"student-1": {ID: "student-1", Email: "alice@example.edu", IsActive: true},
		"student-2": {ID: "student-2", Email: "bob@example.edu", IsActive: true},
		"teacher-1": {ID: "teacher-1", Email: "carol@example.edu", IsActive: true},
	}}
	return NewService(repo, users, resolve, zap.NewNop()), repo
}

func TestDispatch(t *testing.T) {
	t.Run("empty title", func(t *testing.T) {
		svc, _ := newNotificationService(t, nil)

		_, err := svc.Dispatch(context.Background(), DispatchRequest{
			RecipientID: "student-1",
			Title:       "   ",
		})
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		svc, _ := newNotificationService(t, nil)

		_, err := svc.Dispatch(context.Background(), DispatchRequest{
			RecipientID: "ghost",
			Title:       "hello",
		})
		assert.ErrorIs(t, err, ErrRecipientNotFound)
	})

	t.Run("single recipient", func(t *testing.T) {
		svc, repo := newNotificationService(t, nil)

		count, err := svc.Dispatch(context.Background(), DispatchRequest{
			RecipientID: "student-1",
			Title:       "Maintenance window",
			Content:     "The chemistry lab closes at noon.",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		require.Len(t, repo.notifications, 1)
	})

	t.Run("broadcast fans out to every active user", func(t *testing.T) {
		svc, repo := newNotificationService(t, nil)

		count, err := svc.Dispatch(context.Background(), DispatchRequest{
			Broadcast: true,
			Title:     "Semester schedule published",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Len(t, repo.notifications, 3)

		unread, err := svc.CountUnread(context.Background(), "student-2")
		require.NoError(t, err)
		assert.Equal(t, 1, unread)
	})
}

func TestListMine(t *testing.T) {
	relatedID := "booking-1"

	dispatch := func(t *testing.T, svc Service, req DispatchRequest) {
		t.Helper()
		_, err := svc.Dispatch(context.Background(), req)
		require.NoError(t, err)
	}

	t.Run("only related notifications with resolved entities", func(t *testing.T) {
		resolved := map[string]string{"booking-1": "Chemistry Lab, slot 3"}
		svc, _ := newNotificationService(t, func(ctx context.Context, ref RelatedRef) (any, error) {
			data, ok := resolved[ref.ID]
			if !ok {
				return nil, errors.New("gone")
			}
			return data, nil
		})

		dispatch(t, svc, DispatchRequest{
			RecipientID: "student-1",
			Kind:        RefRoomBooking,
			RelatedID:   &relatedID,
			Title:       "Booking approved",
		})
		dispatch(t, svc, DispatchRequest{
			RecipientID: "student-1",
			Title:       "Generic announcement",
		})

		items, total, err := svc.ListMine(context.Background(), "student-1", Filter{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Booking approved", items[0].Title)
		assert.Equal(t, "Chemistry Lab, slot 3", items[0].RelatedData)
	})

	t.Run("resolver failure leaves related data nil", func(t *testing.T) {
		svc, _ := newNotificationService(t, func(ctx context.Context, ref RelatedRef) (any, error) {
			return nil, errors.New("backing row deleted")
		})

		dispatch(t, svc, DispatchRequest{
			RecipientID: "student-1",
			Kind:        RefRoomBooking,
			RelatedID:   &relatedID,
			Title:       "Booking approved",
		})

		items, _, err := svc.ListMine(context.Background(), "student-1", Filter{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Nil(t, items[0].RelatedData)
	})
}

func TestReadState(t *testing.T) {
	svc, repo := newNotificationService(t, nil)

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		_, err := svc.Dispatch(context.Background(), DispatchRequest{
			RecipientID: "student-1",
			Title:       fmt.Sprintf("notice %d", i),
		})
		require.NoError(t, err)
	}
	for id := range repo.notifications {
		ids = append(ids, id)
	}

	unread, err := svc.CountUnread(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	t.Run("mark one as read is idempotent", func(t *testing.T) {
		require.NoError(t, svc.MarkAsRead(context.Background(), ids[0], "student-1"))
		require.NoError(t, svc.MarkAsRead(context.Background(), ids[0], "student-1"))

		unread, err := svc.CountUnread(context.Background(), "student-1")
		require.NoError(t, err)
		assert.Equal(t, 2, unread)
	})

	t.Run("recipients cannot touch each other's notices", func(t *testing.T) {
		err := svc.MarkAsRead(context.Background(), ids[1], "student-2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mark all returns the flipped count", func(t *testing.T) {
		count, err := svc.MarkAllAsRead(context.Background(), "student-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = svc.MarkAllAsRead(context.Background(), "student-1")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("delete removes the recipient's own notice", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), ids[2], "student-1"))
		assert.ErrorIs(t, svc.Delete(context.Background(), ids[2], "student-1"), ErrNotFound)
	})
}
