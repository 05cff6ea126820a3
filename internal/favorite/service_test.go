package favorite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/lab"
)

type fakeRepo struct {
	favorites map[string]*Favorite
	nextID    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{favorites: map[string]*Favorite{}}
}

func key(userID, resourceID string) string {
	return userID + "|" + resourceID
}

func (r *fakeRepo) Create(ctx context.Context, f *Favorite) error {
	k := key(f.UserID, f.ResourceID)
	if _, ok := r.favorites[k]; ok {
		return errAlreadyFavorited
	}
	r.nextID++
	f.ID = fmt.Sprintf("fav-%d", r.nextID)
	f.CreatedAt = time.Now()
	clone := *f
	r.favorites[k] = &clone
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, userID, resourceID string) (bool, error) {
	k := key(userID, resourceID)
	if _, ok := r.favorites[k]; !ok {
		return false, nil
	}
	delete(r.favorites, k)
	return true, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*Favorite, int, error) {
	var out []*Favorite
	for _, f := range r.favorites {
		if f.UserID != userID {
			continue
		}
		clone := *f
		out = append(out, &clone)
	}
	return out, len(out), nil
}

// racyRepo simulates a concurrent toggle slipping its insert in between
// this actor's delete and insert.
type racyRepo struct {
	*fakeRepo
}

func (r *racyRepo) Create(ctx context.Context, f *Favorite) error {
	if err := r.fakeRepo.Create(ctx, &Favorite{
		UserID:     f.UserID,
		ResourceID: f.ResourceID,
		Kind:       f.Kind,
	}); err != nil {
		return err
	}
	return r.fakeRepo.Create(ctx, f)
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

func newFavoriteService(t *testing.T) (Service, *fakeRepo, *fakeLabService) {
	t.Helper()
	repo := newFakeRepo()
	labs := &fakeLabService{labs: map[string]*lab.Lab{
		"lab-1": {ID: "lab-1", Name: "Chemistry Lab", Status: lab.StatusActive},
	}}
	instruments := &fakeInstrumentService{instruments: map[string]*instrument.Instrument{
		"ins-1": {ID: "ins-1", Name: "Oscilloscope", Status: instrument.StatusActive},
	}}
	return NewService(repo, labs, instruments, zap.NewNop()), repo, labs
}

func TestToggle(t *testing.T) {
	t.Run("unknown resource", func(t *testing.T) {
		svc, _, _ := newFavoriteService(t)

		_, err := svc.Toggle(context.Background(), "student-1", "res-missing")
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("double toggle returns to the initial state", func(t *testing.T) {
		svc, repo, _ := newFavoriteService(t)

		res, err := svc.Toggle(context.Background(), "student-1", "lab-1")
		require.NoError(t, err)
		assert.True(t, res.IsFavorited)

		res, err = svc.Toggle(context.Background(), "student-1", "lab-1")
		require.NoError(t, err)
		assert.False(t, res.IsFavorited)
		assert.Empty(t, repo.favorites)

		res, err = svc.Toggle(context.Background(), "student-1", "lab-1")
		require.NoError(t, err)
		assert.True(t, res.IsFavorited)
	})

	t.Run("resolves the resource kind", func(t *testing.T) {
		svc, repo, _ := newFavoriteService(t)

		_, err := svc.Toggle(context.Background(), "student-1", "lab-1")
		require.NoError(t, err)
		_, err = svc.Toggle(context.Background(), "student-1", "ins-1")
		require.NoError(t, err)

		assert.Equal(t, KindLab, repo.favorites[key("student-1", "lab-1")].Kind)
		assert.Equal(t, KindInstrument, repo.favorites[key("student-1", "ins-1")].Kind)
	})

	t.Run("users favorite independently", func(t *testing.T) {
		svc, _, _ := newFavoriteService(t)

		_, err := svc.Toggle(context.Background(), "student-1", "lab-1")
		require.NoError(t, err)

		res, err := svc.Toggle(context.Background(), "student-2", "lab-1")
		require.NoError(t, err)
		assert.True(t, res.IsFavorited)
	})

	t.Run("lost insert race lands on the off state", func(t *testing.T) {
		repo := newFakeRepo()
		racy := &racyRepo{fakeRepo: repo}
		labs := &fakeLabService{labs: map[string]*lab.Lab{
			"lab-1": {ID: "lab-1", Name: "Chemistry Lab", Status: lab.StatusActive},
		}}
		instruments := &fakeInstrumentService{instruments: map[string]*instrument.Instrument{}}
		svc := NewService(racy, labs, instruments, zap.NewNop())

		res, err := svc.Toggle(context.Background(), "student-1", "lab-1")
		require.NoError(t, err)
		assert.False(t, res.IsFavorited)
		assert.Empty(t, repo.favorites)
	})
}

func TestListMine(t *testing.T) {
	svc, _, labs := newFavoriteService(t)

	_, err := svc.Toggle(context.Background(), "student-1", "lab-1")
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), "student-1", "ins-1")
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), "student-2", "lab-1")
	require.NoError(t, err)

	items, total, err := svc.ListMine(context.Background(), "student-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)

	byResource := map[string]*Item{}
	for _, item := range items {
		byResource[item.ResourceID] = item
	}
	require.Contains(t, byResource, "lab-1")
	require.Contains(t, byResource, "ins-1")
	assert.Equal(t, "Chemistry Lab", byResource["lab-1"].ResourceName)
	assert.Equal(t, string(lab.StatusActive), byResource["lab-1"].ResourceStatus)
	assert.Equal(t, "Oscilloscope", byResource["ins-1"].ResourceName)

	t.Run("deleted resources keep the favorite with empty display fields", func(t *testing.T) {
		delete(labs.labs, "lab-1")

		items, _, err := svc.ListMine(context.Background(), "student-1", 1, 20)
		require.NoError(t, err)
		for _, item := range items {
			if item.ResourceID == "lab-1" {
				assert.Empty(t, item.ResourceName)
			}
		}
	})
}
