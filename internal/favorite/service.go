package favorite

import (
	"context"
	"errors"

	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/lab"
	"go.uber.org/zap"
)

type Service interface {
	// Toggle flips the user's favorite on the resource and reports the
	// resulting state. Toggling twice always lands back where it started.
	Toggle(ctx context.Context, userID, resourceID string) (*ToggleResult, error)

	ListMine(ctx context.Context, userID string, page, pageSize int) ([]*Item, int, error)
}

type service struct {
	repo              Repository
	labService        lab.Service
	instrumentService instrument.Service
	logger            *zap.Logger
}

func NewService(repo Repository, labService lab.Service, instrumentService instrument.Service, logger *zap.Logger) Service {
	return &service{
		repo:              repo,
		labService:        labService,
		instrumentService: instrumentService,
		logger:            logger,
	}
}

func (s *service) Toggle(ctx context.Context, userID, resourceID string) (*ToggleResult, error) {
	removed, err := s.repo.Delete(ctx, userID, resourceID)
	if err != nil {
		return nil, err
	}
	if removed {
		return &ToggleResult{IsFavorited: false}, nil
	}

	kind, err := s.resolveKind(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	f := &Favorite{
		UserID:     userID,
		ResourceID: resourceID,
		Kind:       kind,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		// A concurrent toggle inserted first; the second actor lands on
		// the off state, same as a sequential double toggle.
		if errors.Is(err, errAlreadyFavorited) {
			if _, err := s.repo.Delete(ctx, userID, resourceID); err != nil {
				return nil, err
			}
			return &ToggleResult{IsFavorited: false}, nil
		}
		return nil, err
	}

	s.logger.Info("favorite added",
		zap.String("user_id", userID),
		zap.String("resource_id", resourceID),
		zap.String("kind", string(kind)),
	)

	return &ToggleResult{IsFavorited: true}, nil
}

func (s *service) ListMine(ctx context.Context, userID string, page, pageSize int) ([]*Item, int, error) {
	favorites, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*Item, len(favorites))
	for i, f := range favorites {
		item := &Item{Favorite: f}
		switch f.Kind {
		case KindLab:
			if l, err := s.labService.GetByID(ctx, f.ResourceID); err == nil {
				item.ResourceName = l.Name
				item.ResourceStatus = string(l.Status)
			}
		case KindInstrument:
			if ins, err := s.instrumentService.GetByID(ctx, f.ResourceID); err == nil {
				item.ResourceName = ins.Name
				item.ResourceStatus = string(ins.Status)
			}
		}
		items[i] = item
	}

	return items, total, nil
}

// resolveKind looks the resource up in both catalogs. Labs and instruments
// share one favorite id space; an id matching neither is a 404.
func (s *service) resolveKind(ctx context.Context, resourceID string) (ResourceKind, error) {
	if _, err := s.labService.GetByID(ctx, resourceID); err == nil {
		return KindLab, nil
	} else if !errors.Is(err, lab.ErrNotFound) {
		return "", err
	}

	if _, err := s.instrumentService.GetByID(ctx, resourceID); err == nil {
		return KindInstrument, nil
	} else if !errors.Is(err, instrument.ErrNotFound) {
		return "", err
	}

	return "", ErrResourceNotFound
}
