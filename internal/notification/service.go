package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/sugar258596/experiment-server/internal/user"
	"go.uber.org/zap"
)

// ResolveFunc resolves a related reference into its entity for the enriched
// notification view. Implementations dispatch on kind.
type ResolveFunc func(ctx context.Context, ref RelatedRef) (any, error)

// Enriched is a notification plus the best-effort resolved related entity.
// RelatedData stays nil when resolution fails; the failure never propagates.
type Enriched struct {
	*Notification
	RelatedData any
}

type DispatchRequest struct {
	// RecipientID is ignored when Broadcast is set.
	RecipientID string
	Broadcast   bool
	Kind        RefKind
	RelatedID   *string
	Title       string
	Content     string
}

type Service interface {
	// Dispatch persists notices and returns the number of rows created:
	// one for a single recipient, one per active user for a broadcast.
	Dispatch(ctx context.Context, req DispatchRequest) (int, error)

	ListMine(ctx context.Context, userID string, filter Filter) ([]*Enriched, int, error)
	MarkAsRead(ctx context.Context, id, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
}

type service struct {
	repo        Repository
	userService user.Service
	resolve     ResolveFunc
	logger      *zap.Logger
}

func NewService(repo Repository, userService user.Service, resolve ResolveFunc, logger *zap.Logger) Service {
	return &service{
		repo:        repo,
		userService: userService,
		resolve:     resolve,
		logger:      logger,
	}
}

func (s *service) Dispatch(ctx context.Context, req DispatchRequest) (int, error) {
	if strings.TrimSpace(req.Title) == "" {
		return 0, ErrTitleRequired
	}
	if req.Kind == "" {
		req.Kind = RefNone
	}

	if req.Broadcast {
		ids, err := s.userService.ListActiveIDs(ctx)
		if err != nil {
			return 0, err
		}

		ns := make([]*Notification, len(ids))
		for i, id := range ids {
			ns[i] = &Notification{
				RecipientID: id,
				Kind:        req.Kind,
				RelatedID:   req.RelatedID,
				Title:       req.Title,
				Content:     req.Content,
			}
		}

		count, err := s.repo.CreateBatch(ctx, ns)
		if err != nil {
			return 0, err
		}

		s.logger.Info("broadcast notification dispatched",
			zap.String("title", req.Title),
			zap.Int("recipients", count),
		)
		return count, nil
	}

	if _, err := s.userService.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return 0, ErrRecipientNotFound
		}
		return 0, err
	}

	n := &Notification{
		RecipientID: req.RecipientID,
		Kind:        req.Kind,
		RelatedID:   req.RelatedID,
		Title:       req.Title,
		Content:     req.Content,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return 0, err
	}

	return 1, nil
}

func (s *service) ListMine(ctx context.Context, userID string, filter Filter) ([]*Enriched, int, error) {
	// The personalized view only carries notifications that point at an
	// entity; generic broadcasts are excluded here.
	filter.OnlyRelated = true

	ns, total, err := s.repo.ListByRecipient(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}

	enriched := make([]*Enriched, len(ns))
	for i, n := range ns {
		e := &Enriched{Notification: n}

		if ref := n.Related(); ref.Kind != RefNone && s.resolve != nil {
			data, err := s.resolve(ctx, ref)
			if err != nil {
				// Resolution is best-effort; a missing or broken related
				// entity must not fail the listing.
				s.logger.Warn("failed to resolve related entity",
					zap.String("notification_id", n.ID),
					zap.String("kind", string(ref.Kind)),
					zap.String("related_id", ref.ID),
					zap.Error(err),
				)
			} else {
				e.RelatedData = data
			}
		}

		enriched[i] = e
	}

	return enriched, total, nil
}

func (s *service) MarkAsRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.SoftDelete(ctx, id, userID)
}
