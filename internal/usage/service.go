package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/sugar258596/experiment-server/internal/notification"
	"github.com/sugar258596/experiment-server/internal/user"
	"github.com/sugar258596/experiment-server/internal/workflow"
	"go.uber.org/zap"
)

type ApplyRequest struct {
	RequesterID  string
	InstrumentID string
	StartTime    time.Time
	EndTime      time.Time
	Purpose      string
}

// Decision is a reviewer's verdict on a pending usage request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type ReviewRequest struct {
	Decision Decision
	Reason   string
}

type Service interface {
	Apply(ctx context.Context, req ApplyRequest) (*UsageRequest, error)
	GetByID(ctx context.Context, id string) (*UsageRequest, error)
	List(ctx context.Context, filter Filter) ([]*UsageRequest, int, error)
	Review(ctx context.Context, id string, req ReviewRequest, reviewerID string, reviewerRole user.Role) (*UsageRequest, error)
	Cancel(ctx context.Context, id, actorID string, actorRole user.Role) (*UsageRequest, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s *service) Apply(ctx context.Context, req ApplyRequest) (*UsageRequest, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if req.EndTime.Before(time.Now().UTC()) {
		return nil, ErrTimeInPast
	}

	u := &UsageRequest{
		InstrumentID: req.InstrumentID,
		RequesterID:  req.RequesterID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Purpose:      req.Purpose,
		Status:       workflow.InstrumentUsage.Initial,
	}

	// Availability and the duplicate-application check happen under the
	// instrument row lock inside ApplyTx.
	if err := s.repo.ApplyTx(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("usage request created",
		zap.String("request_id", u.ID),
		zap.String("instrument_id", u.InstrumentID),
		zap.String("requester_id", u.RequesterID),
	)

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*UsageRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*UsageRequest, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Review(ctx context.Context, id string, req ReviewRequest, reviewerID string, reviewerRole user.Role) (*UsageRequest, error) {
	if !reviewerRole.CanReview() {
		return nil, ErrPermissionDenied
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var target workflow.Status
	switch req.Decision {
	case DecisionApprove:
		target = workflow.StatusApproved
	case DecisionReject:
		if req.Reason == "" {
			return nil, ErrReasonRequired
		}
		target = workflow.StatusRejected
	default:
		return nil, ErrInvalidTransition
	}

	if err := s.checkTransition(u.Status, target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u.Status = target
	u.ReviewedBy = &reviewerID
	u.ReviewedAt = &now
	if req.Decision == DecisionReject {
		u.RejectionReason = &req.Reason
	}

	n := s.decisionNotice(u)
	markBorrowed := target == workflow.StatusApproved
	if err := s.repo.ReviewTx(ctx, u, n, markBorrowed); err != nil {
		return nil, err
	}

	s.logger.Info("usage request reviewed",
		zap.String("request_id", u.ID),
		zap.String("reviewer_id", reviewerID),
		zap.String("status", string(u.Status)),
	)

	return u, nil
}

func (s *service) Cancel(ctx context.Context, id, actorID string, actorRole user.Role) (*UsageRequest, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.RequesterID != actorID && !actorRole.CanReview() {
		return nil, ErrPermissionDenied
	}

	if err := s.checkTransition(u.Status, workflow.StatusCancelled); err != nil {
		return nil, err
	}

	u.Status = workflow.StatusCancelled
	if err := s.repo.UpdateStatus(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("usage request cancelled",
		zap.String("request_id", u.ID),
		zap.String("actor_id", actorID),
	)

	return u, nil
}

func (s *service) checkTransition(from, to workflow.Status) error {
	if workflow.InstrumentUsage.IsTerminal(from) {
		return ErrAlreadyConcluded
	}
	if !workflow.InstrumentUsage.CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

func (s *service) decisionNotice(u *UsageRequest) *notification.Notification {
	id := u.ID
	n := &notification.Notification{
		RecipientID: u.RequesterID,
		Kind:        notification.RefUsage,
		RelatedID:   &id,
	}

	window := fmt.Sprintf("%s to %s",
		u.StartTime.Format("2006-01-02 15:04"), u.EndTime.Format("2006-01-02 15:04"))
	switch u.Status {
	case workflow.StatusApproved:
		n.Title = "Usage request approved"
		n.Content = fmt.Sprintf("Your request to use %s from %s has been approved.", u.InstrumentName, window)
	case workflow.StatusRejected:
		n.Title = "Usage request rejected"
		reason := ""
		if u.RejectionReason != nil {
			reason = *u.RejectionReason
		}
		n.Content = fmt.Sprintf("Your request to use %s from %s has been rejected: %s", u.InstrumentName, window, reason)
	}

	return n
}
