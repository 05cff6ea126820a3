package repair

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/notification"
	"github.com/sugar258596/experiment-server/internal/user"
	"github.com/sugar258596/experiment-server/internal/workflow"
	"go.uber.org/zap"
)

type ReportRequest struct {
	ReporterID   string
	InstrumentID string
	FaultType    string
	Urgency      Urgency
	Description  string
}

type UpdateStatusRequest struct {
	Status  workflow.Status
	Summary string
}

type Service interface {
	Report(ctx context.Context, req ReportRequest) (*RepairTicket, error)
	GetByID(ctx context.Context, id string) (*RepairTicket, error)
	List(ctx context.Context, filter Filter) ([]*RepairTicket, int, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest, actorID string, actorRole user.Role) (*RepairTicket, error)
}

type service struct {
	repo              Repository
	instrumentService instrument.Service
	logger            *zap.Logger
}

func NewService(repo Repository, instrumentService instrument.Service, logger *zap.Logger) Service {
	return &service{
		repo:              repo,
		instrumentService: instrumentService,
		logger:            logger,
	}
}

func (s *service) Report(ctx context.Context, req ReportRequest) (*RepairTicket, error) {
	if !req.Urgency.Valid() {
		return nil, ErrInvalidUrgency
	}

	if _, err := s.instrumentService.GetByID(ctx, req.InstrumentID); err != nil {
		if errors.Is(err, instrument.ErrNotFound) {
			return nil, ErrInstrumentNotFound
		}
		return nil, err
	}

	t := &RepairTicket{
		InstrumentID: req.InstrumentID,
		ReporterID:   req.ReporterID,
		FaultType:    req.FaultType,
		Urgency:      req.Urgency,
		Description:  req.Description,
		Status:       workflow.RepairTicket.Initial,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("repair ticket reported",
		zap.String("ticket_id", t.ID),
		zap.String("instrument_id", t.InstrumentID),
		zap.String("reporter_id", t.ReporterID),
		zap.String("urgency", string(t.Urgency)),
	)

	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*RepairTicket, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*RepairTicket, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest, actorID string, actorRole user.Role) (*RepairTicket, error) {
	if !actorRole.CanReview() {
		return nil, ErrPermissionDenied
	}

	if !workflow.RepairTicket.Contains(req.Status) {
		return nil, ErrInvalidStatus
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.RepairTicket.IsTerminal(t.Status) {
		return nil, ErrAlreadyCompleted
	}
	if !workflow.RepairTicket.CanTransition(t.Status, req.Status) {
		return nil, ErrInvalidTransition
	}

	t.Status = req.Status
	t.HandledBy = &actorID
	if req.Status == workflow.StatusCompleted {
		now := time.Now().UTC()
		t.CompletedAt = &now
		if req.Summary != "" {
			t.Summary = &req.Summary
		}
	}

	n := s.statusNotice(t)
	if err := s.repo.UpdateStatusTx(ctx, t, n); err != nil {
		return nil, err
	}

	s.logger.Info("repair ticket status updated",
		zap.String("ticket_id", t.ID),
		zap.String("actor_id", actorID),
		zap.String("status", string(t.Status)),
	)

	return t, nil
}

func (s *service) statusNotice(t *RepairTicket) *notification.Notification {
	id := t.ID
	n := &notification.Notification{
		RecipientID: t.ReporterID,
		Kind:        notification.RefRepair,
		RelatedID:   &id,
	}

	switch t.Status {
	case workflow.StatusInProgress:
		n.Title = "Repair in progress"
		n.Content = fmt.Sprintf("Your fault report for %s is being handled.", t.InstrumentName)
	case workflow.StatusCompleted:
		n.Title = "Repair completed"
		summary := ""
		if t.Summary != nil {
			summary = " " + *t.Summary
		}
		n.Content = fmt.Sprintf("Your fault report for %s has been resolved.%s", t.InstrumentName, summary)
	default:
		n.Title = "Repair ticket updated"
		n.Content = fmt.Sprintf("Your fault report for %s is now %s.", t.InstrumentName, t.Status)
	}

	return n
}
