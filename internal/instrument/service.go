package instrument

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name        string
	Model       string
	Location    string
	Description string
	ImageURL    *string
}

type UpdateRequest struct {
	Name        *string
	Model       *string
	Location    *string
	Status      *string
	Description *string
	ImageURL    *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Instrument, error)
	GetByID(ctx context.Context, id string) (*Instrument, error)
	List(ctx context.Context, filter Filter) ([]*Instrument, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Instrument, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Instrument, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	ins := &Instrument{
		Name:        req.Name,
		Model:       req.Model,
		Location:    req.Location,
		Status:      StatusActive,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := s.repo.Create(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Instrument, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Instrument, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Instrument, error) {
	ins, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		ins.Name = *req.Name
	}
	if req.Model != nil {
		ins.Model = *req.Model
	}
	if req.Location != nil {
		ins.Location = *req.Location
	}
	if req.Status != nil {
		st := Status(*req.Status)
		if st != StatusActive && st != StatusMaintenance && st != StatusBorrowed {
			return nil, ErrInvalidStatus
		}
		ins.Status = st
	}
	if req.Description != nil {
		ins.Description = *req.Description
	}
	if req.ImageURL != nil {
		ins.ImageURL = req.ImageURL
	}

	if err := s.repo.Update(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
