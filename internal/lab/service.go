package lab

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name        string
	Location    string
	Capacity    int
	Description string
	ImageURL    *string
}

type UpdateRequest struct {
	Name        *string
	Location    *string
	Capacity    *int
	Status      *string
	Description *string
	ImageURL    *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Lab, error)
	GetByID(ctx context.Context, id string) (*Lab, error)
	List(ctx context.Context, filter Filter) ([]*Lab, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Lab, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Lab, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	l := &Lab{
		Name:        req.Name,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      StatusActive,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Lab, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Lab, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Lab, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		l.Name = *req.Name
	}
	if req.Location != nil {
		l.Location = *req.Location
	}
	if req.Capacity != nil {
		l.Capacity = *req.Capacity
	}
	if req.Status != nil {
		st := Status(*req.Status)
		if st != StatusActive && st != StatusMaintenance && st != StatusClosed {
			return nil, ErrInvalidStatus
		}
		l.Status = st
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.ImageURL != nil {
		l.ImageURL = req.ImageURL
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
