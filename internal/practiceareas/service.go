package practiceareas

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type practiceAreaRepository interface {
	List(ctx context.Context) ([]models.PracticeArea, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PracticeArea, error)
	Create(ctx context.Context, area *models.PracticeArea) error
	Update(ctx context.Context, area *models.PracticeArea) error
	DeleteGuarded(ctx context.Context, areaID uuid.UUID, guard func(caseCount, userCount int64) error) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PracticeArea, error)
	TagUser(ctx context.Context, userID, areaID uuid.UUID) error
	UntagUser(ctx context.Context, userID, areaID uuid.UUID) error
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes practice area operations, including user tagging.
type Service interface {
	List(ctx context.Context) ([]models.PracticeArea, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PracticeArea, error)
	Create(ctx context.Context, input CreatePracticeAreaInput) (*models.PracticeArea, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePracticeAreaInput) (*models.PracticeArea, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PracticeArea, error)
	TagUser(ctx context.Context, userID, areaID uuid.UUID) error
	UntagUser(ctx context.Context, userID, areaID uuid.UUID) error
}

type service struct {
	repo  practiceAreaRepository
	users userRepository
}

// NewService builds a practice area service with the provided repositories.
func NewService(repo practiceAreaRepository, users userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("practice area repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, users: users}, nil
}

// CreatePracticeAreaInput captures the fields needed to create a practice area.
type CreatePracticeAreaInput struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"max=512"`
}

// UpdatePracticeAreaInput captures the mutable practice area fields.
type UpdatePracticeAreaInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

func (s *service) List(ctx context.Context) ([]models.PracticeArea, error) {
	areas, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list practice areas")
	}
	return areas, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PracticeArea, error) {
	area, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "practice area not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load practice area")
	}
	return area, nil
}

func (s *service) Create(ctx context.Context, input CreatePracticeAreaInput) (*models.PracticeArea, error) {
	area := &models.PracticeArea{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(ctx, area); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create practice area")
	}
	return area, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdatePracticeAreaInput) (*models.PracticeArea, error) {
	area, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		area.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		area.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.repo.Update(ctx, area); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update practice area")
	}
	return area, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.repo.DeleteGuarded(ctx, id, func(caseCount, userCount int64) error {
		if caseCount > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete practice area assigned to cases")
		}
		if userCount > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete practice area assigned to users")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete practice area")
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PracticeArea, error) {
	areas, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user practice areas")
	}
	return areas, nil
}

func (s *service) TagUser(ctx context.Context, userID, areaID uuid.UUID) error {
	if _, err := s.Get(ctx, areaID); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user")
	}
	if err := s.repo.TagUser(ctx, userID, areaID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "tag user practice area")
	}
	return nil
}

func (s *service) UntagUser(ctx context.Context, userID, areaID uuid.UUID) error {
	if err := s.repo.UntagUser(ctx, userID, areaID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "untag user practice area")
	}
	return nil
}
