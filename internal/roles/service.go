package roles

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

type roleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	DeleteGuarded(ctx context.Context, roleID uuid.UUID, guard func(usersCount int64) error) error
}

// Service exposes role operations.
type Service interface {
	List(ctx context.Context) ([]models.Role, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Role, error)
	Create(ctx context.Context, input CreateRoleInput) (*models.Role, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*models.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo roleRepository
}

// NewService builds a role service with the provided repository.
func NewService(repo roleRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("role repository required")
	}
	return &service{repo: repo}, nil
}

// CreateRoleInput captures the fields needed to create a role.
type CreateRoleInput struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"max=512"`
}

// UpdateRoleInput captures the mutable role fields.
type UpdateRoleInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=64"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

func (s *service) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list roles")
	}
	return roles, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role")
	}
	return role, nil
}

func (s *service) Create(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	role := &models.Role{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create role")
	}
	return role, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*models.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		role.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		role.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.repo.Update(ctx, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
	}
	return role, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.repo.DeleteGuarded(ctx, id, func(usersCount int64) error {
		if usersCount > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete role assigned to users")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete role")
	}
	return nil
}
