package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/cfl-legal/chambers-backend/pkg/security"
	"github.com/cfl-legal/chambers-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	DeleteGuarded(ctx context.Context, userID uuid.UUID, guard func(counts DependentCounts) error) error
}

type roleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
}

// Service exposes user administration operations.
type Service interface {
	List(ctx context.Context) ([]UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        userRepository
	roles       roleRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a user service with the provided repositories.
func NewService(repo userRepository, roles roleRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role repository required")
	}
	return &service{repo: repo, roles: roles, passwordCfg: passwordCfg}, nil
}

// CreateUserInput captures the fields needed to register a firm member.
type CreateUserInput struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	Name     string     `json:"name" validate:"required,min=2,max=128"`
	RoleID   *uuid.UUID `json:"role_id"`
	IsActive *bool      `json:"is_active"`
}

// UpdateUserInput captures the mutable user fields. RoleID distinguishes
// "absent" from an explicit null that clears the role.
type UpdateUserInput struct {
	Email    *string            `json:"email" validate:"omitempty,email"`
	Password *string            `json:"password" validate:"omitempty,min=8"`
	Name     *string            `json:"name" validate:"omitempty,min=2,max=128"`
	RoleID   types.NullableUUID `json:"role_id"`
	IsActive *bool              `json:"is_active"`
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	// Role rows are a handful; resolve names through a small cache instead of
	// a join so the repository stays association-free.
	names := map[uuid.UUID]string{}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		roleName, err := s.roleName(ctx, users[i].RoleID, names)
		if err != nil {
			return nil, err
		}
		out = append(out, *toDTO(&users[i], roleName))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	roleName, err := s.roleName(ctx, user.RoleID, nil)
	if err != nil {
		return nil, err
	}
	return toDTO(user, roleName), nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}

	if input.RoleID != nil {
		if _, err := s.roles.FindByID(ctx, *input.RoleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "role does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check role")
		}
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		RoleID:       input.RoleID,
		IsActive:     true,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	roleName, err := s.roleName(ctx, user.RoleID, nil)
	if err != nil {
		return nil, err
	}
	return toDTO(user, roleName), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.RoleID.Valid {
		if input.RoleID.Value != nil {
			if _, err := s.roles.FindByID(ctx, *input.RoleID.Value); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "role does not exist")
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check role")
			}
		}
		user.RoleID = input.RoleID.Value
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	roleName, err := s.roleName(ctx, user.RoleID, nil)
	if err != nil {
		return nil, err
	}
	return toDTO(user, roleName), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	err := s.repo.DeleteGuarded(ctx, id, func(counts DependentCounts) error {
		if counts.CreatedCases > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete user with existing cases")
		}
		if counts.Assignments > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete user with case assignments")
		}
		if counts.Documents > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete user who has uploaded documents")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) roleName(ctx context.Context, roleID *uuid.UUID, cache map[uuid.UUID]string) (*string, error) {
	if roleID == nil {
		return nil, nil
	}
	if cache != nil {
		if name, ok := cache[*roleID]; ok {
			return &name, nil
		}
	}
	role, err := s.roles.FindByID(ctx, *roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role")
	}
	if cache != nil {
		cache[*roleID] = role.Name
	}
	return &role.Name, nil
}
