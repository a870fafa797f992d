package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cfl-legal/chambers-backend/pkg/auth"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/cfl-legal/chambers-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type roleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
}

type practiceAreaRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PracticeArea, error)
}

// Service exposes authentication and self-profile operations.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*Profile, error)
}

type service struct {
	users       userRepository
	roles       roleRepository
	areas       practiceAreaRepository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService builds an auth service with the provided dependencies.
func NewService(users userRepository, roles roleRepository, areas practiceAreaRepository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role repository required")
	}
	if areas == nil {
		return nil, fmt.Errorf("practice area repository required")
	}
	return &service{
		users:       users,
		roles:       roles,
		areas:       areas,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// LoginInput carries the credentials for a login attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult bundles the minted token with the caller's profile.
type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Profile is the caller-facing view of their own account.
type Profile struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          *string   `json:"role"`
	PracticeAreas []string  `json:"practice_areas"`
	IsActive      bool      `json:"is_active"`
}

// UpdateProfileInput captures the self-editable profile fields.
type UpdateProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=128"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	valid, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is deactivated")
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		return nil, err
	}

	roleName := ""
	if profile.Role != nil {
		roleName = *profile.Role
	}
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), user.ID, roleName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &LoginResult{Token: token, User: *profile}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return s.profile(ctx, user)
}

func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return s.profile(ctx, user)
}

func (s *service) profile(ctx context.Context, user *models.User) (*Profile, error) {
	profile := &Profile{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		IsActive:      user.IsActive,
		PracticeAreas: []string{},
	}

	if user.RoleID != nil {
		role, err := s.roles.FindByID(ctx, *user.RoleID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role")
		}
		if err == nil {
			profile.Role = &role.Name
		}
	}

	areas, err := s.areas.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load practice areas")
	}
	for _, area := range areas {
		profile.PracticeAreas = append(profile.PracticeAreas, area.Name)
	}
	return profile, nil
}
