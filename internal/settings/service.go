package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"gorm.io/gorm"
)

// Defaults applied when the settings row is created lazily.
const (
	DefaultFirmName = "CFL Legal"
	DefaultLocation = "Kilimani, Nairobi"
)

type settingRepository interface {
	First(ctx context.Context) (*models.Setting, error)
	Create(ctx context.Context, setting *models.Setting) error
	Update(ctx context.Context, setting *models.Setting) error
}

// Service exposes the firm settings singleton.
type Service interface {
	Get(ctx context.Context) (*models.Setting, error)
	Update(ctx context.Context, input UpdateSettingsInput) (*models.Setting, error)
}

type service struct {
	repo settingRepository
}

// NewService builds a settings service with the provided repository.
func NewService(repo settingRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// UpdateSettingsInput captures the mutable settings fields.
type UpdateSettingsInput struct {
	FirmName *string `json:"firm_name" validate:"omitempty,min=1,max=128"`
	Location *string `json:"location" validate:"omitempty,max=256"`
	Address  *string `json:"address" validate:"omitempty,max=512"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// Get returns the settings row, creating it with firm defaults on first read.
func (s *service) Get(ctx context.Context) (*models.Setting, error) {
	setting, err := s.repo.First(ctx)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}

	setting = &models.Setting{FirmName: DefaultFirmName, Location: DefaultLocation}
	if err := s.repo.Create(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create settings")
	}
	return setting, nil
}

// Update patches the settings row. When no row exists yet the payload is
// treated as the full document and a row is created from it instead.
func (s *service) Update(ctx context.Context, input UpdateSettingsInput) (*models.Setting, error) {
	setting, err := s.repo.First(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.createFrom(ctx, input)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}
	if input.FirmName != nil {
		setting.FirmName = strings.TrimSpace(*input.FirmName)
	}
	if input.Location != nil {
		setting.Location = strings.TrimSpace(*input.Location)
	}
	if input.Address != nil {
		setting.Address = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		setting.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		setting.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if err := s.repo.Update(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update settings")
	}
	return setting, nil
}

func (s *service) createFrom(ctx context.Context, input UpdateSettingsInput) (*models.Setting, error) {
	if input.FirmName == nil || strings.TrimSpace(*input.FirmName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "firm_name is required")
	}
	setting := &models.Setting{FirmName: strings.TrimSpace(*input.FirmName)}
	if input.Location != nil {
		setting.Location = strings.TrimSpace(*input.Location)
	}
	if input.Address != nil {
		setting.Address = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		setting.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		setting.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if err := s.repo.Create(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create settings")
	}
	return setting, nil
}
