// Package seed provisions the baseline rows a fresh deployment needs: the
// standard roles, the firm's practice areas, and the initial admin account.
// Seeding is idempotent; existing rows are left untouched.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/cfl-legal/chambers-backend/pkg/enums"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
	"github.com/cfl-legal/chambers-backend/pkg/security"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Admin bootstrap credentials. The password must be rotated after first login.
const (
	AdminEmail    = "admin@cfllegal.co.ke"
	AdminPassword = "admin123"
	AdminName     = "System Administrator"
)

type roleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
}

type practiceAreaRepository interface {
	FindByName(ctx context.Context, name string) (*models.PracticeArea, error)
	Create(ctx context.Context, area *models.PracticeArea) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Seeder provisions baseline data.
type Seeder struct {
	roles       roleRepository
	areas       practiceAreaRepository
	users       userRepository
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// New builds a Seeder with the provided repositories.
func New(roles roleRepository, areas practiceAreaRepository, users userRepository, passwordCfg config.PasswordConfig, logg *logger.Logger) (*Seeder, error) {
	if roles == nil || areas == nil || users == nil {
		return nil, fmt.Errorf("seed repositories required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{roles: roles, areas: areas, users: users, passwordCfg: passwordCfg, logg: logg}, nil
}

var defaultRoles = []models.Role{
	{Name: enums.RoleAdmin, Description: "Full administrative access"},
	{Name: "lawyer", Description: "Fee earner with case access"},
	{Name: "paralegal", Description: "Case support staff"},
	{Name: "client", Description: "External client account"},
}

var defaultPracticeAreas = []models.PracticeArea{
	{Name: "Corporate Law"},
	{Name: "Intellectual Property"},
	{Name: "Real Estate"},
	{Name: "Banking & Finance"},
	{Name: "Dispute Resolution"},
}

// Run seeds roles, practice areas, and the admin account. Failures are
// collected so one bad row does not abort the rest of the pass.
func (s *Seeder) Run(ctx context.Context) error {
	var errs error
	errs = multierr.Append(errs, s.seedRoles(ctx))
	errs = multierr.Append(errs, s.seedPracticeAreas(ctx))
	errs = multierr.Append(errs, s.seedAdmin(ctx))
	return errs
}

func (s *Seeder) seedRoles(ctx context.Context) error {
	var errs error
	for _, role := range defaultRoles {
		_, err := s.roles.FindByName(ctx, role.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("check role %q: %w", role.Name, err))
			continue
		}
		create := role
		if err := s.roles.Create(ctx, &create); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("create role %q: %w", role.Name, err))
			continue
		}
		s.logg.Info(s.logg.WithField(ctx, "role", role.Name), "seeded role")
	}
	return errs
}

func (s *Seeder) seedPracticeAreas(ctx context.Context) error {
	var errs error
	for _, area := range defaultPracticeAreas {
		_, err := s.areas.FindByName(ctx, area.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("check practice area %q: %w", area.Name, err))
			continue
		}
		create := area
		if err := s.areas.Create(ctx, &create); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("create practice area %q: %w", area.Name, err))
			continue
		}
		s.logg.Info(s.logg.WithField(ctx, "practice_area", area.Name), "seeded practice area")
	}
	return errs
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	if _, err := s.users.FindByEmail(ctx, AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	adminRole, err := s.roles.FindByName(ctx, enums.RoleAdmin)
	if err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	hash, err := security.HashPassword(AdminPassword, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        AdminEmail,
		PasswordHash: hash,
		Name:         AdminName,
		RoleID:       &adminRole.ID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "email", AdminEmail), "seeded admin account")
	return nil
}
