package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cfl-legal/chambers-backend/internal/policy"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/cfl-legal/chambers-backend/pkg/enums"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type caseRepository interface {
	CreateWithNumber(ctx context.Context, kase *models.Case, now time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	ListAll(ctx context.Context) ([]models.Case, error)
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]models.Case, error)
	Update(ctx context.Context, kase *models.Case) error
	DeleteGuarded(ctx context.Context, caseID uuid.UUID, guard func(counts DependentCounts) error) error
	IsAssigned(ctx context.Context, caseID, userID uuid.UUID) (bool, error)
	ListAssignments(ctx context.Context, caseID uuid.UUID) ([]models.CaseAssignment, error)
	Assign(ctx context.Context, caseID, userID uuid.UUID) (*models.CaseAssignment, error)
	Unassign(ctx context.Context, caseID, userID uuid.UUID) error
}

type practiceAreaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PracticeArea, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes case operations with per-case access rules applied.
type Service interface {
	List(ctx context.Context, actor policy.Actor) ([]models.Case, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Case, error)
	Create(ctx context.Context, actor policy.Actor, input CreateCaseInput) (*models.Case, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateCaseInput) (*models.Case, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	ListAssignments(ctx context.Context, actor policy.Actor, caseID uuid.UUID) ([]models.CaseAssignment, error)
	Assign(ctx context.Context, actor policy.Actor, caseID, userID uuid.UUID) (*models.CaseAssignment, error)
	Unassign(ctx context.Context, actor policy.Actor, caseID, userID uuid.UUID) error
}

type service struct {
	repo  caseRepository
	areas practiceAreaRepository
	users userRepository
	now   func() time.Time
}

// NewService builds a case service with the provided repositories.
func NewService(repo caseRepository, areas practiceAreaRepository, users userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("case repository required")
	}
	if areas == nil {
		return nil, fmt.Errorf("practice area repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, areas: areas, users: users, now: time.Now}, nil
}

// CreateCaseInput captures the fields needed to open a case. The case number
// is generated server-side and cannot be supplied.
type CreateCaseInput struct {
	Title          string    `json:"title" validate:"required,min=2,max=256"`
	Description    string    `json:"description" validate:"max=4096"`
	ClientName     string    `json:"client_name" validate:"max=256"`
	PracticeAreaID uuid.UUID `json:"practice_area_id" validate:"required"`
	Status         string    `json:"status"`
}

// UpdateCaseInput captures the mutable case fields.
type UpdateCaseInput struct {
	Title          *string    `json:"title" validate:"omitempty,min=2,max=256"`
	Description    *string    `json:"description" validate:"omitempty,max=4096"`
	ClientName     *string    `json:"client_name" validate:"omitempty,max=256"`
	PracticeAreaID *uuid.UUID `json:"practice_area_id"`
	Status         *string    `json:"status"`
}

func (s *service) List(ctx context.Context, actor policy.Actor) ([]models.Case, error) {
	var (
		cases []models.Case
		err   error
	)
	if actor.IsAdmin() {
		cases, err = s.repo.ListAll(ctx)
	} else {
		cases, err = s.repo.ListAccessible(ctx, actor.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cases")
	}
	return cases, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Case, error) {
	kase, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, kase, policy.OpRead); err != nil {
		return nil, err
	}
	return kase, nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateCaseInput) (*models.Case, error) {
	if _, err := s.areas.FindByID(ctx, input.PracticeAreaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "practice area does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check practice area")
	}

	status := enums.CaseStatusPending
	if input.Status != "" {
		parsed, err := enums.ParseCaseStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		status = parsed
	}

	kase := &models.Case{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		ClientName:     strings.TrimSpace(input.ClientName),
		PracticeAreaID: input.PracticeAreaID,
		Status:         status,
		CreatedByID:    actor.UserID,
	}
	if err := s.repo.CreateWithNumber(ctx, kase, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create case")
	}
	return kase, nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateCaseInput) (*models.Case, error) {
	kase, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, kase, policy.OpUpdate); err != nil {
		return nil, err
	}

	if input.Title != nil {
		kase.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		kase.Description = strings.TrimSpace(*input.Description)
	}
	if input.ClientName != nil {
		kase.ClientName = strings.TrimSpace(*input.ClientName)
	}
	if input.PracticeAreaID != nil {
		if _, err := s.areas.FindByID(ctx, *input.PracticeAreaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "practice area does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check practice area")
		}
		kase.PracticeAreaID = *input.PracticeAreaID
	}
	if input.Status != nil {
		parsed, err := enums.ParseCaseStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		kase.Status = parsed
	}

	if err := s.repo.Update(ctx, kase); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update case")
	}
	return kase, nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	kase, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, kase, policy.OpDelete); err != nil {
		return err
	}
	err = s.repo.DeleteGuarded(ctx, id, func(counts DependentCounts) error {
		if counts.Documents > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete case with existing documents")
		}
		if counts.Assignments > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete case with existing assignments")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete case")
	}
	return nil
}

func (s *service) ListAssignments(ctx context.Context, actor policy.Actor, caseID uuid.UUID) ([]models.CaseAssignment, error) {
	kase, err := s.find(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, kase, policy.OpRead); err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListAssignments(ctx, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assignments")
	}
	return assignments, nil
}

func (s *service) Assign(ctx context.Context, actor policy.Actor, caseID, userID uuid.UUID) (*models.CaseAssignment, error) {
	kase, err := s.find(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, kase, policy.OpAssign); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "user does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user")
	}
	assignment, err := s.repo.Assign(ctx, caseID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign user")
	}
	return assignment, nil
}

func (s *service) Unassign(ctx context.Context, actor policy.Actor, caseID, userID uuid.UUID) error {
	kase, err := s.find(ctx, caseID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, kase, policy.OpAssign); err != nil {
		return err
	}
	if err := s.repo.Unassign(ctx, caseID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unassign user")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	kase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "case not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load case")
	}
	return kase, nil
}

// authorize builds the actor's relationship to the case and evaluates the
// access rule. The assignment lookup is skipped for admins and creators since
// the rule cannot fail for them.
func (s *service) authorize(ctx context.Context, actor policy.Actor, kase *models.Case, op policy.Operation) error {
	rel := policy.Relationship{Creator: kase.CreatedByID == actor.UserID}
	if !actor.IsAdmin() && !rel.Creator {
		assigned, err := s.repo.IsAssigned(ctx, kase.ID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check assignment")
		}
		rel.Assigned = assigned
	}
	return policy.Authorize(policy.ResourceCase, op, actor, rel)
}
