package folders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cfl-legal/chambers-backend/internal/policy"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type folderRepository interface {
	ListAll(ctx context.Context) ([]models.Folder, error)
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Folder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Folder, error)
	Create(ctx context.Context, folder *models.Folder) error
	Update(ctx context.Context, folder *models.Folder) error
	DeleteGuarded(ctx context.Context, folderID uuid.UUID, guard func(documentCount int64) error) error
}

// Service exposes folder operations. Folders are personal: only the creator
// and admins can see or touch them.
type Service interface {
	List(ctx context.Context, actor policy.Actor) ([]models.Folder, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Folder, error)
	Create(ctx context.Context, actor policy.Actor, input CreateFolderInput) (*models.Folder, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateFolderInput) (*models.Folder, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type service struct {
	repo folderRepository
}

// NewService builds a folder service with the provided repository.
func NewService(repo folderRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("folder repository required")
	}
	return &service{repo: repo}, nil
}

// CreateFolderInput captures the fields needed to create a folder.
type CreateFolderInput struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"max=512"`
}

// UpdateFolderInput captures the mutable folder fields.
type UpdateFolderInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

func (s *service) List(ctx context.Context, actor policy.Actor) ([]models.Folder, error) {
	var (
		folders []models.Folder
		err     error
	)
	if actor.IsAdmin() {
		folders, err = s.repo.ListAll(ctx)
	} else {
		folders, err = s.repo.ListByCreator(ctx, actor.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list folders")
	}
	return folders, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Folder, error) {
	folder, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, folder, policy.OpRead); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateFolderInput) (*models.Folder, error) {
	folder := &models.Folder{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedByID: actor.UserID,
	}
	if err := s.repo.Create(ctx, folder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create folder")
	}
	return folder, nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateFolderInput) (*models.Folder, error) {
	folder, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, folder, policy.OpUpdate); err != nil {
		return nil, err
	}
	if input.Name != nil {
		folder.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		folder.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.repo.Update(ctx, folder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update folder")
	}
	return folder, nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	folder, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, folder, policy.OpDelete); err != nil {
		return err
	}
	err = s.repo.DeleteGuarded(ctx, id, func(documentCount int64) error {
		if documentCount > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete folder with existing documents")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete folder")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	folder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "folder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load folder")
	}
	return folder, nil
}

func authorize(actor policy.Actor, folder *models.Folder, op policy.Operation) error {
	rel := policy.Relationship{Creator: folder.CreatedByID == actor.UserID}
	return policy.Authorize(policy.ResourceFolder, op, actor, rel)
}
