package folders

import (
	"context"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles folder persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to folder operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every folder, most recently updated first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Folder, error) {
	var folders []models.Folder
	if err := r.db.WithContext(ctx).Order("updated_at desc").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// ListByCreator returns folders created by the given user.
func (r *Repository) ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.WithContext(ctx).
		Where("created_by_id = ?", userID).
		Order("updated_at desc").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// FindByID loads a folder by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// Create persists a new folder row.
func (r *Repository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == uuid.Nil {
		folder.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(folder).Error
}

// Update saves the provided folder.
func (r *Repository) Update(ctx context.Context, folder *models.Folder) error {
	return r.db.WithContext(ctx).Save(folder).Error
}

// DeleteGuarded removes a folder unless documents still live in it. The count
// and the delete run in one transaction.
func (r *Repository) DeleteGuarded(ctx context.Context, folderID uuid.UUID, guard func(documentCount int64) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Document{}).Where("folder_id = ?", folderID).Count(&count).Error; err != nil {
			return err
		}
		if err := guard(count); err != nil {
			return err
		}
		return tx.Where("id = ?", folderID).Delete(&models.Folder{}).Error
	})
}
