package documents

import (
	"context"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles document persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to document operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every document, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// ListByCase returns documents attached to a case, newest first.
func (r *Repository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at desc").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ListByFolder returns documents in a folder, newest first.
func (r *Repository) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("folder_id = ?", folderID).
		Order("created_at desc").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ListForUser returns the documents reachable through a user's case
// assignments and their own folders, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error) {
	assignedCases := r.db.Model(&models.CaseAssignment{}).
		Select("case_id").
		Where("user_id = ?", userID)
	ownFolders := r.db.Model(&models.Folder{}).
		Select("id").
		Where("created_by_id = ?", userID)

	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("case_id IN (?) OR folder_id IN (?)", assignedCases, ownFolders).
		Order("created_at desc").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByID loads a document by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create persists a new document row.
func (r *Repository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(doc).Error
}

// Delete removes a document row. Documents carry no delete guard.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Document{}).Error
}
