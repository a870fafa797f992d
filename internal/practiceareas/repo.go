package practiceareas

import (
	"context"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles practice area persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to practice area operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all practice areas ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.PracticeArea, error) {
	var areas []models.PracticeArea
	if err := r.db.WithContext(ctx).Order("name asc").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// FindByID loads a practice area by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PracticeArea, error) {
	var area models.PracticeArea
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&area).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

// FindByName loads a practice area by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.PracticeArea, error) {
	var area models.PracticeArea
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&area).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

// Create persists a new practice area row.
func (r *Repository) Create(ctx context.Context, area *models.PracticeArea) error {
	if area.ID == uuid.Nil {
		area.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(area).Error
}

// Update saves the provided practice area.
func (r *Repository) Update(ctx context.Context, area *models.PracticeArea) error {
	return r.db.WithContext(ctx).Save(area).Error
}

// DeleteGuarded removes a practice area unless cases or users still reference
// it. Both counts and the delete run in one transaction.
func (r *Repository) DeleteGuarded(ctx context.Context, areaID uuid.UUID, guard func(caseCount, userCount int64) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var caseCount, userCount int64
		if err := tx.Model(&models.Case{}).Where("practice_area_id = ?", areaID).Count(&caseCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserPracticeArea{}).Where("practice_area_id = ?", areaID).Count(&userCount).Error; err != nil {
			return err
		}
		if err := guard(caseCount, userCount); err != nil {
			return err
		}
		return tx.Where("id = ?", areaID).Delete(&models.PracticeArea{}).Error
	})
}

// ListForUser returns the practice areas a user is tagged with.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PracticeArea, error) {
	var areas []models.PracticeArea
	err := r.db.WithContext(ctx).
		Joins("JOIN user_practice_areas upa ON upa.practice_area_id = practice_areas.id").
		Where("upa.user_id = ?", userID).
		Order("practice_areas.name asc").
		Find(&areas).Error
	if err != nil {
		return nil, err
	}
	return areas, nil
}

// TagUser links a user to a practice area. Re-tagging is a no-op.
func (r *Repository) TagUser(ctx context.Context, userID, areaID uuid.UUID) error {
	var existing models.UserPracticeArea
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND practice_area_id = ?", userID, areaID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	link := models.UserPracticeArea{ID: uuid.New(), UserID: userID, PracticeAreaID: areaID}
	return r.db.WithContext(ctx).Create(&link).Error
}

// UntagUser removes the link between a user and a practice area.
func (r *Repository) UntagUser(ctx context.Context, userID, areaID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND practice_area_id = ?", userID, areaID).
		Delete(&models.UserPracticeArea{}).Error
}
