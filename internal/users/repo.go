package users

import (
	"context"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to user operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all users ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by their unique email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persists a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves the provided user.
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// DependentCounts summarizes rows that block a user delete.
type DependentCounts struct {
	CreatedCases int64
	Assignments  int64
	Documents    int64
}

// DeleteGuarded removes a user unless dependent rows exist. Counts and delete
// run in one transaction so nothing can be created in between.
func (r *Repository) DeleteGuarded(ctx context.Context, userID uuid.UUID, guard func(counts DependentCounts) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counts DependentCounts
		if err := tx.Model(&models.Case{}).Where("created_by_id = ?", userID).Count(&counts.CreatedCases).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CaseAssignment{}).Where("user_id = ?", userID).Count(&counts.Assignments).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Document{}).Where("uploaded_by_id = ?", userID).Count(&counts.Documents).Error; err != nil {
			return err
		}
		if err := guard(counts); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserPracticeArea{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}
